package server

import (
	"context"
	stderrors "errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/lifecycle"
	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/transcription"
	"github.com/kbukum/scribekit/util"
	"github.com/kbukum/scribekit/youtube"
)

// formAudio is the multipart field carrying audio on both upload routes.
const formAudio = "audio"

// Transcriber is the core the HTTP routes drive.
type Transcriber interface {
	TranscribeFromFile(ctx context.Context, path, mimeType string, sizeBytes int64) (*transcription.Result, error)
	TranscribeFromLiveRecording(ctx context.Context, data []byte, format string) (*transcription.Result, error)
	TranscribeFromRemoteVideo(ctx context.Context, videoURL string) (*transcription.Result, error)
	GetRemoteVideoMetadata(ctx context.Context, videoURL string) (*youtube.VideoMetadata, error)
}

// TranscribeResponse is the body of every successful transcription.
type TranscribeResponse struct {
	transcription.Result
	VideoURL string `json:"videoUrl,omitempty"`
}

type remoteVideoRequest struct {
	VideoURL string `json:"videoUrl"`
}

type routes struct {
	svc       Transcriber
	uploadDir string
	log       *logger.Logger
}

// RegisterRoutes mounts the transcription API on the server.
func (s *Server) RegisterRoutes(svc Transcriber) {
	h := &routes{
		svc:       svc,
		uploadDir: util.Coalesce(s.config.UploadDir, os.TempDir()),
		log:       s.log.WithComponent("api"),
	}

	api := s.engine.Group("/api")
	api.POST("/transcribe/file", h.transcribeFile)
	api.POST("/transcribe/live", h.transcribeLive)
	api.POST("/youtube/transcribe", h.transcribeYouTube)
	api.GET("/youtube/metadata", h.youtubeMetadata)
}

func (h *routes) transcribeFile(c *gin.Context) {
	file, header, err := c.Request.FormFile(formAudio)
	if err != nil {
		RespondWithError(c, formError(err, "No file uploaded"))
		return
	}
	defer file.Close()

	path, err := h.saveUpload(file, header)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	// The job owns path from here and removes it when it ends.
	result, err := h.svc.TranscribeFromFile(c.Request.Context(), path, header.Header.Get("Content-Type"), header.Size)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, TranscribeResponse{Result: *result})
}

func (h *routes) transcribeLive(c *gin.Context) {
	file, header, err := c.Request.FormFile(formAudio)
	if err != nil {
		RespondWithError(c, formError(err, "No audio data received"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondWithError(c, errors.IOFailure("read recording", err))
		return
	}

	format := c.Request.FormValue("format")
	if format == "" {
		if ct := header.Header.Get("Content-Type"); strings.HasPrefix(ct, "audio/") {
			format = ct
		}
	}

	result, err := h.svc.TranscribeFromLiveRecording(c.Request.Context(), data, format)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, TranscribeResponse{Result: *result})
}

func (h *routes) transcribeYouTube(c *gin.Context) {
	var req remoteVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, errors.InvalidInput("videoUrl", "request body must be JSON with a videoUrl"))
		return
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		RespondWithError(c, errors.InvalidInput("videoUrl", "YouTube video URL is required"))
		return
	}

	result, err := h.svc.TranscribeFromRemoteVideo(c.Request.Context(), req.VideoURL)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, TranscribeResponse{Result: *result, VideoURL: req.VideoURL})
}

func (h *routes) youtubeMetadata(c *gin.Context) {
	videoURL := c.Query("url")
	if strings.TrimSpace(videoURL) == "" {
		RespondWithError(c, errors.InvalidInput("url", "YouTube video URL is required"))
		return
	}

	meta, err := h.svc.GetRemoteVideoMetadata(c.Request.Context(), videoURL)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, meta)
}

// saveUpload copies an uploaded part to a unique path in the upload
// directory. A partial file is removed on failure.
func (h *routes) saveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	path := filepath.Join(h.uploadDir, lifecycle.UniqueName("upload", strings.ToLower(filepath.Ext(header.Filename))))

	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", errors.IOFailure("save upload", err)
	}
	_, copyErr := io.Copy(out, file)
	closeErr := out.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			h.log.Warn("Failed to remove partial upload", logger.Fields(
				logger.FieldPath, path,
				logger.FieldError, rmErr.Error(),
			))
		}
		return "", errors.IOFailure("save upload", copyErr)
	}
	return path, nil
}

// formError maps multipart parsing failures. An oversized body is the
// caller's fault, as is a missing field.
func formError(err error, missing string) *errors.AppError {
	var maxErr *http.MaxBytesError
	switch {
	case stderrors.As(err, &maxErr):
		return errors.InvalidInput("audio", "File too large. Maximum upload size exceeded.").
			WithDetail("limit_bytes", maxErr.Limit)
	case stderrors.Is(err, http.ErrMissingFile):
		return errors.InvalidInput("audio", missing)
	default:
		return errors.InvalidInput("audio", "malformed multipart request").WithCause(err)
	}
}
