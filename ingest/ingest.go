package ingest

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/lifecycle"
	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/util"
	"github.com/kbukum/scribekit/validation"
	"github.com/kbukum/scribekit/youtube"
)

// RemoteFetcher downloads remote video audio into a scope.
type RemoteFetcher interface {
	Fetch(ctx context.Context, scope *lifecycle.Scope, videoURL string) (string, *youtube.VideoMetadata, error)
}

// Audio is a registered local audio file ready for the engine.
type Audio struct {
	Path   string
	Source Kind
	// Metadata is set for remote video only.
	Metadata *youtube.VideoMetadata
}

// Ingestor validates sources and produces registered audio files.
type Ingestor struct {
	cfg      Config
	maxBytes int64
	remote   RemoteFetcher
	log      *logger.Logger
}

// New creates an Ingestor. remote may be nil when remote video is disabled.
func New(cfg Config, remote RemoteFetcher) *Ingestor {
	cfg.ApplyDefaults()
	return &Ingestor{
		cfg:      cfg,
		maxBytes: cfg.MaxBytes(),
		remote:   remote,
		log:      logger.WithComponent("ingest"),
	}
}

// MaxBytes returns the upload and recording size limit.
func (i *Ingestor) MaxBytes() int64 { return i.maxBytes }

// Ingest dispatches src to its adapter.
func (i *Ingestor) Ingest(ctx context.Context, scope *lifecycle.Scope, src Source) (*Audio, error) {
	switch s := src.(type) {
	case UploadedFile:
		return i.FromUploadedFile(scope, s)
	case *UploadedFile:
		return i.FromUploadedFile(scope, *s)
	case LiveRecording:
		return i.FromLiveRecording(scope, s)
	case *LiveRecording:
		return i.FromLiveRecording(scope, *s)
	case RemoteVideo:
		return i.FromRemoteVideo(ctx, scope, s)
	case *RemoteVideo:
		return i.FromRemoteVideo(ctx, scope, *s)
	default:
		return nil, errors.InvalidInput("source", fmt.Sprintf("unsupported audio source %T", src))
	}
}

// FromUploadedFile accepts a file already on disk. The path is registered
// with scope before validation, so a rejected upload is still removed.
func (i *Ingestor) FromUploadedFile(scope *lifecycle.Scope, f UploadedFile) (*Audio, error) {
	f.Claim(scope)
	if err := validation.Validate(f); err != nil {
		return nil, err
	}

	mimeType := NormalizeMimeType(f.MimeType)
	v := validation.New().
		Custom(slices.Contains(i.cfg.AllowedMimeTypes, mimeType), "mime_type",
			"Invalid file type. Only audio files are allowed.").
		MaxBytes("size_bytes", f.SizeBytes, i.maxBytes)
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}

	info, err := os.Stat(f.Path)
	if err != nil {
		return nil, errors.IOFailure("uploaded file access", err)
	}
	if info.IsDir() {
		return nil, errors.InvalidInput("path", "is a directory")
	}
	if info.Size() > i.maxBytes {
		return nil, errors.InvalidInput("size_bytes", "file exceeds the "+util.FormatSize(i.maxBytes)+" limit")
	}

	i.log.Debug("accepted upload", logger.Fields(
		logger.FieldPath, f.Path,
		"mime_type", mimeType,
		"size_bytes", info.Size(),
	))
	return &Audio{Path: f.Path, Source: KindFile}, nil
}

// FromLiveRecording writes the recording to a new file in scope.
func (i *Ingestor) FromLiveRecording(scope *lifecycle.Scope, r LiveRecording) (*Audio, error) {
	if len(r.Data) == 0 {
		return nil, errors.InvalidInput("audio", "no audio captured")
	}

	format := r.Format
	if format == "" {
		format = i.cfg.RecordingFormat
	}
	format = normalizeFormat(format)

	v := validation.New().
		OneOf("format", format, RecordingFormats()).
		MaxBytes("audio", int64(len(r.Data)), i.maxBytes)
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}

	res := scope.NewPath("recording", recordingExt[format])
	if err := os.WriteFile(res.Path, r.Data, 0o600); err != nil {
		return nil, errors.IOFailure("recording write", err)
	}

	i.log.Debug("stored live recording", logger.Fields(
		logger.FieldPath, res.Path,
		"format", format,
		"size_bytes", len(r.Data),
	))
	return &Audio{Path: res.Path, Source: KindRecording}, nil
}

// FromRemoteVideo downloads and normalizes the video's audio track.
func (i *Ingestor) FromRemoteVideo(ctx context.Context, scope *lifecycle.Scope, v RemoteVideo) (*Audio, error) {
	if err := validation.Validate(v); err != nil {
		return nil, err
	}
	if i.remote == nil {
		return nil, errors.ServiceUnavailable("remote video download")
	}

	path, meta, err := i.remote.Fetch(ctx, scope, v.URL)
	if err != nil {
		return nil, err
	}
	return &Audio{Path: path, Source: KindRemoteVideo, Metadata: meta}, nil
}
