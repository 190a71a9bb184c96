package ingest

import "github.com/kbukum/scribekit/lifecycle"

// Kind names a source variant. It is used as the source label in logs,
// spans and metrics.
type Kind string

const (
	KindFile        Kind = "file"
	KindRecording   Kind = "live"
	KindRemoteVideo Kind = "youtube"
)

// Source is one of UploadedFile, LiveRecording or RemoteVideo.
type Source interface {
	Kind() Kind
	// Claim registers with scope whatever the source already owns on disk.
	// It runs before the job waits for a slot, so inputs are removed even
	// when the job never starts.
	Claim(scope *lifecycle.Scope)
	isSource()
}

// UploadedFile is an audio file the transport layer already stored on disk.
// The job takes ownership of Path and removes it when done.
type UploadedFile struct {
	Path      string `json:"path" validate:"required"`
	MimeType  string `json:"mime_type" validate:"required"`
	SizeBytes int64  `json:"size_bytes" validate:"gte=0"`
}

// LiveRecording is audio captured in the browser and held in memory.
// Format is a container name (webm) or MIME type (audio/webm;codecs=opus);
// empty means webm.
type LiveRecording struct {
	Data   []byte `json:"-"`
	Format string `json:"format"`
}

// RemoteVideo references a hosted video whose audio track is transcribed.
type RemoteVideo struct {
	URL string `json:"url" validate:"required"`
}

func (UploadedFile) Kind() Kind  { return KindFile }
func (LiveRecording) Kind() Kind { return KindRecording }
func (RemoteVideo) Kind() Kind   { return KindRemoteVideo }

func (f UploadedFile) Claim(scope *lifecycle.Scope) {
	if f.Path != "" {
		scope.Register(f.Path)
	}
}

func (LiveRecording) Claim(*lifecycle.Scope) {}
func (RemoteVideo) Claim(*lifecycle.Scope)   {}

func (UploadedFile) isSource()  {}
func (LiveRecording) isSource() {}
func (RemoteVideo) isSource()   {}
