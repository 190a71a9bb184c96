package ingest

import (
	"fmt"
	"mime"
	"strings"

	"github.com/kbukum/scribekit/util"
)

const (
	defaultMaxSize         = "50MB"
	defaultMaxBytes        = 50 << 20
	defaultRecordingFormat = "webm"
)

// DefaultAllowedMimeTypes are the accepted upload types.
var DefaultAllowedMimeTypes = []string{
	"audio/mpeg",
	"audio/wav",
	"audio/webm",
	"audio/ogg",
	"audio/mp4",
	"audio/x-m4a",
	"audio/aac",
}

// recordingExt maps recording formats to file extensions.
var recordingExt = map[string]string{
	"webm": ".webm",
	"ogg":  ".ogg",
	"wav":  ".wav",
	"mp4":  ".m4a",
	"m4a":  ".m4a",
	"mpeg": ".mp3",
	"mp3":  ".mp3",
	"aac":  ".aac",
}

// Config holds the ingestion limits.
type Config struct {
	// MaxSize is the upload and recording limit, e.g. "50MB".
	MaxSize string `yaml:"max_size" mapstructure:"max_size"`
	// AllowedMimeTypes is the upload allow-list.
	AllowedMimeTypes []string `yaml:"allowed_mime_types" mapstructure:"allowed_mime_types"`
	// RecordingFormat is assumed when a recording names no format.
	RecordingFormat string `yaml:"recording_format" mapstructure:"recording_format"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.MaxSize == "" {
		c.MaxSize = defaultMaxSize
	}
	if len(c.AllowedMimeTypes) == 0 {
		c.AllowedMimeTypes = append([]string(nil), DefaultAllowedMimeTypes...)
	}
	if c.RecordingFormat == "" {
		c.RecordingFormat = defaultRecordingFormat
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if util.ParseSize(c.MaxSize, -1) <= 0 {
		return fmt.Errorf("ingest.max_size must be a positive size like 50MB (got: %q)", c.MaxSize)
	}
	if _, ok := recordingExt[c.RecordingFormat]; !ok {
		return fmt.Errorf("ingest.recording_format %q is not supported", c.RecordingFormat)
	}
	return nil
}

// MaxBytes returns the parsed size limit.
func (c *Config) MaxBytes() int64 {
	return util.ParseSize(c.MaxSize, defaultMaxBytes)
}

// RecordingFormats lists the accepted recording formats.
func RecordingFormats() []string {
	return []string{"webm", "ogg", "wav", "mp4", "m4a", "mpeg", "mp3", "aac"}
}

// NormalizeMimeType lower-cases a MIME type and drops its parameters, so
// "Audio/WebM; codecs=opus" becomes "audio/webm". It returns "" when the
// value does not parse.
func NormalizeMimeType(v string) string {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(v))
	if err != nil {
		return ""
	}
	return mediaType
}

// normalizeFormat accepts "webm", ".webm" or "audio/webm;codecs=opus".
func normalizeFormat(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if strings.Contains(v, "/") {
		mt := NormalizeMimeType(v)
		if _, sub, ok := strings.Cut(mt, "/"); ok {
			v = strings.TrimPrefix(sub, "x-")
		}
	}
	return strings.TrimPrefix(v, ".")
}
