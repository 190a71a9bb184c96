package transcription

import (
	"github.com/kbukum/scribekit/lifecycle"
	"github.com/kbukum/scribekit/provider"
)

// LanguageAuto asks the engine to detect the spoken language.
const LanguageAuto = "auto"

// Request is one engine invocation.
type Request struct {
	// AudioPath is the normalized local audio file.
	AudioPath string
	// Model overrides the engine's configured model when set.
	Model string
	// Language is an ISO code, or empty/"auto" for detection.
	Language string
	// Scope receives every artifact the engine creates.
	Scope *lifecycle.Scope
}

// Engine is a speech-to-text backend.
type Engine = provider.RequestResponse[Request, *Output]

// NewRegistry creates a registry for engine backends.
func NewRegistry() *provider.Registry[Engine] {
	return provider.NewRegistry[Engine]()
}

// IsAutoLanguage reports whether lang requests language detection.
func IsAutoLanguage(lang string) bool {
	return lang == "" || lang == LanguageAuto
}
