package transcription

import "strings"

// LanguageUnknown is reported when the engine did not name a language.
const LanguageUnknown = "unknown"

// SourceMetadata describes the remote video a transcript came from.
type SourceMetadata struct {
	Title         string `json:"title"`
	LengthSeconds int    `json:"lengthSeconds"`
	Author        string `json:"author"`
}

// Result is what a successful job returns to its caller. Metadata fields
// are present only for remote video jobs.
type Result struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
	*SourceMetadata
}

// Assemble combines engine output, its confidence and optional source
// metadata into a Result. It does not modify out.
func Assemble(out *Output, confidence float64, meta *SourceMetadata) Result {
	r := Result{
		Language:       LanguageUnknown,
		Confidence:     confidence,
		SourceMetadata: meta,
	}
	if out != nil {
		r.Text = strings.TrimSpace(out.Text)
		if lang := strings.TrimSpace(out.Language); lang != "" {
			r.Language = lang
		}
	}
	return r
}
