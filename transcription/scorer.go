package transcription

import "fmt"

// Scoring constants used when no config overrides them.
const (
	DefaultConfidenceFloor   = 0.5
	DefaultConfidenceCeiling = 1.0
	DefaultSegmentConfidence = 0.7
)

// ScoringConfig is the scoring section of the service config. Unset fields
// take the defaults; an explicit 0 is kept.
type ScoringConfig struct {
	Floor          *float64 `yaml:"floor" mapstructure:"floor"`
	SegmentDefault *float64 `yaml:"segment_default" mapstructure:"segment_default"`
}

// ApplyDefaults fills unset fields.
func (c *ScoringConfig) ApplyDefaults() {
	if c.Floor == nil {
		c.Floor = float(DefaultConfidenceFloor)
	}
	if c.SegmentDefault == nil {
		c.SegmentDefault = float(DefaultSegmentConfidence)
	}
}

// Validate checks that both values are probabilities.
func (c *ScoringConfig) Validate() error {
	if c.Floor != nil && (*c.Floor < 0 || *c.Floor > DefaultConfidenceCeiling) {
		return fmt.Errorf("scoring.floor must be within [0, 1] (got: %v)", *c.Floor)
	}
	if c.SegmentDefault != nil && (*c.SegmentDefault < 0 || *c.SegmentDefault > DefaultConfidenceCeiling) {
		return fmt.Errorf("scoring.segment_default must be within [0, 1] (got: %v)", *c.SegmentDefault)
	}
	return nil
}

func float(v float64) *float64 { return &v }

// Scorer turns per-segment and per-word engine output into one confidence.
type Scorer struct {
	Floor          float64
	Ceiling        float64
	SegmentDefault float64
}

// DefaultScorer returns a scorer with the standard constants.
func DefaultScorer() Scorer {
	return Scorer{
		Floor:          DefaultConfidenceFloor,
		Ceiling:        DefaultConfidenceCeiling,
		SegmentDefault: DefaultSegmentConfidence,
	}
}

// NewScorer builds a scorer from config. Unset fields use the defaults.
func NewScorer(cfg ScoringConfig) Scorer {
	s := DefaultScorer()
	if cfg.Floor != nil {
		s.Floor = *cfg.Floor
	}
	if cfg.SegmentDefault != nil {
		s.SegmentDefault = *cfg.SegmentDefault
	}
	return s
}

// Score returns the mean segment confidence clamped to [Floor, Ceiling].
// A segment's confidence is the mean probability of its words, or
// SegmentDefault when it has none. No segments yields Floor.
func (s Scorer) Score(out *Output) float64 {
	if out == nil || len(out.Segments) == 0 {
		return s.Floor
	}

	var total float64
	for _, seg := range out.Segments {
		total += s.segment(seg)
	}
	return s.clamp(total / float64(len(out.Segments)))
}

func (s Scorer) segment(seg Segment) float64 {
	if len(seg.Words) == 0 {
		return s.SegmentDefault
	}
	var sum float64
	for _, w := range seg.Words {
		sum += w.Probability
	}
	return sum / float64(len(seg.Words))
}

func (s Scorer) clamp(v float64) float64 {
	switch {
	case v < s.Floor:
		return s.Floor
	case v > s.Ceiling:
		return s.Ceiling
	default:
		return v
	}
}
