package dedup

import "fmt"

// Config tunes matching and candidate recording.
type Config struct {
	// CandidateThreshold is the lowest confidence persisted as a pending
	// duplicate candidate. Default: 0.8.
	CandidateThreshold float64 `yaml:"candidate_threshold"`

	// MinConfidence drops weaker matches from match listings. Default: 0.25,
	// the bottom of the partial-name band, so every signal is shown.
	MinConfidence float64 `yaml:"min_confidence"`

	// MaxMatches caps the number of matches returned; 0 means no cap.
	// Default: 20.
	MaxMatches int `yaml:"max_matches"`
}

// DefaultConfig returns the default matcher configuration.
func DefaultConfig() Config {
	return Config{
		CandidateThreshold: 0.8,
		MinConfidence:      0.25,
		MaxMatches:         20,
	}
}

// Validate checks if the configuration has valid values.
func (c Config) Validate() error {
	if c.CandidateThreshold <= 0 || c.CandidateThreshold > 1 {
		return fmt.Errorf("candidate_threshold must be in (0, 1] (got %.2f)", c.CandidateThreshold)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be between 0.0 and 1.0 (got %.2f)", c.MinConfidence)
	}
	if c.MinConfidence > c.CandidateThreshold {
		return fmt.Errorf("min_confidence %.2f exceeds candidate_threshold %.2f", c.MinConfidence, c.CandidateThreshold)
	}
	if c.MaxMatches < 0 {
		return fmt.Errorf("max_matches cannot be negative (got %d)", c.MaxMatches)
	}
	if c.MaxMatches > 500 {
		return fmt.Errorf("max_matches too large (got %d, max 500)", c.MaxMatches)
	}
	return nil
}
