package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfigValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero threshold", func(c *Config) { c.CandidateThreshold = 0 }},
		{"threshold above one", func(c *Config) { c.CandidateThreshold = 1.2 }},
		{"negative min confidence", func(c *Config) { c.MinConfidence = -0.1 }},
		{"min confidence above threshold", func(c *Config) { c.MinConfidence = 0.9 }},
		{"negative max matches", func(c *Config) { c.MaxMatches = -1 }},
		{"huge max matches", func(c *Config) { c.MaxMatches = 10000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfigYAML(t *testing.T) {
	cfg := DefaultConfig()
	err := yaml.Unmarshal([]byte("candidate_threshold: 0.9\nmax_matches: 5\n"), &cfg)
	assert.NoError(t, err)
	assert.Equal(t, 0.9, cfg.CandidateThreshold)
	assert.Equal(t, 5, cfg.MaxMatches)
	assert.Equal(t, 0.25, cfg.MinConfidence, "unset keys keep their defaults")
}
