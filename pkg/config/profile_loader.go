package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile is a named deployment profile loaded from YAML. Profiles bundle the
// settings that differ between deployments (a public demo, a newsroom pilot,
// a local dev box) so ops do not have to manage a dozen env vars per box.
type Profile struct {
	Name     string         `yaml:"name" json:"name"`
	Code     string         `yaml:"code" json:"code"`
	Analyzer AnalyzerConfig `yaml:"analyzer" json:"analyzer"`
	Chain    ChainConfig    `yaml:"chain" json:"chain"`
	Limits   LimitsConfig   `yaml:"limits" json:"limits"`
}

// AnalyzerConfig selects and tunes the claim analyzer for a profile.
type AnalyzerConfig struct {
	Mode    string `yaml:"mode" json:"mode"` // "heuristic" | "llm" | "ensemble"
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty" json:"model,omitempty"`
}

// ChainConfig tunes the integrity chain.
type ChainConfig struct {
	Difficulty int `yaml:"difficulty" json:"difficulty"`
}

// LimitsConfig holds per-profile rate limits.
type LimitsConfig struct {
	RPS   int `yaml:"rps" json:"rps"`
	Burst int `yaml:"burst" json:"burst"`
}

// LoadProfile loads a profile YAML by code. It searches the profiles
// directory for profile_<code>.yaml.
func LoadProfile(profilesDir, code string) (*Profile, error) {
	code = strings.ToLower(code)
	path := filepath.Join(profilesDir, fmt.Sprintf("profile_%s.yaml", code))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", code, err)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile %q: %w", code, err)
	}
	if profile.Code == "" {
		profile.Code = code
	}
	return &profile, nil
}

// Apply overlays the profile onto cfg. Only set fields override.
func (p *Profile) Apply(cfg *Config) {
	if p.Analyzer.Mode != "" {
		cfg.AnalyzerMode = p.Analyzer.Mode
	}
	if p.Analyzer.BaseURL != "" {
		cfg.LLMBaseURL = p.Analyzer.BaseURL
	}
	if p.Analyzer.Model != "" {
		cfg.LLMModel = p.Analyzer.Model
	}
	if p.Chain.Difficulty > 0 {
		cfg.ChainDifficulty = p.Chain.Difficulty
	}
	if p.Limits.RPS > 0 {
		cfg.RateLimitRPS = p.Limits.RPS
	}
	if p.Limits.Burst > 0 {
		cfg.RateLimitBurst = p.Limits.Burst
	}
}
