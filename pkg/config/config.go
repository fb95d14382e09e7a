package config

import (
	"os"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = goerr.New("invalid agent configuration")

const (
	DefaultLocation           = "us-central1"
	DefaultMaxResults         = 5
	DefaultGroundingThreshold = 0.7
	DefaultSearchType         = "web"
	DefaultTimeoutSecs        = 30
)

// Config holds the runtime configuration of the agent. It is validated once
// at construction and shared read-only afterwards.
type Config struct {
	ProjectID      string `yaml:"project_id"`
	SearchEngineID string `yaml:"search_engine_id"`
	Location       string `yaml:"location"`

	// MaxResults caps the page size of one retrieval call. Valid range is
	// 1 to 50.
	MaxResults int `yaml:"max_results"`

	// GroundingThreshold is the minimum confidence for grounding, between
	// 0.0 and 1.0. It is carried for callers to inspect but results are
	// never filtered by it.
	GroundingThreshold float64 `yaml:"grounding_threshold"`

	SearchType  string `yaml:"search_type"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// New creates a Config with defaults applied and validates it.
func New(projectID, searchEngineID string) (*Config, error) {
	cfg := &Config{
		ProjectID:          projectID,
		SearchEngineID:     searchEngineID,
		GroundingThreshold: DefaultGroundingThreshold,
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required identifiers and value ranges. Out-of-range values
// fail here, they are never clamped.
func (c *Config) Validate() error {
	if c.ProjectID == "" {
		return goerr.Wrap(ErrInvalidConfig, "project_id is required")
	}
	if c.SearchEngineID == "" {
		return goerr.Wrap(ErrInvalidConfig, "search_engine_id is required")
	}
	if c.MaxResults < 1 || c.MaxResults > 50 {
		return goerr.Wrap(ErrInvalidConfig, "max_results must be between 1 and 50",
			goerr.V("max_results", c.MaxResults))
	}
	if c.GroundingThreshold < 0.0 || c.GroundingThreshold > 1.0 {
		return goerr.Wrap(ErrInvalidConfig, "grounding_threshold must be between 0.0 and 1.0",
			goerr.V("grounding_threshold", c.GroundingThreshold))
	}
	if c.TimeoutSecs < 1 {
		return goerr.Wrap(ErrInvalidConfig, "timeout_secs must be positive",
			goerr.V("timeout_secs", c.TimeoutSecs))
	}
	return nil
}

// Timeout returns the retrieval request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// FromEnv builds a Config from environment variables and validates it.
func FromEnv() (*Config, error) {
	cfg := &Config{
		ProjectID:          os.Getenv("GOOGLE_CLOUD_PROJECT"),
		SearchEngineID:     os.Getenv("VERTEX_SEARCH_ENGINE_ID"),
		Location:           os.Getenv("VERTEX_LOCATION"),
		GroundingThreshold: DefaultGroundingThreshold,
		SearchType:         os.Getenv("VERTEX_SEARCH_TYPE"),
	}

	if v := os.Getenv("VERTEX_MAX_RESULTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "VERTEX_MAX_RESULTS must be an integer", goerr.V("value", v))
		}
		cfg.MaxResults = n
	}
	if v := os.Getenv("VERTEX_GROUNDING_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "VERTEX_GROUNDING_THRESHOLD must be a number", goerr.V("value", v))
		}
		cfg.GroundingThreshold = f
	}
	if v := os.Getenv("VERTEX_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "VERTEX_TIMEOUT must be an integer", goerr.V("value", v))
		}
		cfg.TimeoutSecs = n
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a YAML config file, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	// Zero is a valid threshold, so the default is set before decoding
	// instead of patched in afterwards. Absent keys leave it untouched.
	cfg := Config{GroundingThreshold: DefaultGroundingThreshold}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", path))
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteTemplate writes a YAML config template with default values to path.
func WriteTemplate(path string) error {
	tmpl := &Config{
		ProjectID:          "your-project-id",
		SearchEngineID:     "your-search-engine-id",
		GroundingThreshold: DefaultGroundingThreshold,
	}
	applyDefaults(tmpl)

	data, err := yaml.Marshal(tmpl)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal config template")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write config template", goerr.V("path", path))
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Location == "" {
		cfg.Location = DefaultLocation
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.SearchType == "" {
		cfg.SearchType = DefaultSearchType
	}
	if cfg.TimeoutSecs == 0 {
		cfg.TimeoutSecs = DefaultTimeoutSecs
	}
}
