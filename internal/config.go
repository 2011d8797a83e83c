package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/graph"
	"github.com/starford/ansuz/internal/rules"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Corpus CorpusConfig      `yaml:"corpus"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Rules  RulesConfig       `yaml:"rules"`
	Risk   RiskConfig        `yaml:"risk"`
	Output OutputConfig      `yaml:"output"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Corpus.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Risk.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration (serve mode only).
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CorpusConfig holds the path to the decision record directory.
type CorpusConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the corpus configuration.
func (c *CorpusConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// RulesConfig points at an external linkage-rule file. When Path is empty
// the compiled-in default rule set is used.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// Load returns the configured rule set.
func (c *RulesConfig) Load() (*rules.Set, error) {
	if c.Path == "" {
		return rules.Default(), nil
	}
	return rules.Load(c.Path)
}

// RiskConfig tunes the impact-scoring heuristic. Zero values fall back to
// the standard constants.
type RiskConfig struct {
	DirectWeight    int      `yaml:"direct_weight"`
	CriticalBonus   int      `yaml:"critical_bonus"`
	HighThreshold   int      `yaml:"high_threshold"`
	MediumThreshold int      `yaml:"medium_threshold"`
	CriticalScopes  []string `yaml:"critical_scopes"`
}

// Validate validates the risk configuration.
func (c *RiskConfig) Validate() error {
	if c.HighThreshold != 0 && c.MediumThreshold != 0 && c.HighThreshold < c.MediumThreshold {
		return fmt.Errorf("risk: high_threshold (%d) must be >= medium_threshold (%d)", c.HighThreshold, c.MediumThreshold)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.DirectWeight, validation.Min(0)),
		validation.Field(&c.CriticalBonus, validation.Min(0)),
		validation.Field(&c.HighThreshold, validation.Min(0)),
		validation.Field(&c.MediumThreshold, validation.Min(0)),
	)
}

// Scoring converts the config into the graph package's scoring knobs.
func (c *RiskConfig) Scoring() graph.Scoring {
	s := graph.DefaultScoring()
	if c.DirectWeight > 0 {
		s.DirectWeight = c.DirectWeight
	}
	if c.CriticalBonus > 0 {
		s.CriticalBonus = c.CriticalBonus
	}
	if c.HighThreshold > 0 {
		s.HighThreshold = c.HighThreshold
	}
	if c.MediumThreshold > 0 {
		s.MediumThreshold = c.MediumThreshold
	}
	if len(c.CriticalScopes) > 0 {
		s.CriticalScopes = c.CriticalScopes
	}
	return s
}

// OutputConfig holds the one-shot analysis output paths.
type OutputConfig struct {
	ReportPath string `yaml:"report_path"`
	DOTPath    string `yaml:"dot_path"`
}

// AuthConfig holds authentication configuration for serve mode.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Corpus: CorpusConfig{
			Path: "./docs/adr",
		},
		SQLite: SQLiteConfig{
			Path: "./ansuz.db",
		},
		Output: OutputConfig{
			ReportPath: "adr-analysis-report.json",
			DOTPath:    "adr-dependencies.dot",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
