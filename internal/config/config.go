// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers defaults, an optional YAML file, and ABALONE_* env vars.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"strings"
)

// Alignment modes accepted by the alignment key.
const (
	AlignmentPaired      = "paired"
	AlignmentIndependent = "independent"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatabaseURL is the connection string of the submission store. Required.
	// Supported schemes: postgres://, postgresql://, sqlite://, file:, memory://.
	DatabaseURL string `koanf:"database_url"`

	// DBMaxConns bounds the store connection pool.
	DBMaxConns int `koanf:"db_max_conns"`

	// ReferenceFile is the CSV holding the correct answers, relative to the
	// deployment root unless absolute.
	ReferenceFile string `koanf:"reference_file"`

	// DataDir holds the downloadable competition datasets.
	DataDir string `koanf:"data_dir"`

	// TargetColumn names the scored CSV column.
	TargetColumn string `koanf:"target_column"`

	// Alignment selects how non-numeric rows are dropped: paired or independent.
	Alignment string `koanf:"alignment"`

	// MaxUploadBytes caps the multipart body of POST /api/upload.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// MaxTeamMembers caps the member list; 0 disables the check.
	MaxTeamMembers int `koanf:"max_team_members"`

	// DailySubmissionLimit caps submissions per team per UTC day; 0 disables it.
	DailySubmissionLimit int `koanf:"daily_submission_limit"`

	// CORSAllowedOrigins lists origins allowed to call the API.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// New creates a Config populated with defaults. DatabaseURL has no default.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		DBMaxConns:           10,
		ReferenceFile:        "data/Correct_output_to_validate.csv",
		DataDir:              "data/public",
		TargetColumn:         "Rings",
		Alignment:            AlignmentPaired,
		MaxUploadBytes:       10 << 20,
		MaxTeamMembers:       4,
		DailySubmissionLimit: 5,
		CORSAllowedOrigins:   []string{"*"},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DatabaseURL) == "":
		return fmt.Errorf("%w: database_url must be set (ABALONE_DATABASE_URL)", ErrInvalidConfig)
	case strings.TrimSpace(c.ReferenceFile) == "":
		return fmt.Errorf("%w: reference_file must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.TargetColumn) == "":
		return fmt.Errorf("%w: target_column must not be empty", ErrInvalidConfig)
	case c.Alignment != AlignmentPaired && c.Alignment != AlignmentIndependent:
		return fmt.Errorf("%w: alignment must be %q or %q, got %q", ErrInvalidConfig, AlignmentPaired, AlignmentIndependent, c.Alignment)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	case c.MaxTeamMembers < 0:
		return fmt.Errorf("%w: max_team_members must not be negative", ErrInvalidConfig)
	case c.DailySubmissionLimit < 0:
		return fmt.Errorf("%w: daily_submission_limit must not be negative", ErrInvalidConfig)
	case c.DBMaxConns <= 0:
		return fmt.Errorf("%w: db_max_conns must be positive", ErrInvalidConfig)
	}
	return nil
}
