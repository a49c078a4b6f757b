package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/byte4ever/integrity_check/report"
	"github.com/byte4ever/integrity_check/snapshot"
)

// Config holds the settings of an integrity check run.
type Config struct {
	// StorePath is the location of the baseline record.
	StorePath string `yaml:"store_path"`

	// Format selects the report renderer.
	Format string `yaml:"format"`

	// Template is the line template for the template
	// format.
	Template string `yaml:"template"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		StorePath: snapshot.DefaultPath,
		Format:    string(report.FormatText),
	}
}

// Load reads the YAML file at path over the defaults. An
// empty path returns the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	const errCtx = "loading config"

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := yaml.UnmarshalWithOptions(
		data, &cfg, yaml.DisallowUnknownField(),
	); err != nil {
		return Config{}, fmt.Errorf(
			"%s: %s: %w", errCtx, path, err,
		)
	}

	return cfg, nil
}

// Validate checks that the settings can be used together.
func (c Config) Validate() error {
	const errCtx = "validating config"

	if c.StorePath == "" {
		return fmt.Errorf("%s: store path is empty", errCtx)
	}

	fo, err := report.ParseFormat(c.Format)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if fo == report.FormatTemplate && c.Template == "" {
		return fmt.Errorf(
			"%s: %w", errCtx, errMissingTemplate,
		)
	}

	return nil
}

// ReportOptions converts the report settings. Call Validate
// first.
func (c Config) ReportOptions() report.Options {
	fo, _ := report.ParseFormat(c.Format) //nolint:errcheck // validated

	return report.Options{
		Format:   fo,
		Template: c.Template,
	}
}

var errMissingTemplate = errors.New(
	"template format requires a template",
)
