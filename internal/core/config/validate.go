package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/colonyops/vbisect/internal/core/bisect"
	"github.com/colonyops/vbisect/internal/core/version"
	"github.com/colonyops/vbisect/pkg/tmpl"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// template syntax, glob patterns, and file accessibility. The configPath argument
// specifies the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateCatalog(),
		c.validateTemplates(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Commands.Activate == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Commands",
			Item:     "activate",
			Message:  "no activate command; versions are only recorded, never installed",
		})
	}

	if c.Catalog.ReleasesURL == "" && len(c.Catalog.Local) == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Catalog",
			Item:     "releases_url",
			Message:  "remote fetching disabled and no local versions; only the bundled snapshot is available",
		})
	}

	return warnings
}

// validateFileAccess checks config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func isHTTPURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// validateCatalog checks the releases URL, glob patterns and local versions.
func (c *Config) validateCatalog() error {
	var errs criterio.FieldErrorsBuilder

	if err := isHTTPURL(c.Catalog.ReleasesURL); err != nil {
		errs = errs.Append("catalog.releases_url", err)
	}

	for i, pattern := range c.Catalog.Include {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("catalog.include[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}
	for i, pattern := range c.Catalog.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("catalog.exclude[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}

	for i, raw := range c.Catalog.Local {
		if _, err := version.Parse(raw, version.SourceLocal); err != nil {
			errs = errs.Append(fmt.Sprintf("catalog.local[%d]", i), err)
		}
	}

	return errs.ToError()
}

// validateTemplates checks command and compare URL templates render
// against sample data.
func (c *Config) validateTemplates() error {
	var errs criterio.FieldErrorsBuilder

	sample := c.CommandDataFor(version.MustParse("30.0.0", version.SourceRemote))
	for field, tplStr := range map[string]string{
		"commands.activate": c.Commands.Activate,
		"commands.test":     c.Commands.Test,
	} {
		if tplStr == "" {
			continue
		}
		if err := tmpl.Check(tplStr, sample); err != nil {
			errs = errs.Append(field, fmt.Errorf("template error: %w", err))
		}
	}

	result := bisect.Result{
		Good: version.MustParse("30.0.0", version.SourceRemote),
		Bad:  version.MustParse("30.0.1", version.SourceRemote),
	}
	if _, err := result.CompareURL(c.Bisect.CompareURL); err != nil {
		errs = errs.Append("bisect.compare_url", fmt.Errorf("template error: %w", err))
	}

	return errs.ToError()
}
