package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.Suffixes().Validate(); err != nil {
		return fmt.Errorf("artifacts: %w", err)
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if c.Journal.KeepRuns < 0 {
		return fmt.Errorf("journal.keep_runs must not be negative (got %d)", c.Journal.KeepRuns)
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.Root) == "" {
		return errors.New("paths.root must be set")
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateMatching() error {
	switch c.Matching.Scorer {
	case "aligned", "tokens":
		return nil
	default:
		return fmt.Errorf("matching.scorer: unsupported value %q (want aligned or tokens)", c.Matching.Scorer)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
