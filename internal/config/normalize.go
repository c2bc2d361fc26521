package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnv()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeArtifacts()
	c.normalizeGate()
	c.normalizeLogging()
	c.Matching.Scorer = strings.ToLower(strings.TrimSpace(c.Matching.Scorer))
	if c.Matching.Scorer == "" {
		c.Matching.Scorer = defaultScorer
	}
	return nil
}

// applyEnv lets STAGEHAND_* variables override file values.
func (c *Config) applyEnv() {
	for env, target := range map[string]*string{
		"STAGEHAND_ROOT":      &c.Paths.Root,
		"STAGEHAND_CATALOG":   &c.Paths.Catalog,
		"STAGEHAND_STATE_DIR": &c.Paths.StateDir,
		"STAGEHAND_LOG_LEVEL": &c.Logging.Level,
	} {
		if value, ok := os.LookupEnv(env); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.Root, err = expandPath(strings.TrimSpace(c.Paths.Root)); err != nil {
		return fmt.Errorf("paths.root: %w", err)
	}
	if c.Paths.Catalog, err = expandPath(strings.TrimSpace(c.Paths.Catalog)); err != nil {
		return fmt.Errorf("paths.catalog: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if textfile := strings.TrimSpace(c.Metrics.Textfile); textfile != "" {
		if c.Metrics.Textfile, err = expandPath(textfile); err != nil {
			return fmt.Errorf("metrics.textfile: %w", err)
		}
	} else {
		c.Metrics.Textfile = ""
	}
	return nil
}

func (c *Config) normalizeArtifacts() {
	c.Artifacts.AudioSuffix = strings.TrimSpace(c.Artifacts.AudioSuffix)
	c.Artifacts.DiarizationSuffix = strings.TrimSpace(c.Artifacts.DiarizationSuffix)
	c.Artifacts.TranscriptSuffix = strings.TrimSpace(c.Artifacts.TranscriptSuffix)
	legacy := c.Artifacts.LegacySuffixes[:0]
	for _, suffix := range c.Artifacts.LegacySuffixes {
		if suffix = strings.TrimSpace(suffix); suffix != "" {
			legacy = append(legacy, suffix)
		}
	}
	c.Artifacts.LegacySuffixes = legacy
}

func (c *Config) normalizeGate() {
	denylist := make([]string, 0, len(c.Gate.Denylist))
	seen := make(map[string]struct{}, len(c.Gate.Denylist))
	for _, marker := range c.Gate.Denylist {
		marker = strings.ToLower(strings.TrimSpace(marker))
		if marker == "" {
			continue
		}
		if _, ok := seen[marker]; ok {
			continue
		}
		seen[marker] = struct{}{}
		denylist = append(denylist, marker)
	}
	c.Gate.Denylist = denylist
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
