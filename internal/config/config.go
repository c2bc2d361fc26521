package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"stagehand/internal/artifact"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths locates the artifact tree, the catalog and local state.
type Paths struct {
	Root     string `toml:"root"`
	Catalog  string `toml:"catalog"`
	StateDir string `toml:"state_dir"`
}

// Artifacts holds the filename suffix of each pipeline stage.
type Artifacts struct {
	AudioSuffix       string   `toml:"audio_suffix"`
	DiarizationSuffix string   `toml:"diarization_suffix"`
	TranscriptSuffix  string   `toml:"transcript_suffix"`
	LegacySuffixes    []string `toml:"legacy_suffixes"`
}

// Matching selects how loose artifacts are matched to catalog titles.
type Matching struct {
	Scorer string `toml:"scorer"`
}

// Gate configures the processing gate consulted by producers.
type Gate struct {
	Denylist []string `toml:"denylist"`
}

// GC configures stage garbage collection.
type GC struct {
	DryRun bool `toml:"dry_run"`
}

// Journal configures the SQLite event journal.
type Journal struct {
	Enabled bool `toml:"enabled"`
	// KeepRuns bounds how many runs are retained; 0 keeps everything.
	KeepRuns int `toml:"keep_runs"`
}

// Metrics configures the Prometheus textfile export.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// File additionally writes JSON logs to state_dir/stagehand.log.
	File bool `toml:"file"`
}

// Config encapsulates all configuration values for stagehand.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Artifacts Artifacts `toml:"artifacts"`
	Matching  Matching  `toml:"matching"`
	Gate      Gate      `toml:"gate"`
	GC        GC        `toml:"gc"`
	Journal   Journal   `toml:"journal"`
	Metrics   Metrics   `toml:"metrics"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("stagehand.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory. The artifact root is owned by
// the producers and is never created here.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.StateDir, err)
	}
	if textfile := strings.TrimSpace(c.Metrics.Textfile); textfile != "" {
		if err := os.MkdirAll(filepath.Dir(textfile), 0o755); err != nil {
			return fmt.Errorf("create metrics directory: %w", err)
		}
	}
	return nil
}

// Suffixes returns the configured stage suffixes.
func (c *Config) Suffixes() artifact.Suffixes {
	legacy := make([]string, len(c.Artifacts.LegacySuffixes))
	copy(legacy, c.Artifacts.LegacySuffixes)
	return artifact.Suffixes{
		Audio:       c.Artifacts.AudioSuffix,
		Diarization: c.Artifacts.DiarizationSuffix,
		Transcript:  c.Artifacts.TranscriptSuffix,
		Legacy:      legacy,
	}
}

// LockPath is the file guarding against concurrent passes over the tree.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "pass.lock")
}

// JournalPath is the SQLite journal database.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.StateDir, "journal.db")
}

// LogPath is the JSON log file written when logging.file is enabled.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, "stagehand.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "stagehand")
	}
	return "~/.local/state/stagehand"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Sample returns the embedded sample configuration.
func Sample() string {
	return sampleConfig
}
