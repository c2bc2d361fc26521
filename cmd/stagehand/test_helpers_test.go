package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"stagehand/internal/config"
	"stagehand/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	root       string
}

// setupCLITestEnv writes a config for a temp tree whose catalog holds one
// title and whose root holds that title's audio in a channel directory.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	for _, env := range []string{"STAGEHAND_ROOT", "STAGEHAND_CATALOG", "STAGEHAND_STATE_DIR", "STAGEHAND_LOG_LEVEL"} {
		t.Setenv(env, "")
	}

	opts = append([]testsupport.ConfigOption{
		testsupport.WithCatalog([3]string{"Episode One", "2023-01-02T10:00:00Z", "abc"}),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"
	testsupport.WriteText(t, filepath.Join(cfg.Paths.Root, "@chan", "Episode One.mp3"), "audio")

	configPath := filepath.Join(testsupport.BaseDir(cfg), "stagehand.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, root: cfg.Paths.Root}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
