package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stagehand/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The artifact root is created empty; the catalog path points at a file that
// does not exist until WithCatalog writes it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Root = filepath.Join(base, "tree")
	cfgVal.Paths.Catalog = filepath.Join(base, "catalog.csv")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Logging.Format = "json"

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	if err := os.MkdirAll(cfgVal.Paths.Root, 0o755); err != nil {
		t.Fatalf("create root: %v", err)
	}
	if err := cfgVal.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfgVal
}

// WithCatalog writes rows (title, published_date, id) as the catalog CSV.
func WithCatalog(rows ...[3]string) ConfigOption {
	return func(b *configBuilder) {
		var sb strings.Builder
		sb.WriteString("title,published_date,id\n")
		for _, row := range rows {
			for i, field := range row {
				if i > 0 {
					sb.WriteByte(',')
				}
				sb.WriteByte('"')
				sb.WriteString(strings.ReplaceAll(field, `"`, `""`))
				sb.WriteByte('"')
			}
			sb.WriteByte('\n')
		}
		WriteText(b.t, b.cfg.Paths.Catalog, sb.String())
	}
}

// WithJournal toggles the SQLite journal.
func WithJournal(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = enabled
	}
}

// WithMetricsTextfile enables the Prometheus textfile under the state dir.
func WithMetricsTextfile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Textfile = filepath.Join(b.baseDir, "metrics", "stagehand.prom")
	}
}

// WithGCDryRun sets gc.dry_run.
func WithGCDryRun(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.GC.DryRun = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
