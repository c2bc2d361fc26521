package config

import "stagehand/internal/artifact"

const (
	defaultConfigPath = "~/.config/stagehand/config.toml"
	defaultRoot       = "~/podcasts"
	defaultCatalog    = "~/podcasts/catalog.csv"
	defaultScorer     = "aligned"
	defaultLogFormat  = "auto"
	defaultLogLevel   = "info"
	defaultKeepRuns   = 200
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	suffixes := artifact.DefaultSuffixes()
	return Config{
		Paths: Paths{
			Root:     defaultRoot,
			Catalog:  defaultCatalog,
			StateDir: defaultStateDir(),
		},
		Artifacts: Artifacts{
			AudioSuffix:       suffixes.Audio,
			DiarizationSuffix: suffixes.Diarization,
			TranscriptSuffix:  suffixes.Transcript,
			LegacySuffixes:    suffixes.Legacy,
		},
		Matching: Matching{Scorer: defaultScorer},
		Gate:     Gate{Denylist: DefaultDenylist()},
		Journal:  Journal{Enabled: true, KeepRuns: defaultKeepRuns},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// DefaultDenylist returns the live-stream markers producers skip.
func DefaultDenylist() []string {
	return []string{"livestream", "live stream", "live"}
}
