package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultVaultDir       = "~/vault"
	defaultDailiesFolder  = "Research/Dailies"
	defaultLibraryFolder  = "Research/Library"
	defaultPostBaseURL    = "https://api.x.ai/v1"
	defaultPostModel      = "grok-4-fast"
	defaultThreadBaseURL  = "https://api.openai.com/v1"
	defaultThreadModel    = "gpt-5-mini"
	defaultSynthModel     = "gpt-5-mini"
	defaultTimeoutSeconds = 180
	defaultWindowDays     = 7
	defaultDepth          = "scan"
	defaultItemsPerTopic  = 8
	defaultReadingListMax = 15
	defaultTitleThreshold = 0.8
	defaultMaxScore       = 100
	defaultFeedMaxItems   = 10
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			VaultDir:      defaultVaultDir,
			DailiesFolder: defaultDailiesFolder,
			LibraryFolder: defaultLibraryFolder,
			StateDir:      defaultStateDir(),
			LogDir:        defaultLogDir(),
		},
		Provider: Provider{
			PostBaseURL:    defaultPostBaseURL,
			PostModel:      defaultPostModel,
			ThreadBaseURL:  defaultThreadBaseURL,
			ThreadModel:    defaultThreadModel,
			SynthModel:     defaultSynthModel,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Scan: Scan{
			WindowDays:     defaultWindowDays,
			Depth:          defaultDepth,
			ItemsPerTopic:  defaultItemsPerTopic,
			ReadingListMax: defaultReadingListMax,
		},
		Quality: Quality{
			SpamEnabled:     true,
			MaxScore:        defaultMaxScore,
			TitleMatchRatio: defaultTitleThreshold,
		},
		Feeds: Feeds{
			MaxItems: defaultFeedMaxItems,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "trawl")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.local/state/trawl"
	}
	return filepath.Join(home, ".local", "state", "trawl")
}

func defaultLogDir() string {
	return filepath.Join(defaultStateDir(), "logs")
}
