package config

import (
	"fmt"
	"os"
	"path"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProvider()
	c.normalizeScan()
	c.normalizeQuality()
	c.normalizeFeeds()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.VaultDir) == "" {
		c.Paths.VaultDir = defaultVaultDir
	}
	if c.Paths.VaultDir, err = expandPath(c.Paths.VaultDir); err != nil {
		return fmt.Errorf("paths.vault_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir()
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	// Vault folders are vault-relative and always use forward slashes,
	// matching how Obsidian-style vaults link between notes.
	c.Paths.DailiesFolder = normalizeFolder(c.Paths.DailiesFolder, defaultDailiesFolder)
	c.Paths.LibraryFolder = normalizeFolder(c.Paths.LibraryFolder, defaultLibraryFolder)
	return nil
}

func normalizeFolder(value, fallback string) string {
	cleaned := strings.Trim(strings.TrimSpace(value), "/")
	if cleaned == "" {
		return fallback
	}
	return path.Clean(cleaned)
}

func (c *Config) normalizeProvider() {
	c.Provider.PostAPIKey = strings.TrimSpace(c.Provider.PostAPIKey)
	if c.Provider.PostAPIKey == "" {
		if value, ok := os.LookupEnv("XAI_API_KEY"); ok {
			c.Provider.PostAPIKey = strings.TrimSpace(value)
		}
	}
	c.Provider.ThreadAPIKey = strings.TrimSpace(c.Provider.ThreadAPIKey)
	if c.Provider.ThreadAPIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Provider.ThreadAPIKey = strings.TrimSpace(value)
		}
	}
	c.Provider.PostBaseURL = strings.TrimRight(strings.TrimSpace(c.Provider.PostBaseURL), "/")
	if c.Provider.PostBaseURL == "" {
		c.Provider.PostBaseURL = defaultPostBaseURL
	}
	c.Provider.ThreadBaseURL = strings.TrimRight(strings.TrimSpace(c.Provider.ThreadBaseURL), "/")
	if c.Provider.ThreadBaseURL == "" {
		c.Provider.ThreadBaseURL = defaultThreadBaseURL
	}
	c.Provider.PostModel = strings.TrimSpace(c.Provider.PostModel)
	if c.Provider.PostModel == "" {
		c.Provider.PostModel = defaultPostModel
	}
	c.Provider.ThreadModel = strings.TrimSpace(c.Provider.ThreadModel)
	if c.Provider.ThreadModel == "" {
		c.Provider.ThreadModel = defaultThreadModel
	}
	c.Provider.SynthModel = strings.TrimSpace(c.Provider.SynthModel)
	if c.Provider.SynthModel == "" {
		c.Provider.SynthModel = c.Provider.ThreadModel
	}
	if c.Provider.TimeoutSeconds <= 0 {
		c.Provider.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (c *Config) normalizeScan() {
	c.Scan.Depth = strings.ToLower(strings.TrimSpace(c.Scan.Depth))
	if c.Scan.Depth == "" {
		c.Scan.Depth = defaultDepth
	}
	if c.Scan.WindowDays <= 0 {
		c.Scan.WindowDays = defaultWindowDays
	}
	if c.Scan.ItemsPerTopic <= 0 {
		c.Scan.ItemsPerTopic = defaultItemsPerTopic
	}
	if c.Scan.ReadingListMax <= 0 {
		c.Scan.ReadingListMax = defaultReadingListMax
	}
}

func (c *Config) normalizeQuality() {
	if c.Quality.MaxScore <= 0 {
		c.Quality.MaxScore = defaultMaxScore
	}
	if c.Quality.TitleMatchRatio == 0 {
		c.Quality.TitleMatchRatio = defaultTitleThreshold
	}
	if c.Quality.LongFormBonus < 0 {
		c.Quality.LongFormBonus = 0
	}
	if c.Quality.PriorityBonus < 0 {
		c.Quality.PriorityBonus = 0
	}
}

func (c *Config) normalizeFeeds() {
	urls := make([]string, 0, len(c.Feeds.URLs))
	for _, raw := range c.Feeds.URLs {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		urls = append(urls, trimmed)
	}
	c.Feeds.URLs = urls
	if c.Feeds.MaxItems <= 0 {
		c.Feeds.MaxItems = defaultFeedMaxItems
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
