package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var validDepths = map[string]struct{}{
	"scan":    {},
	"quick":   {},
	"default": {},
	"deep":    {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateQuality(); err != nil {
		return err
	}
	if err := c.validateTopics(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.VaultDir) == "" {
		return errors.New("paths.vault_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DailiesFolder) == "" {
		return errors.New("paths.dailies_folder must be set")
	}
	if strings.TrimSpace(c.Paths.LibraryFolder) == "" {
		return errors.New("paths.library_folder must be set")
	}
	return nil
}

func (c *Config) validateScan() error {
	if _, ok := validDepths[c.Scan.Depth]; !ok {
		return fmt.Errorf("scan.depth %q is not one of scan, quick, default, deep", c.Scan.Depth)
	}
	if err := ensurePositiveMap(map[string]int{
		"scan.window_days":         c.Scan.WindowDays,
		"scan.items_per_topic":     c.Scan.ItemsPerTopic,
		"scan.reading_list_max":    c.Scan.ReadingListMax,
		"provider.timeout_seconds": c.Provider.TimeoutSeconds,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateQuality() error {
	if c.Quality.TitleMatchRatio <= 0 || c.Quality.TitleMatchRatio > 1 {
		return errors.New("quality.title_match_threshold must be between 0 and 1")
	}
	if c.Quality.MaxScore <= 0 {
		return errors.New("quality.max_score must be positive")
	}
	if c.Quality.MinPostLikes < 0 {
		return errors.New("quality.min_post_likes must be >= 0")
	}
	if c.Quality.MinThreadScore < 0 {
		return errors.New("quality.min_thread_score must be >= 0")
	}
	for _, cp := range c.Quality.ClaimPatterns {
		if strings.TrimSpace(cp.ClaimRegex) == "" {
			return errors.New("quality.claim_patterns entries must set claim_regex")
		}
		if len(cp.AllowedDomains) == 0 {
			return fmt.Errorf("quality.claim_patterns entry %q must list allowed_domains", cp.ClaimRegex)
		}
	}
	return nil
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func (c *Config) validateTopics() error {
	seen := make(map[string]struct{}, len(c.Topics))
	for _, topic := range c.Topics {
		slug := strings.TrimSpace(topic.Slug)
		if slug == "" {
			return errors.New("topics entries must set slug")
		}
		if !slugPattern.MatchString(slug) {
			return fmt.Errorf("topic slug %q must be lowercase words separated by hyphens", slug)
		}
		if _, dup := seen[slug]; dup {
			return fmt.Errorf("topic slug %q is defined more than once", slug)
		}
		seen[slug] = struct{}{}
		if topic.Weight < 0 {
			return fmt.Errorf("topic %q weight must be >= 0", slug)
		}
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
