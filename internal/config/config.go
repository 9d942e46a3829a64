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

	"trawl/internal/quality"
	"trawl/internal/topics"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains vault and state directory configuration.
type Paths struct {
	VaultDir      string `toml:"vault_dir"`
	DailiesFolder string `toml:"dailies_folder"`
	LibraryFolder string `toml:"library_folder"`
	StateDir      string `toml:"state_dir"`
	LogDir        string `toml:"log_dir"`
}

// Provider contains connection settings for the generative search providers.
type Provider struct {
	// Post search: a Responses-style API with a live post-search tool.
	PostAPIKey  string `toml:"post_api_key"`
	PostBaseURL string `toml:"post_base_url"`
	PostModel   string `toml:"post_model"`

	// Thread search: a chat-completions API with a web-search tool.
	ThreadAPIKey  string `toml:"thread_api_key"`
	ThreadBaseURL string `toml:"thread_base_url"`
	ThreadModel   string `toml:"thread_model"`

	// SynthModel produces the daily briefing from scan results.
	SynthModel     string `toml:"synth_model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Scan contains pipeline window and output sizing.
type Scan struct {
	WindowDays     int    `toml:"window_days"`
	Depth          string `toml:"depth"`
	ItemsPerTopic  int    `toml:"items_per_topic"`
	ReadingListMax int    `toml:"reading_list_max"`
}

// ClaimPattern mirrors quality.ClaimPattern for TOML decoding.
type ClaimPattern struct {
	ClaimRegex     string   `toml:"claim_regex"`
	AllowedDomains []string `toml:"allowed_domains"`
}

// Quality configures the filter pipeline thresholds. Anything left zero
// disables the corresponding pass.
type Quality struct {
	SpamEnabled       bool           `toml:"spam_enabled"`
	ClaimPatterns     []ClaimPattern `toml:"claim_patterns"`
	BaitPatterns      []string       `toml:"bait_patterns"`
	MinPostLikes      int            `toml:"min_post_likes"`
	MinThreadScore    int            `toml:"min_thread_score"`
	LongFormBonus     float64        `toml:"long_form_bonus"`
	LongFormMinChars  int            `toml:"long_form_min_chars"`
	LongFormDomains   []string       `toml:"long_form_domains"`
	LongTitleMin      int            `toml:"long_title_min"`
	PriorityAuthors   []string       `toml:"priority_authors"`
	PriorityForums    []string       `toml:"priority_forums"`
	PriorityBonus     float64        `toml:"priority_bonus"`
	RecognizedAuthors []string       `toml:"recognized_authors"`
	MaxScore          float64        `toml:"max_score"`
	TitleMatchRatio   float64        `toml:"title_match_threshold"`
}

// Feeds configures the RSS discovery source.
type Feeds struct {
	Enabled  bool     `toml:"enabled"`
	URLs     []string `toml:"urls"`
	MaxItems int      `toml:"max_items"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for trawl.
type Config struct {
	Paths    Paths          `toml:"paths"`
	Provider Provider       `toml:"provider"`
	Scan     Scan           `toml:"scan"`
	Quality  Quality        `toml:"quality"`
	Feeds    Feeds          `toml:"feeds"`
	Topics   []topics.Topic `toml:"topics"`
	Logging  Logging        `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/trawl/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file was actually found; defaults apply either way.
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

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("trawl.toml")
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

// EnsureDirectories creates the state and log directories. The vault
// directory is created best-effort so a detached vault does not block
// read-only commands.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.VaultDir) != "" {
		_ = os.MkdirAll(c.Paths.VaultDir, 0o755)
	}
	return nil
}

// TopicList returns configured topics, or the built-in defaults when the
// config defines none.
func (c *Config) TopicList() []topics.Topic {
	if len(c.Topics) == 0 {
		return topics.Defaults()
	}
	return c.Topics
}

// QualityPolicy converts the TOML quality section into the pipeline policy.
func (c *Config) QualityPolicy() *quality.Policy {
	q := c.Quality
	policy := &quality.Policy{
		SpamEnabled:       q.SpamEnabled,
		BaitPatterns:      q.BaitPatterns,
		MinPostLikes:      q.MinPostLikes,
		MinThreadScore:    q.MinThreadScore,
		LongFormBonus:     q.LongFormBonus,
		LongFormMinChars:  q.LongFormMinChars,
		LongFormDomains:   q.LongFormDomains,
		LongTitleMin:      q.LongTitleMin,
		PriorityAuthors:   q.PriorityAuthors,
		PriorityForums:    q.PriorityForums,
		PriorityBonus:     q.PriorityBonus,
		RecognizedAuthors: q.RecognizedAuthors,
		MaxScore:          q.MaxScore,
		TitleThreshold:    q.TitleMatchRatio,
	}
	for _, cp := range q.ClaimPatterns {
		policy.ClaimPatterns = append(policy.ClaimPatterns, quality.ClaimPattern{
			ClaimRegex:     cp.ClaimRegex,
			AllowedDomains: cp.AllowedDomains,
		})
	}
	return policy
}

// CreateSample writes a sample configuration file to the given location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
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
