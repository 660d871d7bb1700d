package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// SiteConfig describes the scraped portal.
type SiteConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
	// GRPagePath is the page carrying the branch dropdown form.
	GRPagePath string `yaml:"gr_page_path"`
	// LanguageValue selects the form language (1=English, 2=Gujarati).
	LanguageValue string `yaml:"language_value"`
}

// PageConfig is one known listing page to scan for PDF links.
type PageConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// BranchOption is one entry of the server-rendered branch dropdown: the form
// value posted back plus the display name stored on records.
type BranchOption struct {
	Value string `yaml:"value"`
	Name  string `yaml:"name"`
}

// LogicConfig tunes the pipeline's timeouts, politeness delays and quotas.
type LogicConfig struct {
	PageTimeoutSec   int  `yaml:"page_timeout_sec"`
	HeadTimeoutSec   int  `yaml:"head_timeout_sec"`
	GetTimeoutSec    int  `yaml:"get_timeout_sec"`
	PageDelayMS      int  `yaml:"page_delay_ms"`
	DocumentDelayMS  int  `yaml:"document_delay_ms"`
	TargetPerBranch  int  `yaml:"target_per_branch"`
	BranchSkipAt     int  `yaml:"branch_skip_at"`
	MaxPerPage       int  `yaml:"max_per_page"`
	VerifyPDFs       bool `yaml:"verify_pdfs"`
	TrackRoutes      bool `yaml:"track_routes"`
	DiscoverPages    bool `yaml:"discover_pages"`
	RespectRobotsTxt bool `yaml:"respect_robots_txt"`
}

// DBConfig holds the MongoDB connection settings.
type DBConfig struct {
	Connection  string `yaml:"connection"`
	Database    string `yaml:"database"`
	Collections struct {
		Documents string `yaml:"documents"`
	} `yaml:"collections"`
}

// BackupConfig controls the local JSON snapshot written after each run.
type BackupConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config is the root of the YAML configuration file.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Logic    LogicConfig    `yaml:"logic"`
	DB       DBConfig       `yaml:"db"`
	Backup   BackupConfig   `yaml:"backup"`
	Logging  LoggingConfig  `yaml:"logging"`
	Pages    []PageConfig   `yaml:"pages"`
	Branches []BranchOption `yaml:"branches"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Site.UserAgent == "" {
		c.Site.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	if c.Site.GRPagePath == "" {
		c.Site.GRPagePath = "/gr.html"
	}
	if c.Site.LanguageValue == "" {
		c.Site.LanguageValue = "1"
	}
	if c.Logic.PageTimeoutSec == 0 {
		c.Logic.PageTimeoutSec = 30
	}
	if c.Logic.HeadTimeoutSec == 0 {
		c.Logic.HeadTimeoutSec = 10
	}
	if c.Logic.GetTimeoutSec == 0 {
		c.Logic.GetTimeoutSec = 15
	}
	if c.Logic.PageDelayMS == 0 {
		c.Logic.PageDelayMS = 2000
	}
	if c.Logic.DocumentDelayMS == 0 {
		c.Logic.DocumentDelayMS = 500
	}
	if c.Logic.TargetPerBranch == 0 {
		c.Logic.TargetPerBranch = 5
	}
	if c.Logic.BranchSkipAt == 0 {
		c.Logic.BranchSkipAt = 10
	}
	if c.Logic.MaxPerPage == 0 {
		c.Logic.MaxPerPage = 10
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = "data_samples"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) validate() error {
	if c.Site.BaseURL == "" {
		return fmt.Errorf("config: site.base_url is required")
	}
	if len(c.Pages) == 0 && len(c.Branches) == 0 {
		return fmt.Errorf("config: at least one of pages or branches must be set")
	}
	return nil
}

// PageTimeout is the listing-page fetch cutoff.
func (c *Config) PageTimeout() time.Duration {
	return time.Duration(c.Logic.PageTimeoutSec) * time.Second
}

// HeadTimeout is the verification HEAD probe cutoff.
func (c *Config) HeadTimeout() time.Duration {
	return time.Duration(c.Logic.HeadTimeoutSec) * time.Second
}

// GetTimeout is the verification GET probe cutoff.
func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.Logic.GetTimeoutSec) * time.Second
}

// PageDelay is the minimum pause between listing-page fetches.
func (c *Config) PageDelay() time.Duration {
	return time.Duration(c.Logic.PageDelayMS) * time.Millisecond
}

// DocumentDelay is the minimum pause between per-document probes.
func (c *Config) DocumentDelay() time.Duration {
	return time.Duration(c.Logic.DocumentDelayMS) * time.Millisecond
}
