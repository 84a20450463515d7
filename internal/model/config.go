package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InterestProfile is the operator's configuration snapshot: the topics that
// make a role interesting, prose describing them, whether the operator is
// currently looking, and the name used to sign replies. Loaded once at
// startup and passed explicitly into every component that needs it.
type InterestProfile struct {
	// Topics is the ordered set of keyword phrases the classifier matches
	// against message content.
	Topics []string `mapstructure:"topics" yaml:"topics"`

	// TopicDescription is used verbatim in generated reply prose
	// (e.g. "roles focused on climate change and environmental impact").
	TopicDescription string `mapstructure:"topic_description" yaml:"topic_description"`

	// CurrentlyLooking reports whether the operator is actively looking
	// for new opportunities.
	CurrentlyLooking bool `mapstructure:"currently_looking" yaml:"currently_looking"`

	// Name is the operator's display name, used to sign replies.
	Name string `mapstructure:"name" yaml:"name"`
}

// IMAPConfig holds the mail server settings.
type IMAPConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`

	// DraftsMailbox is where composed drafts are appended.
	DraftsMailbox string `mapstructure:"drafts_mailbox" yaml:"drafts_mailbox"`
}

// LLMConfig holds settings for the language-model backend.
type LLMConfig struct {
	// ClassifyModel answers the structured classification and extraction
	// calls; GenerateModel writes reply prose.
	ClassifyModel string `mapstructure:"classify_model" yaml:"classify_model"`
	GenerateModel string `mapstructure:"generate_model" yaml:"generate_model"`
	MaxTokens     int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// ScanConfig controls the triage scan loop.
type ScanConfig struct {
	// BatchLimit caps how many unread messages one scan processes.
	BatchLimit int `mapstructure:"batch_limit" yaml:"batch_limit"`

	// IntervalSec enables periodic scanning when greater than zero;
	// zero means a single scan per invocation.
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Profile InterestProfile `mapstructure:"profile" yaml:"profile"`
	IMAP    IMAPConfig      `mapstructure:"imap" yaml:"imap"`
	LLM     LLMConfig       `mapstructure:"llm" yaml:"llm"`
	Scan    ScanConfig      `mapstructure:"scan" yaml:"scan"`

	// DBPath is the SQLite audit database location.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailtriage/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailtriage", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Profile: InterestProfile{
			Topics: []string{
				"climate change", "sustainability", "environmental impact",
			},
			TopicDescription: "roles focused on climate change and environmental impact",
			CurrentlyLooking: false,
		},
		IMAP: IMAPConfig{
			Host:          "imap.gmail.com",
			Port:          "993",
			TLS:           true,
			DraftsMailbox: "Drafts",
		},
		LLM: LLMConfig{
			ClassifyModel: "claude-haiku-4-5-20251001",
			GenerateModel: "claude-sonnet-4-5-20250929",
			MaxTokens:     1024,
		},
		Scan: ScanConfig{
			BatchLimit: 10,
		},
		DBPath: "mailtriage.db",
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns the default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("imap.host", "imap.gmail.com")
	v.SetDefault("imap.port", "993")
	v.SetDefault("imap.tls", true)
	v.SetDefault("imap.drafts_mailbox", "Drafts")
	v.SetDefault("llm.classify_model", "claude-haiku-4-5-20251001")
	v.SetDefault("llm.generate_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("scan.batch_limit", 10)
	v.SetDefault("scan.interval_sec", 0)
	v.SetDefault("db_path", "mailtriage.db")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that the profile fields required by classification and
// reply generation are present.
func (c *AppConfig) Validate() error {
	if len(c.Profile.Topics) == 0 {
		return fmt.Errorf("profile.topics must not be empty")
	}
	for i, t := range c.Profile.Topics {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("profile.topics[%d] is blank", i)
		}
	}
	if strings.TrimSpace(c.Profile.TopicDescription) == "" {
		return fmt.Errorf("profile.topic_description must not be empty")
	}
	if strings.TrimSpace(c.Profile.Name) == "" {
		return fmt.Errorf("profile.name must not be empty")
	}
	if c.Scan.BatchLimit < 1 {
		return fmt.Errorf("scan.batch_limit must be at least 1")
	}
	return nil
}
