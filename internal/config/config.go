package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for Lexol.
type Config struct {
	General  GeneralConfig  `json:"general" yaml:"general"`
	Discord  DiscordConfig  `json:"discord" yaml:"discord"`
	Backends BackendsConfig `json:"backends" yaml:"backends"`
	Chatbot  ChatbotConfig  `json:"chatbot" yaml:"chatbot"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
}

type GeneralConfig struct {
	LogLevel string `json:"logLevel" yaml:"logLevel"`
	DBPath   string `json:"dbPath" yaml:"dbPath"`
}

type DiscordConfig struct {
	Token string `json:"token" yaml:"token"`
	// GuildID restricts the bot to one guild when set (useful for testing;
	// slash commands register instantly on a single guild).
	GuildID string `json:"guildId,omitempty" yaml:"guildId,omitempty"`
}

// BackendsConfig configures the model-inference HTTP backends.
type BackendsConfig struct {
	Completion CompletionBackend `json:"completion" yaml:"completion"`
	Caption    CaptionBackend    `json:"caption" yaml:"caption"`
	Image      ImageBackend      `json:"image" yaml:"image"`
}

type CompletionBackend struct {
	APIBase string `json:"apiBase" yaml:"apiBase"`
	APIKey  string `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
}

type CaptionBackend struct {
	Endpoint       string `json:"endpoint" yaml:"endpoint"`
	APIKey         string `json:"apiKey" yaml:"apiKey"`
	TimeoutSeconds int    `json:"timeoutSeconds" yaml:"timeoutSeconds"`
}

type ImageBackend struct {
	APIBase string `json:"apiBase" yaml:"apiBase"`
	APIKey  string `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
}

// ChatbotConfig carries the platform constraints the pipeline depends on.
// MaxInlineLen is the platform's hard message-length limit; replies longer
// than it ship as a file instead.
type ChatbotConfig struct {
	ChannelName     string `json:"channelName" yaml:"channelName"`
	SlowmodeSeconds int    `json:"slowmodeSeconds" yaml:"slowmodeSeconds"`
	MaxInlineLen    int    `json:"maxInlineLen" yaml:"maxInlineLen"`
	ReplyFilename   string `json:"replyFilename" yaml:"replyFilename"`
}

type MetricsConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// Matches ${VAR} and ${VAR:-default}
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lexol"
	}
	return filepath.Join(home, ".lexol")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// Load reads and validates a config file. Both JSON and YAML files are
// accepted, selected by extension (.yaml/.yml → YAML, anything else JSON).
// Values start from Defaults(), so a partial file is fine.
func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
		}
	}

	cfg.General.DBPath = ExpandPath(cfg.General.DBPath)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// ExpandEnvVars substitutes ${VAR} and ${VAR:-default} references.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // Keep original if no env var and no default
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Chatbot.MaxInlineLen < 1 {
		errs = append(errs, "chatbot.maxInlineLen must be positive")
	}
	if cfg.Chatbot.SlowmodeSeconds < 0 {
		errs = append(errs, "chatbot.slowmodeSeconds cannot be negative")
	}
	if cfg.Chatbot.ChannelName == "" {
		errs = append(errs, "chatbot.channelName cannot be empty")
	}
	if cfg.Chatbot.ReplyFilename == "" {
		errs = append(errs, "chatbot.replyFilename cannot be empty")
	}
	if cfg.Backends.Caption.TimeoutSeconds < 1 {
		errs = append(errs, "backends.caption.timeoutSeconds must be positive")
	}
	if cfg.General.DBPath == "" {
		errs = append(errs, "general.dbPath cannot be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
