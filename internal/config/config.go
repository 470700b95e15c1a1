package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/rafabd1/ceres/pkg/utils"
)

// Package config handles loading, validation, and access to application configuration.
// A Config is built once at startup and treated as read-only afterwards.

// ErrMissingAPIKey is returned when no Gemini credentials are available.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY not provided. Set environment variable or llm.api_key in config")

// Pattern is a deny-list entry: a case-insensitive regular expression and what it blocks.
type Pattern struct {
	Pattern     string `yaml:"pattern"`
	Description string `yaml:"description"`
}

// Config holds the application configuration.
type Config struct {
	LLM struct {
		APIKey    string `yaml:"api_key"`    // Gemini API Key, falls back to GEMINI_API_KEY
		UseADC    bool   `yaml:"use_adc"`    // Use application default credentials instead of a key
		ModelName string `yaml:"model_name"` // e.g., gemini-2.0-flash
	} `yaml:"llm"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Execution struct {
		Timeout                time.Duration `yaml:"timeout"`
		Shell                  string        `yaml:"shell"`
		AppleScriptInterpreter string        `yaml:"applescript_interpreter"`
		TempDir                string        `yaml:"temp_dir,omitempty"` // Empty means os.TempDir()
		WorkDir                string        `yaml:"work_dir,omitempty"` // Empty means the user's home
	} `yaml:"execution"`

	Security struct {
		DangerousPatterns []Pattern `yaml:"dangerous_patterns"`
		SystemPaths       []string  `yaml:"system_paths"`
		DestructiveVerbs  []string  `yaml:"destructive_verbs"`
	} `yaml:"security"`

	Detection struct {
		AppleScriptIndicators []string `yaml:"applescript_indicators"`
		RequestIndicators     []string `yaml:"request_indicators"`
		GUIKeywords           []string `yaml:"gui_keywords"`
		ShellTokens           []string `yaml:"shell_tokens"`
	} `yaml:"detection"`

	// Apps maps a spoken application name to its macOS bundle identifier.
	Apps map[string]string `yaml:"apps"`

	Voice struct {
		Backend      string `yaml:"backend"` // "gemini" or "whisper"
		SampleRate   int    `yaml:"sample_rate"`
		WhisperPath  string `yaml:"whisper_path,omitempty"`
		WhisperModel string `yaml:"whisper_model,omitempty"`
	} `yaml:"voice"`

	Log struct {
		Level       string `yaml:"level,omitempty"` // debug, info, warn or error
		ContextFile string `yaml:"context_file,omitempty"`
	} `yaml:"log,omitempty"`
}

const (
	defaultConfigDirName  = ".ceres"
	defaultConfigFileName = "config.yaml"
	apiKeyEnv             = "GEMINI_API_KEY"
)

// Load tries to load configuration from standard locations.
// Priority: explicit path, ./{fileName}, ~/{dirName}/{fileName}
func Load(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		cfg, err := loadFromFile(explicitPath)
		if err != nil {
			return nil, errors.Wrapf(err, "error reading config from %s", explicitPath)
		}
		return finish(cfg)
	}

	// 1. Check current directory
	cfg, err := loadFromFile(defaultConfigFileName)
	if err == nil {
		fmt.Printf("Configuration loaded from: %s\n", defaultConfigFileName)
		return finish(cfg)
	}
	if !os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Wrapf(err, "error reading config from %s", defaultConfigFileName)
	}

	// 2. Check home directory
	homeConfigPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	cfg, err = loadFromFile(homeConfigPath)
	if err == nil {
		fmt.Printf("Configuration loaded from: %s\n", homeConfigPath)
		return finish(cfg)
	}
	if !os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Wrapf(err, "error reading config from %s", homeConfigPath)
	}

	// 3. No config file found, fall back to defaults
	fmt.Println("Warning: No config file found. Using default settings.")
	return finish(&Config{})
}

// Default returns a fully defaulted configuration without touching the filesystem.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// DefaultPath returns ~/.ceres/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "could not get user home directory")
	}
	return filepath.Join(homeDir, defaultConfigDirName, defaultConfigFileName), nil
}

// Write serializes cfg as YAML to path, creating parent directories.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o600), "failed to write config %s", path)
}

func finish(cfg *Config) (*Config, error) {
	applyDefaults(cfg)
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv(apiKeyEnv)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err // Propagate error (including os.IsNotExist)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config yaml %s", filePath)
	}
	return &cfg, nil
}

// Validate checks values that have no safe interpretation.
func (c *Config) Validate() error {
	if c.Execution.Timeout <= 0 {
		return errors.Errorf("execution.timeout must be positive, got %s", c.Execution.Timeout)
	}
	if c.Execution.AppleScriptInterpreter == "" {
		return errors.New("execution.applescript_interpreter must not be empty")
	}
	if c.Execution.Shell == "" {
		return errors.New("execution.shell must not be empty")
	}
	switch c.Voice.Backend {
	case VoiceGemini, VoiceWhisper:
	default:
		return errors.Errorf("voice.backend must be %q or %q, got %q", VoiceGemini, VoiceWhisper, c.Voice.Backend)
	}
	if c.Voice.SampleRate <= 0 {
		return errors.Errorf("voice.sample_rate must be positive, got %d", c.Voice.SampleRate)
	}
	if !utils.ValidLogLevel(c.Log.Level) {
		return errors.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// APIKey returns the Gemini key, or ErrMissingAPIKey when none is configured
// and application default credentials were not requested.
func (c *Config) APIKey() (string, error) {
	if c.LLM.APIKey == "" && !c.LLM.UseADC {
		return "", ErrMissingAPIKey
	}
	return c.LLM.APIKey, nil
}

// HomeDir resolves the working directory for spawned commands.
func (c *Config) HomeDir() string {
	if c.Execution.WorkDir != "" {
		return c.Execution.WorkDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/"
	}
	return home
}
