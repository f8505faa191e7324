package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// APIPort and APIPrefix are fixed by the backend deployment; only the host
// varies between installations.
const (
	APIPort   = 8000
	APIPrefix = "/api"
)

// Config holds user preferences
type Config struct {
	Host            string        `yaml:"host" json:"host"`                         // Backend hostname, port and prefix are fixed
	DefaultLanguage string        `yaml:"default_language" json:"default_language"` // Preselected language for new snippets
	ConfirmDelete   bool          `yaml:"confirm_delete" json:"confirm_delete"`     // Require confirmation for delete
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout"`

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`
	LogFile    string `yaml:"log_file" json:"log_file"`
	LogConsole bool   `yaml:"log_console" json:"log_console"`

	// file and env hold the env-overridable fields as read from disk and
	// after applyEnv, so Save can write back what came from the file
	file, env *envFields
}

// envFields are the settings a SNIPVAULT_* variable can override
type envFields struct {
	host       string
	logLevel   string
	logFile    string
	logConsole bool
}

func (c *Config) envFields() *envFields {
	return &envFields{host: c.Host, logLevel: c.LogLevel, logFile: c.LogFile, logConsole: c.LogConsole}
}

// Dir returns the state directory, ~/.snipvault unless SNIPVAULT_HOME is set
func Dir() (string, error) {
	if dir := os.Getenv("SNIPVAULT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".snipvault"), nil
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	logPath := ""
	if dir, err := Dir(); err == nil {
		logPath = filepath.Join(dir, "logs", "snipvault.log")
	}

	return &Config{
		Host:            "localhost",
		DefaultLanguage: "python",
		ConfirmDelete:   true,
		RequestTimeout:  30 * time.Second,
		LogLevel:        "INFO",
		LogFile:         logPath,
		LogConsole:      false,
	}
}

// applyEnv overrides fields from SNIPVAULT_* variables
func (c *Config) applyEnv() {
	c.file = c.envFields()
	defer func() {
		c.env = c.envFields()
	}()

	if v := os.Getenv("SNIPVAULT_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("SNIPVAULT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SNIPVAULT_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("SNIPVAULT_LOG_CONSOLE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.LogConsole = b
		}
	}
}

// BaseURL returns the API root, http://<host>:8000/api
func (c *Config) BaseURL() string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d%s", host, APIPort, APIPrefix)
}

// Path returns the config file location
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads config from ~/.snipvault/config.yaml, falling back to defaults
// when the file does not exist. Environment variables win over the file.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile loads config from an explicit path
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg.applyEnv()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// Save saves config to ~/.snipvault/config.yaml
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes config to an explicit path
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c.persisted())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// persisted returns the config to write to disk. Fields still holding their
// environment override revert to the value read from the file; fields
// changed since Load keep the new value.
func (c *Config) persisted() *Config {
	out := *c
	out.file, out.env = nil, nil
	if c.file == nil || c.env == nil {
		return &out
	}
	if c.Host == c.env.host {
		out.Host = c.file.host
	}
	if c.LogLevel == c.env.logLevel {
		out.LogLevel = c.file.logLevel
	}
	if c.LogFile == c.env.logFile {
		out.LogFile = c.file.logFile
	}
	if c.LogConsole == c.env.logConsole {
		out.LogConsole = c.file.logConsole
	}
	return &out
}
