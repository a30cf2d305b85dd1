package configuration

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	ConfigVersion  = "1.0"
	ConfigDirName  = ".localecho"
	ConfigFileName = "config.json"
	LogFileName    = "localecho.log"
)

// Config represents the application configuration
type Config struct {
	Version string `json:"version"`

	// Line editor
	HistorySize            int    `json:"history_size"`
	MaxAutocompleteEntries int    `json:"max_autocomplete_entries"`
	TabWidth               int    `json:"tab_width"`
	Prompt                 string `json:"prompt"`
	Continuation           string `json:"continuation"`
	Banner                 string `json:"banner,omitempty"`
	// EraseCtrlH treats a bare ^H as backspace instead of ctrl+backspace,
	// for ttys set up with "stty erase ^H"
	EraseCtrlH bool `json:"erase_ctrl_h,omitempty"`

	// Web terminal
	Host string `json:"host"`
	Port int    `json:"port"`

	// Demo shell command file, reloaded on change when WatchCommands is set
	CommandsFile  string `json:"commands_file,omitempty"`
	WatchCommands bool   `json:"watch_commands,omitempty"`

	// LogFile defaults to ~/.localecho/localecho.log
	LogFile string `json:"log_file,omitempty"`
}

// NewConfig returns a config holding the defaults
func NewConfig() *Config {
	return &Config{
		Version:                ConfigVersion,
		HistorySize:            10,
		MaxAutocompleteEntries: 100,
		TabWidth:               4,
		Prompt:                 "$ ",
		Continuation:           "> ",
		Banner:                 "localecho: type 'help' to list commands",
		Host:                   "127.0.0.1",
		Port:                   54321,
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ConfigDirName)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the full path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// Load loads the configuration from the default location
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration at path. A missing file yields the
// defaults; fields absent from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	config := NewConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Version == "" {
		config.Version = ConfigVersion
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Save saves the configuration to the default location
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo writes the configuration to path
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.Version = ConfigVersion

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.HistorySize <= 0 {
		return fmt.Errorf("history_size must be positive, got %d", c.HistorySize)
	}
	if c.MaxAutocompleteEntries <= 0 {
		return fmt.Errorf("max_autocomplete_entries must be positive, got %d", c.MaxAutocompleteEntries)
	}
	if c.TabWidth <= 0 {
		return fmt.Errorf("tab_width must be positive, got %d", c.TabWidth)
	}
	if c.Prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Port)
	}
	return nil
}

// GetLogPath returns the log file path, defaulting into the config directory
func (c *Config) GetLogPath() (string, error) {
	if c.LogFile != "" {
		return c.LogFile, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, LogFileName), nil
}
