// Package config provides configuration for the chord client library.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// DefaultAPIBase is the origin all REST requests are made against.
const DefaultAPIBase = "https://discord.com"

// DefaultUserAgent identifies the library to the remote service.
const DefaultUserAgent = "DiscordBot (https://github.com/chordbot/chord, 0.1.0)"

// ErrMissingToken indicates no bot token was configured.
var ErrMissingToken = errors.New("bot token is required")

// Config holds the settings a cluster needs to reach the REST API.
//
// Config file location: ~/.config/chord/chordrc
//
// INI format:
//
//	[chord]
//	token = <bot-token>
//	api_base = https://discord.com
type Config struct {
	// Token is the bot's bearer credential, sent as "Authorization: Bot <token>".
	Token string `ini:"token"`

	// APIBase is the HTTPS origin requests are made against.
	// Default: https://discord.com
	APIBase string `ini:"api_base"`

	// UserAgent identifies the library in request headers.
	UserAgent string `ini:"-"`
}

// New returns a Config with defaults applied.
func New(token string) *Config {
	return &Config{
		Token:     token,
		APIBase:   DefaultAPIBase,
		UserAgent: DefaultUserAgent,
	}
}

// Validate checks that the config is usable.
func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// Path returns the default config file path.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "chord", "chordrc"), nil
}

// Load reads a Config from an INI file. Missing optional keys get defaults.
func Load(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	cfg := New("")
	if err := file.Section("chord").MapTo(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	cfg.UserAgent = DefaultUserAgent
	return cfg, nil
}

// Save writes the config to an INI file, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	file := ini.Empty()
	if err := file.Section("chord").ReflectFrom(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := file.SaveTo(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return os.Chmod(path, 0o600)
}
