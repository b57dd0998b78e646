package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the contacts configuration file.
type Config struct {
	Client ClientConfig `toml:"client" yaml:"client"`
	Server ServerConfig `toml:"server" yaml:"server"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

type ClientConfig struct {
	// APIURL is the contacts collection resource.
	APIURL string `toml:"api_url" yaml:"api_url"`
	// Page optionally replaces the embedded page markup.
	Page string `toml:"page" yaml:"page"`
}

type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
	DB   string `toml:"db" yaml:"db"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

const (
	DefaultAPIURL = "http://localhost:3000/api/contacts"
	DefaultAddr   = ":3000"
)

// Default returns the configuration used when no file is given.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Client: ClientConfig{APIURL: DefaultAPIURL},
		Server: ServerConfig{
			Addr: DefaultAddr,
			DB:   filepath.Join(home, ".contacts", "contacts.db"),
		},
		Log: LogConfig{Level: "warn"},
	}
}

// Load reads path, fills unset values from Default and validates the result.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var file Config
	if err := loadFile(path, &file); err != nil {
		return Config{}, err
	}
	merge(&cfg, file)

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func loadFile(path string, out *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, out)
	default:
		err = toml.Unmarshal(data, out)
	}
	if err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func merge(dst *Config, src Config) {
	if v := strings.TrimSpace(src.Client.APIURL); v != "" {
		dst.Client.APIURL = v
	}
	if v := strings.TrimSpace(src.Client.Page); v != "" {
		dst.Client.Page = v
	}
	if v := strings.TrimSpace(src.Server.Addr); v != "" {
		dst.Server.Addr = v
	}
	if v := strings.TrimSpace(src.Server.DB); v != "" {
		dst.Server.DB = v
	}
	if v := strings.TrimSpace(src.Log.Level); v != "" {
		dst.Log.Level = v
	}
}

// Validate checks the values a command relies on.
func Validate(cfg Config) error {
	u, err := url.Parse(cfg.Client.APIURL)
	if err != nil {
		return fmt.Errorf("client.api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("client.api_url: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("client.api_url: missing host")
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required")
	}
	if strings.TrimSpace(cfg.Server.DB) == "" {
		return fmt.Errorf("server.db is required")
	}
	return nil
}
