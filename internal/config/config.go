package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Events  EventsConfig  `yaml:"events"`
	Export  ExportConfig  `yaml:"export"`
	Log     LogConfig     `yaml:"log"`
	Palette PaletteConfig `yaml:"palette"`
	UI      UIConfig      `yaml:"ui"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type EventsConfig struct {
	PageSize   int `yaml:"page_size"`
	FetchLimit int `yaml:"fetch_limit"`
}

type ExportConfig struct {
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// PaletteConfig holds the chart colours. They are presentation detail and
// live here so deployments can restyle without a rebuild.
type PaletteConfig struct {
	Types       []string          `yaml:"types"`
	Severity    map[string]string `yaml:"severity"`
	Unknown     string            `yaml:"unknown"`
	Placeholder string            `yaml:"placeholder"`
}

type UIConfig struct {
	ToastDuration time.Duration `yaml:"toast_duration"`
	RedirectDelay time.Duration `yaml:"redirect_delay"`
	MarkdownStyle string        `yaml:"markdown_style"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:8000",
			Timeout: 30 * time.Second,
		},
		Events: EventsConfig{
			PageSize:   20,
			FetchLimit: 1000,
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Log: LogConfig{
			Level: "INFO",
			File:  "siem-console.log",
		},
		Palette: PaletteConfig{
			Types: []string{
				"#3498db", "#2ecc71", "#e74c3c", "#f39c12",
				"#9b59b6", "#1abc9c", "#d35400", "#34495e",
			},
			Severity: map[string]string{
				"critical": "#e74c3c",
				"high":     "#e67e22",
				"medium":   "#f39c12",
				"low":      "#27ae60",
				"info":     "#3498db",
			},
			Unknown:     "#95a5a6",
			Placeholder: "#f0f0f0",
		},
		UI: UIConfig{
			ToastDuration: 3 * time.Second,
			RedirectDelay: time.Second,
			MarkdownStyle: "dark",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the console cannot run with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url must be set")
	}
	if c.Events.PageSize <= 0 {
		return fmt.Errorf("events.page_size must be positive, got %d", c.Events.PageSize)
	}
	if c.Events.FetchLimit <= 0 {
		return fmt.Errorf("events.fetch_limit must be positive, got %d", c.Events.FetchLimit)
	}
	if len(c.Palette.Types) == 0 {
		return errors.New("palette.types must list at least one colour")
	}
	return nil
}
