// Package config provides configuration loading for the sitegen commands.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application. YAML file values are
// overridden by environment variables where an env tag is declared.
type Config struct {
	Debug bool `yaml:"debug" env:"SITEGEN_DEBUG"`

	// Workbook is the source spreadsheet path.
	Workbook string `yaml:"workbook" env:"SITEGEN_WORKBOOK"`
	// Root is the project root against which relative image paths are
	// existence-checked. Defaults to the config file's directory.
	Root string `yaml:"root" env:"SITEGEN_ROOT"`
	// BaseURL prefixes generated links when the site is served under a
	// subpath. Normalized to "/<trimmed>/" form when set.
	BaseURL string `yaml:"base_url" env:"BASE_URL"`

	Site   SiteConfig   `yaml:"site"`
	Server ServerConfig `yaml:"server"`
	Watch  WatchConfig  `yaml:"watch"`
	Deploy DeployConfig `yaml:"deploy"`
}

// SiteConfig holds page and output settings.
type SiteConfig struct {
	Title string `yaml:"title" env:"SITEGEN_SITE_TITLE"`
	// OutputDir is the rendered site root.
	OutputDir string `yaml:"output_dir" env:"SITEGEN_OUTPUT_DIR"`
	// DataDir receives the JSON data artifacts.
	DataDir string `yaml:"data_dir"`
	// AssetsDir is copied verbatim into the output tree when present.
	AssetsDir string `yaml:"assets_dir"`
	// TemplatesDir overrides the embedded templates when set.
	TemplatesDir string `yaml:"templates_dir" env:"SITEGEN_TEMPLATES_DIR"`
}

// ServerConfig holds the dev server settings.
type ServerConfig struct {
	Host string `yaml:"host" env:"SITEGEN_HOST"`
	Port int    `yaml:"port" env:"SITEGEN_PORT"`
}

// WatchConfig holds rebuild-on-change settings for serve --watch.
type WatchConfig struct {
	// Paths lists extra files or directories to watch beyond the workbook,
	// assets, and templates.
	Paths []string `yaml:"paths"`
}

// DeployConfig holds S3-compatible deploy target settings. Credentials come
// from the environment only, never the file.
type DeployConfig struct {
	Bucket    string `yaml:"bucket" env:"SITEGEN_DEPLOY_BUCKET"`
	Prefix    string `yaml:"prefix" env:"SITEGEN_DEPLOY_PREFIX"`
	Region    string `yaml:"region" env:"SITEGEN_DEPLOY_REGION"`
	Endpoint  string `yaml:"endpoint" env:"SITEGEN_DEPLOY_ENDPOINT"`
	AccessKey string `yaml:"-" env:"SITEGEN_DEPLOY_ACCESS_KEY"`
	SecretKey string `yaml:"-" env:"SITEGEN_DEPLOY_SECRET_KEY"`
}

// Load reads and parses the config file at path, applies defaults, env
// overrides, and path expansion. Returns an error if the file cannot be
// read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := finalize(&cfg, filepath.Dir(path)); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no config file exists,
// anchored at dir.
func Default(dir string) (*Config, error) {
	var cfg Config
	if err := finalize(&cfg, dir); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func finalize(cfg *Config, dir string) error {
	ApplyDefaults(cfg)
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to apply env overrides: %w", err)
	}
	cfg.BaseURL = NormalizeBaseURL(cfg.BaseURL)

	if cfg.Root == "" {
		cfg.Root = dir
	}
	cfg.Root = expandPath(cfg.Root, dir)
	cfg.Workbook = expandPath(cfg.Workbook, cfg.Root)
	cfg.Site.OutputDir = expandPath(cfg.Site.OutputDir, cfg.Root)
	cfg.Site.DataDir = expandPath(cfg.Site.DataDir, cfg.Root)
	cfg.Site.AssetsDir = expandPath(cfg.Site.AssetsDir, cfg.Root)
	if cfg.Site.TemplatesDir != "" {
		cfg.Site.TemplatesDir = expandPath(cfg.Site.TemplatesDir, cfg.Root)
	}
	for i := range cfg.Watch.Paths {
		cfg.Watch.Paths[i] = expandPath(cfg.Watch.Paths[i], cfg.Root)
	}
	return nil
}

// Validate checks the configuration for values no command can run with.
func (c *Config) Validate() error {
	if c.Workbook == "" {
		return fmt.Errorf("workbook path must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	return nil
}

// NormalizeBaseURL brings a base URL path prefix to "/<trimmed>/" form.
// Empty input stays empty, meaning relative links.
func NormalizeBaseURL(v string) string {
	v = strings.Trim(strings.TrimSpace(v), "/")
	if v == "" {
		return ""
	}
	return "/" + v + "/"
}

// expandPath converts a path to absolute against base. Absolute paths pass
// through; "~/" expands to the home directory.
func expandPath(path, base string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
