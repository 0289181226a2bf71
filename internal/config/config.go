package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	GitLab   GitLabConfig   `toml:"gitlab"`
	Report   ReportConfig   `toml:"report"`
	Holidays HolidaysConfig `toml:"holidays"`
}

type GitLabConfig struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
}

type ReportConfig struct {
	HoursPerDay float64 `toml:"hours_per_day"`
	Group       string  `toml:"group"` // primary group for the epic view
}

type HolidaysConfig struct {
	URL string `toml:"url"`
}

func DefaultConfig() Config {
	return Config{
		GitLab: GitLabConfig{
			URL: "https://gitlab.com/api/graphql",
		},
		Report: ReportConfig{
			HoursPerDay: 8,
		},
		Holidays: HolidaysConfig{
			URL: "https://brasilapi.com.br/api/feriados/v1",
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "glhours"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config file at path, falling back to defaults when
// it does not exist. Environment variables override file values.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GITLAB_TOKEN"); v != "" {
		cfg.GitLab.Token = v
	}
	if v := os.Getenv("GLHOURS_GITLAB_URL"); v != "" {
		cfg.GitLab.URL = v
	}
	if v := os.Getenv("GLHOURS_GROUP"); v != "" {
		cfg.Report.Group = v
	}
	if v := os.Getenv("GLHOURS_HOLIDAYS_URL"); v != "" {
		cfg.Holidays.URL = v
	}
	if v := os.Getenv("GLHOURS_HOURS_PER_DAY"); v != "" {
		if hours, err := strconv.ParseFloat(v, 64); err == nil && hours > 0 {
			cfg.Report.HoursPerDay = hours
		}
	}
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
