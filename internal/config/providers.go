package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ProvidersConfig routes leagues to provider families and describes how to
// reach each family.
type ProvidersConfig struct {
	// Fallback serves leagues without an explicit route. Empty disables it.
	Fallback    string            `mapstructure:"fallback"`
	Routes      map[string]string `mapstructure:"routes"`
	ESPN        ESPNConfig        `mapstructure:"espn"`
	Balldontlie BalldontlieConfig `mapstructure:"balldontlie"`
}

// ESPNConfig controls the ESPN site API client.
type ESPNConfig struct {
	BaseURL    string            `mapstructure:"base_url"`
	SportPaths map[string]string `mapstructure:"sport_paths"`
	Headers    map[string]string `mapstructure:"headers"`
}

// BalldontlieConfig controls how we talk to the balldontlie API.
type BalldontlieConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	MaxPages int    `mapstructure:"max_pages"`
}

const (
	FamilyESPN        = "espn"
	FamilyBalldontlie = "balldontlie"

	defaultESPNBaseURL = "https://site.api.espn.com/apis/site/v2/sports"
	defaultBdlBaseURL  = "https://api.balldontlie.io/v1"
	defaultBdlMaxPages = 5
)

var defaultRoutes = map[string]string{
	"nba":   FamilyESPN,
	"wnba":  FamilyESPN,
	"ncaam": FamilyESPN,
	"ncaaw": FamilyESPN,
	"nfl":   FamilyESPN,
	"cfb":   FamilyESPN,
	"mlb":   FamilyESPN,
	"nhl":   FamilyESPN,
}

// loadProviders reads the optional YAML file at path on top of the built-in
// defaults, then applies the env overrides for hosts and keys. A missing file
// is not an error.
func loadProviders(path string) (ProvidersConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("fallback", FamilyESPN)
	for league, family := range defaultRoutes {
		v.SetDefault("routes."+league, family)
	}
	v.SetDefault("espn.base_url", defaultESPNBaseURL)
	v.SetDefault("balldontlie.base_url", defaultBdlBaseURL)
	v.SetDefault("balldontlie.max_pages", defaultBdlMaxPages)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return ProvidersConfig{}, fmt.Errorf("read %s: %w", path, err)
			}
		}
	}

	var cfg ProvidersConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return ProvidersConfig{}, fmt.Errorf("decode %s: %w", path, err)
	}

	cfg.Fallback = strings.ToLower(strings.TrimSpace(cfg.Fallback))
	routes := make(map[string]string, len(cfg.Routes))
	for league, family := range cfg.Routes {
		routes[strings.ToLower(strings.TrimSpace(league))] = strings.ToLower(strings.TrimSpace(family))
	}
	cfg.Routes = routes

	cfg.ESPN.BaseURL = envOrDefault(envESPNBaseURL, cfg.ESPN.BaseURL)
	cfg.Balldontlie.BaseURL = envOrDefault(envBdlBaseURL, cfg.Balldontlie.BaseURL)
	cfg.Balldontlie.APIKey = envOrDefault(envBdlAPIKey, cfg.Balldontlie.APIKey)
	if cfg.Balldontlie.APIKey != "" {
		cfg.Balldontlie.Enabled = true
	}
	for _, family := range cfg.Routes {
		if family == FamilyBalldontlie {
			cfg.Balldontlie.Enabled = true
		}
	}
	return cfg, nil
}
