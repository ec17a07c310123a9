package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when config.yml or environment leave a field unset.
const (
	defaultPort           = "8080"
	defaultPollInterval   = 10 * time.Second
	defaultRequestTimeout = 15 * time.Second
	defaultGeocodeURL     = "https://api.zippopotam.us/us"
	defaultForecastURL    = "https://api.open-meteo.com/v1/forecast"
	defaultLogLevel       = "info"
)

// Config holds the gateway configuration. The API base URL and key are
// read by every outbound request; a change takes effect on the next
// request issued, never mid-flight.
type Config struct {
	APIBaseURL     string        `mapstructure:"api_base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Port           string        `mapstructure:"port"`
	LocalToken     string        `mapstructure:"local_token"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	GeocodeURL     string        `mapstructure:"geocode_url"`
	ForecastURL    string        `mapstructure:"forecast_url"`
	LogLevel       string        `mapstructure:"log_level"`
}

// Load reads configs/config.yml, overlays environment variables prefixed
// with GATEWAY_, and fills in defaults for anything left unset.
func Load() (*Config, error) {
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("gateway")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine when everything comes from the environment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = defaultPort
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.GeocodeURL == "" {
		c.GeocodeURL = defaultGeocodeURL
	}
	if c.ForecastURL == "" {
		c.ForecastURL = defaultForecastURL
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}
