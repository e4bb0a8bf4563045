package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"
)

const QR_IMAGE_SIZE = 512

// AlertConfig holds SMTP settings for stolen-item alert mail.
type AlertConfig struct {
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// Enabled reports whether alert mail delivery is configured.
func (a *AlertConfig) Enabled() bool {
	return a.Host != "" && a.From != "" && len(a.To) > 0
}

type Config struct {
	// Base URL of the remote gate management API, e.g. https://gatepass.example.edu/api
	APIBaseURL string `mapstructure:"api_base_url"`

	// Outbound request timeout in seconds. Requests running past this are
	// treated as connectivity failures and routed to the offline path.
	RequestTimeout uint `mapstructure:"request_timeout"`

	LogLevel string `mapstructure:"log_level"`

	// Gate location recorded on vehicle entries, e.g. "Main Gate".
	Location string `mapstructure:"location"`

	// Listen address for the local guard-station API.
	ListenAddr string `mapstructure:"listen_addr"`

	Storage Storage `mapstructure:"storage"`

	Alert AlertConfig `mapstructure:"alert"`
}

var Cfg *Config

// Check if running in Docker container by checking for the presence of /.dockerenv file
func runningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

func getConfigPath() string {
	if runningInDocker() {
		return "/app/instance"
	}
	return "./instance"
}

// LoadConfig reads configuration from environment variables and returns a Config struct.
func LoadConfig(configFile ...string) (*Config, error) {
	var cfg Config

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(getConfigPath())
	v.AddConfigPath(".")
	v.SetEnvPrefix("")

	if len(configFile) > 0 {
		for _, path := range configFile {
			v.SetConfigFile(path)
		}
	}

	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}

	// Load configuration from environment variables
	v.AutomaticEnv()

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %v", err)
	}

	if cfg.RequestTimeout == 0 {
		slog.Warn("REQUEST_TIMEOUT must be positive, using default", "default", defaults["request_timeout"])
		cfg.RequestTimeout = defaults["request_timeout"].(uint)
	}

	// Convert relative sqlite path to absolute instance folder
	if cfg.Storage.SQLite != nil {
		if cfg.Storage.SQLite.Path == ":memory:" {
			// In-memory database, do nothing
		} else if !os.IsPathSeparator(cfg.Storage.SQLite.Path[0]) {
			cfg.Storage.SQLite.Path = fmt.Sprintf("%s/%s", getConfigPath(), cfg.Storage.SQLite.Path)
		}
	}

	if cfg.APIBaseURL == "" {
		slog.Warn("API_BASE_URL is not set, remote verification will be unavailable")
	}

	Cfg = &cfg
	return &cfg, nil
}
