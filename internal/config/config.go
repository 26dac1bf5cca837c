// Package config loads the agent configuration from file, environment and
// flags through viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gloves/internal/logger"
	"gloves/internal/netif"

	"github.com/spf13/viper"
)

const EnvPrefix = "GLOVES"

var ErrInvalidConfig = errors.New("invalid config")

const (
	DriverSim  = "sim"
	DriverHost = "host"
)

type WiFi struct {
	SSID       string `mapstructure:"ssid"`
	Password   string `mapstructure:"password"`
	AuthMode   string `mapstructure:"auth_mode"`
	PMFCapable bool   `mapstructure:"pmf_capable"`
	PMFRequire bool   `mapstructure:"pmf_required"`
	MaxRetry   int    `mapstructure:"max_retry"`
	Hostname   string `mapstructure:"hostname"`
	Driver     string `mapstructure:"driver"`
	Interface  string `mapstructure:"interface"`
}

type HTTP struct {
	Listen    string  `mapstructure:"listen"`
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

type Motion struct {
	Interval  time.Duration `mapstructure:"interval"`
	History   int           `mapstructure:"history"`
	Amplitude float64       `mapstructure:"amplitude"`
}

type Hardware struct {
	Chip     string        `mapstructure:"chip"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	DataPath string        `mapstructure:"data_path"`
	WiFi     bool          `mapstructure:"wifi"`
	BT       bool          `mapstructure:"bt"`
	BLE      bool          `mapstructure:"ble"`
}

type Config struct {
	WiFi     WiFi          `mapstructure:"wifi"`
	HTTP     HTTP          `mapstructure:"http"`
	Motion   Motion        `mapstructure:"motion"`
	Hardware Hardware      `mapstructure:"hardware"`
	Log      logger.Config `mapstructure:"log"`

	authMode netif.AuthMode
}

// SetDefaults registers every key so that environment variables are
// picked up by Unmarshal even without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("wifi.ssid", "IoT")
	v.SetDefault("wifi.password", "")
	v.SetDefault("wifi.auth_mode", netif.AuthWPA2PSK.String())
	v.SetDefault("wifi.pmf_capable", true)
	v.SetDefault("wifi.pmf_required", false)
	v.SetDefault("wifi.max_retry", 5)
	v.SetDefault("wifi.hostname", "esp_gloves")
	v.SetDefault("wifi.driver", DriverSim)
	v.SetDefault("wifi.interface", "wlan0")

	v.SetDefault("http.listen", "localhost:8080")
	v.SetDefault("http.rate_limit", 20.0)
	v.SetDefault("http.rate_burst", 40)

	v.SetDefault("motion.interval", 100*time.Millisecond)
	v.SetDefault("motion.history", 600)
	v.SetDefault("motion.amplitude", 16384.0)

	v.SetDefault("hardware.chip", "ESP32-C3")
	v.SetDefault("hardware.cache_ttl", time.Second)
	v.SetDefault("hardware.data_path", "/")
	v.SetDefault("hardware.wifi", true)
	v.SetDefault("hardware.bt", false)
	v.SetDefault("hardware.ble", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", false)
}

// New returns a viper instance with defaults and GLOVES_ environment
// binding (wifi.ssid -> GLOVES_WIFI_SSID).
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file and decodes the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.WiFi.SSID == "" {
		return fmt.Errorf("%w: wifi.ssid is empty", ErrInvalidConfig)
	}
	if len(c.WiFi.SSID) > 32 {
		return fmt.Errorf("%w: wifi.ssid longer than 32 bytes", ErrInvalidConfig)
	}
	mode, err := netif.ParseAuthMode(c.WiFi.AuthMode)
	if err != nil {
		return fmt.Errorf("%w: wifi.auth_mode: %w", ErrInvalidConfig, err)
	}
	c.authMode = mode
	if c.WiFi.MaxRetry < 1 {
		return fmt.Errorf("%w: wifi.max_retry must be at least 1", ErrInvalidConfig)
	}
	if c.WiFi.PMFRequire && !c.WiFi.PMFCapable {
		return fmt.Errorf("%w: wifi.pmf_required needs wifi.pmf_capable", ErrInvalidConfig)
	}
	switch c.WiFi.Driver {
	case DriverSim:
	case DriverHost:
		if c.WiFi.Interface == "" {
			return fmt.Errorf("%w: wifi.interface is required for the host driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown wifi.driver %q", ErrInvalidConfig, c.WiFi.Driver)
	}
	if c.HTTP.Listen == "" {
		return fmt.Errorf("%w: http.listen is empty", ErrInvalidConfig)
	}
	if c.HTTP.RateLimit <= 0 || c.HTTP.RateBurst <= 0 {
		return fmt.Errorf("%w: http rate limit and burst must be positive", ErrInvalidConfig)
	}
	if c.Motion.Interval <= 0 {
		return fmt.Errorf("%w: motion.interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// AuthThreshold is the parsed wifi.auth_mode; valid after Validate.
func (c *Config) AuthThreshold() netif.AuthMode {
	return c.authMode
}
