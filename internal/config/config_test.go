package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gloves/internal/netif"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "IoT", cfg.WiFi.SSID)
	assert.Equal(t, 5, cfg.WiFi.MaxRetry)
	assert.True(t, cfg.WiFi.PMFCapable)
	assert.False(t, cfg.WiFi.PMFRequire)
	assert.Equal(t, netif.AuthWPA2PSK, cfg.AuthThreshold())
	assert.Equal(t, DriverSim, cfg.WiFi.Driver)
	assert.Equal(t, 100*time.Millisecond, cfg.Motion.Interval)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GLOVES_WIFI_SSID", "Lab")
	t.Setenv("GLOVES_WIFI_MAX_RETRY", "3")
	t.Setenv("GLOVES_WIFI_AUTH_MODE", "wpa3_psk")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "Lab", cfg.WiFi.SSID)
	assert.Equal(t, 3, cfg.WiFi.MaxRetry)
	assert.Equal(t, netif.AuthWPA3PSK, cfg.AuthThreshold())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gloves.yaml")
	content := `
wifi:
  ssid: Workshop
  password: hunter2
  driver: host
  interface: wlp2s0
http:
  listen: 0.0.0.0:80
motion:
  interval: 50ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "Workshop", cfg.WiFi.SSID)
	assert.Equal(t, "hunter2", cfg.WiFi.Password)
	assert.Equal(t, DriverHost, cfg.WiFi.Driver)
	assert.Equal(t, "wlp2s0", cfg.WiFi.Interface)
	assert.Equal(t, "0.0.0.0:80", cfg.HTTP.Listen)
	assert.Equal(t, 50*time.Millisecond, cfg.Motion.Interval)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"empty ssid":            func(c *Config) { c.WiFi.SSID = "" },
		"long ssid":             func(c *Config) { c.WiFi.SSID = "0123456789012345678901234567890123" },
		"unknown auth":          func(c *Config) { c.WiFi.AuthMode = "wpa9" },
		"zero retries":          func(c *Config) { c.WiFi.MaxRetry = 0 },
		"pmf required only":     func(c *Config) { c.WiFi.PMFCapable = false; c.WiFi.PMFRequire = true },
		"unknown driver":        func(c *Config) { c.WiFi.Driver = "usb" },
		"host without iface":    func(c *Config) { c.WiFi.Driver = DriverHost; c.WiFi.Interface = "" },
		"no listen address":     func(c *Config) { c.HTTP.Listen = "" },
		"non-positive rate":     func(c *Config) { c.HTTP.RateLimit = 0 },
		"non-positive interval": func(c *Config) { c.Motion.Interval = 0 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(New(), "")
			require.NoError(t, err)
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
