// Package netif adapts network stacks to the station lifecycle. A Driver
// performs association and reports progress as Events; it never decides
// about retries itself.
package netif

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
)

var (
	ErrNoDNS          = errors.New("no resolver in slot")
	ErrUnknownAuth    = errors.New("unknown auth mode")
	ErrNotConfigured  = errors.New("driver not configured")
	ErrNoInterface    = errors.New("interface not found")
	ErrAlreadyStarted = errors.New("driver already started")
)

// DNSSlot selects a resolver advertised for the link.
type DNSSlot int

const (
	DNSMain DNSSlot = iota
	DNSBackup
)

func (s DNSSlot) String() string {
	switch s {
	case DNSMain:
		return "main"
	case DNSBackup:
		return "backup"
	default:
		return fmt.Sprintf("slot(%d)", int(s))
	}
}

// AuthMode is ordered by strength: a station configured with a floor
// rejects access points whose mode compares lower.
type AuthMode int

const (
	AuthOpen AuthMode = iota
	AuthWEP
	AuthWPAPSK
	AuthWPA2PSK
	AuthWPAWPA2PSK
	AuthWPA2Enterprise
	AuthWPA3PSK
	AuthWPA2WPA3PSK
)

var authModeNames = map[AuthMode]string{
	AuthOpen:           "open",
	AuthWEP:            "wep",
	AuthWPAPSK:         "wpa_psk",
	AuthWPA2PSK:        "wpa2_psk",
	AuthWPAWPA2PSK:     "wpa_wpa2_psk",
	AuthWPA2Enterprise: "wpa2_enterprise",
	AuthWPA3PSK:        "wpa3_psk",
	AuthWPA2WPA3PSK:    "wpa2_wpa3_psk",
}

func (m AuthMode) String() string {
	if name, ok := authModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("auth(%d)", int(m))
}

// ParseAuthMode accepts the names produced by AuthMode.String,
// case-insensitively.
func ParseAuthMode(s string) (AuthMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for mode, name := range authModeNames {
		if name == s {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAuth, s)
}

// PMF is the protected management frames policy.
type PMF struct {
	Capable  bool
	Required bool
}

// StationConfig is what a Driver needs to associate.
type StationConfig struct {
	SSID          string
	Password      string
	AuthThreshold AuthMode
	PMF           PMF
	Hostname      string
}

// Driver is the network stack seen by the station. Start and Connect must
// not block on event delivery: events are sent from the driver's own
// goroutines.
type Driver interface {
	Configure(cfg StationConfig) error
	Start(ctx context.Context, events chan<- Event) error
	Connect() error
	HardwareAddr() (net.HardwareAddr, error)
	DNS(slot DNSSlot) (netip.Addr, error)
}

// FormatMAC renders a hardware address as XX:XX:XX:XX:XX:XX.
func FormatMAC(mac net.HardwareAddr) string {
	if len(mac) == 0 {
		return ""
	}
	parts := make([]string, len(mac))
	for i, b := range mac {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}

func send(ctx context.Context, events chan<- Event, ev Event) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}
