package netif

import (
	"context"
	"net"
	"net/netip"
	"sync"
)

// SimOptions describes the simulated access point and its DHCP lease.
type SimOptions struct {
	SSID     string
	Password string
	Auth     AuthMode
	// PMFSupported and PMFRequired describe the access point side.
	PMFSupported bool
	PMFRequired  bool
	// FailFirst is the number of connect attempts that drop before the
	// first successful one.
	FailFirst int
	MAC       net.HardwareAddr
	IP        netip.Addr
	Netmask   netip.Addr
	Gateway   netip.Addr
	DNS       []netip.Addr
}

// Sim is an in-process access point. It is the default driver when no host
// interface is configured and is what the tests drive.
type Sim struct {
	mu       sync.Mutex
	opts     SimOptions
	cfg      *StationConfig
	ctx      context.Context
	events   chan<- Event
	attempts int
}

func NewSim(opts SimOptions) *Sim {
	return &Sim{opts: opts}
}

func (s *Sim) Configure(cfg StationConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = &cfg
	return nil
}

func (s *Sim) Start(ctx context.Context, events chan<- Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return ErrNotConfigured
	}
	if s.events != nil {
		return ErrAlreadyStarted
	}
	s.ctx = ctx
	s.events = events
	go send(ctx, events, InterfaceStarted{})
	return nil
}

// Connect resolves one association attempt asynchronously.
func (s *Sim) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events == nil {
		return ErrNotConfigured
	}
	s.attempts++

	var ev Event
	if reason := s.reject(); reason != "" {
		ev = Disconnected{Reason: reason}
	} else if s.attempts <= s.opts.FailFirst {
		ev = Disconnected{Reason: "association timeout"}
	} else {
		ev = AddressAcquired{IP: s.opts.IP, Netmask: s.opts.Netmask, Gateway: s.opts.Gateway}
	}
	go send(s.ctx, s.events, ev)
	return nil
}

// Attempts reports how many times Connect was called.
func (s *Sim) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// Drop simulates the access point going away after association.
func (s *Sim) Drop(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events == nil {
		return
	}
	go send(s.ctx, s.events, Disconnected{Reason: reason})
}

// SetFailFirst changes how many further attempts will fail, counted from
// the attempts already made.
func (s *Sim) SetFailFirst(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.FailFirst = s.attempts + n
}

func (s *Sim) reject() string {
	switch {
	case s.cfg.SSID != s.opts.SSID:
		return "no AP found"
	case s.opts.Auth < s.cfg.AuthThreshold:
		return "auth mode below threshold"
	case s.opts.Auth != AuthOpen && s.cfg.Password != s.opts.Password:
		return "auth failed"
	case s.opts.PMFRequired && !s.cfg.PMF.Capable:
		return "pmf required by AP"
	case s.cfg.PMF.Required && !s.opts.PMFSupported:
		return "pmf not supported by AP"
	}
	return ""
}

func (s *Sim) HardwareAddr() (net.HardwareAddr, error) {
	return s.opts.MAC, nil
}

func (s *Sim) DNS(slot DNSSlot) (netip.Addr, error) {
	i := int(slot)
	if i < 0 || i >= len(s.opts.DNS) || !s.opts.DNS[i].IsValid() {
		return netip.Addr{}, ErrNoDNS
	}
	return s.opts.DNS[i], nil
}
