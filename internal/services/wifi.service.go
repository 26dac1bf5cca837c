package services

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"sync"

	"gloves/internal/models"
	"gloves/internal/netif"

	"github.com/rs/zerolog"
)

const DefaultMaxRetry = 5

var (
	ErrInvalidConfig      = errors.New("invalid station config")
	ErrAlreadyInitialized = errors.New("station already initialized")
)

// StationSettings is the security policy and retry bound applied when
// joining the network.
type StationSettings struct {
	AuthThreshold netif.AuthMode
	PMF           netif.PMF
	Hostname      string
	MaxRetry      int
}

// DefaultStationSettings rejects anything weaker than WPA2-PSK and
// advertises PMF without requiring it.
func DefaultStationSettings() StationSettings {
	return StationSettings{
		AuthThreshold: netif.AuthWPA2PSK,
		PMF:           netif.PMF{Capable: true, Required: false},
		Hostname:      "esp_gloves",
		MaxRetry:      DefaultMaxRetry,
	}
}

// Station drives the Wi-Fi station lifecycle:
//
//	idle -> connecting -> connected | failed
//
// Every event is handled by HandleEvent, which is the single writer of the
// network info, the state and the attempt counter. The terminal outcome is
// published once through Done; the network info is always written before
// it fires.
//
// A link lost after connecting puts the station back into connecting with
// a fresh attempt counter. Exhausting the bound then leads to failed, but
// the outcome already reported is never changed. Failed is final and all
// later events are ignored.
type Station struct {
	driver netif.Driver
	log    zerolog.Logger

	mu       sync.RWMutex
	cfg      netif.StationConfig
	maxRetry int
	state    models.StationState
	attempts int
	info     models.NetworkInfo
	outcome  models.StationState
	done     chan struct{}
	started  bool
	notify   func(models.NetworkStatus)

	events chan netif.Event
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewStation(driver netif.Driver, log zerolog.Logger) *Station {
	ctx, cancel := context.WithCancel(context.Background())
	return &Station{
		driver:   driver,
		log:      log,
		maxRetry: DefaultMaxRetry,
		state:    models.StationIdle,
		done:     make(chan struct{}),
		events:   make(chan netif.Event, 8),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Initialize configures the driver, starts the interface and blocks until
// the station is connected or has failed. It never returns on transient
// retries. Cancelling ctx abandons the wait; the station keeps running.
func (s *Station) Initialize(ctx context.Context, ssid, password string, settings StationSettings) (models.StationState, error) {
	if ssid == "" {
		return "", fmt.Errorf("%w: empty ssid", ErrInvalidConfig)
	}
	if settings.MaxRetry <= 0 {
		settings.MaxRetry = DefaultMaxRetry
	}

	cfg := netif.StationConfig{
		SSID:          ssid,
		Password:      password,
		AuthThreshold: settings.AuthThreshold,
		PMF:           settings.PMF,
		Hostname:      settings.Hostname,
	}

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return "", ErrAlreadyInitialized
	}
	s.started = true
	s.cfg = cfg
	s.maxRetry = settings.MaxRetry
	s.mu.Unlock()

	if err := s.driver.Configure(cfg); err != nil {
		s.abortInit()
		return "", fmt.Errorf("configuring driver: %w", err)
	}
	if err := s.driver.Start(s.ctx, s.events); err != nil {
		s.abortInit()
		return "", fmt.Errorf("starting driver: %w", err)
	}

	s.wg.Add(1)
	go s.run()
	s.log.Info().Str("ssid", ssid).Stringer("auth_threshold", settings.AuthThreshold).Msg("wifi init finished")

	select {
	case <-s.done:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	outcome := s.Outcome()
	if outcome == models.StationConnected {
		s.log.Info().Str("ssid", ssid).Msg("connected to network")
	} else {
		s.log.Warn().Str("ssid", ssid).Msg("failed to connect to network")
	}
	return outcome, nil
}

func (s *Station) abortInit() {
	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
}

// OnStateChange registers fn to be called with the new status after every
// state transition. It must be set before Initialize.
func (s *Station) OnStateChange(fn func(models.NetworkStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = fn
}

func (s *Station) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case ev := <-s.events:
			s.HandleEvent(ev)
		}
	}
}

// Close stops the event loop.
func (s *Station) Close() {
	s.cancel()
	s.wg.Wait()
}

// HandleEvent applies one connectivity event to the state machine.
func (s *Station) HandleEvent(ev netif.Event) {
	var connect bool
	before := s.State()

	switch ev := ev.(type) {
	case netif.InterfaceStarted:
		s.mu.Lock()
		if s.state == models.StationIdle {
			s.state = models.StationConnecting
			connect = true
		}
		s.mu.Unlock()

	case netif.Disconnected:
		connect = s.disconnected(ev)

	case netif.AddressAcquired:
		s.publish(ev)
	}

	s.mu.RLock()
	status := models.NetworkStatus{NetworkInfo: s.info, State: s.state}
	notify := s.notify
	s.mu.RUnlock()
	if notify != nil && status.State != before {
		notify(status)
	}

	if connect {
		if err := s.driver.Connect(); err != nil {
			s.log.Error().Err(err).Msg("connect request failed")
			s.HandleEvent(netif.Disconnected{Reason: err.Error()})
		}
	}
}

func (s *Station) disconnected(ev netif.Disconnected) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case models.StationConnected:
		s.log.Warn().Str("reason", ev.Reason).Msg("wifi link lost")
		s.state = models.StationConnecting
		s.attempts = 0
	case models.StationConnecting:
	default:
		return false
	}

	s.attempts++
	if s.attempts >= s.maxRetry {
		s.state = models.StationFailed
		s.resolve(models.StationFailed)
		s.log.Error().Str("reason", ev.Reason).Int("attempts", s.attempts).Msg("wifi connection failed")
		return false
	}

	s.log.Info().
		Str("reason", ev.Reason).
		Msgf("connecting to wifi (%d/%d)", s.attempts, s.maxRetry)
	return true
}

func (s *Station) publish(ev netif.AddressAcquired) {
	mac, macErr := s.driver.HardwareAddr()
	dns1, dns1Err := s.driver.DNS(netif.DNSMain)
	dns2, dns2Err := s.driver.DNS(netif.DNSBackup)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == models.StationFailed {
		return
	}

	info := s.info
	info.SSID = s.cfg.SSID
	if macErr == nil {
		info.MAC = netif.FormatMAC(mac)
	} else {
		s.log.Warn().Err(macErr).Msg("reading station MAC")
	}
	info.IP = addrString(ev.IP)
	info.Netmask = addrString(ev.Netmask)
	info.Gateway = addrString(ev.Gateway)
	if dns1Err == nil {
		info.DNS1 = dns1.String()
	}
	if dns2Err == nil {
		info.DNS2 = dns2.String()
	}

	s.info = info
	s.attempts = 0
	s.state = models.StationConnected
	s.resolve(models.StationConnected)

	s.log.Info().
		Str("ssid", info.SSID).
		Str("mac", info.MAC).
		Str("ip", info.IP).
		Str("netmask", info.Netmask).
		Str("gateway", info.Gateway).
		Str("dns1", info.DNS1).
		Str("dns2", info.DNS2).
		Msg("wifi connected")
}

// resolve must be called with mu held.
func (s *Station) resolve(outcome models.StationState) {
	if s.outcome != "" {
		return
	}
	s.outcome = outcome
	close(s.done)
}

// NetworkInfo returns a copy of the last published network info.
func (s *Station) NetworkInfo() models.NetworkInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// Status returns the network info together with the state it belongs to.
func (s *Station) Status() models.NetworkStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.NetworkStatus{NetworkInfo: s.info, State: s.state}
}

func (s *Station) State() models.StationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Station) Attempts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attempts
}

// Done is closed once the first terminal outcome is known.
func (s *Station) Done() <-chan struct{} {
	return s.done
}

// Outcome is the first terminal state reached, or "" if none yet.
func (s *Station) Outcome() models.StationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outcome
}

func addrString(addr netip.Addr) string {
	if !addr.IsValid() {
		return ""
	}
	return addr.String()
}
