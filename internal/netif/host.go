package netif

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/miekg/dns"
	psnet "github.com/shirou/gopsutil/v3/net"
)

const (
	defaultRouteTable = "/proc/net/route"
	defaultResolvConf = "/etc/resolv.conf"
)

// Host binds the station to an interface the operating system already
// manages. Association is reported as successful as soon as the interface
// carries an IPv4 address. Auth and PMF policy are the OS supplicant's
// business and are not enforced here.
type Host struct {
	mu         sync.Mutex
	iface      string
	routeTable string
	resolvConf string
	cfg        *StationConfig
	ctx        context.Context
	events     chan<- Event

	// interfaces is swapped in tests.
	interfaces func() (psnet.InterfaceStatList, error)
}

func NewHost(iface string) *Host {
	return &Host{
		iface:      iface,
		routeTable: defaultRouteTable,
		resolvConf: defaultResolvConf,
		interfaces: psnet.Interfaces,
	}
}

func (h *Host) Configure(cfg StationConfig) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cfg = &cfg
	return nil
}

func (h *Host) Start(ctx context.Context, events chan<- Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cfg == nil {
		return ErrNotConfigured
	}
	if h.events != nil {
		return ErrAlreadyStarted
	}
	h.ctx = ctx
	h.events = events
	go send(ctx, events, InterfaceStarted{})
	return nil
}

func (h *Host) Connect() error {
	h.mu.Lock()
	ctx, events := h.ctx, h.events
	h.mu.Unlock()
	if events == nil {
		return ErrNotConfigured
	}

	go func() {
		ev, err := h.probe()
		if err != nil {
			ev = Disconnected{Reason: err.Error()}
		}
		send(ctx, events, ev)
	}()
	return nil
}

func (h *Host) probe() (Event, error) {
	stat, err := h.lookup()
	if err != nil {
		return nil, err
	}

	for _, a := range stat.Addrs {
		prefix, err := netip.ParsePrefix(a.Addr)
		if err != nil || !prefix.Addr().Is4() {
			continue
		}
		mask := net.CIDRMask(prefix.Bits(), 32)
		netmask, _ := netip.AddrFromSlice(mask)

		gw, err := h.gateway()
		if err != nil {
			gw = netip.Addr{}
		}
		return AddressAcquired{IP: prefix.Addr(), Netmask: netmask, Gateway: gw}, nil
	}
	return nil, fmt.Errorf("no IPv4 address on %s", h.iface)
}

func (h *Host) lookup() (psnet.InterfaceStat, error) {
	list, err := h.interfaces()
	if err != nil {
		return psnet.InterfaceStat{}, fmt.Errorf("listing interfaces: %w", err)
	}
	for _, stat := range list {
		if stat.Name == h.iface {
			return stat, nil
		}
	}
	return psnet.InterfaceStat{}, fmt.Errorf("%w: %s", ErrNoInterface, h.iface)
}

func (h *Host) HardwareAddr() (net.HardwareAddr, error) {
	stat, err := h.lookup()
	if err != nil {
		return nil, err
	}
	return net.ParseMAC(stat.HardwareAddr)
}

func (h *Host) DNS(slot DNSSlot) (netip.Addr, error) {
	f, err := os.Open(h.resolvConf)
	if err != nil {
		return netip.Addr{}, err
	}
	defer f.Close()
	return resolverFrom(f, slot)
}

func (h *Host) gateway() (netip.Addr, error) {
	f, err := os.Open(h.routeTable)
	if err != nil {
		return netip.Addr{}, err
	}
	defer f.Close()
	return defaultGateway(f, h.iface)
}

// resolverFrom picks the IPv4 nameserver at position slot from a
// resolv.conf formatted reader.
func resolverFrom(r io.Reader, slot DNSSlot) (netip.Addr, error) {
	conf, err := dns.ClientConfigFromReader(r)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("parsing resolv.conf: %w", err)
	}
	var v4 []netip.Addr
	for _, s := range conf.Servers {
		addr, err := netip.ParseAddr(s)
		if err == nil && addr.Is4() {
			v4 = append(v4, addr)
		}
	}
	if int(slot) >= len(v4) || slot < 0 {
		return netip.Addr{}, ErrNoDNS
	}
	return v4[slot], nil
}

// defaultGateway reads a /proc/net/route formatted table and returns the
// gateway of the default route on iface.
func defaultGateway(r io.Reader, iface string) (netip.Addr, error) {
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 || fields[0] != iface || fields[1] != "00000000" {
			continue
		}
		raw, err := strconv.ParseUint(fields[2], 16, 32)
		if err != nil {
			return netip.Addr{}, fmt.Errorf("parsing gateway %q: %w", fields[2], err)
		}
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(raw))
		return netip.AddrFrom4(b), nil
	}
	if err := scanner.Err(); err != nil {
		return netip.Addr{}, err
	}
	return netip.Addr{}, fmt.Errorf("no default route on %s", iface)
}
