package netif

import "net/netip"

// Event is a connectivity lifecycle notification delivered by a Driver.
// The set of implementations is closed: InterfaceStarted, Disconnected
// and AddressAcquired.
type Event interface {
	isEvent()
}

// InterfaceStarted is emitted once the station interface is up and ready
// to associate.
type InterfaceStarted struct{}

// Disconnected is emitted whenever an association attempt fails or an
// established link drops.
type Disconnected struct {
	Reason string
}

// AddressAcquired carries the IPv4 configuration obtained from the access
// point (usually via DHCP).
type AddressAcquired struct {
	IP      netip.Addr
	Netmask netip.Addr
	Gateway netip.Addr
}

func (InterfaceStarted) isEvent() {}
func (Disconnected) isEvent()     {}
func (AddressAcquired) isEvent()  {}
