package models

// StationState is the connection lifecycle state of the Wi-Fi station
type StationState string

const (
	StationIdle       StationState = "idle"
	StationConnecting StationState = "connecting"
	StationConnected  StationState = "connected"
	StationFailed     StationState = "failed"
)

// NetworkInfo is the last-known connection of the station. The zero value
// means no connection was ever established.
type NetworkInfo struct {
	SSID    string `json:"ssid"`
	MAC     string `json:"mac"`
	IP      string `json:"ip"`
	Netmask string `json:"netmask"`
	Gateway string `json:"gateway"`
	DNS1    string `json:"dns1"`
	DNS2    string `json:"dns2"`
}

// NetworkStatus is NetworkInfo plus the current station state, as rendered by /v1/info
type NetworkStatus struct {
	NetworkInfo
	State StationState `json:"state"`
}
