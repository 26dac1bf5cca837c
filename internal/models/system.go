package models

// SoftwareInfo identifies the running firmware
type SoftwareInfo struct {
	Name           string `json:"name"`
	Version        string `json:"version"`
	RuntimeVersion string `json:"idf_version"`
	UptimeSeconds  uint64 `json:"uptime"`
}

// DeviceInfo combines network, software and hardware details
type DeviceInfo struct {
	Network  NetworkStatus `json:"network"`
	Software SoftwareInfo  `json:"software"`
	Hardware *HardwareInfo `json:"hardware"`
}
