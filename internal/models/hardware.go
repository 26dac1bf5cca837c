package models

// FlashInfo mirrors the storage layout of the device, all sizes in KiB
type FlashInfo struct {
	Total         uint64 `json:"total"`
	Used          uint64 `json:"used"`
	Available     uint64 `json:"available"`
	AppPartition  uint64 `json:"app_partition"`
	DataPartition uint64 `json:"data_partition"`
}

// RAMInfo holds memory figures in KiB
type RAMInfo struct {
	Total       uint64 `json:"total"`
	FreeHeap    uint64 `json:"free_heap"`
	MinFreeHeap uint64 `json:"min_free_heap"`
}

// Features lists the radios available on the device
type Features struct {
	WiFi bool `json:"wifi"`
	BT   bool `json:"bt"`
	BLE  bool `json:"ble"`
}

// HardwareInfo represents chip and memory telemetry
type HardwareInfo struct {
	Chip     string    `json:"chip"`
	Cores    int       `json:"cores"`
	CPUFreq  int       `json:"cpu_freq"` // MHz
	Revision int       `json:"revision"`
	Flash    FlashInfo `json:"flash"`
	RAM      RAMInfo   `json:"ram"`
	Features Features  `json:"features"`
}
