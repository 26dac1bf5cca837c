package services

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gloves/internal/logger"
	"gloves/internal/models"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	KB = 1024

	SoftwareName    = "ESP Gloves"
	SoftwareVersion = "1.0.0"
)

// HardwareCollector produces a fresh hardware reading
type HardwareCollector interface {
	Collect() (*models.HardwareInfo, error)
}

// HardwareProbe reads chip, memory and storage figures through gopsutil
type HardwareProbe struct {
	Chip     string
	DataPath string
	Features models.Features

	cpuInfo       func() ([]cpu.InfoStat, error)
	cpuCounts     func(logical bool) (int, error)
	virtualMemory func() (*mem.VirtualMemoryStat, error)
	diskUsage     func(path string) (*disk.UsageStat, error)
	executable    func() (string, error)
}

// NewHardwareProbe returns a probe reporting storage of dataPath. An empty
// chip name falls back to the CPU model.
func NewHardwareProbe(chip, dataPath string, features models.Features) *HardwareProbe {
	if dataPath == "" {
		dataPath = "/"
	}
	return &HardwareProbe{
		Chip:          chip,
		DataPath:      dataPath,
		Features:      features,
		cpuInfo:       cpu.Info,
		cpuCounts:     cpu.Counts,
		virtualMemory: mem.VirtualMemory,
		diskUsage:     disk.Usage,
		executable:    os.Executable,
	}
}

// Collect returns the current hardware reading. MinFreeHeap is left to the
// cache, which sees consecutive readings.
func (p *HardwareProbe) Collect() (*models.HardwareInfo, error) {
	log := logger.WithComponent("hardware")
	info := &models.HardwareInfo{
		Chip:     p.Chip,
		Features: p.Features,
	}

	cpus, err := p.cpuInfo()
	if err != nil || len(cpus) == 0 {
		log.Warn().Err(err).Msg("could not get CPU info")
	} else {
		if info.Chip == "" {
			info.Chip = cpus[0].ModelName
		}
		info.CPUFreq = int(cpus[0].Mhz)
		info.Revision = int(cpus[0].Stepping)
	}

	cores, err := p.cpuCounts(false)
	if err != nil {
		log.Warn().Err(err).Msg("could not get CPU core count")
	}
	info.Cores = cores

	vm, err := p.virtualMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to get memory usage: %w", err)
	}
	info.RAM = models.RAMInfo{
		Total:    vm.Total / KB,
		FreeHeap: vm.Available / KB,
	}

	usage, err := p.diskUsage(p.DataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk usage: %w", err)
	}

	var appSize uint64
	if exe, err := p.executable(); err == nil {
		if st, err := os.Stat(exe); err == nil {
			appSize = uint64(st.Size())
		}
	}

	used := appSize + usage.Used
	var available uint64
	if usage.Total > used {
		available = usage.Total - used
	}
	info.Flash = models.FlashInfo{
		Total:         usage.Total / KB,
		Used:          used / KB,
		Available:     available / KB,
		AppPartition:  appSize / KB,
		DataPartition: usage.Used / KB,
	}

	return info, nil
}

// GetSoftwareInfo describes the running firmware
func GetSoftwareInfo(startedAt time.Time) models.SoftwareInfo {
	return models.SoftwareInfo{
		Name:           SoftwareName,
		Version:        SoftwareVersion,
		RuntimeVersion: runtime.Version(),
		UptimeSeconds:  uint64(time.Since(startedAt).Seconds()),
	}
}
