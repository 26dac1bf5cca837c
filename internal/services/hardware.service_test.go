package services

import (
	"errors"
	"os"
	"testing"
	"time"

	"gloves/internal/models"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubProbe(t *testing.T) *HardwareProbe {
	exe, err := os.CreateTemp(t.TempDir(), "app")
	require.NoError(t, err)
	_, err = exe.Write(make([]byte, 64*KB))
	require.NoError(t, err)
	require.NoError(t, exe.Close())

	p := NewHardwareProbe("", "/data", models.Features{WiFi: true, BLE: true})
	p.cpuInfo = func() ([]cpu.InfoStat, error) {
		return []cpu.InfoStat{{ModelName: "RISC-V", Mhz: 160, Stepping: 4}}, nil
	}
	p.cpuCounts = func(bool) (int, error) { return 1, nil }
	p.virtualMemory = func() (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 400 * KB, Available: 250 * KB}, nil
	}
	p.diskUsage = func(path string) (*disk.UsageStat, error) {
		assert.Equal(t, "/data", path)
		return &disk.UsageStat{Total: 4096 * KB, Used: 1024 * KB}, nil
	}
	p.executable = func() (string, error) { return exe.Name(), nil }
	return p
}

func TestHardwareProbeCollect(t *testing.T) {
	info, err := stubProbe(t).Collect()
	require.NoError(t, err)

	assert.Equal(t, "RISC-V", info.Chip)
	assert.Equal(t, 1, info.Cores)
	assert.Equal(t, 160, info.CPUFreq)
	assert.Equal(t, 4, info.Revision)
	assert.Equal(t, models.RAMInfo{Total: 400, FreeHeap: 250}, info.RAM)
	assert.Equal(t, models.FlashInfo{
		Total:         4096,
		Used:          1088,
		Available:     3008,
		AppPartition:  64,
		DataPartition: 1024,
	}, info.Flash)
	assert.Equal(t, models.Features{WiFi: true, BLE: true}, info.Features)
}

func TestHardwareProbeConfiguredChip(t *testing.T) {
	p := stubProbe(t)
	p.Chip = "ESP32-C3"
	info, err := p.Collect()
	require.NoError(t, err)
	assert.Equal(t, "ESP32-C3", info.Chip)
}

func TestHardwareProbeToleratesCPUErrors(t *testing.T) {
	p := stubProbe(t)
	p.cpuInfo = func() ([]cpu.InfoStat, error) { return nil, errors.New("no cpuinfo") }
	p.cpuCounts = func(bool) (int, error) { return 0, errors.New("no counts") }

	info, err := p.Collect()
	require.NoError(t, err)
	assert.Equal(t, 0, info.CPUFreq)
	assert.Equal(t, uint64(400), info.RAM.Total)
}

func TestHardwareProbeMemoryError(t *testing.T) {
	p := stubProbe(t)
	p.virtualMemory = func() (*mem.VirtualMemoryStat, error) { return nil, errors.New("no meminfo") }
	_, err := p.Collect()
	assert.ErrorContains(t, err, "failed to get memory usage")
}

func TestGetSoftwareInfo(t *testing.T) {
	sw := GetSoftwareInfo(time.Now().Add(-90 * time.Second))
	assert.Equal(t, SoftwareName, sw.Name)
	assert.Equal(t, SoftwareVersion, sw.Version)
	assert.NotEmpty(t, sw.RuntimeVersion)
	assert.GreaterOrEqual(t, sw.UptimeSeconds, uint64(89))
}
