package services

import (
	"sync"
	"time"

	"gloves/internal/models"
)

// HardwareCache holds the last hardware reading with a TTL and tracks the
// lowest free memory seen since start
type HardwareCache struct {
	mu        sync.RWMutex
	collector HardwareCollector
	cache     *models.HardwareInfo
	cacheTime time.Time
	minFree   uint64
	ttl       time.Duration
	now       func() time.Time
}

func NewHardwareCache(collector HardwareCollector, ttl time.Duration) *HardwareCache {
	if ttl <= 0 {
		ttl = time.Second
	}
	return &HardwareCache{
		collector: collector,
		ttl:       ttl,
		now:       time.Now,
	}
}

// isCacheValid must be called with mu held
func (hc *HardwareCache) isCacheValid() bool {
	return hc.cache != nil && hc.now().Sub(hc.cacheTime) < hc.ttl
}

// Get returns cached hardware data if valid, otherwise fetches fresh.
// The returned value is a copy.
func (hc *HardwareCache) Get() (*models.HardwareInfo, error) {
	hc.mu.RLock()
	if hc.isCacheValid() {
		defer hc.mu.RUnlock()
		info := *hc.cache
		return &info, nil
	}
	hc.mu.RUnlock()

	// Fetch outside the lock, gopsutil calls can be slow
	fresh, err := hc.collector.Collect()
	if err != nil {
		return nil, err
	}

	hc.mu.Lock()
	if hc.minFree == 0 || fresh.RAM.FreeHeap < hc.minFree {
		hc.minFree = fresh.RAM.FreeHeap
	}
	fresh.RAM.MinFreeHeap = hc.minFree
	hc.cache = fresh
	hc.cacheTime = hc.now()
	info := *fresh
	hc.mu.Unlock()

	return &info, nil
}
