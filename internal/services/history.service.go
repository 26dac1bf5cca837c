package services

import (
	"context"
	"sync"
	"time"

	"gloves/internal/models"
	"gloves/internal/sensor"

	"github.com/rs/zerolog"
)

// MotionCollector samples the motion sensors on a ticker and keeps a
// bounded history
type MotionCollector struct {
	mu            sync.RWMutex
	sensor        sensor.Sensor
	history       []models.MotionSample
	maxDataPoints int
	running       bool
	cancel        context.CancelFunc
	done          chan struct{}
	log           zerolog.Logger
	now           func() time.Time
}

func NewMotionCollector(s sensor.Sensor, maxDataPoints int, log zerolog.Logger) *MotionCollector {
	if maxDataPoints <= 0 {
		maxDataPoints = 120
	}
	return &MotionCollector{
		sensor:        s,
		history:       []models.MotionSample{},
		maxDataPoints: maxDataPoints,
		log:           log,
		now:           time.Now,
	}
}

// Start begins sampling every interval until Stop or ctx is done
func (mc *MotionCollector) Start(ctx context.Context, interval time.Duration) {
	mc.mu.Lock()
	if mc.running {
		mc.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	mc.running = true
	mc.cancel = cancel
	mc.done = make(chan struct{})
	done := mc.done
	mc.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mc.collectSnapshot(ctx)
			}
		}
	}()

	mc.log.Info().Dur("interval", interval).Msg("motion collector started")
}

// Stop stops the collector and waits for the sampling goroutine to exit
func (mc *MotionCollector) Stop() {
	mc.mu.Lock()
	if !mc.running {
		mc.mu.Unlock()
		return
	}
	mc.running = false
	cancel, done := mc.cancel, mc.done
	mc.mu.Unlock()

	cancel()
	<-done
	mc.log.Info().Msg("motion collector stopped")
}

// Sample reads the sensors once without recording the result
func (mc *MotionCollector) Sample(ctx context.Context) (models.MotionSample, error) {
	raw, err := mc.sensor.Read(ctx)
	if err != nil {
		return models.MotionSample{}, err
	}
	return models.MotionSample{
		Timestamp: mc.now(),
		MPU1:      models.Axes{raw[0], raw[1], raw[2]},
		MPU2:      models.Axes{raw[3], raw[4], raw[5]},
		MPU3:      models.Axes{raw[6], raw[7], raw[8]},
	}, nil
}

// collectSnapshot reads outside the lock and only appends under it
func (mc *MotionCollector) collectSnapshot(ctx context.Context) {
	sample, err := mc.Sample(ctx)
	if err != nil {
		if ctx.Err() == nil {
			mc.log.Warn().Err(err).Msg("motion sensor read failed")
		}
		return
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.history = append(mc.history, sample)
	if len(mc.history) > mc.maxDataPoints {
		mc.history = mc.history[1:]
	}
}

// History returns the samples taken within duration of now
func (mc *MotionCollector) History(duration time.Duration) []models.MotionSample {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	cutoffTime := mc.now().Add(-duration)
	filtered := []models.MotionSample{}
	for _, s := range mc.history {
		if s.Timestamp.After(cutoffTime) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// Latest returns the most recent recorded sample
func (mc *MotionCollector) Latest() (models.MotionSample, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if len(mc.history) == 0 {
		return models.MotionSample{}, false
	}
	return mc.history[len(mc.history)-1], true
}
