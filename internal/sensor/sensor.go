// Package sensor reads the glove's three motion sensors.
package sensor

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"
)

// Channels is the number of values one read returns: three sensors of
// three axes each.
const Channels = 9

var ErrClosed = errors.New("sensor closed")

// Sensor is a motion sensor driver.
type Sensor interface {
	Read(ctx context.Context) ([Channels]int, error)
}

// Sim produces deterministic sine waveforms, one phase-shifted wave per
// channel, so that readings change over time without hardware attached.
type Sim struct {
	mu        sync.Mutex
	amplitude float64
	period    time.Duration
	start     time.Time
	now       func() time.Time
	closed    bool
}

func NewSim(amplitude float64, period time.Duration) *Sim {
	if period <= 0 {
		period = 2 * time.Second
	}
	return &Sim{
		amplitude: amplitude,
		period:    period,
		start:     time.Now(),
		now:       time.Now,
	}
}

func (s *Sim) Read(ctx context.Context) ([Channels]int, error) {
	var out [Channels]int
	if err := ctx.Err(); err != nil {
		return out, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return out, ErrClosed
	}

	elapsed := s.now().Sub(s.start).Seconds()
	omega := 2 * math.Pi / s.period.Seconds()
	for i := range out {
		phase := float64(i) * math.Pi / Channels
		out[i] = int(math.Round(s.amplitude * math.Sin(omega*elapsed+phase)))
	}
	return out, nil
}

func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
