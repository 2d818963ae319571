package clock

import (
	"sync"
	"time"
)

// Millis is a wrapping millisecond counter.
type Millis uint32

type Clock interface {
	Now() Millis
}

// Since returns now-last using unsigned arithmetic, so a counter that wrapped
// between the two readings still yields the true distance.
func Since(now, last Millis) Millis {
	return now - last
}

// Elapsed reports whether at least threshold milliseconds have passed since last.
func Elapsed(now, last, threshold Millis) bool {
	return now-last >= threshold
}

// System reports milliseconds since it was created.
type System struct {
	start time.Time
}

func NewSystem() *System {
	return &System{start: time.Now()}
}

func (s *System) Now() Millis {
	return Millis(uint64(time.Since(s.start).Milliseconds()))
}

// Manual is a clock that only moves when told to.
type Manual struct {
	mu  sync.RWMutex
	now Millis
}

func NewManual(start Millis) *Manual {
	return &Manual{now: start}
}

// NewManualNearWrap starts the clock the given distance before the counter wraps.
func NewManualNearWrap(before Millis) *Manual {
	return &Manual{now: 0 - before}
}

func (m *Manual) Now() Millis {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

func (m *Manual) Set(t Millis) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

func (m *Manual) Advance(d Millis) Millis {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
	return m.now
}
