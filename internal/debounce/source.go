package debounce

import "sync/atomic"

// Level is a RawInputSource set in software, standing in for the arming
// switch in simulations.
type Level struct {
	high atomic.Bool
}

func (l *Level) Set(high bool) { l.high.Store(high) }

// Toggle flips the level and returns the new one.
func (l *Level) Toggle() bool {
	for {
		old := l.high.Load()
		if l.high.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (l *Level) ReadLevel() bool { return l.high.Load() }
