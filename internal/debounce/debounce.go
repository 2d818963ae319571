package debounce

import (
	"log"

	"github.com/san-kum/bombprop/internal/clock"
	"github.com/san-kum/bombprop/internal/logx"
)

const DefaultInterval clock.Millis = 50

// RawInputSource reads the undebounced level of a digital input.
type RawInputSource interface {
	ReadLevel() bool
}

type Config struct {
	Interval clock.Millis
	// ActiveLow inverts the raw level: a low pin means "on".
	ActiveLow bool
	Logger    *log.Logger
}

// Debouncer turns a noisy switch into a stable logical state.
type Debouncer struct {
	clk       clock.Clock
	src       RawInputSource
	interval  clock.Millis
	activeLow bool
	log       *log.Logger

	state      bool
	lastChange clock.Millis
	allowed    bool
}

func New(clk clock.Clock, src RawInputSource, cfg Config) *Debouncer {
	return &Debouncer{
		clk:       clk,
		src:       src,
		interval:  cfg.Interval,
		activeLow: cfg.ActiveLow,
		log:       logx.OrDiscard(cfg.Logger),
		allowed:   true,
	}
}

// Tick samples the input and returns the committed state. A change is only
// committed once more than the debounce interval has passed since the last one.
func (d *Debouncer) Tick() bool {
	if !d.allowed {
		return d.state
	}

	on := d.src.ReadLevel() != d.activeLow
	now := d.clk.Now()
	if on != d.state && clock.Since(now, d.lastChange) > d.interval {
		d.log.Printf("state changed to %s", onOff(on))
		d.state = on
		d.lastChange = now
	}
	return d.state
}

// SetUpdateAllowed freezes (false) or releases (true) the committed state.
func (d *Debouncer) SetUpdateAllowed(allowed bool) {
	d.log.Printf("allow update set to %t", allowed)
	d.allowed = allowed
}

func (d *Debouncer) UpdateAllowed() bool { return d.allowed }

// State returns the committed state without sampling the input.
func (d *Debouncer) State() bool { return d.state }

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
