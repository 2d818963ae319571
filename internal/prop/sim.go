package prop

import (
	"github.com/san-kum/bombprop/internal/clock"
	"github.com/san-kum/bombprop/internal/config"
	"github.com/san-kum/bombprop/internal/debounce"
	"github.com/san-kum/bombprop/internal/keypad"
	"github.com/san-kum/bombprop/internal/trace"
)

// Sim is hardware made of software: a trace recorder for every output, a
// key press queue and a settable switch.
type Sim struct {
	Recorder *trace.Recorder
	Keys     *keypad.Presses
	Switch   *debounce.Level
}

// NewSim returns simulated hardware with the switch in its off position.
func NewSim(clk clock.Clock, cfg *config.Config) *Sim {
	sw := &debounce.Level{}
	sw.Set(cfg.Switch.ActiveLow)
	return &Sim{
		Recorder: trace.NewRecorder(clk, cfg.Display.Columns, cfg.Display.Lines),
		Keys:     &keypad.Presses{},
		Switch:   sw,
	}
}

// SetArmed moves the simulated switch to its on or off position.
func (s *Sim) SetArmed(cfg *config.Config, on bool) {
	s.Switch.Set(on != cfg.Switch.ActiveLow)
}

func (s *Sim) Hardware() Hardware {
	return Hardware{
		Display: s.Recorder,
		LED:     s.Recorder,
		Keys:    s.Keys,
		Switch:  s.Switch,
		MP3:     s.Recorder,
		Buzzer:  s.Recorder,
		RedLED:  s.Recorder,
	}
}

// Press queues the key printed as r on the configured layout. Characters
// not on the keypad are ignored.
func (s *Sim) Press(layout *keypad.Layout, r rune) bool {
	k := layout.Lookup(r)
	if k == keypad.NoKey {
		return false
	}
	s.Keys.Press(k)
	return true
}
