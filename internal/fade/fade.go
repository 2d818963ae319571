// Package fade drives a dimmable LED through a fade-in, hold, fade-out cycle
// without blocking the control loop.
package fade

import (
	"log"

	"github.com/san-kum/bombprop/internal/clock"
	"github.com/san-kum/bombprop/internal/logx"
)

// ActuatorSink is a PWM-capable output.
type ActuatorSink interface {
	SetOutputLevel(level uint8)
}

type Phase int

const (
	PhaseInit Phase = iota
	PhaseFadeIn
	PhaseHold
	PhaseFadeOut
)

func (p Phase) String() string {
	switch p {
	case PhaseFadeIn:
		return "fade-in"
	case PhaseHold:
		return "hold"
	case PhaseFadeOut:
		return "fade-out"
	default:
		return "init"
	}
}

// Params describes one fade animation. Durations are in milliseconds.
type Params struct {
	Min, Max        uint8
	StepIn, StepOut uint8
	FadeIn, FadeOut clock.Millis
	Hold            clock.Millis
	Loop            bool
	StartDelay      clock.Millis
}

// NewParams returns looping parameters with no start delay.
func NewParams(lo, hi, stepIn, stepOut uint8, fadeIn, fadeOut, hold clock.Millis) Params {
	return Params{
		Min: lo, Max: hi,
		StepIn: stepIn, StepOut: stepOut,
		FadeIn: fadeIn, FadeOut: fadeOut,
		Hold: hold,
		Loop: true,
	}
}

// Normalize clamps Max to at least Min and both steps into [1, Max-Min].
func (p Params) Normalize() Params {
	if p.Max < p.Min {
		p.Max = p.Min
	}
	span := p.Max - p.Min
	p.StepIn = clampStep(p.StepIn, span)
	p.StepOut = clampStep(p.StepOut, span)
	return p
}

func clampStep(step, span uint8) uint8 {
	if step < 1 {
		step = 1
	}
	if span > 0 && step > span {
		step = span
	}
	return step
}

// Intervals returns the time between two level changes while fading in and
// out. Params must be normalized.
func (p Params) Intervals() (in, out clock.Millis) {
	span := p.Max - p.Min
	if span == 0 {
		return 0, 0
	}
	in = p.FadeIn / clock.Millis(span/p.StepIn)
	out = p.FadeOut / clock.Millis(span/p.StepOut)
	return in, out
}

// Animator runs one fade animation at a time.
type Animator struct {
	clk  clock.Clock
	sink ActuatorSink
	log  *log.Logger

	active  bool
	p       Params
	inStep  clock.Millis
	outStep clock.Millis
	phase   Phase
	level   uint8
	last    clock.Millis
}

// New switches the output off and returns an inert animator.
func New(clk clock.Clock, sink ActuatorSink, logger *log.Logger) *Animator {
	a := &Animator{clk: clk, sink: sink, log: logx.OrDiscard(logger)}
	a.sink.SetOutputLevel(0)
	a.log.Println("ready")
	return a
}

// Activate starts p from its Init phase, replacing any running animation.
func (a *Animator) Activate(p Params) {
	a.log.Println("activating animation")
	a.p = p.Normalize()
	a.inStep, a.outStep = a.p.Intervals()
	a.active = true
	a.phase = PhaseInit
	a.last = a.clk.Now()
}

// Stop makes the animator inert and switches the output off.
func (a *Animator) Stop() {
	a.log.Println("stopping animation")
	a.active = false
	a.p = Params{}
	a.inStep, a.outStep = 0, 0
	a.phase = PhaseInit
	a.level = 0
	a.last = 0
	a.sink.SetOutputLevel(0)
}

// Tick advances the animation by at most one step.
func (a *Animator) Tick() {
	if !a.active {
		return
	}
	now := a.clk.Now()

	switch a.phase {
	case PhaseInit:
		if !clock.Elapsed(now, a.last, a.p.StartDelay) {
			return
		}
		a.last = now
		a.level = a.p.Min
		if a.p.Min == a.p.Max {
			// nothing to fade: show the level and hold it
			a.sink.SetOutputLevel(a.level)
			a.phase = PhaseHold
			return
		}
		a.phase = PhaseFadeIn

	case PhaseFadeIn:
		if !clock.Elapsed(now, a.last, a.inStep) {
			return
		}
		a.last = now
		a.sink.SetOutputLevel(a.level)
		if a.level == a.p.Max {
			a.phase = PhaseHold
			return
		}
		if a.p.Max-a.level < a.p.StepIn {
			a.level = a.p.Max
		} else {
			a.level += a.p.StepIn
		}

	case PhaseHold:
		if !clock.Elapsed(now, a.last, a.p.Hold) {
			return
		}
		a.last = now
		if a.level == a.p.Max {
			a.phase = PhaseFadeOut
		} else {
			a.phase = PhaseFadeIn
		}

	case PhaseFadeOut:
		if !clock.Elapsed(now, a.last, a.outStep) {
			return
		}
		a.last = now
		a.sink.SetOutputLevel(a.level)
		if a.level == a.p.Min {
			a.phase = PhaseHold
			if !a.p.Loop {
				a.Stop()
			}
			return
		}
		if a.level-a.p.Min < a.p.StepOut {
			a.level = a.p.Min
		} else {
			a.level -= a.p.StepOut
		}
	}
}

func (a *Animator) Active() bool   { return a.active }
func (a *Animator) Phase() Phase   { return a.phase }
func (a *Animator) Level() uint8   { return a.level }
func (a *Animator) Params() Params { return a.p }
