// Package loop runs the prop's components as one cooperative control loop.
//
// Every iteration ticks each registered component once, in registration
// order, then notifies observers. Components never block, so an iteration
// costs a bounded amount of work regardless of how late it runs.
package loop

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/bombprop/internal/clock"
)

type Ticker interface {
	Tick()
}

// TickFunc adapts a function to Ticker, e.g. a debouncer whose Tick returns a value.
type TickFunc func()

func (f TickFunc) Tick() { f() }

type Observer interface {
	OnStep(now clock.Millis, step int)
}

// Advancer is implemented by clocks that can be moved forward explicitly.
type Advancer interface {
	Advance(d clock.Millis) clock.Millis
}

type Config struct {
	// Step is the time between iterations: simulated for an Advancer clock,
	// slept otherwise.
	Step     clock.Millis
	Duration clock.Millis
}

type Result struct {
	Steps int
	Start clock.Millis
	End   clock.Millis
}

type Loop struct {
	clk       clock.Clock
	tickers   []Ticker
	observers []Observer
	steps     int
}

func New(clk clock.Clock) *Loop {
	return &Loop{
		clk:       clk,
		tickers:   make([]Ticker, 0),
		observers: make([]Observer, 0),
	}
}

func (l *Loop) Add(t Ticker)           { l.tickers = append(l.tickers, t) }
func (l *Loop) AddObserver(o Observer) { l.observers = append(l.observers, o) }
func (l *Loop) Clock() clock.Clock     { return l.clk }
func (l *Loop) Steps() int             { return l.steps }

// Step runs a single iteration.
func (l *Loop) Step() {
	for _, t := range l.tickers {
		t.Tick()
	}
	now := l.clk.Now()
	for _, o := range l.observers {
		o.OnStep(now, l.steps)
	}
	l.steps++
}

// Run iterates until cfg.Duration has elapsed on the loop clock or ctx is done.
func (l *Loop) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	res := &Result{Start: l.clk.Now()}
	err := l.RunWithCallback(ctx, cfg, func(clock.Millis) bool {
		res.Steps++
		return true
	})
	res.End = l.clk.Now()
	return res, err
}

// RunWithCallback is Run with a hook after every iteration; returning false
// from the callback ends the run early.
func (l *Loop) RunWithCallback(ctx context.Context, cfg Config, callback func(now clock.Millis) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	start := l.clk.Now()
	adv, simulated := l.clk.(Advancer)

	var elapsed uint64
	for elapsed < uint64(cfg.Duration) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		l.Step()
		if !callback(l.clk.Now()) {
			return nil
		}

		if simulated {
			adv.Advance(cfg.Step)
			elapsed += uint64(cfg.Step)
		} else {
			time.Sleep(time.Duration(cfg.Step) * time.Millisecond)
			elapsed = uint64(clock.Since(l.clk.Now(), start))
		}
	}
	return nil
}

func validateConfig(cfg Config) error {
	if cfg.Step == 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidStep, cfg.Step)
	}
	if cfg.Duration == 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidDuration, cfg.Duration)
	}
	return nil
}
