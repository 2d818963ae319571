package scenario

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/bombprop/internal/clock"
	"github.com/san-kum/bombprop/internal/config"
	"github.com/san-kum/bombprop/internal/display"
	"github.com/san-kum/bombprop/internal/prop"
	"github.com/san-kum/bombprop/internal/trace"
)

type Result struct {
	Name     string
	Tick     clock.Millis
	Duration clock.Millis
	Steps    int
	Events   []trace.Event
	Display  []string
	Code     string
	Armed    bool
	Level    uint8
	Track    int
	Playing  bool
	RedLED   bool
	Keys     int
	Metrics  map[string]float64
}

type runner struct {
	p   *prop.Prop
	sim *prop.Sim
}

// Run plays sc against a fresh simulated prop built from cfg. Commands due at
// a time are applied before the loop iteration at that time. While the
// display is in code entry, buffered key presses are fed to the code.
func Run(ctx context.Context, sc *Scenario, cfg *config.Config, logs io.Writer) (*Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	clk := clock.NewManual(0)
	sim := prop.NewSim(clk, cfg)
	p, err := prop.New(clk, cfg, sim.Hardware(), logs)
	if err != nil {
		return nil, err
	}
	r := &runner{p: p, sim: sim}

	tick := sc.Tick
	if tick == 0 {
		tick = cfg.Loop.Tick
	}

	// elapsed is widened so a duration close to the clock range still ends
	// when the last tick steps past it.
	var elapsed uint64
	next := 0
	steps := 0
	for elapsed < uint64(sc.Duration) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for next < len(sc.Steps) && uint64(sc.Steps[next].At) <= elapsed {
			st := sc.Steps[next]
			if err := commands[st.Command].apply(r, st); err != nil {
				return nil, fmt.Errorf("step %d at %dms (%s): %w", next+1, st.At, st.Command, err)
			}
			next++
		}

		p.Step()
		r.feedKeys()
		steps++
		clk.Advance(tick)
		elapsed += uint64(tick)
	}

	return r.result(sc, tick, steps), nil
}

func (r *runner) feedKeys() {
	if r.p.Display.Mode() != display.ModeCodeEntry {
		return
	}
	for r.p.Keypad.HasKey() {
		r.p.Display.FeedCharacter(byte(r.p.Keypad.Key()))
	}
}

func (r *runner) result(sc *Scenario, tick clock.Millis, steps int) *Result {
	rec := r.sim.Recorder
	track, playing := rec.Track()
	res := &Result{
		Name:     sc.Name,
		Tick:     tick,
		Duration: sc.Duration,
		Steps:    steps,
		Events:   rec.Events(),
		Display:  rec.Grid(),
		Code:     r.p.Display.Code(),
		Armed:    r.p.Armed(),
		Level:    rec.Level(),
		Track:    track,
		Playing:  playing,
		RedLED:   rec.RedLED(),
		Keys:     r.p.Keypad.Buffered(),
	}

	var peak uint8
	for _, l := range rec.Levels() {
		if l.Level > peak {
			peak = l.Level
		}
	}
	res.Metrics = map[string]float64{
		"peak_level": float64(peak),
		"plays":      float64(len(rec.Filter(trace.KindPlay))),
		"beeps":      float64(len(rec.Filter(trace.KindTone))),
		"glyphs":     float64(len(rec.Filter(trace.KindGlyph))),
	}
	return res
}

// Check compares the result with the scenario's expectations and lists every
// mismatch in the returned error.
func (res *Result) Check(e *Expect) error {
	if e == nil {
		return nil
	}

	var failed []string
	mismatch := func(what string, got, want any) {
		failed = append(failed, fmt.Sprintf("%s: got %v, want %v", what, got, want))
	}

	for i, want := range e.Display {
		if i >= len(res.Display) {
			mismatch(fmt.Sprintf("display line %d", i), "<none>", want)
			continue
		}
		if got := strings.TrimRight(res.Display[i], " "); got != strings.TrimRight(want, " ") {
			mismatch(fmt.Sprintf("display line %d", i), fmt.Sprintf("%q", got), fmt.Sprintf("%q", want))
		}
	}
	if e.Code != nil && res.Code != *e.Code {
		mismatch("code", res.Code, *e.Code)
	}
	if e.Armed != nil && res.Armed != *e.Armed {
		mismatch("armed", res.Armed, *e.Armed)
	}
	if e.Level != nil && res.Level != *e.Level {
		mismatch("led level", res.Level, *e.Level)
	}
	if e.Track != nil && res.Track != *e.Track {
		mismatch("track", res.Track, *e.Track)
	}
	if e.Playing != nil && res.Playing != *e.Playing {
		mismatch("playing", res.Playing, *e.Playing)
	}
	if e.RedLED != nil && res.RedLED != *e.RedLED {
		mismatch("red led", res.RedLED, *e.RedLED)
	}
	if e.Keys != nil && res.Keys != *e.Keys {
		mismatch("buffered keys", res.Keys, *e.Keys)
	}

	if len(failed) > 0 {
		return fmt.Errorf("%w:\n  %s", ErrExpectation, strings.Join(failed, "\n  "))
	}
	return nil
}
