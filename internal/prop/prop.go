// Package prop assembles the bomb prop's components from a configuration and
// a set of hardware collaborators, and drives them from one control loop.
//
// Prop holds no game rules. An orchestrator (the terminal simulator, a
// scenario script or real firmware glue) decides when to plant, defuse or
// explode and calls the components exposed here.
package prop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/san-kum/bombprop/internal/clock"
	"github.com/san-kum/bombprop/internal/config"
	"github.com/san-kum/bombprop/internal/debounce"
	"github.com/san-kum/bombprop/internal/display"
	"github.com/san-kum/bombprop/internal/fade"
	"github.com/san-kum/bombprop/internal/keypad"
	"github.com/san-kum/bombprop/internal/logx"
	"github.com/san-kum/bombprop/internal/loop"
	"github.com/san-kum/bombprop/internal/sound"
)

var ErrMissingHardware = errors.New("prop: missing hardware")

// Hardware is everything the prop talks to. MP3, Buzzer and RedLED may be
// nil; the prop then runs without sound or without the red LED.
type Hardware struct {
	Display display.RenderSink
	LED     fade.ActuatorSink
	Keys    keypad.RawKeySource
	Switch  debounce.RawInputSource
	MP3     sound.Device
	Buzzer  sound.ToneSink
	RedLED  sound.DigitalOut
}

func (hw Hardware) check() error {
	switch {
	case hw.Display == nil:
		return fmt.Errorf("%w: display", ErrMissingHardware)
	case hw.LED == nil:
		return fmt.Errorf("%w: yellow LED", ErrMissingHardware)
	case hw.Keys == nil:
		return fmt.Errorf("%w: keypad", ErrMissingHardware)
	case hw.Switch == nil:
		return fmt.Errorf("%w: switch", ErrMissingHardware)
	}
	return nil
}

type silentBuzzer struct{}

func (silentBuzzer) Tone(uint16, clock.Millis) {}

type unlit struct{}

func (unlit) Set(bool) {}

type Prop struct {
	cfg *config.Config
	clk clock.Clock
	log *log.Logger

	Loop    *loop.Loop
	Layout  *keypad.Layout
	Display *display.Animator
	Keypad  *keypad.Keypad
	Switch  *debounce.Debouncer
	LED     *fade.Animator
	Sound   *sound.Player
	Buzzer  *sound.Buzzer
}

// New validates cfg and sets up every component in the same order as the
// firmware: sound first so the init cue plays while the rest comes up.
// Debug output goes to logs; nil keeps the components quiet.
func New(clk clock.Clock, cfg *config.Config, hw Hardware, logs io.Writer) (*Prop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := hw.check(); err != nil {
		return nil, err
	}
	layout, err := keypad.NewLayout(cfg.Keypad.Layout)
	if err != nil {
		return nil, err
	}
	if hw.MP3 == nil {
		hw.MP3 = sound.NoDevice{}
	}
	if hw.Buzzer == nil {
		hw.Buzzer = silentBuzzer{}
	}
	if hw.RedLED == nil {
		hw.RedLED = unlit{}
	}

	p := &Prop{cfg: cfg, clk: clk, Layout: layout, log: logx.New(logs, logx.PrefixProp)}
	cfg.LogSummary(p.log)

	p.Sound = sound.NewPlayer(hw.MP3, cfg.MP3.Volume, cfg.Cues(), logx.New(logs, logx.PrefixSound))
	p.Sound.PlayCue(sound.CueInit)

	p.Buzzer = sound.NewBuzzer(clk, hw.Buzzer, hw.RedLED, sound.BuzzerConfig{
		Frequency:     cfg.Buzzer.Frequency,
		FrequencyHigh: cfg.Buzzer.FrequencyHigh,
		Duration:      cfg.Buzzer.Duration,
		BlinkLED:      cfg.LED.BlinkRed,
		Logger:        logx.New(logs, logx.PrefixBuzzer),
	})
	p.LED = fade.New(clk, hw.LED, logx.New(logs, logx.PrefixLED))
	p.Switch = debounce.New(clk, hw.Switch, debounce.Config{
		Interval:  cfg.Switch.Debounce,
		ActiveLow: cfg.Switch.ActiveLow,
		Logger:    logx.New(logs, logx.PrefixSwitch),
	})
	p.Display = display.New(clk, hw.Display, display.Config{
		Width:     cfg.Display.Columns,
		Lines:     cfg.Display.Lines,
		Backlight: cfg.Display.Backlight,
		Seed:      cfg.Seed,
		Logger:    logx.New(logs, logx.PrefixDisplay),
	})
	p.Keypad = keypad.New(hw.Keys, cfg.Keypad.QueueSize, logx.New(logs, logx.PrefixKeypad))

	p.Loop = loop.New(clk)
	p.Loop.Add(p.Keypad)
	p.Loop.Add(loop.TickFunc(func() { p.Switch.Tick() }))
	p.Loop.Add(p.Display)
	p.Loop.Add(p.LED)
	p.Loop.Add(p.Buzzer)

	p.log.Println("ready")
	return p, nil
}

func (p *Prop) Config() *config.Config { return p.cfg }
func (p *Prop) Clock() clock.Clock     { return p.clk }

// Step runs one iteration of the control loop.
func (p *Prop) Step() { p.Loop.Step() }

// Run drives the loop for d at the configured tick.
func (p *Prop) Run(ctx context.Context, d clock.Millis) (*loop.Result, error) {
	return p.Loop.Run(ctx, loop.Config{Step: p.cfg.Loop.Tick, Duration: d})
}

// StartLED starts the named fade preset on the yellow LED.
func (p *Prop) StartLED(preset string) error {
	fp, ok := p.cfg.Preset(preset)
	if !ok {
		return fmt.Errorf("%w: %q", config.ErrUnknownPreset, preset)
	}
	p.log.Printf("yellow LED preset %s", preset)
	p.LED.Activate(fp.Params())
	return nil
}

// StartPlantedLED starts the preset configured for a planted bomb.
func (p *Prop) StartPlantedLED() error {
	return p.StartLED(p.cfg.LED.Preset)
}

// Armed reports the debounced arming switch.
func (p *Prop) Armed() bool { return p.Switch.State() }
