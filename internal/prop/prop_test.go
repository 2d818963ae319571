package prop_test

import (
	"bytes"
	"context"
	"go/parser"
	"go/token"
	"io/fs"
	"strconv"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bombprop/internal/clock"
	"github.com/san-kum/bombprop/internal/config"
	"github.com/san-kum/bombprop/internal/display"
	"github.com/san-kum/bombprop/internal/fade"
	"github.com/san-kum/bombprop/internal/keypad"
	"github.com/san-kum/bombprop/internal/prop"
	"github.com/san-kum/bombprop/internal/trace"
)

var _ = Describe("Prop", func() {
	var (
		clk *clock.Manual
		cfg *config.Config
		sim *prop.Sim
		p   *prop.Prop
	)

	BeforeEach(func() {
		clk = clock.NewManual(1000)
		cfg = config.DefaultConfig()
		sim = prop.NewSim(clk, cfg)

		var err error
		p, err = prop.New(clk, cfg, sim.Hardware(), nil)
		Expect(err).NotTo(HaveOccurred())
	})

	step := func(n int, d clock.Millis) {
		for i := 0; i < n; i++ {
			clk.Advance(d)
			p.Step()
		}
	}

	Describe("setup", func() {
		It("plays the init cue and leaves the outputs dark", func() {
			track, playing := sim.Recorder.Track()
			Expect(playing).To(BeTrue())
			Expect(track).To(Equal(1))
			Expect(sim.Recorder.Volume()).To(Equal(cfg.MP3.Volume))
			Expect(sim.Recorder.Level()).To(BeZero())
			Expect(sim.Recorder.RedLED()).To(BeFalse())
			Expect(sim.Recorder.Backlight()).To(BeTrue())
		})

		It("uploads the flipped digits", func() {
			_, ok := sim.Recorder.Defined(display.FlippedOne)
			Expect(ok).To(BeTrue())
		})

		It("rejects an invalid configuration", func() {
			cfg.BombTimer = 0
			_, err := prop.New(clk, cfg, sim.Hardware(), nil)
			Expect(err).To(MatchError(config.ErrBombTimer))
		})

		It("requires a display", func() {
			hw := sim.Hardware()
			hw.Display = nil
			_, err := prop.New(clk, cfg, hw, nil)
			Expect(err).To(MatchError(prop.ErrMissingHardware))
		})

		It("runs silently without an MP3 module", func() {
			hw := sim.Hardware()
			hw.MP3 = nil
			q, err := prop.New(clk, cfg, hw, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(q.Sound.Initialized()).To(BeFalse())
		})

		It("does not depend on the sound card backend", func() {
			fset := token.NewFileSet()
			pkgs, err := parser.ParseDir(fset, ".", func(fi fs.FileInfo) bool {
				return !strings.HasSuffix(fi.Name(), "_test.go")
			}, parser.ImportsOnly)
			Expect(err).NotTo(HaveOccurred())
			Expect(pkgs).To(HaveKey("prop"))

			for _, f := range pkgs["prop"].Files {
				for _, imp := range f.Imports {
					path, err := strconv.Unquote(imp.Path.Value)
					Expect(err).NotTo(HaveOccurred())
					Expect(path).NotTo(HaveSuffix("/internal/audio"))
					Expect(path).NotTo(HavePrefix("github.com/gopxl/beep"))
				}
			}
		})

		It("writes prefixed debug output", func() {
			var logs bytes.Buffer
			_, err := prop.New(clk, cfg, prop.NewSim(clk, cfg).Hardware(), &logs)
			Expect(err).NotTo(HaveOccurred())
			Expect(logs.String()).To(ContainSubstring("[ CS BOMB ]: ready"))
			Expect(logs.String()).To(ContainSubstring("[ DISPLAY ]: ready"))
			Expect(logs.String()).To(ContainSubstring("CURRENT CONFIGURATION"))
		})
	})

	Describe("code entry", func() {
		It("buffers typed keys and shows them on the display", func() {
			p.Display.StartCodeEntry()
			for _, r := range "7355608" {
				Expect(sim.Press(p.Layout, r)).To(BeTrue())
			}

			complete := false
			for i := 0; i < 10; i++ {
				step(1, 5)
				for p.Keypad.HasKey() {
					complete = p.Display.FeedCharacter(byte(p.Keypad.Key()))
				}
			}

			Expect(complete).To(BeTrue())
			Expect(p.Display.Code()).To(Equal("7355608"))
			Expect(sim.Recorder.Line(0)).To(HaveSuffix("7355608"))
		})

		It("ignores characters the keypad does not have", func() {
			Expect(sim.Press(p.Layout, 'x')).To(BeFalse())
			step(1, 5)
			Expect(p.Keypad.HasKey()).To(BeFalse())
		})

		It("stops buffering when key input is disabled", func() {
			p.Keypad.SetEnqueueAllowed(false)
			sim.Press(p.Layout, '1')
			step(1, 5)
			Expect(p.Keypad.Key()).To(Equal(keypad.NoKey))
		})
	})

	Describe("arming switch", func() {
		It("commits a change only after the debounce interval", func() {
			// active low: a low level means armed
			sim.Switch.Set(true)
			step(1, 5)
			Expect(p.Armed()).To(BeFalse())

			sim.Switch.Set(false)
			step(1, 5)
			Expect(p.Armed()).To(BeTrue())

			sim.Switch.Set(true)
			step(1, 5)
			Expect(p.Armed()).To(BeTrue())
			step(10, 5)
			Expect(p.Armed()).To(BeFalse())
		})
	})

	Describe("yellow LED", func() {
		It("pulses with the planted preset", func() {
			Expect(p.StartPlantedLED()).To(Succeed())
			step(400, 5)

			levels := sim.Recorder.Levels()
			Expect(len(levels)).To(BeNumerically(">", 10))
			peak := uint8(0)
			for _, l := range levels {
				if l.Level > peak {
					peak = l.Level
				}
			}
			Expect(peak).To(Equal(uint8(255)))
			Expect(p.LED.Phase()).NotTo(Equal(fade.PhaseInit))
		})

		It("rejects unknown presets", func() {
			Expect(p.StartLED("disco")).To(MatchError(config.ErrUnknownPreset))
		})
	})

	Describe("buzzer", func() {
		It("blinks the red LED for the length of a beep", func() {
			p.Buzzer.Beep(false)
			Expect(sim.Recorder.RedLED()).To(BeTrue())
			step(30, 5)
			Expect(sim.Recorder.RedLED()).To(BeFalse())

			tones := sim.Recorder.Filter(trace.KindTone)
			Expect(tones).To(HaveLen(1))
			Expect(tones[0].Value).To(Equal(int(cfg.Buzzer.Frequency)))
		})
	})

	Describe("defusing", func() {
		It("reveals the whole code and flashes it", func() {
			for _, c := range []byte("1234567") {
				p.Display.FeedCharacter(c)
			}
			p.Display.StartDefusing(true)
			step(1100, 5)

			Expect(p.Display.Revealed()).To(Equal(display.CodeLength))
			Expect(p.Display.DefusePhase()).To(Equal(display.DefuseFlash))
		})
	})

	Describe("Run", func() {
		It("advances a manual clock by the configured tick", func() {
			res, err := p.Run(context.Background(), 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Steps).To(Equal(int(100 / cfg.Loop.Tick)))
			Expect(clock.Since(res.End, res.Start)).To(Equal(clock.Millis(100)))
		})

		It("stops when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := p.Run(ctx, 100)
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	It("keeps every LCD line as wide as the display", func() {
		for _, line := range sim.Recorder.Grid() {
			Expect(line).To(HaveLen(cfg.Display.Columns))
			Expect(strings.TrimSpace(line)).To(BeEmpty())
		}
	})
})
