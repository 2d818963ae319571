package scenario_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bombprop/internal/config"
	"github.com/san-kum/bombprop/internal/scenario"
	"github.com/san-kum/bombprop/internal/trace"
)

var _ = Describe("Scenario", func() {
	var cfg *config.Config

	BeforeEach(func() {
		cfg = config.DefaultConfig()
	})

	run := func(sc *scenario.Scenario) *scenario.Result {
		res, err := scenario.Run(context.Background(), sc, cfg, nil)
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	Describe("parsing", func() {
		It("orders steps by time and keeps file order for ties", func() {
			sc, err := scenario.Parse([]byte(`
name: order
duration_ms: 100
steps:
  - {at_ms: 50, command: led.stop}
  - {at_ms: 0, command: code.start}
  - {at_ms: 50, command: sound.stop}
`))
			Expect(err).NotTo(HaveOccurred())
			Expect(sc.Steps).To(HaveLen(3))
			Expect(sc.Steps[0].Command).To(Equal("code.start"))
			Expect(sc.Steps[1].Command).To(Equal("led.stop"))
			Expect(sc.Steps[2].Command).To(Equal("sound.stop"))
		})

		DescribeTable("rejects invalid scenarios",
			func(doc string, want error) {
				_, err := scenario.Parse([]byte(doc))
				Expect(err).To(MatchError(want))
			},
			Entry("no duration", "name: x\nsteps: []\n", scenario.ErrNoDuration),
			Entry("unknown command", "duration_ms: 10\nsteps: [{command: bomb.explode}]\n", scenario.ErrUnknownCommand),
			Entry("bad switch arg", "duration_ms: 10\nsteps: [{command: switch.set, arg: maybe}]\n", scenario.ErrBadArgument),
			Entry("missing keys", "duration_ms: 10\nsteps: [{command: keys.press}]\n", scenario.ErrBadArgument),
			Entry("bad track", "duration_ms: 10\nsteps: [{command: sound.play, arg: '0'}]\n", scenario.ErrBadArgument),
			Entry("bad pitch", "duration_ms: 10\nsteps: [{command: buzzer.beep, arg: loud}]\n", scenario.ErrBadArgument),
			Entry("preset and params", "duration_ms: 10\nsteps: [{command: led.start, arg: steady, led: {min: 1, max: 2}}]\n", scenario.ErrBadArgument),
		)

		It("lists its commands", func() {
			Expect(scenario.Commands()).To(ContainElements("code.start", "led.start", "switch.allow"))
		})
	})

	Describe("the defuse script", func() {
		It("ends with the code flashing and the CT win cue", func() {
			sc, err := scenario.LoadScenario("testdata/defuse.yaml")
			Expect(err).NotTo(HaveOccurred())

			res := run(sc)
			Expect(res.Check(sc.Expect)).To(Succeed())
			Expect(res.Steps).To(Equal(int(7000 / cfg.Loop.Tick)))
			Expect(res.Metrics["peak_level"]).To(BeNumerically(">", 0))
			Expect(res.Metrics["plays"]).To(BeNumerically("==", 4))
		})
	})

	Describe("the countdown script", func() {
		It("beeps twice and clears the display", func() {
			sc, err := scenario.LoadScenario("testdata/countdown.yaml")
			Expect(err).NotTo(HaveOccurred())

			res := run(sc)
			Expect(res.Check(sc.Expect)).To(Succeed())
			Expect(res.Tick).To(BeEquivalentTo(10))
			Expect(res.Metrics["beeps"]).To(BeNumerically("==", 2))
			Expect(res.Metrics["peak_level"]).To(BeNumerically("==", 200))

			var tones []trace.Event
			for _, e := range res.Events {
				if e.Kind == trace.KindTone {
					tones = append(tones, e)
				}
			}
			Expect(tones).To(HaveLen(2))
			Expect(tones[0].At).To(BeEquivalentTo(1000))
			Expect(tones[1].Value).To(Equal(int(cfg.Buzzer.FrequencyHigh)))
		})
	})

	Describe("keypad gating", func() {
		It("drops presses while input is disabled", func() {
			sc, err := scenario.Parse([]byte(`
duration_ms: 200
steps:
  - {at_ms: 0, command: code.start}
  - {at_ms: 0, command: keypad.allow, arg: "off"}
  - {at_ms: 10, command: keys.press, arg: "123"}
  - {at_ms: 100, command: keypad.allow, arg: "on"}
  - {at_ms: 100, command: keys.press, arg: "45"}
`))
			Expect(err).NotTo(HaveOccurred())
			res := run(sc)
			Expect(res.Code).To(Equal("*****45"))
		})
	})

	Describe("switch freezing", func() {
		It("keeps the committed state while updates are blocked", func() {
			sc, err := scenario.Parse([]byte(`
duration_ms: 300
steps:
  - {at_ms: 0, command: switch.set, arg: "on"}
  - {at_ms: 100, command: switch.allow, arg: "off"}
  - {at_ms: 150, command: switch.set, arg: "off"}
`))
			Expect(err).NotTo(HaveOccurred())
			Expect(run(sc).Armed).To(BeTrue())
		})
	})

	Describe("expectations", func() {
		It("reports every mismatch", func() {
			sc, err := scenario.Parse([]byte(`
duration_ms: 50
expect:
  code: "1234567"
  armed: true
`))
			Expect(err).NotTo(HaveOccurred())
			err = run(sc).Check(sc.Expect)
			Expect(err).To(MatchError(scenario.ErrExpectation))
			Expect(err.Error()).To(ContainSubstring("code"))
			Expect(err.Error()).To(ContainSubstring("armed"))
		})
	})

	It("stops on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		sc, err := scenario.Parse([]byte("duration_ms: 100\n"))
		Expect(err).NotTo(HaveOccurred())
		_, err = scenario.Run(ctx, sc, cfg, nil)
		Expect(err).To(MatchError(context.Canceled))
	})

	It("ends a run whose duration reaches the end of the clock range", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		sc, err := scenario.Parse([]byte("duration_ms: 4294967295\ntick_ms: 2147483648\nsteps: []\n"))
		Expect(err).NotTo(HaveOccurred())
		res, err := scenario.Run(ctx, sc, cfg, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Steps).To(Equal(2))
	})

	It("fails a run with an unknown LED preset", func() {
		sc, err := scenario.Parse([]byte("duration_ms: 100\nsteps: [{command: led.start, arg: disco}]\n"))
		Expect(err).NotTo(HaveOccurred())
		_, err = scenario.Run(context.Background(), sc, cfg, nil)
		Expect(err).To(MatchError(config.ErrUnknownPreset))
	})
})
