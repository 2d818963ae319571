package sound

import (
	"log"

	"github.com/san-kum/bombprop/internal/clock"
	"github.com/san-kum/bombprop/internal/logx"
)

// ToneSink sounds a tone for a fixed duration without blocking.
type ToneSink interface {
	Tone(freqHz uint16, d clock.Millis)
}

// DigitalOut is an on/off output such as the red LED.
type DigitalOut interface {
	Set(on bool)
}

type BuzzerConfig struct {
	Frequency     uint16
	FrequencyHigh uint16
	Duration      clock.Millis
	// BlinkLED lights the red LED for the length of every beep.
	BlinkLED bool
	Logger   *log.Logger
}

// Buzzer beeps and optionally blinks the red LED along with it.
type Buzzer struct {
	clk  clock.Clock
	tone ToneSink
	led  DigitalOut
	cfg  BuzzerConfig
	log  *log.Logger

	last  clock.Millis
	ledOn bool
}

func NewBuzzer(clk clock.Clock, tone ToneSink, led DigitalOut, cfg BuzzerConfig) *Buzzer {
	b := &Buzzer{clk: clk, tone: tone, led: led, cfg: cfg, log: logx.OrDiscard(cfg.Logger)}
	b.led.Set(false)
	b.log.Println("ready")
	return b
}

// Beep sounds the buzzer at the normal or the high frequency.
func (b *Buzzer) Beep(highPitch bool) {
	b.log.Println("activate buzzer")
	if b.cfg.BlinkLED {
		b.led.Set(true)
		b.ledOn = true
		b.last = b.clk.Now()
	}
	freq := b.cfg.Frequency
	if highPitch {
		freq = b.cfg.FrequencyHigh
	}
	b.tone.Tone(freq, b.cfg.Duration)
}

// Tick switches the red LED off once the beep is over.
func (b *Buzzer) Tick() {
	if !b.cfg.BlinkLED || !b.ledOn {
		return
	}
	if clock.Since(b.clk.Now(), b.last) > b.cfg.Duration {
		b.led.Set(false)
		b.ledOn = false
	}
}

func (b *Buzzer) LEDOn() bool { return b.ledOn }
