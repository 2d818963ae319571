package audio

import (
	"log"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"

	"github.com/san-kum/bombprop/internal/clock"
	"github.com/san-kum/bombprop/internal/logx"
)

// Buzzer sounds sine tones on the shared output. It implements sound.ToneSink.
type Buzzer struct {
	out *Output
	log *log.Logger
	// Gain is the beep volume exponent applied to every tone.
	Gain float64
}

func NewBuzzer(out *Output, logger *log.Logger) *Buzzer {
	return &Buzzer{out: out, Gain: -2, log: logx.OrDiscard(logger)}
}

func (b *Buzzer) Tone(freqHz uint16, d clock.Millis) {
	s, err := ToneStreamer(freqHz, d)
	if err != nil {
		b.log.Printf("tone %d Hz: %v", freqHz, err)
		return
	}
	if err := b.out.add(&effects.Volume{Streamer: s, Base: 2, Volume: b.Gain}); err != nil {
		b.log.Printf("tone %d Hz: %v", freqHz, err)
	}
}

// ToneStreamer returns a sine tone of freqHz lasting d.
func ToneStreamer(freqHz uint16, d clock.Millis) (beep.Streamer, error) {
	sine, err := generators.SineTone(SampleRate, float64(freqHz))
	if err != nil {
		return nil, err
	}
	return beep.Take(SampleRate.N(time.Duration(d)*time.Millisecond), sine), nil
}
