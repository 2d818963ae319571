package trace

import (
	"errors"
	"testing"

	"github.com/san-kum/bombprop/internal/clock"
	"github.com/san-kum/bombprop/internal/display"
	"github.com/san-kum/bombprop/internal/fade"
	"github.com/san-kum/bombprop/internal/sound"
)

// The recorder has to satisfy every output the prop drives.
var (
	_ display.RenderSink   = (*Recorder)(nil)
	_ display.GlyphDefiner = (*Recorder)(nil)
	_ fade.ActuatorSink    = (*Recorder)(nil)
	_ sound.Device         = (*Recorder)(nil)
	_ sound.ToneSink       = (*Recorder)(nil)
	_ sound.DigitalOut     = (*Recorder)(nil)
)

func TestRecorderDisplay(t *testing.T) {
	clk := clock.NewManual(10)
	r := NewRecorder(clk, 16, 2)
	a := display.New(clk, r, display.Config{Width: 16, Lines: 2, Backlight: true})

	if !r.Backlight() {
		t.Error("expected backlight on")
	}
	if _, ok := r.Defined(display.FlippedSeven); !ok {
		t.Error("expected flipped digits uploaded")
	}

	a.StartCodeEntry()
	for _, c := range []byte("7355608") {
		a.FeedCharacter(c)
	}
	clk.Advance(5)
	a.Tick()

	if got := r.Line(0); got != "         7355608" {
		t.Errorf("expected code on the top line, got %q", got)
	}
	if got := r.Line(1); got != "                " {
		t.Errorf("expected blank bottom line, got %q", got)
	}

	a.Stop()
	if got := r.Grid()[0]; got != "                " {
		t.Errorf("expected clear display after stop, got %q", got)
	}
}

func TestRecorderIgnoresOutOfRangeWrites(t *testing.T) {
	r := NewRecorder(clock.NewManual(0), 4, 1)
	r.WriteGlyphAt(9, 0, 'x')
	r.WriteGlyphAt(0, 3, 'x')
	r.WriteGlyphAt(-1, 0, 'x')
	if got := r.Line(0); got != "    " {
		t.Errorf("unexpected contents %q", got)
	}
	if n := len(r.Filter(KindGlyph)); n != 3 {
		t.Errorf("writes should still be recorded, got %d", n)
	}
}

func TestRecorderLevels(t *testing.T) {
	clk := clock.NewManual(0)
	r := NewRecorder(clk, 16, 2)
	f := fade.New(clk, r, nil)
	f.Activate(fade.NewParams(0, 10, 5, 5, 100, 100, 0))

	for i := 0; i < 10; i++ {
		clk.Advance(20)
		f.Tick()
	}

	levels := r.Levels()
	if len(levels) < 2 {
		t.Fatalf("expected a level history, got %v", levels)
	}
	if levels[0].Level != 0 || levels[0].At != 0 {
		t.Errorf("expected initial zero at t=0, got %+v", levels[0])
	}
	for i := 1; i < len(levels); i++ {
		if levels[i].At < levels[i-1].At {
			t.Errorf("levels out of order at %d", i)
		}
	}
	if r.Level() != levels[len(levels)-1].Level {
		t.Error("current level differs from the last sample")
	}
}

func TestRecorderSound(t *testing.T) {
	clk := clock.NewManual(0)
	r := NewRecorder(clk, 16, 2)
	p := sound.NewPlayer(r, 20, sound.Cues{sound.CueDisarmStart: 6}, nil)

	p.PlayCue(sound.CueDisarmStart)
	if track, playing := r.Track(); track != 6 || !playing {
		t.Errorf("expected track 6 playing, got %d %t", track, playing)
	}
	p.Stop()
	if _, playing := r.Track(); playing {
		t.Error("expected playback stopped")
	}
	if r.Volume() != 20 {
		t.Errorf("expected volume 20, got %d", r.Volume())
	}
}

func TestRecorderMissingDevice(t *testing.T) {
	r := NewRecorder(clock.NewManual(0), 16, 2)
	r.DeviceMissing = true
	if err := r.Begin(); !errors.Is(err, ErrDeviceMissing) {
		t.Errorf("expected ErrDeviceMissing, got %v", err)
	}

	p := sound.NewPlayer(r, 20, sound.Cues{sound.CueInit: 1}, nil)
	p.PlayCue(sound.CueInit)
	if n := len(r.Filter(KindPlay, KindVolume)); n != 0 {
		t.Errorf("expected no commands after failed begin, got %d", n)
	}
}

func TestRecorderBuzzerAndRedLED(t *testing.T) {
	clk := clock.NewManual(0)
	r := NewRecorder(clk, 16, 2)
	b := sound.NewBuzzer(clk, r, r, sound.BuzzerConfig{Frequency: 2000, FrequencyHigh: 3000, Duration: 100, BlinkLED: true})

	b.Beep(true)
	tones := r.Filter(KindTone)
	if len(tones) != 1 || tones[0].Value != 3000 || tones[0].Duration != 100 {
		t.Fatalf("unexpected tones %+v", tones)
	}
	if !r.RedLED() {
		t.Error("expected red LED on")
	}
	clk.Advance(101)
	b.Tick()
	if r.RedLED() {
		t.Error("expected red LED off")
	}
}

func TestRecorderReset(t *testing.T) {
	r := NewRecorder(clock.NewManual(0), 16, 2)
	r.SetOutputLevel(42)
	r.Reset()
	if len(r.Events()) != 0 {
		t.Error("expected no events after reset")
	}
	if r.Level() != 42 {
		t.Error("reset must keep the output state")
	}
}
