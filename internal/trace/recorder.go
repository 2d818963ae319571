// Package trace records what the prop's components write to their outputs.
//
// A Recorder stands in for all of the prop's hardware at once: the LCD, the
// yellow LED, the MP3 module, the buzzer and the red LED. Every write is kept
// as a timestamped Event, and the current state of each output can be read
// back.
package trace

import (
	"strings"
	"sync"

	"github.com/san-kum/bombprop/internal/clock"
	"github.com/san-kum/bombprop/internal/display"
)

type Kind string

const (
	KindGlyph     Kind = "glyph"
	KindClear     Kind = "clear"
	KindBacklight Kind = "backlight"
	KindDefine    Kind = "define"
	KindLevel     Kind = "level"
	KindBegin     Kind = "begin"
	KindVolume    Kind = "volume"
	KindPlay      Kind = "play"
	KindStop      Kind = "stop"
	KindTone      Kind = "tone"
	KindRedLED    Kind = "red"
)

// Event is one write to an output. Value carries the level, track, volume,
// frequency or on/off state depending on Kind.
type Event struct {
	At    clock.Millis
	Kind  Kind
	Col   int
	Row   int
	Value int
	// Duration is set for tones.
	Duration clock.Millis
}

type Recorder struct {
	clk clock.Clock

	mu        sync.Mutex
	events    []Event
	cells     [][]display.Glyph
	defined   map[display.Glyph][8]byte
	backlight bool
	level     uint8
	red       bool
	volume    uint8
	track     int
	playing   bool

	// DeviceMissing makes Begin fail, like an MP3 module that does not answer.
	DeviceMissing bool
}

func NewRecorder(clk clock.Clock, cols, lines int) *Recorder {
	if cols < 1 {
		cols = 1
	}
	if lines < 1 {
		lines = 1
	}
	r := &Recorder{clk: clk, defined: make(map[display.Glyph][8]byte)}
	r.cells = make([][]display.Glyph, lines)
	for i := range r.cells {
		r.cells[i] = blankRow(cols)
	}
	return r
}

func blankRow(cols int) []display.Glyph {
	row := make([]display.Glyph, cols)
	for i := range row {
		row[i] = display.Blank
	}
	return row
}

func (r *Recorder) record(e Event) {
	e.At = r.clk.Now()
	r.events = append(r.events, e)
}

func (r *Recorder) WriteGlyphAt(col, row int, g display.Glyph) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if row >= 0 && row < len(r.cells) && col >= 0 && col < len(r.cells[row]) {
		r.cells[row][col] = g
	}
	r.record(Event{Kind: KindGlyph, Col: col, Row: row, Value: int(g)})
}

func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.cells {
		r.cells[i] = blankRow(len(r.cells[i]))
	}
	r.record(Event{Kind: KindClear})
}

func (r *Recorder) SetBacklight(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backlight = on
	r.record(Event{Kind: KindBacklight, Value: boolInt(on)})
}

func (r *Recorder) DefineGlyph(slot display.Glyph, rows [8]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defined[slot] = rows
	r.record(Event{Kind: KindDefine, Value: int(slot)})
}

func (r *Recorder) SetOutputLevel(level uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.level = level
	r.record(Event{Kind: KindLevel, Value: int(level)})
}

func (r *Recorder) Begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Event{Kind: KindBegin, Value: boolInt(!r.DeviceMissing)})
	if r.DeviceMissing {
		return ErrDeviceMissing
	}
	return nil
}

func (r *Recorder) SetVolume(v uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.volume = v
	r.record(Event{Kind: KindVolume, Value: int(v)})
}

func (r *Recorder) Play(id uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.track = int(id)
	r.playing = true
	r.record(Event{Kind: KindPlay, Value: int(id)})
}

func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playing = false
	r.record(Event{Kind: KindStop})
}

func (r *Recorder) Tone(freqHz uint16, d clock.Millis) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Event{Kind: KindTone, Value: int(freqHz), Duration: d})
}

// Set drives the red LED.
func (r *Recorder) Set(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.red = on
	r.record(Event{Kind: KindRedLED, Value: boolInt(on)})
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Filter returns the recorded events of the given kinds.
func (r *Recorder) Filter(kinds ...Kind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for _, e := range r.events {
		for _, k := range kinds {
			if e.Kind == k {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Reset forgets the recorded events but keeps the output state.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// Cells returns a copy of the LCD contents, row by row.
func (r *Recorder) Cells() [][]display.Glyph {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([][]display.Glyph, len(r.cells))
	for i, row := range r.cells {
		out[i] = append([]display.Glyph(nil), row...)
	}
	return out
}

// Line renders one row of the LCD as a person reads it. The display is
// mounted upside down, so row 0 is the bottom row of the controller, columns
// run right to left and flipped digits are shown upright.
func (r *Recorder) Line(row int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if row < 0 || row >= len(r.cells) {
		return ""
	}
	cells := r.cells[len(r.cells)-1-row]
	var b strings.Builder
	for c := len(cells) - 1; c >= 0; c-- {
		b.WriteByte(display.Unflip(cells[c]))
	}
	return b.String()
}

// Grid renders the whole LCD, top line first.
func (r *Recorder) Grid() []string {
	r.mu.Lock()
	n := len(r.cells)
	r.mu.Unlock()

	lines := make([]string, n)
	for i := range lines {
		lines[i] = r.Line(i)
	}
	return lines
}

func (r *Recorder) Defined(slot display.Glyph) ([8]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows, ok := r.defined[slot]
	return rows, ok
}

func (r *Recorder) Backlight() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backlight
}

func (r *Recorder) Level() uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.level
}

func (r *Recorder) RedLED() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.red
}

func (r *Recorder) Volume() uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.volume
}

// Track returns the last track started and whether it is still playing.
func (r *Recorder) Track() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.track, r.playing
}

// LevelSample is the LED level at one point in time.
type LevelSample struct {
	At    clock.Millis
	Level uint8
}

// Levels returns the LED level history.
func (r *Recorder) Levels() []LevelSample {
	var out []LevelSample
	for _, e := range r.Filter(KindLevel) {
		out = append(out, LevelSample{At: e.At, Level: uint8(e.Value)})
	}
	return out
}
