package display

import (
	"log"
	"math/rand/v2"

	"github.com/san-kum/bombprop/internal/clock"
	"github.com/san-kum/bombprop/internal/logx"
)

// Animation timing in milliseconds.
const (
	PlantedStep        clock.Millis = 75
	DecoyInterval      clock.Millis = 100
	FlashInterval      clock.Millis = 500
	RevealDuration     clock.Millis = 10000
	RevealDurationFast clock.Millis = 5000
)

// RenderSink is the display driver.
type RenderSink interface {
	WriteGlyphAt(col, row int, g Glyph)
	Clear()
	SetBacklight(on bool)
}

// GlyphDefiner is implemented by drivers that accept user-defined characters.
type GlyphDefiner interface {
	DefineGlyph(slot Glyph, rows [8]byte)
}

type Mode int

const (
	ModeNone Mode = iota
	ModeCodeEntry
	ModePlanted
	ModeDefusing
)

func (m Mode) String() string {
	switch m {
	case ModeCodeEntry:
		return "code-entry"
	case ModePlanted:
		return "planted"
	case ModeDefusing:
		return "defusing"
	default:
		return "none"
	}
}

type DefusePhase int

const (
	DefuseInit DefusePhase = iota
	DefuseReveal
	DefuseFlash
)

func (p DefusePhase) String() string {
	switch p {
	case DefuseReveal:
		return "reveal"
	case DefuseFlash:
		return "flash"
	default:
		return "init"
	}
}

type plantedState struct {
	col     int
	forward bool
	last    clock.Millis
}

type defuseState struct {
	phase    DefusePhase
	fastTool bool
	begin    clock.Millis
	last     clock.Millis
	revealed int
	showCode bool
}

type Config struct {
	Width     int
	Lines     int
	Backlight bool
	Seed      uint64
	Logger    *log.Logger
}

// Animator renders one animation at a time onto a RenderSink.
type Animator struct {
	clk   clock.Clock
	sink  RenderSink
	rng   *rand.Rand
	log   *log.Logger
	width int
	row   int

	code    CodeBuffer
	mode    Mode
	planted plantedState
	defuse  defuseState
}

// New sets up the display: uploads the flipped digits when the driver supports
// custom glyphs, applies the backlight and clears the screen. Widths narrower
// than the code are widened to CodeLength.
func New(clk clock.Clock, sink RenderSink, cfg Config) *Animator {
	width := cfg.Width
	if width < CodeLength {
		width = CodeLength
	}
	row := 1
	if cfg.Lines < 2 {
		row = 0
	}

	a := &Animator{
		clk:   clk,
		sink:  sink,
		rng:   rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		log:   logx.OrDiscard(cfg.Logger),
		width: width,
		row:   row,
		code:  NewCodeBuffer(),
		mode:  ModeNone,
	}
	a.planted.forward = true

	if d, ok := sink.(GlyphDefiner); ok {
		for _, g := range []Glyph{FlippedOne, FlippedTwo, FlippedThree, FlippedFour, FlippedFive, FlippedSeven} {
			d.DefineGlyph(g, flippedBitmaps[g])
		}
	}
	a.SetBacklight(cfg.Backlight)
	a.sink.Clear()
	a.log.Println("ready")
	return a
}

func (a *Animator) SetBacklight(on bool) {
	a.log.Printf("backlight %t", on)
	a.sink.SetBacklight(on)
}

func (a *Animator) StartCodeEntry() {
	a.log.Println("start code entry animation")
	a.begin(ModeCodeEntry)
	a.code.Clear()
}

func (a *Animator) StartPlanted() {
	a.log.Println("start planted animation")
	a.begin(ModePlanted)
	a.planted = plantedState{col: 0, forward: true, last: a.clk.Now()}
}

// StartDefusing begins the reveal of the current code. A defuse kit halves
// the reveal time.
func (a *Animator) StartDefusing(fastTool bool) {
	a.log.Printf("start defusing animation (defuse kit: %t)", fastTool)
	a.begin(ModeDefusing)
	a.defuse = defuseState{phase: DefuseInit, fastTool: fastTool, last: a.clk.Now()}
}

func (a *Animator) begin(m Mode) {
	if a.mode != ModeNone && a.mode != m {
		a.sink.Clear()
	}
	a.mode = m
}

// Stop clears the display and returns to ModeNone. The code is kept.
func (a *Animator) Stop() {
	a.log.Println("stopping animation")
	a.sink.Clear()
	a.mode = ModeNone
	a.planted = plantedState{forward: true}
	a.defuse = defuseState{}
}

// Tick performs one step of the active animation.
func (a *Animator) Tick() {
	switch a.mode {
	case ModeCodeEntry:
		a.tickCodeEntry()
	case ModePlanted:
		a.tickPlanted()
	case ModeDefusing:
		a.tickDefusing()
	}
}

// FeedCharacter appends c to the code and reports whether the code is complete.
func (a *Animator) FeedCharacter(c byte) bool {
	done := a.code.Feed(c)
	a.log.Printf("code: %s", a.code.String())
	return done
}

func (a *Animator) ClearCode() {
	a.code.Clear()
	a.log.Printf("code: %s", a.code.String())
}

func (a *Animator) tickCodeEntry() {
	a.drawCode()
}

func (a *Animator) tickPlanted() {
	p := &a.planted
	a.sink.WriteGlyphAt(p.col, a.row, Placeholder)

	now := a.clk.Now()
	if !clock.Elapsed(now, p.last, PlantedStep) {
		return
	}
	p.last = now

	a.sink.WriteGlyphAt(p.col, a.row, Blank)
	if p.forward {
		p.col++
	} else {
		p.col--
	}
	if p.col == a.width-1 {
		p.forward = false
	} else if p.col == 0 {
		p.forward = true
	}
}

func (a *Animator) tickDefusing() {
	d := &a.defuse
	now := a.clk.Now()

	switch d.phase {
	case DefuseInit:
		a.drawPlaceholders()
		d.begin = now
		d.last = now
		d.revealed = 0
		d.phase = DefuseReveal

	case DefuseReveal:
		total := RevealDuration
		if d.fastTool {
			total = RevealDurationFast
		}
		elapsed := clock.Since(now, d.begin)

		target := int(uint64(elapsed) * CodeLength / uint64(total))
		if target > CodeLength-1 {
			target = CodeLength - 1
		}
		if d.revealed < target {
			a.revealNext()
		}

		done := elapsed >= total
		if !done && clock.Elapsed(now, d.last, DecoyInterval) {
			d.last = now
			if d.revealed < CodeLength {
				a.sink.WriteGlyphAt(CodeLength-1-d.revealed, a.row, Flip(byte('0'+a.rng.IntN(10))))
			}
		}

		if done {
			// A stalled loop can reach the end with characters still hidden.
			// They are all drawn in this tick so the flash always shows the full code.
			for d.revealed < CodeLength {
				a.revealNext()
			}
			d.last = now
			d.showCode = false
			d.phase = DefuseFlash
		}

	case DefuseFlash:
		if !clock.Elapsed(now, d.last, FlashInterval) {
			return
		}
		d.last = now
		if d.showCode {
			a.drawPlaceholders()
		} else {
			a.drawCode()
		}
		d.showCode = !d.showCode
	}
}

// revealNext draws the next code character in its mirrored column.
func (a *Animator) revealNext() {
	d := &a.defuse
	a.sink.WriteGlyphAt(CodeLength-1-d.revealed, a.row, Flip(a.code[d.revealed]))
	d.revealed++
}

// drawCode writes the code reversed, as it reads on the inverted display.
func (a *Animator) drawCode() {
	for col := 0; col < CodeLength; col++ {
		a.sink.WriteGlyphAt(col, a.row, Flip(a.code[CodeLength-1-col]))
	}
}

func (a *Animator) drawPlaceholders() {
	for col := 0; col < CodeLength; col++ {
		a.sink.WriteGlyphAt(col, a.row, Placeholder)
	}
}

func (a *Animator) Mode() Mode               { return a.mode }
func (a *Animator) Code() string             { return a.code.String() }
func (a *Animator) CodeComplete() bool       { return a.code.Complete() }
func (a *Animator) Width() int               { return a.width }
func (a *Animator) Row() int                 { return a.row }
func (a *Animator) MarkerColumn() int        { return a.planted.col }
func (a *Animator) MarkerForward() bool      { return a.planted.forward }
func (a *Animator) DefusePhase() DefusePhase { return a.defuse.phase }
func (a *Animator) Revealed() int            { return a.defuse.revealed }
func (a *Animator) FlashShowingCode() bool   { return a.defuse.showCode }
