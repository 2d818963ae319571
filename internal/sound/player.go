// Package sound controls the MP3 player module and the buzzer of the prop.
//
// Both are fire-and-forget: commands return immediately and never report
// failure. When the MP3 module does not answer at setup the [Player] records
// that and turns every later command into a no-op.
package sound

import (
	"log"

	"github.com/san-kum/bombprop/internal/logx"
)

// MaxVolume is the loudest setting of the player module.
const MaxVolume = 30

// Device is the MP3 player module.
type Device interface {
	Begin() error
	SetVolume(v uint8)
	Play(id uint8)
	Stop()
}

type Cue int

const (
	CueInit Cue = iota
	CueRadioBombPlanted
	CueRadioBombTickingDown
	CueBeforeExplosion
	CueExplosionTerWin
	CueDisarmStart
	CueBombDefusedCTWin
	CueSilence
)

var cueNames = map[Cue]string{
	CueInit:                 "init",
	CueRadioBombPlanted:     "radio-bomb-planted",
	CueRadioBombTickingDown: "radio-bomb-ticking-down",
	CueBeforeExplosion:      "before-explosion",
	CueExplosionTerWin:      "explosion-ter-win",
	CueDisarmStart:          "disarm-start",
	CueBombDefusedCTWin:     "bomb-defused-ct-win",
	CueSilence:              "silence",
}

func (c Cue) String() string {
	if n, ok := cueNames[c]; ok {
		return n
	}
	return "unknown"
}

// ParseCue resolves a cue by its name.
func ParseCue(name string) (Cue, bool) {
	for c, n := range cueNames {
		if n == name {
			return c, true
		}
	}
	return 0, false
}

// Cues maps each cue to a track number on the player's card.
type Cues map[Cue]uint8

// Player sends cues to the MP3 module.
type Player struct {
	dev         Device
	cues        Cues
	initialized bool
	log         *log.Logger
}

// NewPlayer starts the device. If it fails to respond the player is degraded:
// it stays usable but silent.
func NewPlayer(dev Device, volume uint8, cues Cues, logger *log.Logger) *Player {
	p := &Player{dev: dev, cues: cues, log: logx.OrDiscard(logger)}
	if volume > MaxVolume {
		volume = MaxVolume
	}

	if err := dev.Begin(); err != nil {
		p.log.Printf("mp3 module not available: %v", err)
		return p
	}
	dev.SetVolume(volume)
	p.initialized = true
	p.log.Printf("mp3 module ready (volume %d)", volume)
	return p
}

func (p *Player) Initialized() bool { return p.initialized }

// Play plays a track by number.
func (p *Player) Play(id uint8) {
	if !p.initialized {
		p.log.Printf("no mp3, not playing %d", id)
		return
	}
	p.log.Printf("play sound %d", id)
	p.dev.Play(id)
}

// PlayCue plays the track configured for c. Unconfigured cues are ignored.
func (p *Player) PlayCue(c Cue) {
	id, ok := p.cues[c]
	if !ok {
		p.log.Printf("no track configured for %s", c)
		return
	}
	p.Play(id)
}

func (p *Player) Stop() {
	if !p.initialized {
		return
	}
	p.log.Println("stop sound")
	p.dev.Stop()
}
