// Package audio plays the prop's sounds on the host sound card through
// gopxl/beep. It stands in for the MP3 module and the piezo buzzer when the
// prop runs on a desktop.
package audio

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/san-kum/bombprop/internal/logx"
)

const (
	SampleRate = beep.SampleRate(44100)
	BufferTime = 100 * time.Millisecond
)

var ErrNotStarted = errors.New("audio: output not started")

// Output owns the speaker and the mixer every voice plays into.
type Output struct {
	mu      sync.Mutex
	mixer   *beep.Mixer
	started bool
	log     *log.Logger
}

func NewOutput(logger *log.Logger) *Output {
	return &Output{mixer: &beep.Mixer{}, log: logx.OrDiscard(logger)}
}

// Start opens the speaker. Calling it again is a no-op.
func (o *Output) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.started {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(BufferTime)); err != nil {
		return err
	}
	speaker.Play(o.mixer)
	o.started = true
	o.log.Printf("speaker open at %d Hz", SampleRate)
	return nil
}

func (o *Output) Started() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.started
}

// add queues s on the mixer.
func (o *Output) add(s beep.Streamer) error {
	if !o.Started() {
		return ErrNotStarted
	}
	speaker.Lock()
	o.mixer.Add(s)
	speaker.Unlock()
	return nil
}

// Close silences every voice.
func (o *Output) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started {
		return
	}
	speaker.Lock()
	o.mixer.Clear()
	speaker.Unlock()
	o.started = false
}
