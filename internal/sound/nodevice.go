package sound

import "errors"

var ErrNoDevice = errors.New("sound: no mp3 module")

// NoDevice is an MP3 module that never answers. A Player built on it is
// degraded from the start.
type NoDevice struct{}

func (NoDevice) Begin() error    { return ErrNoDevice }
func (NoDevice) SetVolume(uint8) {}
func (NoDevice) Play(uint8)      {}
func (NoDevice) Stop()           {}
