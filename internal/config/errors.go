package config

import "errors"

var (
	ErrBombTimer     = errors.New("config: bomb timer must be positive")
	ErrTick          = errors.New("config: loop tick must be positive")
	ErrVolume        = errors.New("config: mp3 volume out of range")
	ErrDisplayShape  = errors.New("config: display too small for the bomb code")
	ErrKeypadLayout  = errors.New("config: keypad layout does not match pins")
	ErrQueueSize     = errors.New("config: keypad queue size must be positive")
	ErrUnknownCue    = errors.New("config: unknown sound cue")
	ErrUnknownPreset = errors.New("config: unknown fade preset")
	ErrFadeRange     = errors.New("config: fade max below min")
)
