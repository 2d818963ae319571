// Package logx builds the per-component debug loggers of the prop.
//
// Each component writes through its own *log.Logger with a fixed-width
// prefix so interleaved output from one control loop stays readable:
//
//	[ DISPLAY ]: start planted animation
//	[ KEYPAD  ]: queue full, dropped key "7"
package logx

import (
	"io"
	"log"
)

const (
	PrefixProp    = "[ CS BOMB ]: "
	PrefixDisplay = "[ DISPLAY ]: "
	PrefixKeypad  = "[ KEYPAD  ]: "
	PrefixSound   = "[  SOUND  ]: "
	PrefixBuzzer  = "[ BUZZER  ]: "
	PrefixSwitch  = "[ SWITCH  ]: "
	PrefixLED     = "[  Y LED  ]: "
)

// New returns a logger writing to w with the given component prefix.
// A nil writer yields a logger that discards everything.
func New(w io.Writer, prefix string) *log.Logger {
	if w == nil {
		w = io.Discard
	}
	return log.New(w, prefix, log.Lmsgprefix|log.Ltime|log.Lmicroseconds)
}

// Discard returns a silent logger.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// OrDiscard returns l, or a silent logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
