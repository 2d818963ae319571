package config

import (
	"fmt"
	"unicode/utf8"

	"github.com/san-kum/bombprop/internal/display"
	"github.com/san-kum/bombprop/internal/sound"
)

// Validate reports the first setting the prop cannot run with.
func (c *Config) Validate() error {
	if c.BombTimer <= 0 {
		return fmt.Errorf("%w: %d", ErrBombTimer, c.BombTimer)
	}
	if c.Loop.Tick == 0 {
		return ErrTick
	}
	if c.MP3.Volume > sound.MaxVolume {
		return fmt.Errorf("%w: %d > %d", ErrVolume, c.MP3.Volume, sound.MaxVolume)
	}
	if c.Display.Columns < display.CodeLength || c.Display.Lines < 1 {
		return fmt.Errorf("%w: %dx%d", ErrDisplayShape, c.Display.Columns, c.Display.Lines)
	}
	if c.Keypad.QueueSize < 1 {
		return fmt.Errorf("%w: %d", ErrQueueSize, c.Keypad.QueueSize)
	}
	if err := c.validateKeypad(); err != nil {
		return err
	}
	for name := range c.MP3.Sounds {
		if _, ok := sound.ParseCue(name); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCue, name)
		}
	}
	for name, p := range c.Presets {
		if p.Max < p.Min {
			return fmt.Errorf("%w: preset %q", ErrFadeRange, name)
		}
	}
	if c.LED.Preset != "" {
		if _, ok := c.Preset(c.LED.Preset); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPreset, c.LED.Preset)
		}
	}
	return nil
}

func (c *Config) validateKeypad() error {
	k := c.Keypad
	if len(k.Layout) == 0 {
		return fmt.Errorf("%w: empty layout", ErrKeypadLayout)
	}
	if len(k.RowPins) > 0 && len(k.RowPins) != len(k.Layout) {
		return fmt.Errorf("%w: %d rows, %d row pins", ErrKeypadLayout, len(k.Layout), len(k.RowPins))
	}
	cols := utf8.RuneCountInString(k.Layout[0])
	for _, row := range k.Layout {
		if utf8.RuneCountInString(row) != cols {
			return fmt.Errorf("%w: ragged row %q", ErrKeypadLayout, row)
		}
	}
	if len(k.ColPins) > 0 && len(k.ColPins) != cols {
		return fmt.Errorf("%w: %d columns, %d column pins", ErrKeypadLayout, cols, len(k.ColPins))
	}
	return nil
}
