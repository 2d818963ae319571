package keypad

import (
	"errors"
	"fmt"
)

var ErrLayoutShape = errors.New("keypad: layout rows must be non-empty and equally long")

// DefaultLayout is the 4x4 membrane keypad.
var DefaultLayout = []string{"123A", "456B", "789C", "*0#D"}

// Layout maps matrix positions to key characters.
type Layout struct {
	rows []string
	keys map[Key]struct{}
}

func NewLayout(rows []string) (*Layout, error) {
	if len(rows) == 0 {
		return nil, ErrLayoutShape
	}
	keys := make(map[Key]struct{})
	for i, r := range rows {
		if len(r) == 0 || len(r) != len(rows[0]) {
			return nil, fmt.Errorf("%w: row %d is %q", ErrLayoutShape, i, r)
		}
		for j := 0; j < len(r); j++ {
			keys[Key(r[j])] = struct{}{}
		}
	}
	return &Layout{rows: rows, keys: keys}, nil
}

func (l *Layout) Rows() int { return len(l.rows) }
func (l *Layout) Cols() int { return len(l.rows[0]) }

// At returns the key at a matrix position, or NoKey when out of range.
func (l *Layout) At(row, col int) Key {
	if row < 0 || row >= len(l.rows) || col < 0 || col >= len(l.rows[row]) {
		return NoKey
	}
	return Key(l.rows[row][col])
}

// Lookup maps a typed character to a keypad key, NoKey when the pad lacks it.
func (l *Layout) Lookup(r rune) Key {
	if r <= 0 || r > 0x7f {
		return NoKey
	}
	k := Key(r)
	if _, ok := l.keys[k]; !ok {
		return NoKey
	}
	return k
}

func (l *Layout) Contains(k Key) bool {
	_, ok := l.keys[k]
	return ok
}
