package display

// Glyph is a character code as understood by an HD44780-style controller.
// Codes 0-7 address user-defined character slots.
type Glyph byte

const (
	Placeholder Glyph = '*'
	Blank       Glyph = ' '
)

// User-defined slots holding upside-down digits.
const (
	FlippedOne Glyph = iota
	FlippedTwo
	FlippedThree
	FlippedFour
	FlippedFive
	FlippedSeven
)

// Bitmaps for the flipped digits, 5x8 pixels, one byte per row.
var flippedBitmaps = map[Glyph][8]byte{
	FlippedOne:   {0x0E, 0x04, 0x04, 0x04, 0x04, 0x06, 0x04, 0x00},
	FlippedTwo:   {0x1F, 0x02, 0x04, 0x08, 0x10, 0x11, 0x0E, 0x00},
	FlippedThree: {0x0E, 0x11, 0x10, 0x08, 0x04, 0x08, 0x1F, 0x00},
	FlippedFour:  {0x08, 0x08, 0x1F, 0x09, 0x0A, 0x0C, 0x08, 0x00},
	FlippedFive:  {0x0E, 0x11, 0x10, 0x10, 0x0F, 0x01, 0x1F, 0x00},
	FlippedSeven: {0x02, 0x02, 0x02, 0x04, 0x08, 0x10, 0x1F, 0x00},
}

// FlippedBitmap returns the pixel rows of a user-defined flipped digit.
func FlippedBitmap(g Glyph) ([8]byte, bool) {
	b, ok := flippedBitmaps[g]
	return b, ok
}

// Flip maps a character to the glyph that reads upright on the inverted
// display. '0', '8' and '*' are symmetric; '6' and '9' swap.
func Flip(c byte) Glyph {
	switch c {
	case '1':
		return FlippedOne
	case '2':
		return FlippedTwo
	case '3':
		return FlippedThree
	case '4':
		return FlippedFour
	case '5':
		return FlippedFive
	case '6':
		return '9'
	case '7':
		return FlippedSeven
	case '9':
		return '6'
	default:
		return Glyph(c)
	}
}

// Unflip maps a written glyph back to the character it shows. Used by
// simulators that draw the display the right way up.
func Unflip(g Glyph) byte {
	switch g {
	case FlippedOne:
		return '1'
	case FlippedTwo:
		return '2'
	case FlippedThree:
		return '3'
	case FlippedFour:
		return '4'
	case FlippedFive:
		return '5'
	case FlippedSeven:
		return '7'
	case '9':
		return '6'
	case '6':
		return '9'
	default:
		return byte(g)
	}
}
