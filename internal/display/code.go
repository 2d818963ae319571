package display

// CodeLength is the number of characters in the arming code.
const CodeLength = 7

// CodeBuffer holds the most recent CodeLength characters entered.
type CodeBuffer [CodeLength]byte

func NewCodeBuffer() CodeBuffer {
	var b CodeBuffer
	b.Clear()
	return b
}

func (b *CodeBuffer) Clear() {
	for i := range b {
		b[i] = byte(Placeholder)
	}
}

// Feed shifts every character one slot towards the head, dropping the oldest,
// and appends c. It reports whether all slots now hold real characters.
func (b *CodeBuffer) Feed(c byte) bool {
	copy(b[:], b[1:])
	b[CodeLength-1] = c
	return b.Complete()
}

func (b *CodeBuffer) Complete() bool {
	for _, c := range b {
		if c == byte(Placeholder) {
			return false
		}
	}
	return true
}

func (b *CodeBuffer) String() string { return string(b[:]) }
