package keypad

// Presses is a RawKeySource fed programmatically, one press per poll. The
// terminal simulator and scripted scenarios use it in place of a key matrix.
type Presses struct {
	pending []Key
	held    bool
}

func (p *Presses) Press(k Key) {
	if k != NoKey {
		p.pending = append(p.pending, k)
	}
}

// Hold marks a key as physically held until Release.
func (p *Presses) Hold()    { p.held = true }
func (p *Presses) Release() { p.held = false }

func (p *Presses) PollKey() Key {
	if len(p.pending) == 0 {
		return NoKey
	}
	k := p.pending[0]
	p.pending = p.pending[1:]
	return k
}

func (p *Presses) AnyPressed() bool { return p.held || len(p.pending) > 0 }
