// Package display animates the prop's character LCD.
//
// The LCD is mounted upside down, so every code digit goes through a
// flip-correction table before it is written (see [Flip]). Three animations
// are available, one active at a time:
//
//   - CodeEntry: the code being typed, unentered slots shown as '*'
//   - Planted: a single '*' sweeping back and forth across the code row
//   - Defusing: the code revealed one character at a time while a decoy digit
//     flickers in the next slot, then flashing until stopped
//
// The [Animator] never blocks. Each call to Tick performs at most one step of
// the active animation, based on the elapsed time since its last step.
package display
