// Package clock provides the shared millisecond time source for every
// tick-driven component of the prop.
//
// Time is a wrapping 32-bit millisecond counter ([Millis]), the same width as
// the microcontroller's millis() counter. Components never compare absolute
// timestamps; they only compare elapsed intervals:
//
//	if clock.Elapsed(c.Now(), last, interval) {
//		last = c.Now()
//		// advance one step
//	}
//
// Unsigned subtraction makes the counter wrap transparent.
//
//   - [System]: real time since construction
//   - [Manual]: settable clock for tests and headless scenario runs
package clock
