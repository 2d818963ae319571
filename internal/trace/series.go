package trace

import "github.com/san-kum/bombprop/internal/clock"

// Series samples the level history at n evenly spaced times between from and
// to. The level holds between samples; before the first sample it is zero.
func Series(levels []LevelSample, from, to clock.Millis, n int) []float64 {
	if n < 1 {
		return nil
	}
	out := make([]float64, n)
	span := clock.Since(to, from)

	idx := 0
	cur := 0.0
	for i := range out {
		at := from
		if n > 1 {
			at = from + clock.Millis(uint64(span)*uint64(i)/uint64(n-1))
		}
		for idx < len(levels) && clock.Since(levels[idx].At, from) <= clock.Since(at, from) {
			cur = float64(levels[idx].Level)
			idx++
		}
		out[i] = cur
	}
	return out
}
