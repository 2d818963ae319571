package clock

import (
	"math"
	"testing"
	"time"
)

func TestSinceAcrossWrap(t *testing.T) {
	tests := []struct {
		name      string
		now, last Millis
		want      Millis
	}{
		{"no wrap", 1500, 1000, 500},
		{"equal", 42, 42, 0},
		{"wrapped", 10, math.MaxUint32 - 9, 20},
		{"wrapped to zero", 0, math.MaxUint32, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Since(tt.now, tt.last); got != tt.want {
				t.Errorf("Since(%d, %d) = %d, want %d", tt.now, tt.last, got, tt.want)
			}
		})
	}
}

func TestElapsed(t *testing.T) {
	if Elapsed(174, 100, 75) {
		t.Error("74ms should not satisfy a 75ms threshold")
	}
	if !Elapsed(175, 100, 75) {
		t.Error("75ms should satisfy a 75ms threshold")
	}
	if !Elapsed(30, math.MaxUint32-44, 75) {
		t.Error("75ms across the wrap should satisfy a 75ms threshold")
	}
}

func TestManualClock(t *testing.T) {
	c := NewManual(100)
	if c.Now() != 100 {
		t.Fatalf("expected 100, got %d", c.Now())
	}
	if got := c.Advance(50); got != 150 {
		t.Errorf("expected 150 after advance, got %d", got)
	}
	c.Set(7)
	if c.Now() != 7 {
		t.Errorf("expected 7 after set, got %d", c.Now())
	}
}

func TestManualNearWrap(t *testing.T) {
	c := NewManualNearWrap(10)
	start := c.Now()
	if start != math.MaxUint32-9 {
		t.Fatalf("expected start 10ms before wrap, got %d", start)
	}
	c.Advance(25)
	if Since(c.Now(), start) != 25 {
		t.Errorf("expected 25ms elapsed across wrap, got %d", Since(c.Now(), start))
	}
}

func TestSystemClockMonotonic(t *testing.T) {
	c := NewSystem()
	a := c.Now()
	time.Sleep(2 * time.Millisecond)
	b := c.Now()
	if Since(b, a) == 0 {
		t.Error("system clock did not advance")
	}
}
