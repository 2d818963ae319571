package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/san-kum/bombprop/internal/sound"
)

func TestIndexTracks(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"0001.mp3",
		"0002_planted.wav",
		"0003.MP3",
		"0300.mp3", // out of range
		"readme.txt",
		"12.mp3",
		"0002.mp3", // duplicate number, first one wins
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "0004.mp3"), 0o755); err != nil {
		t.Fatal(err)
	}

	tracks, err := IndexTracks(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d: %v", len(tracks), tracks)
	}
	if got := filepath.Base(tracks[1]); got != "0001.mp3" {
		t.Errorf("track 1: got %s", got)
	}
	if got := filepath.Base(tracks[2]); got != "0002.mp3" && got != "0002_planted.wav" {
		t.Errorf("track 2: got %s", got)
	}
	if got := filepath.Base(tracks[3]); got != "0003.MP3" {
		t.Errorf("track 3: got %s", got)
	}
}

func TestIndexTracksMissingDir(t *testing.T) {
	if _, err := IndexTracks(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestVolumeGain(t *testing.T) {
	tests := []struct {
		v      uint8
		exp    float64
		silent bool
	}{
		{0, 0, true},
		{sound.MaxVolume, 0, false},
		{15, -1, false},
		{200, 0, false},
	}
	for _, tt := range tests {
		exp, silent := VolumeGain(tt.v)
		if silent != tt.silent || math.Abs(exp-tt.exp) > 1e-9 {
			t.Errorf("VolumeGain(%d) = %f, %t; want %f, %t", tt.v, exp, silent, tt.exp, tt.silent)
		}
	}
}

func TestToneStreamerLength(t *testing.T) {
	s, err := ToneStreamer(2000, 125)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			break
		}
	}
	if want := SampleRate.N(125 * time.Millisecond); total != want {
		t.Errorf("expected %d samples, got %d", want, total)
	}
}

func TestOutputNotStarted(t *testing.T) {
	out := NewOutput(nil)
	b := NewBuzzer(out, nil)
	b.Tone(2000, 50)
	if err := out.add(nil); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
}

func TestSpeakerBeginWithoutTracks(t *testing.T) {
	s := NewSpeaker(NewOutput(nil), t.TempDir(), nil)
	if err := s.Begin(); err == nil {
		t.Error("expected error for empty sound directory")
	}
	s.Play(1)
	s.Stop()
}

type fakeSource struct {
	left   int
	pos    int
	closed atomic.Int32
}

func (f *fakeSource) Stream(samples [][2]float64) (int, bool) {
	if f.left == 0 {
		return 0, false
	}
	n := min(len(samples), f.left)
	for i := range samples[:n] {
		samples[i] = [2]float64{0.5, 0.5}
	}
	f.left -= n
	f.pos += n
	return n, true
}

func (f *fakeSource) Err() error     { return nil }
func (f *fakeSource) Len() int       { return f.pos + f.left }
func (f *fakeSource) Position() int  { return f.pos }
func (f *fakeSource) Seek(int) error { return nil }

func (f *fakeSource) Close() error {
	f.closed.Add(1)
	return nil
}

func TestSpeakerReleasesTrackAtEnd(t *testing.T) {
	s := NewSpeaker(NewOutput(nil), t.TempDir(), nil)
	src := &fakeSource{left: 1000}
	v := s.newVoice(src, beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2})
	s.mu.Lock()
	s.current = v
	s.mu.Unlock()

	buf := make([][2]float64, 256)
	for i := 0; i < 100; i++ {
		if _, ok := v.ctrl.Stream(buf); !ok {
			break
		}
	}

	deadline := time.Now().Add(time.Second)
	for {
		s.mu.Lock()
		cur := s.current
		s.mu.Unlock()
		if cur == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("expected the finished track to be released")
		}
		time.Sleep(time.Millisecond)
	}
	if n := src.closed.Load(); n != 1 {
		t.Errorf("expected source closed once, got %d", n)
	}
}

func TestSpeakerKeepsReplacementWhenOldTrackEnds(t *testing.T) {
	s := NewSpeaker(NewOutput(nil), t.TempDir(), nil)
	format := beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}
	oldSrc, newSrc := &fakeSource{}, &fakeSource{left: 10}
	old := s.newVoice(oldSrc, format)
	next := s.newVoice(newSrc, format)
	s.current = next

	s.finished(old)
	if s.current != next {
		t.Error("expected the playing track to stay current")
	}
	if oldSrc.closed.Load() != 0 || newSrc.closed.Load() != 0 {
		t.Error("expected no source closed by a stale end of stream")
	}
}
