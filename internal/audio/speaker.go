package audio

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"

	"github.com/san-kum/bombprop/internal/logx"
	"github.com/san-kum/bombprop/internal/sound"
)

// trackName matches the card layout of the MP3 module: a four digit track
// number, an optional title and an mp3 or wav extension.
var trackName = regexp.MustCompile(`^(\d{4})[^.]*\.(?i:mp3|wav)$`)

// IndexTracks lists the playable files of dir by track number.
func IndexTracks(dir string) (map[uint8]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	tracks := make(map[uint8]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := trackName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > math.MaxUint8 {
			continue
		}
		if _, dup := tracks[uint8(n)]; dup {
			continue
		}
		tracks[uint8(n)] = filepath.Join(dir, e.Name())
	}
	return tracks, nil
}

// VolumeGain converts a module volume (0..MaxVolume) to a beep volume
// exponent in base 2. Zero is silent.
func VolumeGain(v uint8) (exp float64, silent bool) {
	if v == 0 {
		return 0, true
	}
	if v > sound.MaxVolume {
		v = sound.MaxVolume
	}
	return math.Log2(float64(v) / sound.MaxVolume), false
}

// Speaker plays numbered tracks from a directory. It implements sound.Device.
type Speaker struct {
	out *Output
	dir string
	log *log.Logger

	mu      sync.Mutex
	tracks  map[uint8]string
	volume  uint8
	current *voice
}

type voice struct {
	ctrl   *beep.Ctrl
	vol    *effects.Volume
	source beep.StreamSeekCloser
}

func NewSpeaker(out *Output, dir string, logger *log.Logger) *Speaker {
	return &Speaker{out: out, dir: dir, volume: sound.MaxVolume, log: logx.OrDiscard(logger)}
}

// Begin opens the speaker and indexes the sound directory.
func (s *Speaker) Begin() error {
	tracks, err := IndexTracks(s.dir)
	if err != nil {
		return fmt.Errorf("index sounds: %w", err)
	}
	if len(tracks) == 0 {
		return fmt.Errorf("no tracks in %s", s.dir)
	}
	if err := s.out.Start(); err != nil {
		return fmt.Errorf("open speaker: %w", err)
	}

	s.mu.Lock()
	s.tracks = tracks
	s.mu.Unlock()
	s.log.Printf("%d tracks in %s", len(tracks), s.dir)
	return nil
}

func (s *Speaker) SetVolume(v uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.volume = v
	if s.current != nil {
		speaker.Lock()
		s.current.vol.Volume, s.current.vol.Silent = VolumeGain(v)
		speaker.Unlock()
	}
}

// Play starts track id, cutting off whatever was playing.
func (s *Speaker) Play(id uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, ok := s.tracks[id]
	if !ok {
		s.log.Printf("track %d not found", id)
		return
	}
	v, err := s.open(path)
	if err != nil {
		s.log.Printf("track %d: %v", id, err)
		return
	}

	s.stopLocked()
	if err := s.out.add(v.ctrl); err != nil {
		v.source.Close()
		s.log.Printf("track %d: %v", id, err)
		return
	}
	s.current = v
}

func (s *Speaker) open(path string) (*voice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var (
		src    beep.StreamSeekCloser
		format beep.Format
	)
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		src, format, err = wav.Decode(f)
	} else {
		src, format, err = mp3.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, err
	}

	return s.newVoice(src, format), nil
}

// newVoice wraps src for the mixer. At the end of the stream the voice
// releases its source unless it was stopped or replaced first.
func (s *Speaker) newVoice(src beep.StreamSeekCloser, format beep.Format) *voice {
	var stream beep.Streamer = src
	if format.SampleRate != SampleRate {
		stream = beep.Resample(4, format.SampleRate, SampleRate, src)
	}
	vol := &effects.Volume{Streamer: stream, Base: 2}
	vol.Volume, vol.Silent = VolumeGain(s.volume)

	v := &voice{vol: vol, source: src}
	// The callback runs on the mixer goroutine with the speaker locked.
	v.ctrl = &beep.Ctrl{Streamer: beep.Seq(vol, beep.Callback(func() { go s.finished(v) }))}
	return v
}

func (s *Speaker) finished(v *voice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != v {
		return
	}
	v.source.Close()
	s.current = nil
}

func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Speaker) stopLocked() {
	if s.current == nil {
		return
	}
	speaker.Lock()
	s.current.ctrl.Paused = true
	s.current.ctrl.Streamer = nil
	speaker.Unlock()
	s.current.source.Close()
	s.current = nil
}
