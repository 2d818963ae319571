// Package storage keeps recorded prop runs on disk: one directory per run
// holding metadata.json and events.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/bombprop/internal/clock"
	"github.com/san-kum/bombprop/internal/trace"
)

var ErrBadRecord = errors.New("storage: malformed event record")

const (
	metadataFile = "metadata.json"
	eventsFile   = "events.csv"
)

var eventHeader = []string{"at_ms", "kind", "col", "row", "value", "duration_ms"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      uint64             `json:"seed"`
	Tick      clock.Millis       `json:"tick_ms"`
	Duration  clock.Millis       `json:"duration_ms"`
	Steps     int                `json:"steps"`
	Events    int                `json:"events"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Save writes a run and returns its id. ID, Timestamp and Events in meta are
// filled in.
func (s *Store) Save(meta RunMetadata, events []trace.Event) (string, error) {
	now := time.Now()
	runID := s.newRunID(meta.Name, now)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Events = len(events)

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, eventsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(eventHeader); err != nil {
		return "", err
	}
	for _, e := range events {
		row := []string{
			strconv.FormatUint(uint64(e.At), 10),
			string(e.Kind),
			strconv.Itoa(e.Col),
			strconv.Itoa(e.Row),
			strconv.Itoa(e.Value),
			strconv.FormatUint(uint64(e.Duration), 10),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) newRunID(name string, now time.Time) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, name)
	if slug == "" {
		slug = "run"
	}

	base := fmt.Sprintf("%s_%d", slug, now.Unix())
	id := base
	for n := 2; ; n++ {
		if _, err := os.Stat(filepath.Join(s.baseDir, id)); os.IsNotExist(err) {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

// List returns the saved runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadEvents(runID string) ([]trace.Event, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, eventsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(eventHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []trace.Event{}, nil
	}

	events := make([]trace.Event, 0, len(records)-1)
	for i, record := range records[1:] {
		e, err := parseEvent(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", eventsFile, i+2, err)
		}
		events = append(events, e)
	}
	return events, nil
}

func parseEvent(record []string) (trace.Event, error) {
	var nums [5]int64
	for i, idx := range []int{0, 2, 3, 4, 5} {
		n, err := strconv.ParseInt(record[idx], 10, 64)
		if err != nil {
			return trace.Event{}, fmt.Errorf("%w: %v", ErrBadRecord, err)
		}
		nums[i] = n
	}
	return trace.Event{
		At:       clock.Millis(nums[0]),
		Kind:     trace.Kind(record[1]),
		Col:      int(nums[1]),
		Row:      int(nums[2]),
		Value:    int(nums[3]),
		Duration: clock.Millis(nums[4]),
	}, nil
}

// LoadLevels returns the LED level series of a run.
func (s *Store) LoadLevels(runID string) ([]trace.LevelSample, error) {
	events, err := s.LoadEvents(runID)
	if err != nil {
		return nil, err
	}

	levels := make([]trace.LevelSample, 0)
	for _, e := range events {
		if e.Kind == trace.KindLevel {
			levels = append(levels, trace.LevelSample{At: e.At, Level: uint8(e.Value)})
		}
	}
	return levels, nil
}
