package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/bombprop/internal/trace"
)

type ExportData struct {
	Run    RunMetadata   `json:"run"`
	Events []trace.Event `json:"events"`
}

// ExportJSON writes a saved run as a single JSON document to path, or to
// stdout when path is "-".
func (s *Store) ExportJSON(runID, path string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	events, err := s.LoadEvents(runID)
	if err != nil {
		return err
	}

	if path == "-" {
		return writeJSON(os.Stdout, ExportData{Run: *meta, Events: events})
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeJSON(file, ExportData{Run: *meta, Events: events})
}

func writeJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
