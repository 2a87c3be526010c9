package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/vortex/internal/metrics"
)

type ExportData struct {
	Run         RunMetadata      `json:"run"`
	Diagnostics []metrics.Record `json:"diagnostics"`
	Final       []ElementRow     `json:"final,omitempty"`
}

// Export gathers a stored run into one document. The last snapshot, if any,
// is included as Final.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	diag, err := s.LoadDiagnostics(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{Run: *meta, Diagnostics: diag}
	if rows, err := s.LoadSnapshot(runID, meta.Steps); err == nil {
		data.Final = rows
	}
	return data, nil
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
