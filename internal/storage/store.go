package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/vortex/internal/config"
	"github.com/san-kum/vortex/internal/elements"
	"github.com/san-kum/vortex/internal/metrics"
)

const (
	metadataFile    = "metadata.json"
	sceneFile       = "scene.yaml"
	diagnosticsFile = "diagnostics.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Scene       string             `json:"scene"`
	Timestamp   time.Time          `json:"timestamp"`
	Re          float64            `json:"re"`
	Dt          float64            `json:"dt"`
	VDelta      float64            `json:"vdelta"`
	Steps       int                `json:"steps"`
	Backend     string             `json:"backend"`
	Particles   int                `json:"particles"`
	Panels      int                `json:"panels"`
	FieldPoints int                `json:"field_points"`
	Error       string             `json:"error,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Run is an open run directory. Diagnostics are appended one record per
// step; metadata is written on Close.
type Run struct {
	dir   string
	meta  RunMetadata
	diag  *os.File
	wrote bool
}

// Begin creates a run directory for cfg and writes the scene next to it.
func (s *Store) Begin(cfg *config.Config) (*Run, error) {
	now := time.Now()
	id := fmt.Sprintf("%s_%d", slug(cfg.Name), now.UnixNano())
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}
	if err := config.Save(filepath.Join(dir, sceneFile), cfg); err != nil {
		return nil, fmt.Errorf("writing %s: %w", sceneFile, err)
	}

	f, err := os.Create(filepath.Join(dir, diagnosticsFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", diagnosticsFile, err)
	}

	return &Run{
		dir:  dir,
		diag: f,
		meta: RunMetadata{
			ID:        id,
			Scene:     cfg.Name,
			Timestamp: now,
			Re:        cfg.Sim.Re,
			Dt:        cfg.Sim.Dt,
			Backend:   cfg.Sim.Backend,
		},
	}, nil
}

func (r *Run) ID() string  { return r.meta.ID }
func (r *Run) Dir() string { return r.dir }

// Append writes one diagnostics row.
func (r *Run) Append(rec metrics.Record) error {
	records := []metrics.Record{rec}
	if !r.wrote {
		if err := gocsv.Marshal(records, r.diag); err != nil {
			return fmt.Errorf("writing diagnostics: %w", err)
		}
		r.wrote = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, r.diag); err != nil {
			return fmt.Errorf("writing diagnostics: %w", err)
		}
	}

	r.meta.Steps = rec.Step
	r.meta.Particles = rec.Particles
	r.meta.Panels = rec.Panels
	r.meta.FieldPoints = rec.FieldPoints
	return nil
}

// Snapshot writes the element state at the given step to its own file.
func (r *Run) Snapshot(step int, colls []elements.Collection) error {
	rows := Elements(colls)
	path := filepath.Join(r.dir, snapshotName(step))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	defer f.Close()
	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Close records the run parameters, final metric values and the error that
// ended the run, if any, then closes the diagnostics file.
func (r *Run) Close(vdelta float64, backend string, m map[string]float64, runErr error) error {
	r.meta.VDelta = vdelta
	if backend != "" {
		r.meta.Backend = backend
	}
	r.meta.Metrics = m
	if runErr != nil {
		r.meta.Error = runErr.Error()
	}

	if err := r.diag.Close(); err != nil {
		return err
	}

	metaFile, err := os.Create(filepath.Join(r.dir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	return enc.Encode(r.meta)
}

// List returns the metadata of every finished run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
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

// LoadScene reads back the scene a run was started from.
func (s *Store) LoadScene(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, sceneFile))
}

func (s *Store) LoadDiagnostics(runID string) ([]metrics.Record, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, diagnosticsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var recs []metrics.Record
	if err := gocsv.UnmarshalFile(f, &recs); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []metrics.Record{}, nil
		}
		return nil, err
	}
	return recs, nil
}

func (s *Store) LoadSnapshot(runID string, step int) ([]ElementRow, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, snapshotName(step)))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []ElementRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func snapshotName(step int) string {
	return fmt.Sprintf("elements_%06d.csv", step)
}

func slug(name string) string {
	if name == "" {
		return "run"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + 'a' - 'A'
		default:
			return '_'
		}
	}, name)
}
