package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/vortex/internal/config"
	"github.com/san-kum/vortex/internal/elements"
	"github.com/san-kum/vortex/internal/metrics"
)

func testRun(t *testing.T, st *Store) *Run {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Name = "Test Ring"
	run, err := st.Begin(cfg)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	return run
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	run := testRun(t, st)
	for i := 1; i <= 3; i++ {
		rec := metrics.Record{Step: i, Time: 0.01 * float64(i), Particles: 64, CircZ: 1e-3, MaxSpeed: 0.5}
		if err := run.Append(rec); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}
	if err := run.Close(0.05, "serial", map[string]float64{"circulation": 1e-3}, nil); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	meta, err := st.Load(run.ID())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scene != "Test Ring" {
		t.Errorf("expected scene 'Test Ring', got '%s'", meta.Scene)
	}
	if meta.Steps != 3 {
		t.Errorf("expected 3 steps, got %d", meta.Steps)
	}
	if meta.Particles != 64 {
		t.Errorf("expected 64 particles, got %d", meta.Particles)
	}
	if meta.Backend != "serial" {
		t.Errorf("expected backend 'serial', got '%s'", meta.Backend)
	}
	if meta.Metrics["circulation"] != 1e-3 {
		t.Errorf("expected circulation 1e-3, got %f", meta.Metrics["circulation"])
	}
	if meta.Error != "" {
		t.Errorf("expected no error, got %q", meta.Error)
	}

	recs, err := st.LoadDiagnostics(run.ID())
	if err != nil {
		t.Fatalf("load diagnostics failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if recs[2].Step != 3 || recs[2].MaxSpeed != 0.5 {
		t.Errorf("unexpected last record %+v", recs[2])
	}

	cfg, err := st.LoadScene(run.ID())
	if err != nil {
		t.Fatalf("load scene failed: %v", err)
	}
	if cfg.Sim.Dt != config.DefaultDt {
		t.Errorf("expected dt %g, got %g", config.DefaultDt, cfg.Sim.Dt)
	}
}

func TestStoreList(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "runs"))

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	open := testRun(t, st)
	closed := testRun(t, st)
	if err := closed.Close(0.05, "", nil, errors.New("boom")); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	// runs without metadata are still in progress and not listed
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].ID != closed.ID() {
		t.Errorf("expected run %s, got %s", closed.ID(), runs[0].ID)
	}
	if runs[0].Error != "boom" {
		t.Errorf("expected error 'boom', got %q", runs[0].Error)
	}
	if err := open.Close(0, "", nil, nil); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	run := testRun(t, st)
	if err := run.Close(0.05, "", nil, nil); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	for _, name := range []string{metadataFile, sceneFile, diagnosticsFile} {
		if _, err := os.Stat(filepath.Join(tmpDir, run.ID(), name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
	if filepath.Base(run.Dir()) != run.ID() {
		t.Errorf("run dir %s does not match id %s", run.Dir(), run.ID())
	}
	if got := slug("Test Ring"); got != "test_ring" {
		t.Errorf("expected slug test_ring, got %s", got)
	}

	recs, err := st.LoadDiagnostics(run.ID())
	if err != nil {
		t.Fatalf("load diagnostics failed: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected no records, got %d", len(recs))
	}
}

func TestSnapshotAndExport(t *testing.T) {
	st := New(t.TempDir())
	run := testRun(t, st)

	pts, err := elements.NewPoints([]float64{1, 2, 3}, []float64{0, 0, 1, 0.1}, elements.Active, elements.Lagrangian, nil)
	if err != nil {
		t.Fatal(err)
	}
	panels, err := elements.NewSurfaces([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []int{0, 1, 2}, []float64{1, 0}, elements.Active, elements.Fixed, nil)
	if err != nil {
		t.Fatal(err)
	}
	colls := []elements.Collection{elements.FromPoints(pts), elements.FromSurfaces(panels)}

	if err := run.Append(metrics.Record{Step: 1, Particles: 1, Panels: 1}); err != nil {
		t.Fatal(err)
	}
	if err := run.Snapshot(1, colls); err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if err := run.Close(0.1, "cpu", nil, nil); err != nil {
		t.Fatal(err)
	}

	rows, err := st.LoadSnapshot(run.ID(), 1)
	if err != nil {
		t.Fatalf("load snapshot failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Kind != "active" || rows[0].Position().Z != 3 || rows[0].SZ != 1 || rows[0].R != 0.1 {
		t.Errorf("unexpected particle row %+v", rows[0])
	}
	if rows[1].Kind != "panel" || rows[1].Set != 1 || rows[1].R != 0.5 || rows[1].SX != 0.5 {
		t.Errorf("unexpected panel row %+v", rows[1])
	}

	data, err := st.Export(run.ID())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(data.Final) != 2 || len(data.Diagnostics) != 1 {
		t.Errorf("expected 2 final rows and 1 record, got %d and %d", len(data.Final), len(data.Diagnostics))
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, data); err != nil {
		t.Fatal(err)
	}
	var back ExportData
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("exported json does not parse: %v", err)
	}
	if back.Run.ID != run.ID() || back.Run.Backend != "cpu" {
		t.Errorf("unexpected exported run %+v", back.Run)
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := ExportJSON(path, data); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}
