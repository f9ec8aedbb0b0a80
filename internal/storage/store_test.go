package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/merement/Dice/internal/config"
	"github.com/merement/Dice/internal/dynamo"
	"github.com/merement/Dice/internal/graph"
	"github.com/merement/Dice/internal/optim"
)

func sampleResult() *optim.Result {
	return &optim.Result{
		Cut:           4,
		Configuration: graph.Configuration{1, -1, 1, -1},
		Relaxed:       dynamo.State{0.1, -1.9, 0.05, -2},
		Rounds:        2,
		Trials:        18,
		State:         optim.Saturated,
		History: []optim.Round{
			{Index: 1, Trials: 8, ScanCut: 3, Cut: 4, Best: 4, Improved: true, Flips: 1, WinnerTrial: 5, Elapsed: 12 * time.Millisecond},
			{Index: 2, Trials: 10, ScanCut: 4, Cut: 4, Best: 4, Improved: false, WinnerTrial: -1, Elapsed: 9 * time.Millisecond},
		},
		Elapsed: 21 * time.Millisecond,
	}
}

func sampleMetadata(t *testing.T) RunMetadata {
	t.Helper()
	g, err := graph.Cycle(4)
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	m, err := dynamo.NewModel(g, dynamo.WithCoupling(dynamo.Triangular))
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	meta := NewMetadata("cycle4", m, 42, sampleResult())
	meta.Config = config.DefaultConfig()
	meta.Metrics = map[string]float64{"activity": 0.25}
	return meta
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(sampleMetadata(t), sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID {
		t.Errorf("expected id %q, got %q", runID, meta.ID)
	}
	if meta.Seed != 42 || meta.Nodes != 4 || meta.Edges != 4 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Coupling != "triangular" || meta.Integrator != "euler" {
		t.Errorf("expected triangular/euler, got %s/%s", meta.Coupling, meta.Integrator)
	}
	if meta.Cut != 4 || meta.State != "saturated" {
		t.Errorf("expected cut 4 saturated, got %v %s", meta.Cut, meta.State)
	}
	if meta.Config == nil || meta.Config.Model.Coupling != config.DefaultCoupling {
		t.Errorf("config not round-tripped: %+v", meta.Config)
	}
	if meta.Metrics["activity"] != 0.25 {
		t.Errorf("expected activity 0.25, got %f", meta.Metrics["activity"])
	}

	c, v, err := st.LoadConfiguration(runID)
	if err != nil {
		t.Fatalf("load configuration failed: %v", err)
	}
	if !c.Equal(graph.Configuration{1, -1, 1, -1}) {
		t.Errorf("unexpected configuration %v", c)
	}
	if len(v) != 4 || v[1] != -1.9 {
		t.Errorf("unexpected relaxed state %v", v)
	}

	history, err := st.LoadHistory(runID)
	if err != nil {
		t.Fatalf("load history failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(history))
	}
	if history[0] != sampleResult().History[0] {
		t.Errorf("round 1 mismatch: %+v", history[0])
	}
	if history[1].Improved || history[1].WinnerTrial != -1 {
		t.Errorf("round 2 mismatch: %+v", history[1])
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"later", "earlier"} {
		meta := sampleMetadata(t)
		meta.Name = name
		meta.Timestamp = base.Add(time.Duration(1-i) * time.Hour)
		if _, err := st.Save(meta, sampleResult()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(st.Dir(), "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Name != "earlier" || runs[1].Name != "later" {
		t.Errorf("expected oldest first, got %s, %s", runs[0].Name, runs[1].Name)
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(sampleMetadata(t), sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, configurationFile, historyFile} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestCorruptFiles(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	runID, err := st.Save(sampleMetadata(t), sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	bad := "node,spin,relaxed\n1,0,0.5\n"
	if err := os.WriteFile(filepath.Join(tmpDir, runID, configurationFile), []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := st.LoadConfiguration(runID); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, runID, metadataFile), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Load(runID); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, sampleMetadata(t), sampleResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Meta.Name != "cycle4" || len(got.Configuration) != 4 || len(got.History) != 2 {
		t.Errorf("unexpected export: %+v", got)
	}
}
