// Package storage keeps finished runs on disk, one directory per run:
// metadata.json, configuration.csv (per-node spin and relaxed value) and
// history.csv (one row per search round).
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/merement/Dice/internal/config"
	"github.com/merement/Dice/internal/dynamo"
	"github.com/merement/Dice/internal/graph"
	"github.com/merement/Dice/internal/optim"
)

var ErrCorrupt = errors.New("storage: corrupt run file")

const (
	metadataFile      = "metadata.json"
	configurationFile = "configuration.csv"
	historyFile       = "history.csv"
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

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Nodes       int                `json:"nodes"`
	Edges       int                `json:"edges"`
	TotalWeight float64            `json:"total_weight"`
	Coupling    string             `json:"coupling"`
	Integrator  string             `json:"integrator"`
	Scale       float64            `json:"scale"`
	Cut         float64            `json:"cut"`
	Rounds      int                `json:"rounds"`
	Trials      int                `json:"trials"`
	State       string             `json:"state"`
	ElapsedMS   int64              `json:"elapsed_ms"`
	Config      *config.Config     `json:"config,omitempty"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// NewMetadata fills the fields that come from the model and the result.
func NewMetadata(name string, m *dynamo.Model, seed int64, res *optim.Result) RunMetadata {
	g := m.Graph()
	return RunMetadata{
		Name:        name,
		Seed:        seed,
		Nodes:       g.N(),
		Edges:       g.M(),
		TotalWeight: g.TotalWeight(),
		Coupling:    couplingName(m.Coupling()),
		Integrator:  m.IntegratorName(),
		Scale:       m.Scale(),
		Cut:         res.Cut,
		Rounds:      res.Rounds,
		Trials:      res.Trials,
		State:       res.State.String(),
		ElapsedMS:   res.Elapsed.Milliseconds(),
	}
}

func couplingName(c dynamo.Coupling) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", c)
}

// Save writes a run and returns its ID. ID and Timestamp in meta are
// filled in when empty.
func (s *Store) Save(meta RunMetadata, res *optim.Result) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Name, meta.Timestamp.UnixNano())
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, configurationFile), func(w io.Writer) error {
		return writeConfiguration(w, res.Configuration, res.Relaxed)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, historyFile), func(w io.Writer) error {
		return writeHistory(w, res.History)
	}); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func writeFile(path string, fill func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeConfiguration(w io.Writer, c graph.Configuration, relaxed dynamo.State) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"node", "spin", "relaxed"}); err != nil {
		return err
	}
	for i, s := range c {
		v := 0.0
		if i < len(relaxed) {
			v = relaxed[i]
		}
		row := []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(int(s)),
			strconv.FormatFloat(v, 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeHistory(w io.Writer, history []optim.Round) error {
	cw := csv.NewWriter(w)
	header := []string{"round", "trials", "scan_cut", "cut", "best", "improved", "flips", "winner", "elapsed_ms"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range history {
		row := []string{
			strconv.Itoa(r.Index),
			strconv.Itoa(r.Trials),
			strconv.FormatFloat(r.ScanCut, 'g', -1, 64),
			strconv.FormatFloat(r.Cut, 'g', -1, 64),
			strconv.FormatFloat(r.Best, 'g', -1, 64),
			strconv.FormatBool(r.Improved),
			strconv.Itoa(r.Flips),
			strconv.Itoa(r.WinnerTrial),
			strconv.FormatInt(r.Elapsed.Milliseconds(), 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// List returns every readable run, oldest first. Directories without
// valid metadata are skipped.
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
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, metadataFile, err)
	}
	return &meta, nil
}

func readRecords(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, filepath.Base(path), err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s: missing header", ErrCorrupt, filepath.Base(path))
	}
	return records[1:], nil
}

// LoadConfiguration returns the saved spins and relaxed state of a run.
func (s *Store) LoadConfiguration(runID string) (graph.Configuration, dynamo.State, error) {
	records, err := readRecords(filepath.Join(s.baseDir, runID, configurationFile))
	if err != nil {
		return nil, nil, err
	}

	c := make(graph.Configuration, len(records))
	v := make(dynamo.State, len(records))
	for i, rec := range records {
		spin, err := strconv.Atoi(rec[1])
		if err != nil || (spin != 1 && spin != -1) {
			return nil, nil, fmt.Errorf("%w: %s line %d: bad spin %q", ErrCorrupt, configurationFile, i+2, rec[1])
		}
		x, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s line %d: %v", ErrCorrupt, configurationFile, i+2, err)
		}
		c[i] = int8(spin)
		v[i] = x
	}
	return c, v, nil
}

func (s *Store) LoadHistory(runID string) ([]optim.Round, error) {
	records, err := readRecords(filepath.Join(s.baseDir, runID, historyFile))
	if err != nil {
		return nil, err
	}

	history := make([]optim.Round, 0, len(records))
	for i, rec := range records {
		r, err := parseRound(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrCorrupt, historyFile, i+2, err)
		}
		history = append(history, r)
	}
	return history, nil
}

func parseRound(rec []string) (optim.Round, error) {
	var (
		r   optim.Round
		err error
		ms  int64
	)
	ints := []struct {
		dst *int
		src string
	}{{&r.Index, rec[0]}, {&r.Trials, rec[1]}, {&r.Flips, rec[6]}, {&r.WinnerTrial, rec[7]}}
	for _, f := range ints {
		if *f.dst, err = strconv.Atoi(f.src); err != nil {
			return r, err
		}
	}
	floats := []struct {
		dst *float64
		src string
	}{{&r.ScanCut, rec[2]}, {&r.Cut, rec[3]}, {&r.Best, rec[4]}}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(f.src, 64); err != nil {
			return r, err
		}
	}
	if r.Improved, err = strconv.ParseBool(rec[5]); err != nil {
		return r, err
	}
	if ms, err = strconv.ParseInt(rec[8], 10, 64); err != nil {
		return r, err
	}
	r.Elapsed = time.Duration(ms) * time.Millisecond
	return r, nil
}
