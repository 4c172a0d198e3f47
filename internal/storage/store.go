// Package storage keeps finished runs on disk, one directory per run
// holding metadata.json and states.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/featherstone/internal/sim"
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
	ID         string             `json:"id"`
	Mechanism  string             `json:"mechanism"`
	Units      string             `json:"units"`
	Joints     []string           `json:"joints"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Controller string             `json:"controller"`
	Steps      int                `json:"steps"`
	Error      string             `json:"error,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes result under a new run id built from meta.Mechanism. The
// fields ID, Timestamp, Steps, Error and Metrics are filled in here.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	name := strings.ReplaceAll(meta.Mechanism, "/", "-")
	if name == "" {
		name = "run"
	}
	runID := fmt.Sprintf("%s_%s", name, now.Format("20060102-150405.000000"))
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics
	if err := result.Err(); err != nil {
		meta.Error = err.Error()
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), meta.Joints, result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Header is the CSV header for a mechanism with the given joint names:
// time, every q, every qp, then every control force.
func Header(joints []string, controls bool) []string {
	header := []string{"time"}
	for _, j := range joints {
		header = append(header, "q_"+j)
	}
	for _, j := range joints {
		header = append(header, "qp_"+j)
	}
	if controls {
		for _, j := range joints {
			header = append(header, "u_"+j)
		}
	}
	return header
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeStates(path string, joints []string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	controls := false
	for _, u := range result.Controls {
		if len(u) > 0 {
			controls = true
			break
		}
	}
	if err := w.Write(Header(joints, controls)); err != nil {
		return err
	}

	for i := range result.States {
		row := []string{format(result.Times[i])}
		for _, val := range result.States[i] {
			row = append(row, format(val))
		}
		if controls {
			// The final state has no control applied after it.
			var u sim.Control
			if i < len(result.Controls) {
				u = result.Controls[i]
			}
			for j := range joints {
				v := 0.0
				if j < len(u) {
					v = u[j]
				}
				row = append(row, format(v))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
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
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}

	return &meta, nil
}

// StatesPath is the CSV file of a run.
func (s *Store) StatesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, "states.csv")
}

// LoadStates reads the state columns back, dropping time and controls.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	width := 2 * len(meta.Joints)

	file, err := os.Open(s.StatesPath(runID))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 1+width {
			return nil, nil, fmt.Errorf("storage: %s: row %d has %d fields, want at least %d", runID, i, len(record), 1+width)
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: %s: row %d: %w", runID, i, err)
		}

		state := make([]float64, width)
		for j := range state {
			if state[j], err = strconv.ParseFloat(record[1+j], 64); err != nil {
				return nil, nil, fmt.Errorf("storage: %s: row %d: %w", runID, i, err)
			}
		}
		times = append(times, t)
		states = append(states, state)
	}

	return states, times, nil
}
