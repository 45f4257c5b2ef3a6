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
	"time"
)

var (
	ErrNoRun    = errors.New("storage: run not found")
	ErrNoColumn = errors.New("storage: column not recorded")
)

const metadataFile = "metadata.json"

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Finished  *time.Time         `json:"finished,omitempty"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Atoms     int64              `json:"atoms"`
	Steps     int64              `json:"steps"`
	Every     int64              `json:"every"`
	Keywords  []string           `json:"keywords"`
	Rows      int                `json:"rows"`
	Segments  []Segment          `json:"segments"`
	Final     map[string]float64 `json:"final,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// Segment is one CSV file of a run. A new segment starts whenever the
// column set changes between stages.
type Segment struct {
	File    string   `json:"file"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

// Table is a loaded segment. Step is always the first recorded column.
type Table struct {
	Columns []string
	Steps   []int64
	Rows    [][]float64
}

// Column returns the values of the named column, or false.
func (t *Table) Column(name string) ([]float64, bool) {
	for j, c := range t.Columns {
		if c != name {
			continue
		}
		out := make([]float64, len(t.Rows))
		for i, row := range t.Rows {
			out[i] = row[j]
		}
		return out, true
	}
	return nil, false
}

func (s *Store) runDir(runID string) string { return filepath.Join(s.baseDir, runID) }

func (s *Store) writeMetadata(meta *RunMetadata) error {
	f, err := os.Create(filepath.Join(s.runDir(meta.ID), metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// List returns every run with readable metadata, newest first.
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
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.runDir(runID), metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoRun, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadTables reads every segment of a run in order.
func (s *Store) LoadTables(runID string) ([]Table, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	tables := make([]Table, 0, len(meta.Segments))
	for _, seg := range meta.Segments {
		t, err := readTable(filepath.Join(s.runDir(runID), seg.File))
		if err != nil {
			return nil, err
		}
		tables = append(tables, *t)
	}
	return tables, nil
}

// LoadColumns returns the steps and values of the named columns, taken
// from every segment that recorded all of them.
func (s *Store) LoadColumns(runID string, names ...string) ([]int64, [][]float64, error) {
	tables, err := s.LoadTables(runID)
	if err != nil {
		return nil, nil, err
	}

	var steps []int64
	cols := make([][]float64, len(names))
	found := false
outer:
	for i := range tables {
		t := &tables[i]
		picked := make([][]float64, len(names))
		for j, name := range names {
			vals, ok := t.Column(name)
			if !ok {
				continue outer
			}
			picked[j] = vals
		}
		found = true
		steps = append(steps, t.Steps...)
		for j := range names {
			cols[j] = append(cols[j], picked[j]...)
		}
	}
	if !found {
		return nil, nil, fmt.Errorf("%w: %v in run %s", ErrNoColumn, names, runID)
	}
	return steps, cols, nil
}

func readTable(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: %s: %w", filepath.Base(path), err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	t := &Table{Columns: records[0][1:]}
	for _, record := range records[1:] {
		step, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("storage: %s: step %q: %w", filepath.Base(path), record[0], err)
		}
		row := make([]float64, len(record)-1)
		for j, field := range record[1:] {
			row[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s: %q: %w", filepath.Base(path), field, err)
			}
		}
		t.Steps = append(t.Steps, step)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
