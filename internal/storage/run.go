package storage

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/san-kum/thermo/internal/thermo"
)

// Run records thermo rows to disk. It is a thermo observer; write errors
// are kept and returned by Close.
type Run struct {
	store *Store
	meta  RunMetadata

	file *os.File
	w    *csv.Writer
	cols []string
	last thermo.Row
	err  error
}

// Create starts a new run directory. meta.Name seeds the run id.
func (s *Store) Create(meta RunMetadata) (*Run, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	now := s.now()
	if meta.Name == "" {
		meta.Name = "run"
	}
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	meta.Timestamp = now
	meta.Segments = []Segment{}

	if err := os.MkdirAll(s.runDir(meta.ID), 0755); err != nil {
		return nil, err
	}
	if err := s.writeMetadata(&meta); err != nil {
		return nil, err
	}
	return &Run{store: s, meta: meta}, nil
}

func (r *Run) ID() string { return r.meta.ID }

func (r *Run) OnRow(columns []string, row thermo.Row) {
	if r.err != nil {
		return
	}
	if r.w == nil || !slices.Equal(columns, r.cols) {
		if r.err = r.startSegment(columns); r.err != nil {
			return
		}
	}

	record := make([]string, 0, len(row.Values)+1)
	record = append(record, strconv.FormatInt(row.Step, 10))
	for _, v := range row.Values {
		record = append(record, formatValue(v))
	}
	if r.err = r.w.Write(record); r.err != nil {
		return
	}
	r.meta.Rows++
	r.meta.Segments[len(r.meta.Segments)-1].Rows++
	r.last = row
}

func formatValue(v thermo.Value) string {
	switch v.Type {
	case thermo.TypeInt:
		return strconv.Itoa(v.Int)
	case thermo.TypeBigInt:
		return strconv.FormatInt(v.Big, 10)
	}
	return strconv.FormatFloat(v.Float, 'g', -1, 64)
}

func (r *Run) startSegment(columns []string) error {
	if err := r.closeSegment(); err != nil {
		return err
	}
	name := fmt.Sprintf("thermo-%d.csv", len(r.meta.Segments)+1)
	f, err := os.Create(filepath.Join(r.store.runDir(r.meta.ID), name))
	if err != nil {
		return err
	}
	r.file = f
	r.w = csv.NewWriter(f)
	r.cols = append([]string(nil), columns...)
	r.meta.Segments = append(r.meta.Segments, Segment{File: name, Columns: r.cols})
	if len(r.meta.Keywords) == 0 {
		r.meta.Keywords = r.cols
	}
	return r.w.Write(append([]string{"step"}, columns...))
}

func (r *Run) closeSegment() error {
	if r.file == nil {
		return nil
	}
	r.w.Flush()
	err := r.w.Error()
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	r.file, r.w = nil, nil
	return err
}

// Close flushes the last segment and finalizes the metadata. runErr, when
// not nil, is recorded as the run's failure.
func (r *Run) Close(runErr error) error {
	if err := r.closeSegment(); err != nil && r.err == nil {
		r.err = err
	}
	finished := r.store.now()
	r.meta.Finished = &finished
	if runErr != nil {
		r.meta.Error = runErr.Error()
	}
	if len(r.last.Values) == len(r.cols) && len(r.cols) > 0 {
		r.meta.Final = make(map[string]float64, len(r.cols))
		for i, c := range r.cols {
			if v := r.last.Values[i].Float64(); !math.IsNaN(v) && !math.IsInf(v, 0) {
				r.meta.Final[c] = v
			}
		}
	}
	if err := r.store.writeMetadata(&r.meta); err != nil && r.err == nil {
		r.err = err
	}
	return r.err
}
