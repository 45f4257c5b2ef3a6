package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

type ExportData struct {
	Metadata RunMetadata   `json:"metadata"`
	Segments []ExportTable `json:"segments"`
}

type ExportTable struct {
	Columns []string    `json:"columns"`
	Steps   []int64     `json:"steps"`
	Rows    [][]float64 `json:"rows"`
}

// ExportJSON writes a run's metadata and every segment as one document.
// Non-finite values cannot be encoded and fail the export.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	tables, err := s.LoadTables(runID)
	if err != nil {
		return err
	}

	data := ExportData{Metadata: *meta, Segments: make([]ExportTable, len(tables))}
	for i, t := range tables {
		data.Segments[i] = ExportTable{Columns: t.Columns, Steps: t.Steps, Rows: t.Rows}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV merges all segments into one table over the union of their
// columns. Cells a segment did not record are left empty.
func (s *Store) ExportCSV(runID string, w io.Writer) error {
	tables, err := s.LoadTables(runID)
	if err != nil {
		return err
	}

	var union []string
	index := map[string]int{}
	for _, t := range tables {
		for _, c := range t.Columns {
			if _, ok := index[c]; !ok {
				index[c] = len(union)
				union = append(union, c)
			}
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"step"}, union...)); err != nil {
		return err
	}
	for _, t := range tables {
		for i, row := range t.Rows {
			record := make([]string, len(union)+1)
			record[0] = strconv.FormatInt(t.Steps[i], 10)
			for j, c := range t.Columns {
				record[index[c]+1] = strconv.FormatFloat(row[j], 'g', -1, 64)
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
