// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Table is a parsed sheet. The first CSV record names the columns. Cells
// that parse as numbers are float64, empty cells are nil and everything else
// is a string.
type Table struct {
	Sheet   string           `json:"sheet"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	// Raw is the CSV as fetched.
	Raw []byte `json:"-"`
}

var (
	numeric = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)
	grouped = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)
)

// Parse reads CSV data into a Table. Blank rows are skipped and short rows
// are padded with nil.
func Parse(sheet string, data []byte) (*Table, error) {
	raw := data
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return &Table{Sheet: sheet, Columns: []string{}, Rows: []map[string]any{}, Raw: raw}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s header: %w", sheet, err)
	}

	t := &Table{Sheet: sheet, Columns: columns(header), Rows: []map[string]any{}, Raw: raw}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", sheet, err)
		}
		if blank(rec) {
			continue
		}

		row := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(rec) {
				row[col] = Cell(rec[i])
			} else {
				row[col] = nil
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// Cell converts a raw CSV field to its typed value.
func Cell(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if numeric.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if grouped.MatchString(s) {
		if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
			return f
		}
	}
	return s
}

// JSON renders the rows as a JSON array for gjson queries.
func (t *Table) JSON() []byte {
	b, err := json.Marshal(t.Rows)
	if err != nil {
		return []byte("[]")
	}
	return b
}

// columns names unnamed columns colN and disambiguates repeats.
func columns(header []string) []string {
	out := make([]string, len(header))
	taken := map[string]bool{}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("col%d", i+1)
		}
		name := h
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		taken[name] = true
		out[i] = name
	}
	return out
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
