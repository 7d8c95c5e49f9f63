// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v2"

	"github.com/staranto/clientdash/internal/attrs"
	"github.com/staranto/clientdash/internal/config"
	"github.com/staranto/clientdash/internal/filters"
	"github.com/staranto/clientdash/internal/source"
)

// Formats accepted by Render.
var Formats = []string{"text", "json", "yaml", "raw"}

// Options carry the output flags.
type Options struct {
	Attrs  string
	Filter string
	Sort   string
	Format string
	Titles bool
	Color  bool
}

// Result is a table after slicing and dicing. Rows hold only the visible
// columns, keyed by output name.
type Result struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Slice filters, transforms and sorts tbl. tbl is not modified.
func Slice(tbl *source.Table, opts Options) (Result, error) {
	list, err := attrs.Build(tbl.Columns, opts.Attrs)
	if err != nil {
		return Result{}, err
	}

	// Filter first so the remaining steps see fewer rows.
	rows := filters.FilterDataset(gjson.ParseBytes(tbl.JSON()), list, opts.Filter)

	// Sort on the untransformed values so numbers keep numeric order.
	SortDataset(rows, opts.Sort)

	for _, row := range rows {
		for i := range list {
			attr := &list[i]
			if attr.TransformSpec != "" && attr.Key != "*" {
				row[attr.OutputKey] = attr.Transform(row[attr.OutputKey])
			}
		}
	}

	res := Result{Columns: []string{}, Rows: make([]map[string]any, 0, len(rows))}
	for _, attr := range list {
		if attr.Include {
			res.Columns = append(res.Columns, attr.OutputKey)
		}
	}
	for _, row := range rows {
		out := make(map[string]any, len(res.Columns))
		for _, col := range res.Columns {
			out[col] = row[col]
		}
		res.Rows = append(res.Rows, out)
	}

	return res, nil
}

// SliceDiceSpit renders tbl to w in opts.Format.
func SliceDiceSpit(w io.Writer, tbl *source.Table, opts Options) error {
	if opts.Format == "raw" {
		_, err := w.Write(tbl.Raw)
		return err
	}

	res, err := Slice(tbl, opts)
	if err != nil {
		return err
	}

	switch opts.Format {
	case "json":
		b, err := json.Marshal(res.Rows)
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		b, err := yaml.Marshal(res.Rows)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	case "", "text":
		TableWriter(w, res, opts.Titles, opts.Color)
		return nil
	}

	return fmt.Errorf("unknown output format: %s", opts.Format)
}

// TableWriter renders res as a borderless table honoring titles, color and
// the configured padding.
func TableWriter(w io.Writer, res Result, titles, color bool) {
	if len(res.Rows) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	pad, _ := config.GetInt("padding", 2) //nolint:mnd
	log.Debugf("padding: %v", pad)

	rows := make([][]string, 0, len(res.Rows))
	for _, result := range res.Rows {
		row := make([]string, 0, len(res.Columns))
		for _, col := range res.Columns {
			row = append(row, InterfaceToString(result[col], "-"))
		}
		rows = append(rows, row)
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if titles {
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(res.Columns...).BorderHeader(false)
	}

	fmt.Fprintln(w, t)
}

// DumpExamples renders a table of example command usages.
func DumpExamples(w io.Writer, examples [][2]string) {
	if len(examples) == 0 {
		return
	}

	rows := make([][]string, 0, len(examples))
	for _, ex := range examples {
		rows = append(rows, []string{ex[0], ex[1]})
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		Headers("Command", "Description").
		BorderHeader(false).
		Rows(rows...)

	fmt.Fprintln(w, t)
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(key+".title", "#f6be00")
	even, _ = config.GetString(key+".even", "#ffffff")
	odd, _ = config.GetString(key+".odd", "#00c8f0")
	return
}

// InterfaceToString converts a cell value to text. nil becomes emptyValue,
// "" by default.
func InterfaceToString(value any, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	switch value := value.(type) {
	case nil:
		return emptyValue[0]
	case string:
		if value == "" {
			return emptyValue[0]
		}
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}
