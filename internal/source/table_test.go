// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestCell(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", nil},
		{"   ", nil},
		{"12", 12.0},
		{"-3.5", -3.5},
		{"1e3", 1000.0},
		{"1,250.00", 1250.0},
		{"12,34", "12,34"},
		{"NaN", "NaN"},
		{"Inf", "Inf"},
		{"0x10", "0x10"},
		{"1e999", "1e999"},
		{" widget ", "widget"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Cell(tt.in))
		})
	}
}

func TestParse(t *testing.T) {
	data := []byte("\xef\xbb\xbfItem, Price,,Item\nWidget,12.5,x,w2\n,,,\nGizmo\n")

	tbl, err := Parse("Prices", data)
	require.NoError(t, err)

	assert.Equal(t, "Prices", tbl.Sheet)
	assert.Equal(t, []string{"Item", "Price", "col3", "Item_2"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, map[string]any{"Item": "Widget", "Price": 12.5, "col3": "x", "Item_2": "w2"}, tbl.Rows[0])
	assert.Equal(t, map[string]any{"Item": "Gizmo", "Price": nil, "col3": nil, "Item_2": nil}, tbl.Rows[1])
}

func TestParse_Empty(t *testing.T) {
	tbl, err := Parse("Empty", nil)
	require.NoError(t, err)
	assert.Empty(t, tbl.Columns)
	assert.Empty(t, tbl.Rows)
	assert.JSONEq(t, "[]", string(tbl.JSON()))
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse("Bad", []byte("a,b\n\"unterminated,1\n"))
	assert.Error(t, err)
}

func TestTable_JSON(t *testing.T) {
	tbl, err := Parse("Prices", []byte("Item,Price\nWidget,12.5\nGadget,3\n"))
	require.NoError(t, err)

	doc := tbl.JSON()
	assert.Equal(t, int64(2), gjson.GetBytes(doc, "#").Int())
	assert.Equal(t, "Gadget", gjson.GetBytes(doc, "1.Item").String())
	assert.InDelta(t, 12.5, gjson.GetBytes(doc, "0.Price").Float(), 0.0001)
}

func TestColumns(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   []string
	}{
		{"plain", []string{"a", "b"}, []string{"a", "b"}},
		{"repeat", []string{"a", "a", "a"}, []string{"a", "a_2", "a_3"}},
		{"repeat colliding with a later name", []string{"a", "a", "a_2"}, []string{"a", "a_2", "a_2_2"}},
		{"generated name already taken", []string{"a_2", "a", "a"}, []string{"a_2", "a", "a_3"}},
		{"blank", []string{" ", "col1"}, []string{"col1", "col1_2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, columns(tt.header))
		})
	}
}

func TestParse_ColumnsNeverOverwrite(t *testing.T) {
	tbl, err := Parse("s", []byte("a,a,a_2\n1,2,3\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1.0, "a_2": 2.0, "a_2_2": 3.0}, tbl.Rows[0])
}
