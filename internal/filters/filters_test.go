// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"github.com/staranto/clientdash/internal/attrs"
)

func TestBuildFilters(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		delimiter string
		want      []Filter
	}{
		{
			name: "empty spec",
			spec: "",
		},
		{
			name: "exact match",
			spec: "Item=Widget",
			want: []Filter{{Key: "Item", Operand: "=", Target: "Widget"}},
		},
		{
			name: "negated prefix",
			spec: "Item!^Wid",
			want: []Filter{{Key: "Item", Operand: "^", Target: "Wid", Negate: true}},
		},
		{
			name: "column with spaces",
			spec: "Unit Price>10",
			want: []Filter{{Key: "Unit Price", Operand: ">", Target: "10"}},
		},
		{
			name: "regex target keeps operators",
			spec: "Item/^W.*=?$",
			want: []Filter{{Key: "Item", Operand: "/", Target: "^W.*=?$"}},
		},
		{
			name: "multiple",
			spec: "Item@dg,Price<5",
			want: []Filter{
				{Key: "Item", Operand: "@", Target: "dg"},
				{Key: "Price", Operand: "<", Target: "5"},
			},
		},
		{
			name:      "custom delimiter",
			spec:      "Item@a,b;Price>1",
			delimiter: ";",
			want: []Filter{
				{Key: "Item", Operand: "@", Target: "a,b"},
				{Key: "Price", Operand: ">", Target: "1"},
			},
		},
		{
			name: "invalid entries skipped",
			spec: "nooperand,=nokey,Item=x",
			want: []Filter{{Key: "Item", Operand: "=", Target: "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.delimiter != "" {
				t.Setenv(DelimEnv, tt.delimiter)
			}
			got := BuildFilters(tt.spec)
			assert.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i], got[i])
			}
		})
	}
}

func TestCheckStringOperand(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		filter Filter
		want   bool
	}{
		{"equal", "Widget", Filter{Operand: "=", Target: "Widget"}, true},
		{"not equal", "Widget", Filter{Operand: "=", Target: "widget", Negate: true}, true},
		{"fold", "Widget", Filter{Operand: "~", Target: "WIDGET"}, true},
		{"prefix", "Widget", Filter{Operand: "^", Target: "Wi"}, true},
		{"greater", "b", Filter{Operand: ">", Target: "a"}, true},
		{"less", "b", Filter{Operand: "<", Target: "a"}, false},
		{"contains", "Widget", Filter{Operand: "@", Target: "dge"}, true},
		{"not contains", "Widget", Filter{Operand: "@", Target: "dge", Negate: true}, false},
		{"regex", "Widget", Filter{Operand: "/", Target: "^W.+t$"}, true},
		{"bad regex", "Widget", Filter{Operand: "/", Target: "("}, false},
		{"unknown operand", "Widget", Filter{Operand: "%", Target: "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkStringOperand(tt.value, tt.filter))
		})
	}
}

func TestCheckNumericOperand(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		filter Filter
		want   bool
	}{
		{"equal", 5, Filter{Operand: "=", Target: "5"}, true},
		{"equal with spaces", 5, Filter{Operand: "=", Target: " 5.0 "}, true},
		{"not equal", 5, Filter{Operand: "=", Target: "5", Negate: true}, false},
		{"greater", 12.5, Filter{Operand: ">", Target: "10"}, true},
		{"not greater", 12.5, Filter{Operand: ">", Target: "10", Negate: true}, false},
		{"less", 2, Filter{Operand: "<", Target: "10"}, true},
		{"numeric order not text order", 9, Filter{Operand: "<", Target: "10"}, true},
		{"prefix falls back to text", 1250, Filter{Operand: "^", Target: "12"}, true},
		{"text target falls back", 5, Filter{Operand: "=", Target: "five"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkNumericOperand(tt.value, tt.filter))
		})
	}
}

func TestCheckContainsOperand(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		filter Filter
		want   bool
	}{
		{"slice hit", []any{"a", "b"}, Filter{Operand: "@", Target: "b"}, true},
		{"slice miss", []any{"a", "b"}, Filter{Operand: "@", Target: "c"}, false},
		{"slice negated", []any{"a"}, Filter{Operand: "@", Target: "c", Negate: true}, true},
		{"map hit", map[string]any{"k": 1}, Filter{Operand: "@", Target: "k"}, true},
		{"map negated", map[string]any{"k": 1}, Filter{Operand: "@", Target: "k", Negate: true}, false},
		{"unsupported", 42, Filter{Operand: "@", Target: "4"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkContainsOperand(tt.value, tt.filter))
		})
	}
}

func TestPath(t *testing.T) {
	doc := gjson.Parse(`{"Unit.Price": 3, "Qty": 2}`)

	assert.Equal(t, `Unit\.Price`, Path("Unit.Price"))
	assert.Equal(t, float64(3), doc.Get(Path("Unit.Price")).Value())
	assert.Equal(t, float64(2), doc.Get(Path("Qty")).Value())
}

func TestApplyFilters(t *testing.T) {
	row := gjson.Parse(`{"Item": "Widget", "Unit Price": 12.5, "Notes": null, "Active": true}`)

	list := attrs.AttrList{
		{Key: "Item", OutputKey: "name", Include: true},
		{Key: "Unit Price", OutputKey: "Unit Price", Include: true},
		{Key: "Notes", OutputKey: "Notes"},
		{Key: "Active", OutputKey: "Active"},
	}

	tests := []struct {
		name    string
		filters []Filter
		want    bool
	}{
		{"no filters", nil, true},
		{"by output key", []Filter{{Key: "name", Operand: "=", Target: "Widget"}}, true},
		{"by column name", []Filter{{Key: "Item", Operand: "=", Target: "Widget"}}, true},
		{"numeric", []Filter{{Key: "Unit Price", Operand: ">", Target: "10"}}, true},
		{"one fails", []Filter{
			{Key: "name", Operand: "^", Target: "Wid"},
			{Key: "Unit Price", Operand: "<", Target: "10"},
		}, false},
		{"null fails", []Filter{{Key: "Notes", Operand: "=", Target: "x"}}, false},
		{"bool as text", []Filter{{Key: "Active", Operand: "=", Target: "true"}}, true},
		{"unknown key ignored", []Filter{{Key: "Nope", Operand: "=", Target: "x"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, applyFilters(row, list, tt.filters))
		})
	}
}

func TestFilterDataset(t *testing.T) {
	data := gjson.Parse(`[
		{"Item": "Widget", "Price": 12.5},
		{"Item": "Gadget", "Price": 3},
		{"Item": "Gizmo", "Price": 7}
	]`)

	list := attrs.AttrList{
		{Key: "*", OutputKey: "*"},
		{Key: "Item", OutputKey: "name", Include: true},
		{Key: "Price", OutputKey: "Price", Include: true},
	}

	tests := []struct {
		name      string
		spec      string
		wantNames []string
	}{
		{"no filters", "", []string{"Widget", "Gadget", "Gizmo"}},
		{"numeric", "Price>5", []string{"Widget", "Gizmo"}},
		{"prefix", "name^G", []string{"Gadget", "Gizmo"}},
		{"combined", "name^G,Price<5", []string{"Gadget"}},
		{"none", "name=Nope", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterDataset(data, list, tt.spec)
			assert.Len(t, got, len(tt.wantNames))
			for i, want := range tt.wantNames {
				assert.Equal(t, want, got[i]["name"])
				assert.NotContains(t, got[i], "*")
			}
		})
	}
}
