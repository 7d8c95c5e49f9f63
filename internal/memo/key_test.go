// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package memo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct{ X, Y int }
type pair struct{ X, Y int }

type query struct{ client, dataset string }

type tagged struct {
	Client string `json:"-"`
}

type node struct {
	Name string
	Next *node
}

func TestCallKey_Deterministic(t *testing.T) {
	a := Call{
		Op:     "fetch",
		Args:   []any{map[string]int{"b": 2, "a": 1}},
		Kwargs: map[string]any{"client": "CDC", "dataset": "orders"},
	}
	b := Call{
		Op:     "fetch",
		Args:   []any{map[string]int{"a": 1, "b": 2}},
		Kwargs: map[string]any{"dataset": "orders", "client": "CDC"},
	}

	ka, err := a.Key()
	require.NoError(t, err)
	kb, err := b.Key()
	require.NoError(t, err)

	assert.Equal(t, ka, kb)
	assert.Len(t, ka, 64)
}

// Each pair below would produce the same key under plain string formatting
// of the arguments.
func TestCallKey_NoCollisions(t *testing.T) {
	tests := []struct {
		name string
		a, b Call
	}{
		{
			name: "int and numeric string",
			a:    Call{Op: "f", Args: []any{1}},
			b:    Call{Op: "f", Args: []any{"1"}},
		},
		{
			name: "comma inside an element",
			a:    Call{Op: "f", Args: []any{[]string{"a, b"}}},
			b:    Call{Op: "f", Args: []any{[]string{"a", "b"}}},
		},
		{
			name: "struct types with the same fields",
			a:    Call{Op: "f", Args: []any{point{1, 2}}},
			b:    Call{Op: "f", Args: []any{pair{1, 2}}},
		},
		{
			name: "argument boundary shift",
			a:    Call{Op: "f", Args: []any{"ab", "c"}},
			b:    Call{Op: "f", Args: []any{"a", "bc"}},
		},
		{
			name: "positional versus keyword",
			a:    Call{Op: "f", Args: []any{"CDC"}},
			b:    Call{Op: "f", Kwargs: map[string]any{"client": "CDC"}},
		},
		{
			name: "operation name and first argument",
			a:    Call{Op: "fa", Args: []any{"b"}},
			b:    Call{Op: "f", Args: []any{"ab"}},
		},
		{
			name: "nil and empty string",
			a:    Call{Op: "f", Args: []any{nil}},
			b:    Call{Op: "f", Args: []any{""}},
		},
		{
			name: "unexported fields",
			a:    Call{Op: "f", Args: []any{query{"CDC", "orders"}}},
			b:    Call{Op: "f", Args: []any{query{"ACME", "prices"}}},
		},
		{
			name: "field hidden from json",
			a:    Call{Op: "f", Args: []any{tagged{Client: "CDC"}}},
			b:    Call{Op: "f", Args: []any{tagged{Client: "ACME"}}},
		},
		{
			name: "pointer to differing struct",
			a:    Call{Op: "f", Args: []any{&query{"CDC", "orders"}}},
			b:    Call{Op: "f", Args: []any{&query{"CDC", "prices"}}},
		},
		{
			name: "dynamic type inside a map",
			a:    Call{Op: "f", Kwargs: map[string]any{"q": map[string]any{"n": 1}}},
			b:    Call{Op: "f", Kwargs: map[string]any{"q": map[string]any{"n": 1.0}}},
		},
		{
			name: "nil and empty slice",
			a:    Call{Op: "f", Args: []any{[]string(nil)}},
			b:    Call{Op: "f", Args: []any{[]string{}}},
		},
		{
			name: "int and float with equal text",
			a:    Call{Op: "f", Args: []any{int64(3)}},
			b:    Call{Op: "f", Args: []any{float64(3)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka, err := tt.a.Key()
			require.NoError(t, err)
			kb, err := tt.b.Key()
			require.NoError(t, err)
			assert.NotEqual(t, ka, kb)
		})
	}
}

func TestCallKey_Unencodable(t *testing.T) {
	tests := []struct {
		name string
		call Call
	}{
		{name: "func", call: Call{Op: "f", Args: []any{func() {}}}},
		{name: "chan", call: Call{Op: "f", Kwargs: map[string]any{"c": make(chan int)}}},
		{name: "nan", call: Call{Op: "f", Args: []any{math.NaN()}}},
		{name: "nested func", call: Call{Op: "f", Args: []any{struct{ fn func() }{func() {}}}}},
		{name: "cycle", call: Call{Op: "f", Args: []any{cyclic()}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.call.Key()
			assert.ErrorIs(t, err, ErrUnencodable)
		})
	}
}

func cyclic() *node {
	n := &node{Name: "a"}
	n.Next = n
	return n
}

func TestCallKey_EqualValuesShareKey(t *testing.T) {
	// Distinct allocations of equal values, and a pointer shared twice on
	// one path without a cycle.
	shared := &node{Name: "tail"}
	tests := []struct {
		name string
		a, b Call
	}{
		{
			name: "unexported fields",
			a:    Call{Op: "f", Args: []any{query{"CDC", "orders"}}},
			b:    Call{Op: "f", Args: []any{query{"CDC", "orders"}}},
		},
		{
			name: "pointers",
			a:    Call{Op: "f", Args: []any{&node{Name: "a", Next: &node{Name: "b"}}}},
			b:    Call{Op: "f", Args: []any{&node{Name: "a", Next: &node{Name: "b"}}}},
		},
		{
			name: "shared pointer",
			a:    Call{Op: "f", Args: []any{[]*node{shared, shared}}},
			b:    Call{Op: "f", Args: []any{[]*node{{Name: "tail"}, {Name: "tail"}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka, err := tt.a.Key()
			require.NoError(t, err)
			kb, err := tt.b.Key()
			require.NoError(t, err)
			assert.Equal(t, ka, kb)
		})
	}
}
