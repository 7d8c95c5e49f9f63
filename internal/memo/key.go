// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memo

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// ErrUnencodable is returned by Call.Key when an argument has no canonical
// encoding (funcs, channels, NaN, cyclic values).
var ErrUnencodable = errors.New("argument cannot be encoded")

// Call identifies one invocation of a memoized operation: the operation name
// plus its positional and keyword arguments.
type Call struct {
	Op     string
	Args   []any
	Kwargs map[string]any
}

// Key returns the hashed cache key for the call.
//
// Every argument is written as its Go type followed by a structural walk of
// its value. Struct fields are written by name whether exported or not, and
// interface values carry their dynamic type, so 1 and "1", two struct types
// with the same fields, or two values differing only in an unexported field
// never share a key. Every field is length-prefixed, map entries are sorted
// by their encoding and keyword names are sorted. The result is the hex
// SHA-256 of that byte stream.
func (c Call) Key() (string, error) {
	h := sha256.New()
	e := &encoder{w: h}

	e.field([]byte(c.Op))

	e.count('a', len(c.Args))
	for i, arg := range c.Args {
		if err := e.arg(arg); err != nil {
			return "", fmt.Errorf("positional argument %d: %w", i, err)
		}
	}

	names := make([]string, 0, len(c.Kwargs))
	for name := range c.Kwargs {
		names = append(names, name)
	}
	sort.Strings(names)

	e.count('k', len(names))
	for _, name := range names {
		e.field([]byte(name))
		if err := e.arg(c.Kwargs[name]); err != nil {
			return "", fmt.Errorf("keyword argument %s: %w", name, err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// visit marks a reference on the current walk path.
type visit struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

type encoder struct {
	w      io.Writer
	active map[visit]bool
}

func (e *encoder) arg(v any) error {
	e.field([]byte(typeName(reflect.TypeOf(v))))
	return e.value(reflect.ValueOf(v))
}

func (e *encoder) field(b []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(b)))
	_, _ = e.w.Write(n[:])
	_, _ = e.w.Write(b)
}

func (e *encoder) count(tag byte, n int) {
	var b [9]byte
	b[0] = tag
	binary.BigEndian.PutUint64(b[1:], uint64(n))
	_, _ = e.w.Write(b[:])
}

// enter records a reference on the walk path and fails on a cycle.
func (e *encoder) enter(v reflect.Value, n int) (visit, error) {
	k := visit{ptr: v.Pointer(), typ: v.Type(), n: n}
	if e.active == nil {
		e.active = map[visit]bool{}
	}
	if e.active[k] {
		return k, fmt.Errorf("%w: cyclic %s", ErrUnencodable, v.Type())
	}
	e.active[k] = true
	return k, nil
}

func (e *encoder) value(v reflect.Value) error {
	if !v.IsValid() {
		e.count('n', 0)
		return nil
	}

	switch v.Kind() {
	case reflect.Bool:
		n := 0
		if v.Bool() {
			n = 1
		}
		e.count('b', n)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.count('i', 0)
		e.field(strconv.AppendInt(nil, v.Int(), 10))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.count('u', 0)
		e.field(strconv.AppendUint(nil, v.Uint(), 10))

	case reflect.Float32, reflect.Float64:
		if err := e.float(v.Float()); err != nil {
			return err
		}

	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		if err := e.float(real(c)); err != nil {
			return err
		}
		if err := e.float(imag(c)); err != nil {
			return err
		}

	case reflect.String:
		e.count('s', 0)
		e.field([]byte(v.String()))

	case reflect.Slice:
		if v.IsNil() {
			e.count('z', 0)
			return nil
		}
		k, err := e.enter(v, v.Len())
		if err != nil {
			return err
		}
		defer delete(e.active, k)
		return e.list(v)

	case reflect.Array:
		return e.list(v)

	case reflect.Map:
		if v.IsNil() {
			e.count('z', 0)
			return nil
		}
		k, err := e.enter(v, 0)
		if err != nil {
			return err
		}
		defer delete(e.active, k)
		return e.mapping(v)

	case reflect.Struct:
		t := v.Type()
		e.count('r', t.NumField())
		for i := 0; i < t.NumField(); i++ {
			e.field([]byte(t.Field(i).Name))
			if err := e.value(v.Field(i)); err != nil {
				return err
			}
		}

	case reflect.Pointer:
		if v.IsNil() {
			e.count('z', 0)
			return nil
		}
		k, err := e.enter(v, 0)
		if err != nil {
			return err
		}
		defer delete(e.active, k)
		e.count('p', 0)
		return e.value(v.Elem())

	case reflect.Interface:
		if v.IsNil() {
			e.count('n', 0)
			return nil
		}
		elem := v.Elem()
		e.count('e', 0)
		e.field([]byte(typeName(elem.Type())))
		return e.value(elem)

	default:
		return fmt.Errorf("%w: %s", ErrUnencodable, v.Type())
	}

	return nil
}

func (e *encoder) float(f float64) error {
	if math.IsNaN(f) {
		return fmt.Errorf("%w: NaN", ErrUnencodable)
	}
	e.count('f', 0)
	e.field(strconv.AppendFloat(nil, f, 'g', -1, 64))
	return nil
}

func (e *encoder) list(v reflect.Value) error {
	e.count('l', v.Len())
	for i := 0; i < v.Len(); i++ {
		if err := e.value(v.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

// mapping writes the entries of v sorted by the encoding of their keys.
func (e *encoder) mapping(v reflect.Value) error {
	type entry struct{ key, val []byte }

	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		var kb, vb bytes.Buffer
		ke := &encoder{w: &kb, active: e.active}
		if err := ke.value(iter.Key()); err != nil {
			return err
		}
		ve := &encoder{w: &vb, active: e.active}
		if err := ve.value(iter.Value()); err != nil {
			return err
		}
		entries = append(entries, entry{kb.Bytes(), vb.Bytes()})
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].key, entries[j].key) < 0
	})

	e.count('m', len(entries))
	for _, en := range entries {
		e.field(en.key)
		e.field(en.val)
	}
	return nil
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
