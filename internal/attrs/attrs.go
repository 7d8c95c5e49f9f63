// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package attrs

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"

	"github.com/staranto/clientdash/internal/config"
)

// Attr is one column of the output. Key is the sheet column it reads.
type Attr struct {
	Key string `yaml:"key"`
	// Include is false for columns used only for filtering and sorting.
	Include bool `yaml:"include"`
	// OutputKey is the output name and text column title.
	OutputKey     string `yaml:"outputKey"`
	TransformSpec string `yaml:"transformSpec"`
}

var lengthSpec = regexp.MustCompile(`-?\d+`)

// Transform applies the attr's TransformSpec to value.
//
//	h  group thousands of a number (1234567 -> 1,234,567)
//	b  render a number as a byte size (2048 -> 2.0 kB)
//	t  convert an RFC3339 time to the configured timezone
//	l  lower case
//	u  upper case
//	N  truncate to N characters, -N elides the middle
func (a *Attr) Transform(value any) any {
	if a.TransformSpec == "" {
		return value
	}

	if n, ok := value.(float64); ok {
		switch {
		case strings.ContainsAny(a.TransformSpec, "bB") && n >= 0:
			return humanize.Bytes(uint64(n))
		case strings.ContainsAny(a.TransformSpec, "hH"):
			return humanize.Commaf(n)
		}
		return value
	}

	result, ok := value.(string)
	if !ok {
		return value
	}

	if strings.ContainsAny(a.TransformSpec, "tT") {
		result = a.localTime(result)
	}

	// The last case letter wins so that a column's own spec overrides a
	// global one prepended to it. --attrs '*::U,name::l' lowers name.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")
	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	// Same rule for lengths, the last one wins.
	if match := lengthSpec.FindAllString(a.TransformSpec, -1); len(match) != 0 {
		l, _ := strconv.Atoi(match[len(match)-1])
		result = truncate(result, l)
	}

	return result
}

func (a *Attr) localTime(value string) string {
	tz, _ := config.GetString("timezone", "")
	if tz == "" {
		tz = os.Getenv("TZ")
	}
	if tz == "" {
		return value
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.WithError(err).Warnf("unknown timezone %s", tz)
		return value
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		log.Debugf("not a time: %s", value)
		return value
	}

	return t.In(loc).Format("2006-01-02T15:04:05MST")
}

func truncate(s string, l int) string {
	r := []rune(s)
	abs := int(math.Abs(float64(l)))
	if len(r) <= abs {
		return s
	}
	if l >= 0 {
		return string(r[:l])
	}

	side := abs/2 - 1
	if side < 1 {
		return string(r[:abs])
	}
	return string(r[:side]) + ".." + string(r[len(r)-side:])
}

type AttrList []Attr

// String returns the list in --attrs form.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Set parses a comma separated --attrs value. Each entry is
// key[:output[:transform]]. A leading ! hides the column and a key of * is
// the global entry whose transform applies to every column.
func (a *AttrList) Set(value string) error {
	if value == "" {
		return nil
	}

	const (
		keyIdx = iota
		outputIdx
		transformIdx
	)

specloop:
	for _, spec := range strings.Split(value, ",") {
		fields := strings.Split(spec, ":")

		attr := Attr{Include: true}
		attr.Key = strings.TrimSpace(fields[keyIdx])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}
		if attr.Key == "" {
			return fmt.Errorf("empty attribute in %q", value)
		}
		if attr.Key == "*" {
			attr.Include = false
		}

		attr.OutputKey = attr.Key
		if len(fields) > outputIdx && strings.TrimSpace(fields[outputIdx]) != "" {
			attr.OutputKey = strings.TrimSpace(fields[outputIdx])
		}
		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}

		// A repeated key updates the earlier entry in place.
		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				(*a)[i].OutputKey = attr.OutputKey
				(*a)[i].TransformSpec = attr.TransformSpec
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

// SetGlobalTransformSpec prepends the * entry's transform to every attr.
func (a *AttrList) SetGlobalTransformSpec() error {
	spec := ""
	for i := range *a {
		if (*a)[i].Key == "*" {
			spec = (*a)[i].TransformSpec
			break
		}
	}

	if spec == "" {
		return nil
	}

	for i := range *a {
		(*a)[i].TransformSpec = spec + "," + (*a)[i].TransformSpec
	}

	return nil
}

func (a *AttrList) Type() string {
	return "list"
}

// Wildcard reports whether the list has a * entry.
func (a AttrList) Wildcard() bool {
	for _, attr := range a {
		if attr.Key == "*" {
			return true
		}
	}
	return false
}

// Build resolves spec against a table's columns. Columns named in spec come
// first, in spec order. The remaining columns follow and are shown only when
// spec is empty or has a * entry, otherwise they are kept for filtering and
// sorting.
func Build(columns []string, spec string) (AttrList, error) {
	var list AttrList
	if err := list.Set(spec); err != nil {
		return nil, err
	}

	all := spec == "" || list.Wildcard()

	known := make(map[string]bool, len(list))
	for _, attr := range list {
		known[attr.Key] = true
	}
	for _, col := range columns {
		if known[col] {
			continue
		}
		list = append(list, Attr{Key: col, OutputKey: col, Include: all})
	}

	if err := list.SetGlobalTransformSpec(); err != nil {
		return nil, err
	}

	return list, nil
}
