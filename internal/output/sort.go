// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"sort"
	"strings"
)

type sortKey struct {
	name      string
	desc      bool
	sensitive bool
}

func parseSort(spec string) []sortKey {
	var keys []sortKey
	for _, s := range strings.Split(spec, ",") {
		s = strings.TrimSpace(s)
		var k sortKey
		for len(s) > 0 && (s[0] == '-' || s[0] == '!') {
			if s[0] == '-' {
				k.desc = true
			} else {
				k.sensitive = true
			}
			s = s[1:]
		}
		if s == "" {
			continue
		}
		k.name = s
		keys = append(keys, k)
	}
	return keys
}

// SortDataset sorts rows in place by a comma separated list of keys. A
// leading - sorts descending and a leading ! compares text case sensitively.
// Numbers compare numerically and nil sorts first. The sort is stable.
func SortDataset(rows []map[string]any, spec string) {
	keys := parseSort(spec)
	if len(keys) == 0 {
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			c := compare(rows[i][k.name], rows[j][k.name], k.sensitive)
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compare(a, b any, sensitive bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	fa, aok := a.(float64)
	fb, bok := b.(float64)
	switch {
	case aok && bok:
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case aok:
		return -1
	case bok:
		return 1
	}

	sa, sb := InterfaceToString(a), InterfaceToString(b)
	if !sensitive {
		sa, sb = strings.ToLower(sa), strings.ToLower(sb)
	}
	return strings.Compare(sa, sb)
}
