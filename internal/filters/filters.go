// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/clientdash/internal/attrs"
)

// DelimEnv overrides the "," between filter expressions.
const DelimEnv = "CLIENTDASH_FILTER_DELIM"

// filterRegex splits an expression into key, operand and target. Operands
// are one of = ^ ~ < > @ or /, optionally prefixed with '!'.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter is one parsed --filter expression.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// BuildFilters parses a filter spec. Malformed expressions are logged and
// skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	delim := ","
	if d, ok := os.LookupEnv(DelimEnv); ok && d != "" {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		parts := filterRegex.FindStringSubmatch(filterSpec)
		if parts == nil || strings.TrimSpace(parts[1]) == "" {
			log.Error("invalid filter: " + filterSpec)
			continue
		}

		negate := strings.HasPrefix(parts[2], "!")
		filters = append(filters, Filter{
			Key:     strings.TrimSpace(parts[1]),
			Negate:  negate,
			Operand: strings.TrimPrefix(parts[2], "!"),
			Target:  parts[3],
		})
	}

	return filters
}

// FilterDataset returns the candidate rows that pass spec, keyed by each
// attr's OutputKey. Values are not transformed here.
func FilterDataset(candidates gjson.Result, list attrs.AttrList, spec string) []map[string]any {
	filters := BuildFilters(spec)

	filtered := []map[string]any{}
	for _, candidate := range candidates.Array() {
		if !applyFilters(candidate, list, filters) {
			continue
		}

		row := make(map[string]any, len(list))
		for _, attr := range list {
			if attr.Key == "*" {
				continue
			}
			row[attr.OutputKey] = candidate.Get(Path(attr.Key)).Value()
		}
		filtered = append(filtered, row)
	}

	return filtered
}

// Path escapes a column name for use as a gjson path.
func Path(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '!', '=', '<', '>', '%', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// columnFor maps a filter key, an output title or a column name, to the
// column it reads.
func columnFor(key string, list attrs.AttrList) string {
	for _, attr := range list {
		if attr.OutputKey == key {
			return attr.Key
		}
	}
	for _, attr := range list {
		if attr.Key == key {
			return attr.Key
		}
	}
	return ""
}

// applyFilters reports whether candidate passes every filter. Filters on
// unknown keys are logged and ignored.
func applyFilters(candidate gjson.Result, list attrs.AttrList, filters []Filter) bool {
	for _, filter := range filters {
		key := columnFor(filter.Key, list)
		if key == "" {
			log.Warn("filter key not found: " + filter.Key)
			continue
		}

		value := candidate.Get(Path(key)).Value()
		if value == nil {
			return false
		}

		result := true
		switch v := value.(type) {
		case string:
			result = checkStringOperand(v, filter)
		case bool:
			result = checkStringOperand(strconv.FormatBool(v), filter)
		case float64:
			result = checkNumericOperand(v, filter)
		default:
			if filter.Operand == "@" {
				result = checkContainsOperand(value, filter)
			}
		}

		if !result {
			return false
		}
	}

	return true
}

// checkContainsOperand evaluates '@' against list and object values.
func checkContainsOperand(value any, filter Filter) bool {
	switch val := value.(type) {
	case []any:
		for _, item := range val {
			if item == filter.Target {
				return !filter.Negate
			}
		}
		return filter.Negate
	case map[string]any:
		_, found := val[filter.Target]
		return found == !filter.Negate
	default:
		log.Errorf("unsupported type for contains filtering: %T", value)
		return false
	}
}

// checkNumericOperand compares numerically. A target that is not a number
// falls back to comparing the value's text form.
func checkNumericOperand(value float64, filter Filter) bool {
	tgt, err := strconv.ParseFloat(strings.TrimSpace(filter.Target), 64)
	if err != nil {
		return checkStringOperand(strconv.FormatFloat(value, 'f', -1, 64), filter)
	}

	switch filter.Operand {
	case "=":
		return (value == tgt) == !filter.Negate
	case ">":
		return (value > tgt) == !filter.Negate
	case "<":
		return (value < tgt) == !filter.Negate
	default:
		return checkStringOperand(strconv.FormatFloat(value, 'f', -1, 64), filter)
	}
}

func checkStringOperand(value string, filter Filter) bool {
	switch filter.Operand {
	case "=":
		return value == filter.Target == !filter.Negate
	case "~":
		return strings.EqualFold(value, filter.Target) == !filter.Negate
	case "^":
		return strings.HasPrefix(value, filter.Target) == !filter.Negate
	case ">":
		return value > filter.Target == !filter.Negate
	case "<":
		return value < filter.Target == !filter.Negate
	case "@":
		return strings.Contains(value, filter.Target) == !filter.Negate
	case "/":
		matched, err := regexp.MatchString(filter.Target, value)
		if err != nil {
			log.Error("invalid regex: " + filter.Target)
			return false
		}
		return matched == !filter.Negate
	default:
		log.Error("unsupported filtering operand: " + filter.Operand)
		return false
	}
}
