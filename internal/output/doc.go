// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output slices, dices and renders sheet tables as text, json, yaml
// or the raw CSV.
package output
