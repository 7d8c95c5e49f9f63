// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package attrs parses the --attrs flag: which sheet columns are shown, under
// what title, and with which value transforms.
package attrs
