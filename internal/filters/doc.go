// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package filters implements the --filter flag over sheet rows.
//
// An expression is key, operand, target. Operands: = equal, ~ equal ignoring
// case, ^ prefix, < and > ordering, @ contains, / regular expression. A
// leading ! negates. Numbers compare numerically.
package filters
