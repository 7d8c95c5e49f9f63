// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package source fetches client sheets from the remote spreadsheet store and
// parses them into tables. Sheets are exchanged as CSV, whether they come
// from a spreadsheet export URL, an S3 bucket or a local directory.
package source
