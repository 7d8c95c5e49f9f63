// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reportDoc = "# clientdash report\n\n" +
	"## Short description\n\n" +
	"Show one dataset of a client\nas a table.\n\n" +
	"## Quick examples\n\n" +
	"```sh\n" +
	"# Orders for acme\n" +
	"clientdash report acme   orders\n\n" +
	"clientdash report acme prices -o json\n" +
	"```\n\n" +
	"## Flags\n\n--attrs\n"

func TestParsePage(t *testing.T) {
	p := parsePage("report", reportDoc)

	assert.Equal(t, "clientdash report", p.Title)
	assert.Equal(t, "Show one dataset of a client as a table.", p.Short)
	assert.Equal(t, []example{
		{Desc: "Orders for acme", Cmd: "clientdash report acme orders"},
		{Desc: "Example", Cmd: "clientdash report acme prices -o json"},
	}, p.Examples)
}

func TestParsePage_Fallbacks(t *testing.T) {
	p := parsePage("serve", "# clientdash serve\n\nNothing else.\n")

	assert.Equal(t, "clientdash serve.", p.Short)
	assert.Empty(t, p.Examples)
	assert.Contains(t, p.TLDR(), "`clientdash serve --help`")
}

func TestTLDR(t *testing.T) {
	want := "# clientdash-report\n\n" +
		"> Show one dataset of a client as a table.\n" +
		"> More information: https://github.com/staranto/clientdash.\n\n" +
		"- Orders for acme:\n\n" +
		"`clientdash report acme orders`\n\n" +
		"- Example:\n\n" +
		"`clientdash report acme prices -o json`\n"

	assert.Equal(t, want, parsePage("report", reportDoc).TLDR())
}

func TestWriteFileIfChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")

	require.NoError(t, writeFileIfChanged(path, []byte("one\n"), true))
	info, err := os.Stat(path)
	require.NoError(t, err)

	// Same content modulo whitespace is left alone.
	require.NoError(t, writeFileIfChanged(path, []byte("one"), true))
	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), after.ModTime())

	require.NoError(t, writeFileIfChanged(path, []byte("two"), true))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}
