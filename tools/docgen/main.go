// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
)

// Doc generator:
// - Reads docs/commands/*.md as canonical command docs
// - Generates:
//   - docs/man/share/man1/clientdash-<cmd>.1 via md2man (full markdown)
//   - docs/tldr/clientdash-<cmd>.md from the short description and the
//     Quick examples block

const binary = "clientdash"

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	commandsDir := filepath.Join(repoRoot, "docs", "commands")
	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(repoRoot, "docs", "tldr")

	for _, dir := range []string{manOutDir, tldrOutDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatalf("creating output dir %s: %v", dir, err)
		}
	}

	entries, err := os.ReadDir(commandsDir)
	if err != nil {
		fatalf("reading commands dir %s: %v", commandsDir, err)
	}

	var processed int
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		cmd := strings.TrimSuffix(e.Name(), ".md")
		inPath := filepath.Join(commandsDir, e.Name())
		raw, err := os.ReadFile(inPath)
		if err != nil {
			fatalf("reading %s: %v", inPath, err)
		}

		manPath := filepath.Join(manOutDir, fmt.Sprintf("%s-%s.1", binary, cmd))
		if err := writeFileIfChanged(manPath, md2man.Render(raw), writeOnlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", cmd, err)
		}

		p := parsePage(cmd, string(raw))
		tldrPath := filepath.Join(tldrOutDir, fmt.Sprintf("%s-%s.md", binary, cmd))
		if err := writeFileIfChanged(tldrPath, []byte(p.TLDR()), writeOnlyIfChanged); err != nil {
			fatalf("writing TLDR for %s: %v", cmd, err)
		}

		processed++
	}

	if processed == 0 {
		fatalf("no command markdown found under %s", commandsDir)
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, content []byte, onlyIfChanged bool) error {
	if onlyIfChanged {
		old, err := os.ReadFile(path)
		switch {
		case err == nil && bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(content)):
			return nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return err
		}
	}
	return os.WriteFile(path, content, 0o644)
}

var (
	h1Re      = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	sectionRe = regexp.MustCompile(`(?mi)^#{2,}\s+(.+)$`)
)

type example struct {
	Desc string
	Cmd  string
}

// page is the part of a command doc the tldr page is built from.
type page struct {
	Cmd      string
	Title    string
	Short    string
	Examples []example
}

func parsePage(cmd, md string) page {
	p := page{Cmd: cmd}
	if m := h1Re.FindStringSubmatch(md); m != nil {
		p.Title = strings.TrimSpace(m[1])
	}
	p.Short = firstParagraph(section(md, "short description"))
	if p.Short == "" && p.Title != "" {
		p.Short = p.Title + "."
	}
	p.Examples = parseExamples(fenced(section(md, "quick examples")))
	return p
}

// section returns the body under the "## name" header, up to the next
// header.
func section(md, name string) string {
	locs := sectionRe.FindAllStringSubmatchIndex(md, -1)
	for i, loc := range locs {
		if !strings.EqualFold(strings.TrimSpace(md[loc[2]:loc[3]]), name) {
			continue
		}
		end := len(md)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		return md[loc[1]:end]
	}
	return ""
}

func firstParagraph(s string) string {
	var words []string
	for _, ln := range strings.Split(s, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			if len(words) > 0 {
				break
			}
			continue
		}
		words = append(words, ln)
	}
	return strings.Join(words, " ")
}

// fenced returns the body of the first fenced code block in s.
func fenced(s string) string {
	const fence = "```"
	start := strings.Index(s, fence)
	if start < 0 {
		return ""
	}
	rest := s[start+len(fence):]
	// Drop the info string.
	if nl := strings.Index(rest, "\n"); nl >= 0 {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, fence)
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// parseExamples pairs each "# description" comment with the command line
// that follows it.
func parseExamples(code string) []example {
	var (
		exs  []example
		desc string
	)
	for _, ln := range strings.Split(code, "\n") {
		s := strings.TrimSpace(ln)
		switch {
		case s == "":
		case strings.HasPrefix(s, "#"):
			desc = strings.TrimSpace(strings.TrimPrefix(s, "#"))
		default:
			if desc == "" {
				desc = "Example"
			}
			exs = append(exs, example{Desc: desc, Cmd: strings.Join(strings.Fields(s), " ")})
			desc = ""
		}
	}
	return exs
}

// TLDR renders the page in tldr-pages format.
func (p page) TLDR() string {
	var b strings.Builder
	name := binary + "-" + p.Cmd
	b.WriteString("# " + name + "\n\n")
	switch {
	case p.Short != "":
		b.WriteString("> " + p.Short + "\n")
	default:
		b.WriteString("> " + binary + " " + p.Cmd + "\n")
	}
	b.WriteString("> More information: https://github.com/staranto/clientdash.\n\n")

	exs := p.Examples
	if len(exs) == 0 {
		exs = []example{{Desc: "Show help for the command", Cmd: binary + " " + p.Cmd + " --help"}}
	}
	for i, ex := range exs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + ex.Desc + ":\n\n")
		b.WriteString("`" + ex.Cmd + "`\n")
	}
	return b.String()
}
