// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package tui is an interactive terminal view over one session: the
// permitted clients and their datasets, loaded through the session cache.
package tui

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/staranto/clientdash/internal/output"
	"github.com/staranto/clientdash/internal/report"
	"github.com/staranto/clientdash/internal/session"
	"github.com/staranto/clientdash/internal/source"
)

const maxColumnWidth = 32

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f6be00"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00c8f0"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// Options configure the browser.
type Options struct {
	Ctx     context.Context
	Reports *report.Service
	Session *session.Session
	// Output flags applied to every table.
	Output output.Options
}

type model struct {
	opts    Options
	clients []report.Client
	ci, di  int

	table   table.Model
	loading bool
	err     string
	height  int
}

type loadedMsg struct {
	client, dataset string
	tbl             *source.Table
	err             error
}

// Run starts the browser on the terminal and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(newModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(opts Options) model {
	if opts.Ctx == nil {
		opts.Ctx = context.Background()
	}

	t := table.New(table.WithFocused(true), table.WithHeight(20)) //nolint:mnd
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(lipgloss.Color("#f6be00"))
	t.SetStyles(styles)

	clients := []report.Client{}
	for _, c := range opts.Reports.Overview(opts.Session.User) {
		if len(c.Datasets) > 0 {
			clients = append(clients, c)
		}
	}

	return model{opts: opts, clients: clients, table: t}
}

func (m model) current() (string, string, bool) {
	if len(m.clients) == 0 {
		return "", "", false
	}
	c := m.clients[m.ci]
	return c.Name, c.Datasets[m.di], true
}

func (m model) load() tea.Cmd {
	client, dataset, ok := m.current()
	if !ok {
		return nil
	}

	ctx, svc, sess := m.opts.Ctx, m.opts.Reports, m.opts.Session
	return func() tea.Msg {
		tbl, err := svc.Load(ctx, sess.Cache, sess.User, client, dataset)
		return loadedMsg{client: client, dataset: dataset, tbl: tbl, err: err}
	}
}

func (m model) Init() tea.Cmd { return m.load() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		if h := msg.Height - 6; h > 3 { //nolint:mnd
			m.table.SetHeight(h)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			return m.move(0, 1)
		case "shift+tab":
			return m.move(0, -1)
		case "]":
			return m.move(1, 0)
		case "[":
			return m.move(-1, 0)
		case "r":
			client, dataset, ok := m.current()
			if !ok {
				return m, nil
			}
			report.Refresh(m.opts.Session.Cache, client, dataset)
			m.loading = true
			return m, m.load()
		case "R":
			report.Refresh(m.opts.Session.Cache, "", "")
			m.loading = true
			return m, m.load()
		}

		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case loadedMsg:
		client, dataset, _ := m.current()
		if msg.client != client || msg.dataset != dataset {
			// Stale answer for a selection the user already left.
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
			m.table.SetRows(nil)
			return m, nil
		}
		m.err = ""
		if err := m.fill(msg.tbl); err != nil {
			m.err = err.Error()
		}
		return m, nil
	}

	return m, nil
}

// move steps the client by dc or the dataset by dd, wrapping around.
func (m model) move(dc, dd int) (tea.Model, tea.Cmd) {
	if len(m.clients) == 0 {
		return m, nil
	}

	if dc != 0 {
		m.ci = (m.ci + dc + len(m.clients)) % len(m.clients)
		m.di = 0
	}
	if dd != 0 {
		n := len(m.clients[m.ci].Datasets)
		m.di = (m.di + dd + n) % n
	}

	m.loading = true
	return m, m.load()
}

func (m *model) fill(tbl *source.Table) error {
	res, err := output.Slice(tbl, m.opts.Output)
	if err != nil {
		return err
	}

	widths := make([]int, len(res.Columns))
	for i, col := range res.Columns {
		widths[i] = utf8.RuneCountInString(col)
	}

	rows := make([]table.Row, 0, len(res.Rows))
	for _, r := range res.Rows {
		row := make(table.Row, len(res.Columns))
		for i, col := range res.Columns {
			row[i] = output.InterfaceToString(r[col], "-")
			widths[i] = max(widths[i], utf8.RuneCountInString(row[i]))
		}
		rows = append(rows, row)
	}

	cols := make([]table.Column, len(res.Columns))
	for i, col := range res.Columns {
		cols[i] = table.Column{Title: col, Width: min(widths[i], maxColumnWidth)}
	}

	// Rows first so the table never renders old rows under new columns.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	m.table.GotoTop()
	return nil
}

func (m model) View() string {
	var b strings.Builder

	client, dataset, ok := m.current()
	if !ok {
		b.WriteString(titleStyle.Render("clientdash") + "\n\n")
		b.WriteString("  (no clients)\n\n")
		b.WriteString(helpStyle.Render("q quit") + "\n")
		return b.String()
	}

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s / %s", client, dataset)))
	b.WriteString(fmt.Sprintf("  client %d/%d  dataset %d/%d\n\n",
		m.ci+1, len(m.clients), m.di+1, len(m.clients[m.ci].Datasets)))

	switch {
	case m.err != "":
		b.WriteString(errStyle.Render("Error: "+m.err) + "\n")
	default:
		b.WriteString(m.table.View() + "\n")
	}

	st := m.opts.Session.Cache.Stats()
	status := fmt.Sprintf("cache: %d hits, %d misses, %d entries", st.Hits, st.Misses, st.Entries)
	if m.loading {
		status += "  loading..."
	}
	b.WriteString("\n" + statusStyle.Render(status) + "\n")
	b.WriteString(helpStyle.Render("tab/shift+tab dataset  [/] client  r refresh  R clear cache  q quit") + "\n")

	return b.String()
}
