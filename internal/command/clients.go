// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/clientdash/internal/meta"
	"github.com/staranto/clientdash/internal/output"
	"github.com/staranto/clientdash/internal/report"
	"github.com/staranto/clientdash/internal/source"
)

// overviewTable shapes an overview as a table so it goes through the same
// output pipeline as a dataset.
func overviewTable(clients []report.Client) (*source.Table, error) {
	raw, err := json.Marshal(clients)
	if err != nil {
		return nil, err
	}

	tbl := &source.Table{
		Sheet:   "clients",
		Columns: []string{"client", "datasets"},
		Rows:    make([]map[string]any, 0, len(clients)),
		Raw:     raw,
	}
	for _, c := range clients {
		tbl.Rows = append(tbl.Rows, map[string]any{
			"client":   c.Name,
			"datasets": strings.Join(c.Datasets, ","),
		})
	}
	return tbl, nil
}

// ClientsCommandAction is the action handler for the "clients" subcommand. It
// lists the clients the user may see and their datasets.
func ClientsCommandAction(ctx context.Context, cmd *cli.Command) error {
	o, err := startOneShot(ctx, cmd)
	if err != nil {
		return err
	}
	defer o.close()

	tbl, err := overviewTable(o.reports.Overview(o.session.User))
	if err != nil {
		return err
	}
	return output.SliceDiceSpit(writer(cmd), tbl, OutputOptions(cmd))
}

// ClientsCommandBuilder constructs the cli.Command for "clients".
func ClientsCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "clients",
		Usage:     "list permitted clients and their datasets",
		UsageText: `clientdash clients [options]`,
		Flags: []cli.Flag{
			NewUserFlag("clients"),
			NewTTLFlag("clients"),
		},
		Global: true,
		Examples: [][2]string{
			{"clientdash clients", "Clients for $CLIENTDASH_USER"},
			{"clientdash clients -u alice -o yaml", "Clients for alice as YAML"},
		},
		Action: ClientsCommandAction,
		Meta:   meta,
	}).Build()
}
