// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/clientdash/internal/memo"
	"github.com/staranto/clientdash/internal/meta"
	"github.com/staranto/clientdash/internal/output"
	"github.com/staranto/clientdash/internal/report"
	"github.com/staranto/clientdash/internal/session"
)

// oneShot is a logged-in session that lives for a single command.
type oneShot struct {
	reports  *report.Service
	sessions *session.Manager
	session  *session.Session
}

func (o *oneShot) close() {
	_ = o.sessions.End(o.session.ID)
}

// startOneShot builds the report service and logs the --user in.
func startOneShot(ctx context.Context, cmd *cli.Command) (*oneShot, error) {
	ttl := TTL(cmd)
	reports, err := NewReportService(ctx, ttl)
	if err != nil {
		return nil, err
	}

	user, err := Login(cmd, reports.Access)
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(memo.WithTTL(ttl))
	return &oneShot{
		reports:  reports,
		sessions: sessions,
		session:  sessions.Start(user),
	}, nil
}

// ReportCommandAction is the action handler for the "report" subcommand. It
// loads one dataset of one client and emits it per the output flags.
func ReportCommandAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 { //nolint:mnd
		return fmt.Errorf("usage: %s", cmd.UsageText)
	}
	client, dataset := cmd.Args().Get(0), cmd.Args().Get(1)

	o, err := startOneShot(ctx, cmd)
	if err != nil {
		return err
	}
	defer o.close()

	tbl, err := o.reports.Load(ctx, o.session.Cache, o.session.User, client, dataset)
	if err != nil {
		return err
	}

	return output.SliceDiceSpit(writer(cmd), tbl, OutputOptions(cmd))
}

// ReportCommandBuilder constructs the cli.Command for "report".
func ReportCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "report",
		Usage:     "show one dataset of a client",
		UsageText: `clientdash report <client> <dataset> [options]`,
		Flags: []cli.Flag{
			NewUserFlag("report"),
			NewTTLFlag("report"),
		},
		Global: true,
		Examples: [][2]string{
			{"clientdash report acme orders", "Orders for acme as a table"},
			{"clientdash report acme prices -o json", "Prices for acme as JSON"},
			{"clientdash report acme orders -a Item,Qty -s -Qty", "Two columns, largest Qty first"},
			{"clientdash report acme orders -f 'Status=open' -t", "Only open orders, with titles"},
			{"clientdash report acme prices -a 'Price::h'", "Price with thousands separators"},
		},
		Action: ReportCommandAction,
		Meta:   meta,
	}).Build()
}
