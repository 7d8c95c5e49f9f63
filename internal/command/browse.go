// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/clientdash/internal/meta"
	"github.com/staranto/clientdash/internal/tui"
)

// browseRun is swapped out by tests.
var browseRun = tui.Run

// BrowseCommandAction is the action handler for the "browse" subcommand. It
// opens the terminal dashboard for the --user.
func BrowseCommandAction(ctx context.Context, cmd *cli.Command) error {
	o, err := startOneShot(ctx, cmd)
	if err != nil {
		return err
	}
	defer o.close()

	return browseRun(tui.Options{
		Ctx:     ctx,
		Reports: o.reports,
		Session: o.session,
		Output:  OutputOptions(cmd),
	})
}

// BrowseCommandBuilder constructs the cli.Command for "browse".
func BrowseCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "browse",
		Usage:     "interactive client dashboard",
		UsageText: `clientdash browse [options]`,
		Flags: []cli.Flag{
			NewUserFlag("browse"),
			NewTTLFlag("browse"),
		},
		Global: true,
		Action: BrowseCommandAction,
		Meta:   meta,
	}).Build()
}
