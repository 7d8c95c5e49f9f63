// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/clientdash/internal/access"
	"github.com/staranto/clientdash/internal/meta"
)

// HashpwCommandAction prints the bcrypt hash of a password for the users
// table.
func HashpwCommandAction(ctx context.Context, cmd *cli.Command) error {
	password, err := readPassword(cmd, "Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return errors.New("empty password")
	}

	hash, err := access.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(writer(cmd), hash)
	return nil
}

// HashpwCommandBuilder constructs the cli.Command for "hashpw".
func HashpwCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "hashpw",
		Usage:     "hash a password for the users table",
		UsageText: `clientdash hashpw`,
		Examples: [][2]string{
			{"clientdash hashpw", "Prompt for a password and print its hash"},
			{"echo secret | clientdash hashpw", "Hash a password read from stdin"},
		},
		Action: HashpwCommandAction,
		Meta:   meta,
	}).Build()
}
