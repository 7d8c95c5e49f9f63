// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/clientdash/internal/access"
	"github.com/staranto/clientdash/internal/datasets"
	"github.com/staranto/clientdash/internal/meta"
	"github.com/staranto/clientdash/internal/output"
	"github.com/staranto/clientdash/internal/report"
	"github.com/staranto/clientdash/internal/source"
)

// PasswordEnv, when set, is used instead of prompting for a password.
const PasswordEnv = "CLIENTDASH_PASSWORD"

// ErrNoUser is returned by the one-shot commands when --user is missing.
var ErrNoUser = errors.New("no user given, use --user or CLIENTDASH_USER")

// stdin is swapped out by tests.
var stdin io.Reader = os.Stdin

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr clientdash <subcmd>` and returns true so the caller can exit
// early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "clientdash", subcmd)
			c.Stdout = writer(cmd)
			c.Stderr = errWriter(cmd)
			_ = c.Run()
		}
		return true
	}
	return false
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// OutputOptions collects the global output flags.
func OutputOptions(cmd *cli.Command) output.Options {
	return output.Options{
		Attrs:  cmd.String("attrs"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Format: cmd.String("output"),
		Titles: cmd.Bool("titles"),
		Color:  cmd.Bool("color"),
	}
}

// TTL returns the --ttl flag as a duration.
func TTL(cmd *cli.Command) time.Duration {
	return time.Duration(cmd.Int("ttl")) * time.Second
}

// NewReportService builds the report service from the loaded config: the
// access table, the dataset map and the configured sheet source.
func NewReportService(ctx context.Context, ttl time.Duration) (*report.Service, error) {
	table, err := access.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	ds, err := datasets.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}

	src, err := source.New(ctx, source.OptionsFromConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}

	return &report.Service{
		Access:   table,
		Datasets: ds,
		Source:   src,
		TTL:      ttl,
	}, nil
}

// Login authenticates the --user against table.
func Login(cmd *cli.Command, table *access.Table) (access.User, error) {
	name := cmd.String("user")
	if name == "" {
		return access.User{}, ErrNoUser
	}

	password, err := readPassword(cmd, fmt.Sprintf("Password for %s: ", name))
	if err != nil {
		return access.User{}, fmt.Errorf("failed to read password: %w", err)
	}

	user, err := table.Authenticate(name, password)
	if err != nil {
		return access.User{}, err
	}
	log.WithField("user", user.Name).Debug("logged in")
	return user, nil
}

// readPassword takes the password from PasswordEnv, the terminal without
// echo, or the first line of stdin, in that order.
func readPassword(cmd *cli.Command, prompt string) (string, error) {
	if pw, ok := os.LookupEnv(PasswordEnv); ok {
		return pw, nil
	}

	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		w := errWriter(cmd)
		fmt.Fprint(w, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(w)
		return string(b), err
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func writer(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.ErrWriter != nil {
		return root.ErrWriter
	}
	return os.Stderr
}

// CommandBuilder constructs a subcommand with the shared wiring: metadata,
// the tldr and examples flags, optionally the global output flags, and the
// short-circuits for both.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	// Global adds the output flags.
	Global   bool
	Examples [][2]string
	Action   func(context.Context, *cli.Command) error
	Meta     meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (cb *CommandBuilder) Build() *cli.Command {
	flags := append([]cli.Flag{}, cb.Flags...)
	flags = append(flags, newTldrFlag())
	if len(cb.Examples) > 0 {
		flags = append(flags, newExamplesFlag())
	}
	if cb.Global {
		flags = append(flags, NewGlobalFlags(cb.Name)...)
	}

	return &cli.Command{
		Name:      cb.Name,
		Usage:     cb.Usage,
		UsageText: cb.UsageText,
		Metadata: map[string]any{
			"meta": cb.Meta,
		},
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			m := GetMeta(cmd)
			if len(m.Args) > 1 {
				log.Debugf("Executing action for %v", m.Args[1:])
			}

			if ShortCircuitTLDR(ctx, cmd, cb.Name) {
				return nil
			}
			if len(cb.Examples) > 0 && cmd.Bool("examples") {
				output.DumpExamples(writer(cmd), cb.Examples)
				return nil
			}
			return cb.Action(ctx, cmd)
		},
	}
}
