// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/clientdash/internal/config"
	"github.com/staranto/clientdash/internal/dashboard"
	"github.com/staranto/clientdash/internal/memo"
	"github.com/staranto/clientdash/internal/meta"
	"github.com/staranto/clientdash/internal/session"
)

// minSweep bounds how often idle sessions are swept.
const minSweep = time.Second

// listenAndServe is swapped out by tests.
var listenAndServe = func(ctx context.Context, srv *dashboard.Server, addr string) error {
	return srv.ListenAndServe(ctx, addr)
}

// ServeCommandAction is the action handler for the "serve" subcommand. It
// runs the dashboard API until interrupted.
func ServeCommandAction(ctx context.Context, cmd *cli.Command) error {
	ttl := TTL(cmd)
	reports, err := NewReportService(ctx, ttl)
	if err != nil {
		return err
	}

	sessions := session.NewManager(memo.WithTTL(ttl))
	metrics := dashboard.NewMetrics(sessions.Len)
	sessions.CacheOptions = append(sessions.CacheOptions, memo.WithObserver(metrics))

	origins := cmd.StringSlice("origins")
	if len(origins) == 0 {
		origins, _ = config.GetStringSlice("serve.origins")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if idle := time.Duration(cmd.Int("idle")) * time.Second; idle > 0 {
		interval := max(idle/4, minSweep) //nolint:mnd
		log.WithField("idle", idle).WithField("interval", interval).Debug("session sweeper")
		go sessions.Run(ctx, interval, idle)
	}

	srv := &dashboard.Server{
		Access:   reports.Access,
		Reports:  reports,
		Sessions: sessions,
		Metrics:  metrics,
		Origins:  origins,
		Secure:   cmd.Bool("secure"),
	}
	return listenAndServe(ctx, srv, cmd.String("listen"))
}

// ServeCommandBuilder constructs the cli.Command for "serve".
func ServeCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "serve",
		Usage:     "run the dashboard API",
		UsageText: `clientdash serve [options]`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "address to listen on",
				Sources: configSources("serve", "listen", "CLIENTDASH_LISTEN"),
				Value:   ":8080",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
			&cli.IntFlag{
				Name:    "idle",
				Usage:   "seconds before an unused session is ended, 0 to keep sessions",
				Sources: configSources("serve", "session.idle", "CLIENTDASH_IDLE"),
				Value:   1800, //nolint:mnd
			},
			&cli.StringSliceFlag{
				Name:    "origins",
				Usage:   "origins allowed to call the API from a browser",
				Sources: cli.EnvVars("CLIENTDASH_ORIGINS"),
			},
			&cli.BoolFlag{
				Name:    "secure",
				Usage:   "mark the session cookie Secure",
				Sources: configSources("serve", "secure"),
			},
			NewTTLFlag("serve"),
		},
		Examples: [][2]string{
			{"clientdash serve", "Serve on :8080"},
			{"clientdash serve -l 127.0.0.1:9000 --ttl 60", "Local only, one minute cache"},
			{"clientdash serve --origins https://dash.example.com --secure", "Behind TLS for a browser front end"},
		},
		Action: ServeCommandAction,
		Meta:   meta,
	}).Build()
}
