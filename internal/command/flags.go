// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/clientdash/internal/config"
	"github.com/staranto/clientdash/internal/memo"
)

func init() {
	cfg, _ = config.Load("")
}

var cfg config.Type

// newExamplesFlag and newTldrFlag are built per command. A cli flag keeps
// its parsed value, so one instance must not be shared.
func newExamplesFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "examples",
		Usage:       "show usage examples",
		HideDefault: true,
	}
}

func newTldrFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
}

// configSources is the namespaced-then-global lookup of key in the config
// file.
func configSources(ns, key string, env ...string) cli.ValueSourceChain {
	var chain []cli.ValueSource
	for _, e := range env {
		chain = append(chain, cli.EnvVar(e))
	}
	chain = append(chain,
		yaml.YAML(ns+"."+key, altsrc.StringSourcer(cfg.Source)),
		yaml.YAML(key, altsrc.StringSourcer(cfg.Source)),
	)
	return cli.NewValueSourceChain(chain...)
}

// NewGlobalFlags are the output flags shared by the table commands.
func NewGlobalFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of columns to include in results",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: configSources(ns, "color"),
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml, raw)",
			Sources: configSources(ns, "output"),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of columns to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+".sort", altsrc.StringSourcer(cfg.Source)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: configSources(ns, "titles"),
			Value:   false,
		},
	}
}

// NewUserFlag is the login name for the one-shot commands.
func NewUserFlag(ns string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "user",
		Aliases: []string{"u"},
		Usage:   "user to run as",
		Sources: configSources(ns, "user", "CLIENTDASH_USER"),
		Validator: func(value string) error {
			return FlagValidators(value, JammedFlagValidator)
		},
	}
}

// NewTTLFlag is the session cache ttl in seconds.
func NewTTLFlag(ns string) *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "ttl",
		Usage:   "seconds a loaded dataset stays fresh",
		Sources: configSources(ns, "cache.ttl", "CLIENTDASH_TTL"),
		Value:   int(memo.DefaultTTL.Seconds()),
		Validator: func(value int) error {
			return FlagValidators(value, PositiveValidator)
		},
	}
}

// pathHas reports whether target is on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
