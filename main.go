// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/clientdash/internal/command"
	"github.com/staranto/clientdash/internal/config"
	mylog "github.com/staranto/clientdash/internal/log"
	"github.com/staranto/clientdash/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		args = expandSets(args)
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return 0
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// expandSets splices a named set of arguments from the config into args,
// right after the command. "@name" selects <command>.name, otherwise
// <command>.defaults is used when present. Help requests pass through
// untouched.
func expandSets(args []string) []string {
	if slices.Contains(args, "--help") || slices.Contains(args, "-h") {
		return args
	}

	set := "defaults"
	rest := make([]string, 0, len(args)-2)
	for _, a := range args[2:] {
		if strings.HasPrefix(a, "@") && len(a) > 1 {
			set = a[1:]
			continue
		}
		rest = append(rest, a)
	}

	setArgs, _ := config.GetStringSlice(args[1] + "." + set)

	out := make([]string, 0, len(args)+len(setArgs))
	out = append(out, args[:2]...)
	for _, arg := range setArgs {
		out = append(out, strings.Fields(arg)...)
	}
	out = append(out, rest...)

	log.Debugf("set=%s, args=%v", set, out)
	return out
}
