// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/clientdash/internal/meta"
)

const bashCompletionScript = `# bash completion for clientdash
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_clientdash()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "browse clients hashpw report serve completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t --tldr"

    case "$cmd" in
        browse|clients)
            local opts="$common --user -u --ttl"
            ;;
        report)
            local opts="$common --user -u --ttl --examples"
            ;;
        serve)
            local opts="--listen -l --idle --origins --secure --ttl --examples --tldr"
            ;;
        hashpw)
            local opts="--examples --tldr"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _clientdash clientdash
`

const zshCompletionScript = `#compdef clientdash

_clientdash() {
  local -a cmds
  cmds=(
    'browse:interactive client dashboard'
    'clients:list permitted clients and their datasets'
    'hashpw:hash a password for the users table'
    'report:show one dataset of a client'
    'serve:run the dashboard API'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[columns to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort columns]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  )

  local -a login
  login=(
  '(-u --user)'{-u,--user}'[user to run as]:user'
  '--ttl[cache ttl in seconds]:seconds'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'clientdash commands' cmds
    return
  fi

  case $words[2] in
    browse|clients)
      _arguments -C $common $login
      ;;
    report)
      _arguments -C \
        $common \
        $login \
        '--examples[show usage examples]' \
        '1:client' \
        '2:dataset'
      ;;
    serve)
      _arguments -C \
        '(-l --listen)'{-l,--listen}'[address to listen on]:address' \
        '--idle[session idle seconds]:seconds' \
        '--origins[allowed origins]:origins' \
        '--secure[secure session cookie]' \
        '--ttl[cache ttl in seconds]:seconds' \
        '--examples[show usage examples]' \
        '--tldr[show tldr page]'
      ;;
    hashpw)
      _arguments '--examples[show usage examples]' '--tldr[show tldr page]'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _clientdash clientdash
`

// CompletionCommandAction prints the completion script for the shell named
// by the first arg, or by $SHELL when there is none.
func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	w := writer(cmd)
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		fmt.Fprintln(errWriter(cmd), "usage: clientdash completion [bash|zsh]")
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "clientdash completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
