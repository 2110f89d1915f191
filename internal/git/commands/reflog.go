package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/kurobon/explaingit/internal/state"
)

type ReflogCommand struct{}

func (c *ReflogCommand) Execute(_ context.Context, s *state.Session, args []string) (string, error) {
	if len(args) > 0 && args[0] != "show" {
		return "", fail("error: reflog subcommand '%s' is not supported", args[0])
	}

	var sb strings.Builder
	for i := len(s.Reflog) - 1; i >= 0; i-- {
		entry := s.Reflog[i]
		fmt.Fprintf(&sb, "%s HEAD@{%d}: %s\n", short(entry.Hash), len(s.Reflog)-1-i, entry.Command)
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}

func (c *ReflogCommand) Help() string {
	return "usage: git reflog [show]\n\nShow the commands run in this session, newest first, with the commit HEAD was at afterwards."
}
