package commands

import (
	"context"

	"github.com/kurobon/explaingit/internal/state"
)

type ResetCommand struct{}

// Execute accepts --soft, --mixed and --hard. There is no index or working
// tree, so all three only move HEAD.
func (c *ResetCommand) Execute(_ context.Context, s *state.Session, args []string) (string, error) {
	flags, positional, err := splitFlags(args)
	if err != nil {
		return "", err
	}
	if err := rejectUnknown(flags, "--soft", "--mixed", "--hard"); err != nil {
		return "", err
	}
	if len(flags) > 1 {
		return "", fail("fatal: --soft, --mixed and --hard are mutually exclusive")
	}
	rev := "HEAD"
	switch len(positional) {
	case 0:
	case 1:
		rev = positional[0]
	default:
		return "", fail("fatal: resetting paths is not supported")
	}

	if _, err := s.Local.Reset(rev); err != nil {
		return "", err
	}
	return headIsAt(s.Local), nil
}

func (c *ResetCommand) Help() string {
	return `usage: git reset [--soft | --mixed | --hard] [<commit>]

Point the current branch (or a detached HEAD) at <commit>. Commits left
behind stay in the graph until nothing refers to them.`
}
