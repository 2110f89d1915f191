package commands

import (
	"context"
	"fmt"

	"github.com/kurobon/explaingit/internal/state"
)

type RevertCommand struct{}

func (c *RevertCommand) Execute(_ context.Context, s *state.Session, args []string) (string, error) {
	flags, positional, err := splitFlags(args)
	if err != nil {
		return "", err
	}
	if err := rejectUnknown(flags, "--no-edit"); err != nil {
		return "", err
	}
	if len(positional) != 1 {
		return "", fail("usage: git revert <commit>")
	}

	commit, err := s.Local.Revert(positional[0])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("[%s %s] %s", branchLabel(s.Local), short(commit.ID), subject(commit)), nil
}

func (c *RevertCommand) Help() string {
	return `usage: git revert <commit>

Record a new commit that undoes <commit>. The commit must be part of the
current history.`
}
