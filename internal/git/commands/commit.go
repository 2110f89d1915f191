package commands

import (
	"context"
	"fmt"

	"github.com/kurobon/explaingit/internal/repo"
	"github.com/kurobon/explaingit/internal/state"
)

type CommitCommand struct{}

var _ Command = (*CommitCommand)(nil)

func (c *CommitCommand) Execute(_ context.Context, s *state.Session, args []string) (string, error) {
	flags, positional, err := splitFlags(args, "-m", "--message")
	if err != nil {
		return "", err
	}
	if err := rejectUnknown(flags, "-m", "--message", "--allow-empty", "-a", "--all"); err != nil {
		return "", err
	}
	if len(positional) > 0 {
		return "", fail("error: pathspec '%s' did not match any file(s) known to git", positional[0])
	}

	msg := flags["-m"]
	if v, ok := flags["--message"]; ok {
		msg = v
	}
	commit, err := s.Local.Commit(msg)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("[%s %s] %s", branchLabel(s.Local), short(commit.ID), subject(commit)), nil
}

func branchLabel(r *repo.Repository) string {
	if branch, ok := r.CurrentBranch(); ok {
		return branch
	}
	return "detached HEAD"
}

func (c *CommitCommand) Help() string {
	return `usage: git commit [-m <msg>]

Record a new commit on top of HEAD. The current branch, if any, moves to it.

    -m, --message <msg>   use the given message`
}
