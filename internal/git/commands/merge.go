package commands

import (
	"context"
	"fmt"

	"github.com/kurobon/explaingit/internal/repo"
	"github.com/kurobon/explaingit/internal/state"
)

type MergeCommand struct{}

func (c *MergeCommand) Execute(_ context.Context, s *state.Session, args []string) (string, error) {
	flags, positional, err := splitFlags(args)
	if err != nil {
		return "", err
	}
	if err := rejectUnknown(flags, "--no-ff", "--ff", "--no-edit"); err != nil {
		return "", err
	}
	if len(positional) != 1 {
		return "", fail("fatal: merging more than one commit is not supported")
	}

	res, err := s.Local.Merge(positional[0], has(flags, "--no-ff"))
	if err != nil {
		return "", err
	}
	return mergeSummary(res), nil
}

func mergeSummary(res repo.MergeResult) string {
	if res.Outcome == repo.FastForward {
		return fmt.Sprintf("Updating %s..%s\nFast-forward", short(res.From), short(res.To))
	}
	return fmt.Sprintf("Merge made by the 'ort' strategy.\n[%s] %s", short(res.Commit.ID), subject(res.Commit))
}

func (c *MergeCommand) Help() string {
	return `usage: git merge [--no-ff] <commit>

Join <commit> into the current history. When HEAD is an ancestor of
<commit> the branch fast-forwards unless --no-ff is given; otherwise a
merge commit with two parents is recorded.`
}
