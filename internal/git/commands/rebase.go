package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/kurobon/explaingit/internal/repo"
	"github.com/kurobon/explaingit/internal/state"
)

type RebaseCommand struct{}

func (c *RebaseCommand) Execute(_ context.Context, s *state.Session, args []string) (string, error) {
	flags, positional, err := splitFlags(args)
	if err != nil {
		return "", err
	}
	if err := rejectUnknown(flags); err != nil {
		return "", err
	}
	if len(positional) != 1 {
		return "", fail("usage: git rebase <upstream>")
	}

	res, err := s.Local.Rebase(positional[0])
	if err != nil {
		return "", err
	}
	return rebaseSummary(s.Local, res), nil
}

func rebaseSummary(r *repo.Repository, res repo.RebaseResult) string {
	target := "detached HEAD"
	if branch, ok := r.CurrentBranch(); ok {
		target = "refs/heads/" + branch
	}
	if res.Outcome == repo.FastForward {
		return fmt.Sprintf("Fast-forwarded %s to %s.\nSuccessfully rebased and updated %s.", short(res.From), short(res.To), target)
	}
	var sb strings.Builder
	for i, c := range res.Replayed {
		fmt.Fprintf(&sb, "Applied %s -> %s %s\n", short(res.Originals[i]), short(c.ID), subject(c))
	}
	fmt.Fprintf(&sb, "Successfully rebased and updated %s.", target)
	return sb.String()
}

func (c *RebaseCommand) Help() string {
	return `usage: git rebase <upstream>

Replay the commits of the current history that <upstream> does not contain
on top of <upstream>. The originals are left behind; the branch (or
detached HEAD) moves to the last replayed commit.`
}
