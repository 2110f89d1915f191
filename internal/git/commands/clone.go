package commands

import (
	"context"
	"fmt"

	"github.com/kurobon/explaingit/internal/remote"
	"github.com/kurobon/explaingit/internal/state"
)

type CloneCommand struct{}

// Execute replaces the local repository with a fresh clone of origin.
func (c *CloneCommand) Execute(_ context.Context, s *state.Session, args []string) (string, error) {
	flags, positional, err := splitFlags(args)
	if err != nil {
		return "", err
	}
	if err := rejectUnknown(flags); err != nil {
		return "", err
	}
	name := ""
	if len(positional) > 0 {
		name = positional[0]
	}
	if len(positional) > 1 {
		return "", fail("fatal: cloning into a directory is not supported")
	}
	if err := requireRemote(s, name); err != nil {
		return "", err
	}

	local, err := remote.Clone(s.Origin, s.RemoteName())
	if err != nil {
		return "", err
	}
	s.SetRepos(local, s.Origin)
	return fmt.Sprintf("Cloning into '%s'...\ndone. %d commits.", s.RemoteName(), len(local.Commits())), nil
}

func (c *CloneCommand) Help() string {
	return `usage: git clone [origin]

Replace the local repository with a copy of origin: every commit, an
origin/<branch> for each remote branch, every tag, and a local branch for
origin's current branch.`
}
