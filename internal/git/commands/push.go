package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kurobon/explaingit/internal/git"
	"github.com/kurobon/explaingit/internal/model"
	"github.com/kurobon/explaingit/internal/state"
)

type PushCommand struct{}

func (c *PushCommand) Execute(_ context.Context, s *state.Session, args []string) (string, error) {
	flags, positional, err := splitFlags(args)
	if err != nil {
		return "", err
	}
	if err := rejectUnknown(flags, "-u", "--set-upstream"); err != nil {
		return "", err
	}
	if len(positional) > 2 {
		return "", fail("fatal: pushing more than one refspec is not supported")
	}

	name := ""
	if len(positional) > 0 {
		name = positional[0]
	}
	if err := requireRemote(s, name); err != nil {
		return "", err
	}

	var localRef, remoteBranch string
	if len(positional) == 2 {
		localRef, remoteBranch, _ = strings.Cut(positional[1], ":")
		if localRef == "" {
			return "", fail("fatal: deleting remote branches is not supported")
		}
	}

	res, err := s.Sync.Push(remoteBranch, localRef)
	if errors.Is(err, model.ErrNonFastForward) {
		return "", &Failure{Message: "To " + s.RemoteName() + "\n" + describe(git.OpPush, err).Error(), Err: err}
	}
	if err != nil {
		return "", err
	}
	if res.UpToDate() {
		return "Everything up-to-date", nil
	}
	return fmt.Sprintf("To %s\n   %s..%s  %s -> %s", s.RemoteName(), short(res.From), short(res.To), res.LocalRef, res.Branch), nil
}

func (c *PushCommand) Help() string {
	return `usage: git push [origin [<branch> | <local>:<remote>]]

Copy the history of a local ref to origin and fast-forward the remote
branch to it. The remote branch must already exist, and the update is
rejected unless it is a fast-forward. Run fetch afterwards to move
origin/<branch>.`
}
