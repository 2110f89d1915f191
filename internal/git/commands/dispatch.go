// Package commands executes parsed git commands against a session.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/kurobon/explaingit/internal/git"
	"github.com/kurobon/explaingit/internal/model"
	"github.com/kurobon/explaingit/internal/state"
)

// Command defines the interface for all git commands. Execute runs with the
// session's write lock already held.
type Command interface {
	Execute(ctx context.Context, s *state.Session, args []string) (string, error)
	Help() string
}

func commandFor(op git.Op) (Command, bool) {
	switch op {
	case git.OpCommit:
		return &CommitCommand{}, true
	case git.OpBranch:
		return &BranchCommand{}, true
	case git.OpTag:
		return &TagCommand{}, true
	case git.OpCheckout:
		return &CheckoutCommand{}, true
	case git.OpReset:
		return &ResetCommand{}, true
	case git.OpRevert:
		return &RevertCommand{}, true
	case git.OpMerge:
		return &MergeCommand{}, true
	case git.OpRebase:
		return &RebaseCommand{}, true
	case git.OpFetch:
		return &FetchCommand{}, true
	case git.OpPush:
		return &PushCommand{}, true
	case git.OpPull:
		return &PullCommand{}, true
	case git.OpClone:
		return &CloneCommand{}, true
	case git.OpLog:
		return &LogCommand{}, true
	case git.OpReflog:
		return &ReflogCommand{}, true
	case git.OpHelp:
		return &HelpCommand{}, true
	}
	return nil, false
}

// readOnly ops leave the repositories untouched and are not recorded.
func readOnly(op git.Op) bool {
	switch op {
	case git.OpLog, git.OpReflog, git.OpHelp:
		return true
	}
	return false
}

// Dispatch runs cmd against the session. The whole command executes under the
// session's write lock, so readers observe it completely or not at all. A
// successful mutating command is recorded in the reflog and bumps the
// session version; a failed one leaves the session unchanged, except for a
// pull interrupted after its fetch, which keeps the fetch and bumps the
// version without a reflog entry.
func Dispatch(ctx context.Context, s *state.Session, cmd git.Command) (string, error) {
	c, ok := commandFor(cmd.Op)
	if !ok {
		return "", fmt.Errorf("git: '%s' is not a git command. See 'git help'.", cmd.Op)
	}
	if wantsHelp(cmd.Args) {
		return c.Help(), nil
	}

	start := time.Now()
	s.Lock()
	defer s.Unlock()

	out, err := c.Execute(ctx, s, cmd.Args)
	logger := s.Logger()
	if err != nil {
		err = describe(cmd.Op, err)
		logger.Info().
			Str("op", cmd.Op.String()).
			Str("kind", model.KindOf(err).String()).
			Dur("took", time.Since(start)).
			Err(err).
			Msg("command failed")
		return "", err
	}
	logger.Debug().Str("op", cmd.Op.String()).Dur("took", time.Since(start)).Msg("command")

	if !readOnly(cmd.Op) {
		line := cmd.Line
		if line == "" {
			line = cmd.Op.String()
		}
		s.Commit(line)
	}
	return out, nil
}

// Run parses line and dispatches it.
func Run(ctx context.Context, s *state.Session, line string) (string, error) {
	cmd, err := git.ParseCommand(line)
	if err != nil {
		return "", err
	}
	return Dispatch(ctx, s, cmd)
}

func wantsHelp(args []string) bool {
	for _, a := range args {
		if a == "-h" || a == "--help" {
			return true
		}
	}
	return false
}
