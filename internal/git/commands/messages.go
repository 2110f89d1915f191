package commands

import (
	"errors"
	"fmt"

	"github.com/kurobon/explaingit/internal/git"
	"github.com/kurobon/explaingit/internal/model"
)

// Failure is a command error worded the way git would word it. The
// underlying error stays reachable through errors.Is and model.KindOf.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string { return f.Message }
func (f *Failure) Unwrap() error { return f.Err }

func fail(format string, args ...any) error {
	return &Failure{Message: fmt.Sprintf(format, args...)}
}

// describe translates a model error into git-style text for op. Other
// errors pass through unchanged.
func describe(op git.Op, err error) error {
	var f *Failure
	if errors.As(err, &f) {
		return err
	}
	var e *model.Error
	if !errors.As(err, &e) {
		return err
	}
	return &Failure{Message: message(op, e), Err: err}
}

func message(op git.Op, e *model.Error) string {
	switch e.Kind {
	case model.KindRefNotFound:
		switch op {
		case git.OpCheckout:
			return fmt.Sprintf("error: pathspec '%s' did not match any file(s) known to git", e.Ref)
		case git.OpMerge:
			return fmt.Sprintf("merge: %s - not something we can merge", e.Ref)
		case git.OpRebase:
			return fmt.Sprintf("fatal: invalid upstream '%s'", e.Ref)
		case git.OpTag:
			return fmt.Sprintf("error: tag '%s' not found.", e.Ref)
		}
		return fmt.Sprintf("fatal: ambiguous argument '%s': unknown revision or path not in the working tree.", e.Ref)

	case model.KindInvalidName:
		if op == git.OpTag {
			return fmt.Sprintf("fatal: '%s' is not a valid tag name.", e.Ref)
		}
		return fmt.Sprintf("fatal: '%s' is not a valid branch name.", e.Ref)

	case model.KindNameAlreadyExists:
		if op == git.OpTag {
			return fmt.Sprintf("fatal: tag '%s' already exists", e.Ref)
		}
		return fmt.Sprintf("fatal: A branch named '%s' already exists.", e.Ref)

	case model.KindBranchNotFound:
		return fmt.Sprintf("error: branch '%s' not found.", e.Ref)

	case model.KindCannotDeleteCurrentBranch:
		return fmt.Sprintf("error: Cannot delete branch '%s' checked out", e.Ref)

	case model.KindNotAncestor:
		return fmt.Sprintf("error: commit %s is not part of the current history", e.Ref)

	case model.KindAlreadyUpToDate:
		return "Already up to date."

	case model.KindNonFastForward:
		return fmt.Sprintf(" ! [rejected]        %s (non-fast-forward)\n"+
			"error: failed to push some refs\n"+
			"hint: Updates were rejected because the tip of your current branch is behind\n"+
			"hint: its remote counterpart. Integrate the remote changes (e.g.\n"+
			"hint: 'git pull ...') before pushing again.", e.Ref)

	case model.KindNoCurrentBranch:
		if op == git.OpPull {
			return "You are not currently on a branch.\nPlease specify which branch you want to merge with."
		}
		return "fatal: You are not currently on a branch."

	case model.KindBranchNotTrackingRemote:
		return fmt.Sprintf("There is no tracking information for the current branch.\n"+
			"Please specify which branch you want to merge with.\n\n"+
			"    git branch --set-upstream-to=origin/<branch> %s", e.Ref)

	case model.KindUnsupportedNewRemoteBranch:
		return fmt.Sprintf("error: remote branch '%s' does not exist and creating branches by push is not supported", e.Ref)

	case model.KindLocalRefNotFound:
		return fmt.Sprintf("error: src refspec %s does not match any", e.Ref)

	case model.KindInvalidParent, model.KindCommitNotFound:
		return fmt.Sprintf("fatal: bad object %s", e.Commit)

	case model.KindNoRemote:
		return fmt.Sprintf("fatal: '%s' does not appear to be a git repository\n"+
			"fatal: Could not read from remote repository.", e.Ref)
	}
	return "fatal: " + e.Error()
}
