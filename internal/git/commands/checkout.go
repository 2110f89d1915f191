package commands

import (
	"context"
	"fmt"

	"github.com/kurobon/explaingit/internal/model"
	"github.com/kurobon/explaingit/internal/repo"
	"github.com/kurobon/explaingit/internal/state"
)

type CheckoutCommand struct{}

func (c *CheckoutCommand) Execute(_ context.Context, s *state.Session, args []string) (string, error) {
	flags, positional, err := splitFlags(args, "-b", "-c")
	if err != nil {
		return "", err
	}
	if err := rejectUnknown(flags, "-b", "-c", "--detach"); err != nil {
		return "", err
	}
	r := s.Local

	if name, ok := newBranchFlag(flags); ok {
		if len(positional) > 0 {
			return "", fail("fatal: starting a branch at another commit is not supported")
		}
		if _, err := r.CheckoutNewBranch(name); err != nil {
			return "", err
		}
		return fmt.Sprintf("Switched to a new branch '%s'", name), nil
	}

	if len(positional) != 1 {
		return "", fail("fatal: you must specify exactly one branch or commit to check out")
	}
	rev := positional[0]

	if has(flags, "--detach") {
		id, err := r.Resolve(rev)
		if err != nil {
			return "", err
		}
		if err := r.Checkout(id); err != nil {
			return "", err
		}
		return headIsAt(r), nil
	}

	if current, ok := r.CurrentBranch(); ok && current == rev {
		return fmt.Sprintf("Already on '%s'", rev), nil
	}
	if out, ok, err := checkoutTracking(s, rev); ok {
		return out, err
	}

	if err := r.Checkout(rev); err != nil {
		return "", err
	}
	if branch, ok := r.CurrentBranch(); ok {
		return fmt.Sprintf("Switched to branch '%s'", branch), nil
	}
	return fmt.Sprintf("Note: switching to '%s'.\n\n"+
		"You are in 'detached HEAD' state. You can look around and make commits;\n"+
		"switch back to a branch to keep them reachable.\n\n%s", rev, headIsAt(r)), nil
}

func newBranchFlag(flags map[string]string) (string, bool) {
	if name, ok := flags["-b"]; ok {
		return name, true
	}
	name, ok := flags["-c"]
	return name, ok
}

// checkoutTracking creates a local branch from origin/<name> when name is
// neither a local branch nor a tag. ok is false when it does not apply.
func checkoutTracking(s *state.Session, name string) (out string, ok bool, err error) {
	r := s.Local
	if model.ValidateName(name) != nil {
		return "", false, nil
	}
	if _, found := r.LookupBranch(name); found {
		return "", false, nil
	}
	if _, found := r.LookupTag(name); found {
		return "", false, nil
	}
	tracking := s.RemoteName() + "/" + name
	ref, found := r.LookupBranch(tracking)
	if !found || !ref.Remote {
		return "", false, nil
	}
	if err := createAt(r, name, ref.Target); err != nil {
		return "", true, err
	}
	return fmt.Sprintf("branch '%s' set up to track '%s'.\nSwitched to a new branch '%s'", name, tracking, name), true, nil
}

// createAt creates branch name at target and checks it out. The name is
// free and valid, so neither step can fail after HEAD has moved.
func createAt(r *repo.Repository, name, target string) error {
	if err := r.Checkout(target); err != nil {
		return err
	}
	_, err := r.CheckoutNewBranch(name)
	return err
}

func (c *CheckoutCommand) Help() string {
	return `usage: git checkout <branch>
   or: git checkout [--detach] <commit>
   or: git checkout -b <new-branch>

Move HEAD. A local branch attaches HEAD to it; a tag, a remote-tracking
branch or a commit detaches HEAD. A name that only exists as
origin/<name> creates a local branch from it.`
}
