package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kurobon/explaingit/internal/model"
	"github.com/kurobon/explaingit/internal/repo"
	"github.com/kurobon/explaingit/internal/state"
)

type BranchCommand struct{}

func (c *BranchCommand) Execute(_ context.Context, s *state.Session, args []string) (string, error) {
	flags, positional, err := splitFlags(args)
	if err != nil {
		return "", err
	}
	if err := rejectUnknown(flags, "-d", "-D", "--delete", "-r", "--remotes", "-a", "--all"); err != nil {
		return "", err
	}

	r := s.Local
	if has(flags, "-d", "-D", "--delete") {
		if len(positional) == 0 {
			return "", fail("fatal: branch name required")
		}
		lines := make([]string, 0, len(positional))
		for _, name := range positional {
			ref, _ := r.LookupBranch(name)
			lines = append(lines, fmt.Sprintf("Deleted branch %s (was %s).", name, short(ref.Target)))
		}
		if err := r.DeleteBranch(positional...); err != nil {
			return "", err
		}
		return strings.Join(lines, "\n"), nil
	}

	if len(positional) == 0 || has(flags, "-r", "--remotes", "-a", "--all") {
		return listBranches(r, has(flags, "-r", "--remotes"), has(flags, "-a", "--all")), nil
	}
	if len(positional) > 1 {
		return "", fail("fatal: starting a branch at another commit is not supported")
	}
	if _, err := r.CreateBranch(positional[0]); err != nil {
		return "", err
	}
	return "", nil
}

func listBranches(r *repo.Repository, remotes, all bool) string {
	current, _ := r.CurrentBranch()
	var lines []string
	if head := r.Head(); head.Detached() && !remotes {
		lines = append(lines, fmt.Sprintf("* (HEAD detached at %s)", short(head.Commit)))
	}
	refs := r.Branches()
	slices.SortStableFunc(refs, func(a, b model.Ref) int {
		if a.Remote != b.Remote {
			if b.Remote {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	for _, ref := range refs {
		if ref.Remote {
			if remotes || all {
				name := ref.Name
				if all {
					name = "remotes/" + name
				}
				lines = append(lines, "  "+name)
			}
			continue
		}
		if remotes {
			continue
		}
		marker := "  "
		if ref.Name == current {
			marker = "* "
		}
		lines = append(lines, marker+ref.Name)
	}
	return strings.Join(lines, "\n")
}

func (c *BranchCommand) Help() string {
	return `usage: git branch [-r | -a]
   or: git branch <name>
   or: git branch (-d | -D) <name>...

List, create, or delete branches. A new branch starts at HEAD.`
}
