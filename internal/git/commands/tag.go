package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kurobon/explaingit/internal/state"
)

type TagCommand struct{}

func (c *TagCommand) Execute(_ context.Context, s *state.Session, args []string) (string, error) {
	flags, positional, err := splitFlags(args)
	if err != nil {
		return "", err
	}
	if err := rejectUnknown(flags, "-d", "--delete", "-l", "--list"); err != nil {
		return "", err
	}

	r := s.Local
	if has(flags, "-d", "--delete") {
		if len(positional) == 0 {
			return "", fail("fatal: tag name required")
		}
		lines := make([]string, 0, len(positional))
		for _, name := range positional {
			ref, _ := r.LookupTag(name)
			lines = append(lines, fmt.Sprintf("Deleted tag '%s' (was %s)", name, short(ref.Target)))
		}
		if err := r.DeleteTag(positional...); err != nil {
			return "", err
		}
		return strings.Join(lines, "\n"), nil
	}

	if len(positional) == 0 || has(flags, "-l", "--list") {
		var names []string
		for _, ref := range r.Tags() {
			names = append(names, ref.Name)
		}
		slices.Sort(names)
		return strings.Join(names, "\n"), nil
	}
	if len(positional) > 1 {
		return "", fail("fatal: tagging another commit than HEAD is not supported")
	}
	if _, err := r.CreateTag(positional[0]); err != nil {
		return "", err
	}
	return "", nil
}

func (c *TagCommand) Help() string {
	return `usage: git tag [-l]
   or: git tag <name>
   or: git tag -d <name>...

List, create, or delete tags. A new tag points at HEAD and never moves.`
}
