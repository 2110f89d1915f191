package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kurobon/explaingit/internal/state"
)

type LogCommand struct{}

func (c *LogCommand) Execute(_ context.Context, s *state.Session, args []string) (string, error) {
	limit := 0
	var rest []string
	for _, a := range args {
		// -3 is shorthand for -n 3
		if n, err := strconv.Atoi(strings.TrimPrefix(a, "-")); err == nil && strings.HasPrefix(a, "-") {
			limit = n
			continue
		}
		rest = append(rest, a)
	}
	flags, positional, err := splitFlags(rest, "-n", "--max-count")
	if err != nil {
		return "", err
	}
	if err := rejectUnknown(flags, "-n", "--max-count", "--oneline"); err != nil {
		return "", err
	}
	for _, f := range []string{"-n", "--max-count"} {
		if v, ok := flags[f]; ok {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return "", fail("fatal: '%s': not an integer", v)
			}
			limit = n
		}
	}
	rev := "HEAD"
	if len(positional) > 1 {
		return "", fail("fatal: showing more than one revision is not supported")
	}
	if len(positional) == 1 {
		rev = positional[0]
	}

	commits, err := s.Local.Log(rev, limit)
	if err != nil {
		return "", err
	}
	decor := decorations(s.Local)
	oneline := has(flags, "--oneline")

	var sb strings.Builder
	for i, commit := range commits {
		refs := ""
		if labels := decor[commit.ID]; len(labels) > 0 {
			refs = " (" + strings.Join(labels, ", ") + ")"
		}
		if oneline {
			fmt.Fprintf(&sb, "%s%s %s\n", short(commit.ID), refs, subject(commit))
			continue
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "commit %s%s\n", commit.ID, refs)
		if commit.IsMerge() {
			fmt.Fprintf(&sb, "Merge: %s %s\n", short(commit.Parent), short(commit.Parent2))
		}
		fmt.Fprintf(&sb, "\n    %s\n", subject(commit))
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}

func (c *LogCommand) Help() string {
	return `usage: git log [--oneline] [-n <number>] [<revision>]

Show the first-parent history starting at <revision> (HEAD by default).`
}
