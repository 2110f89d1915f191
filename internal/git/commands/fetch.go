package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/kurobon/explaingit/internal/remote"
	"github.com/kurobon/explaingit/internal/state"
)

type FetchCommand struct{}

func (c *FetchCommand) Execute(_ context.Context, s *state.Session, args []string) (string, error) {
	flags, positional, err := splitFlags(args)
	if err != nil {
		return "", err
	}
	if err := rejectUnknown(flags, "--all"); err != nil {
		return "", err
	}
	if len(positional) > 1 {
		return "", fail("fatal: fetching a single branch is not supported")
	}
	name := ""
	if len(positional) == 1 {
		name = positional[0]
	}
	if err := requireRemote(s, name); err != nil {
		return "", err
	}

	results, err := s.Sync.Fetch()
	if err != nil {
		return "", err
	}
	return fetchSummary(s.RemoteName(), results), nil
}

// fetchSummary lists the remote-tracking branches that moved.
func fetchSummary(name string, results []remote.FetchResult) string {
	var lines []string
	for _, res := range results {
		if !res.Updated() {
			continue
		}
		branch := strings.TrimPrefix(res.Branch, name+"/")
		lines = append(lines, fmt.Sprintf("   %s..%s  %-10s -> %s", short(res.From), short(res.To), branch, res.Branch))
	}
	if len(lines) == 0 {
		return ""
	}
	return "From " + name + "\n" + strings.Join(lines, "\n")
}

func (c *FetchCommand) Help() string {
	return `usage: git fetch [origin]

Copy the commits of every remote branch you track from origin and move the
matching origin/<branch> remote-tracking branches. Local branches and HEAD
do not move.`
}
