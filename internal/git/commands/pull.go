package commands

import (
	"context"
	"strings"
	"time"

	"github.com/kurobon/explaingit/internal/remote"
	"github.com/kurobon/explaingit/internal/state"
)

type PullCommand struct{}

// Execute fetches and then merges or rebases the current branch onto its
// remote-tracking branch. With a pull delay configured on the session, the
// integrate step waits that long after the fetch has been applied.
func (c *PullCommand) Execute(ctx context.Context, s *state.Session, args []string) (string, error) {
	flags, positional, err := splitFlags(args)
	if err != nil {
		return "", err
	}
	if err := rejectUnknown(flags, "--rebase", "-r", "--no-rebase", "--ff", "--no-ff"); err != nil {
		return "", err
	}
	if len(positional) > 1 {
		return "", fail("fatal: pulling a specific branch is not supported")
	}
	name := ""
	if len(positional) == 1 {
		name = positional[0]
	}
	if err := requireRemote(s, name); err != nil {
		return "", err
	}

	opts := remote.PullOptions{Rebase: has(flags, "--rebase", "-r") && !has(flags, "--no-rebase")}
	if s.PullDelay > 0 {
		opts.BeforeIntegrate = delay(s.PullDelay)
	}

	res, err := s.Sync.Pull(ctx, opts)
	if err != nil {
		if fetchMoved(res.Fetch) {
			s.Touch()
		}
		return "", err
	}

	var parts []string
	if summary := fetchSummary(s.RemoteName(), res.Fetch); summary != "" {
		parts = append(parts, summary)
	}
	switch {
	case res.UpToDate:
		parts = append(parts, "Already up to date.")
	case res.Rebase != nil:
		parts = append(parts, rebaseSummary(s.Local, *res.Rebase))
	case res.Merge != nil:
		parts = append(parts, mergeSummary(*res.Merge))
	}
	return strings.Join(parts, "\n"), nil
}

func fetchMoved(results []remote.FetchResult) bool {
	for _, res := range results {
		if res.Updated() {
			return true
		}
	}
	return false
}

// delay pauses between fetch and integrate, giving up early when ctx ends.
func delay(d time.Duration) func(context.Context, []remote.FetchResult) error {
	return func(ctx context.Context, _ []remote.FetchResult) error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *PullCommand) Help() string {
	return `usage: git pull [--rebase] [origin]

Fetch from origin, then merge origin/<branch> into the current branch, or
rebase onto it with --rebase. The current branch must have a matching
origin/<branch>.`
}
