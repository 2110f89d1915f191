// Package remote synchronizes two in-process repositories: a local one and
// the one it calls origin. Commits are copied verbatim between the graphs and
// remote-tracking branches (origin/<name>) record what was last fetched.
package remote

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kurobon/explaingit/internal/model"
	"github.com/kurobon/explaingit/internal/repo"
)

// DefaultName is the name local uses for its remote.
const DefaultName = "origin"

// SyncEngine runs fetch, push and pull between Local and Remote.
type SyncEngine struct {
	Local  *repo.Repository
	Remote *repo.Repository
	// Name prefixes remote-tracking branches in Local.
	Name   string
	Logger zerolog.Logger
}

func NewSyncEngine(local, remote *repo.Repository) *SyncEngine {
	return &SyncEngine{
		Local:  local,
		Remote: remote,
		Name:   DefaultName,
		Logger: zerolog.Nop(),
	}
}

// TrackingName returns the remote-tracking branch for a remote branch.
func (e *SyncEngine) TrackingName(branch string) string {
	return e.name() + "/" + branch
}

func (e *SyncEngine) name() string {
	if e.Name == "" {
		return DefaultName
	}
	return e.Name
}

func (e *SyncEngine) check() error {
	if e.Local == nil || e.Remote == nil {
		return model.RefError(model.KindNoRemote, e.name())
	}
	return nil
}

type FetchResult struct {
	Branch  string `json:"branch"`  // remote-tracking branch, e.g. origin/master
	From    string `json:"from"`    // previous target
	To      string `json:"to"`      // new target
	Fetched int    `json:"fetched"` // commits first reached through this branch
}

func (f FetchResult) Updated() bool { return f.From != f.To }

// Fetch copies the commits of every remote branch that Local tracks and moves
// the remote-tracking branches to the remote targets. Results are sorted by
// branch name. Either every missing commit is copied and every ref moved, or
// nothing changes.
func (e *SyncEngine) Fetch() ([]FetchResult, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	prefix := e.name() + "/"

	tracked := e.Local.RemoteTracking(prefix)
	sort.Slice(tracked, func(i, j int) bool { return tracked[i].Name < tracked[j].Name })

	var (
		results []FetchResult
		batch   []model.Commit
	)
	queued := make(map[string]bool)
	have := func(id string) bool { return queued[id] || e.Local.HasCommit(id) }

	for _, ref := range tracked {
		branch := strings.TrimPrefix(ref.Name, prefix)
		upstream, ok := e.Remote.LookupBranch(branch)
		if !ok || upstream.Remote {
			continue
		}
		missing := e.Remote.Missing(upstream.Target, have)
		for _, c := range missing {
			queued[c.ID] = true
		}
		batch = append(batch, missing...)
		results = append(results, FetchResult{
			Branch:  ref.Name,
			From:    ref.Target,
			To:      upstream.Target,
			Fetched: len(missing),
		})
	}

	if err := e.Local.Receive(batch); err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	for _, res := range results {
		if err := e.Local.SetRemoteTracking(res.Branch, res.To); err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
	}

	e.Logger.Debug().Int("commits", len(batch)).Int("branches", len(results)).Msg("fetch")
	return results, nil
}

type PushResult struct {
	Branch   string `json:"branch"` // branch on the remote
	LocalRef string `json:"localRef"`
	From     string `json:"from"`
	To       string `json:"to"`
	Copied   int    `json:"copied"`
}

func (p PushResult) UpToDate() bool { return p.From == p.To }

// Push copies localRef's history to the remote and fast-forwards the remote's
// branch to it. An empty localRef means the current branch; an empty
// remoteBranch means a remote branch with the same name as localRef.
// Remote-tracking branches in Local are left for the next fetch.
func (e *SyncEngine) Push(remoteBranch, localRef string) (PushResult, error) {
	if err := e.check(); err != nil {
		return PushResult{}, err
	}
	if localRef == "" {
		branch, ok := e.Local.CurrentBranch()
		if !ok {
			return PushResult{}, model.RefError(model.KindNoCurrentBranch, model.HeadName)
		}
		localRef = branch
	}
	if remoteBranch == "" {
		remoteBranch = localRef
	}

	id, err := e.Local.Resolve(localRef)
	if err != nil {
		return PushResult{}, model.RefError(model.KindLocalRefNotFound, localRef)
	}
	upstream, ok := e.Remote.LookupBranch(remoteBranch)
	if !ok || upstream.Remote {
		return PushResult{}, model.RefError(model.KindUnsupportedNewRemoteBranch, remoteBranch)
	}

	res := PushResult{Branch: remoteBranch, LocalRef: localRef, From: upstream.Target, To: id}
	if upstream.Target == id {
		return res, nil
	}
	if !e.Local.IsAncestor(upstream.Target, id) {
		return PushResult{}, &model.Error{Kind: model.KindNonFastForward, Ref: remoteBranch, Commit: upstream.Target}
	}

	missing := e.Local.Missing(id, e.Remote.HasCommit)
	if err := e.Remote.Receive(missing); err != nil {
		return PushResult{}, fmt.Errorf("push: %w", err)
	}
	if err := e.Remote.MoveBranch(remoteBranch, id); err != nil {
		return PushResult{}, fmt.Errorf("push: %w", err)
	}
	res.Copied = len(missing)

	e.Logger.Debug().Str("branch", remoteBranch).Int("commits", res.Copied).Msg("push")
	return res, nil
}

// PullOptions configures Pull.
type PullOptions struct {
	Rebase bool
	// BeforeIntegrate runs after fetch has completed and before the merge or
	// rebase step. Returning an error stops the pull; the fetch stays applied.
	BeforeIntegrate func(ctx context.Context, fetched []FetchResult) error
}

type PullResult struct {
	Fetch    []FetchResult
	Tracking string
	UpToDate bool
	Merge    *repo.MergeResult
	Rebase   *repo.RebaseResult
}

// Pull fetches and then merges (or rebases onto) the current branch's
// remote-tracking branch.
func (e *SyncEngine) Pull(ctx context.Context, opts PullOptions) (PullResult, error) {
	if err := e.check(); err != nil {
		return PullResult{}, err
	}
	branch, ok := e.Local.CurrentBranch()
	if !ok {
		return PullResult{}, model.RefError(model.KindNoCurrentBranch, model.HeadName)
	}
	tracking := e.TrackingName(branch)
	if ref, ok := e.Local.LookupBranch(tracking); !ok || !ref.Remote {
		return PullResult{}, model.RefError(model.KindBranchNotTrackingRemote, branch)
	}

	fetched, err := e.Fetch()
	if err != nil {
		return PullResult{}, err
	}
	res := PullResult{Fetch: fetched, Tracking: tracking}

	if opts.BeforeIntegrate != nil {
		if err := opts.BeforeIntegrate(ctx, fetched); err != nil {
			return res, err
		}
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	// HEAD already containing the remote branch makes pull a no-op.
	upstream, _ := e.Local.LookupBranch(tracking)
	if e.Local.IsAncestor(upstream.Target, e.Local.HeadCommit()) {
		res.UpToDate = true
		return res, nil
	}

	if opts.Rebase {
		rb, err := e.Local.Rebase(tracking)
		if err != nil {
			return upToDate(res, err)
		}
		res.Rebase = &rb
	} else {
		m, err := e.Local.Merge(tracking, false)
		if err != nil {
			return upToDate(res, err)
		}
		res.Merge = &m
	}
	e.Logger.Debug().Str("branch", branch).Bool("rebase", opts.Rebase).Msg("pull")
	return res, nil
}

func upToDate(res PullResult, err error) (PullResult, error) {
	if errors.Is(err, model.ErrAlreadyUpToDate) {
		res.UpToDate = true
		return res, nil
	}
	return res, err
}
