package remote

import (
	"fmt"

	"github.com/kurobon/explaingit/internal/model"
	"github.com/kurobon/explaingit/internal/repo"
)

// Clone builds a new local repository from remote: the full commit graph,
// every tag, a remote-tracking branch per remote branch, and a local branch
// for the remote's current branch with HEAD attached to it. A detached remote
// HEAD produces a detached clone.
func Clone(remote *repo.Repository, name string, opts ...repo.Option) (*repo.Repository, error) {
	if remote == nil {
		return nil, model.RefError(model.KindNoRemote, name)
	}
	if name == "" {
		name = DefaultName
	}
	src := remote.Snapshot()
	snap := repo.Snapshot{Commits: src.Commits, Head: src.Head}

	for _, ref := range src.Refs {
		switch {
		case ref.Kind == model.TagRef:
			snap.Refs = append(snap.Refs, ref)
		case !ref.Remote:
			snap.Refs = append(snap.Refs, model.Ref{
				Name:   name + "/" + ref.Name,
				Target: ref.Target,
				Kind:   model.BranchRef,
				Remote: true,
			})
		}
	}
	if src.Head.Branch != "" {
		snap.Refs = append([]model.Ref{{Name: src.Head.Branch, Target: src.Head.Commit, Kind: model.BranchRef}}, snap.Refs...)
	}

	local, err := repo.FromSnapshot(snap, opts...)
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}
	return local, nil
}

// Publish creates a remote from local: its local branches, tags and HEAD
// with the history they reach. Every local branch gets a remote-tracking
// branch pointing at the same commit, as if it had just been pushed and
// fetched.
func Publish(local *repo.Repository, name string) (*repo.Repository, error) {
	if name == "" {
		name = DefaultName
	}
	src := local.Snapshot()
	head := src.Head
	if head.Branch == "" {
		head = repo.Head{Commit: src.Head.Commit}
	}
	snap := repo.Snapshot{Commits: src.Commits, Head: head}
	for _, ref := range src.Refs {
		if !ref.Remote {
			snap.Refs = append(snap.Refs, ref)
		}
	}

	remote, err := repo.FromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	for _, ref := range local.LocalBranches() {
		if err := local.SetRemoteTracking(name+"/"+ref.Name, ref.Target); err != nil {
			return nil, fmt.Errorf("publish: %w", err)
		}
	}
	return remote, nil
}
