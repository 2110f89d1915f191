package repo

import (
	"strings"

	"github.com/kurobon/explaingit/internal/model"
)

// Missing returns the commits reachable from tip that have reports as absent,
// ancestors first.
func (r *Repository) Missing(tip string, have func(id string) bool) []model.Commit {
	return r.commits.Missing(tip, have)
}

// Receive copies foreign commits verbatim. The whole batch is checked first:
// either every commit is inserted or none is. Commits already present are
// skipped.
func (r *Repository) Receive(commits []model.Commit) error {
	incoming := make(map[string]bool, len(commits))
	for _, c := range commits {
		if c.ID == "" {
			return model.CommitError(model.KindCommitNotFound, "")
		}
		for _, p := range c.Parents() {
			if !incoming[p] && !r.commits.Contains(p) {
				return &model.Error{Kind: model.KindInvalidParent, Ref: c.ID, Commit: p}
			}
		}
		incoming[c.ID] = true
	}
	for _, c := range commits {
		if err := r.commits.Insert(c); err != nil {
			return err
		}
	}
	return nil
}

// SetRemoteTracking creates or moves a remote-tracking branch such as
// origin/master.
func (r *Repository) SetRemoteTracking(name, target string) error {
	if !r.commits.Contains(target) {
		return &model.Error{Kind: model.KindCommitNotFound, Ref: name, Commit: target}
	}
	if ref, ok := r.branches.Get(name); ok {
		if !ref.Remote {
			return model.RefError(model.KindNameAlreadyExists, name)
		}
		return r.branches.Move(name, target)
	}
	if err := model.ValidateName(name); err != nil {
		return err
	}
	if r.tags.Contains(name) {
		return model.RefError(model.KindNameAlreadyExists, name)
	}
	r.branches.AddRemoteTracking(name, target)
	return nil
}

// MoveBranch repoints an existing branch without touching HEAD's attachment.
// Push uses it on the receiving side.
func (r *Repository) MoveBranch(name, target string) error {
	if !r.commits.Contains(target) {
		return &model.Error{Kind: model.KindCommitNotFound, Ref: name, Commit: target}
	}
	if !r.branches.Contains(name) {
		return model.RefError(model.KindBranchNotFound, name)
	}
	return r.branches.Move(name, target)
}

// RemoteTracking lists remote-tracking branches with the given prefix
// (for example "origin/").
func (r *Repository) RemoteTracking(prefix string) []model.Ref {
	var out []model.Ref
	for _, ref := range r.branches.Refs() {
		if ref.Remote && strings.HasPrefix(ref.Name, prefix) {
			out = append(out, ref)
		}
	}
	return out
}

// LocalBranches lists branches that are not remote-tracking.
func (r *Repository) LocalBranches() []model.Ref {
	var out []model.Ref
	for _, ref := range r.branches.Refs() {
		if !ref.Remote {
			out = append(out, ref)
		}
	}
	return out
}

// PruneRemoteTracking deletes every remote-tracking branch with the given
// prefix and returns how many were removed.
func (r *Repository) PruneRemoteTracking(prefix string) int {
	n := 0
	for _, ref := range r.RemoteTracking(prefix) {
		if r.branches.Remove(ref.Name) {
			n++
		}
	}
	return n
}
