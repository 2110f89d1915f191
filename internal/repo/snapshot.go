package repo

import (
	"fmt"

	"github.com/kurobon/explaingit/internal/model"
)

// Snapshot is a detached copy of a repository's full state.
type Snapshot struct {
	Commits []model.Commit `json:"commits"`
	Refs    []model.Ref    `json:"refs"`
	Head    Head           `json:"head"`
}

// Snapshot copies commits (in insertion order), refs (branches then tags)
// and HEAD.
func (r *Repository) Snapshot() Snapshot {
	return Snapshot{
		Commits: r.commits.Commits(),
		Refs:    r.Refs(),
		Head:    r.Head(),
	}
}

// FromSnapshot rebuilds a repository. Commits may appear in any order as long
// as every parent is present; refs and HEAD must name existing commits. When
// Head.Branch is set it must be a local branch.
func FromSnapshot(s Snapshot, opts ...Option) (*Repository, error) {
	if len(s.Commits) == 0 {
		return nil, fmt.Errorf("snapshot has no commits")
	}
	r := newEmpty(opts)

	seen := make(map[string]bool, len(s.Commits))
	for _, c := range s.Commits {
		if c.ID == "" {
			return nil, fmt.Errorf("snapshot commit without id")
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate commit %q in snapshot", c.ID)
		}
		seen[c.ID] = true
	}

	ordered, err := topoOrder(s.Commits)
	if err != nil {
		return nil, err
	}
	for _, c := range ordered {
		if err := r.commits.Insert(c); err != nil {
			return nil, err
		}
	}

	for _, ref := range s.Refs {
		if err := model.ValidateName(ref.Name); err != nil {
			return nil, err
		}
		if !r.commits.Contains(ref.Target) {
			return nil, &model.Error{Kind: model.KindCommitNotFound, Ref: ref.Name, Commit: ref.Target}
		}
		if r.nameTaken(ref.Name) {
			return nil, model.RefError(model.KindNameAlreadyExists, ref.Name)
		}
		switch {
		case ref.Kind == model.TagRef:
			r.tags.Add(ref.Name, ref.Target)
		case ref.Remote:
			r.branches.AddRemoteTracking(ref.Name, ref.Target)
		default:
			r.branches.Add(ref.Name, ref.Target)
		}
	}

	if s.Head.Branch != "" {
		ref, ok := r.branches.Get(s.Head.Branch)
		if !ok || !ref.Attaches() {
			return nil, model.RefError(model.KindBranchNotFound, s.Head.Branch)
		}
		r.headBranch = s.Head.Branch
		return r, nil
	}
	if !r.commits.Contains(s.Head.Commit) {
		return nil, model.CommitError(model.KindCommitNotFound, s.Head.Commit)
	}
	r.headCommit = s.Head.Commit
	return r, nil
}

// topoOrder returns commits with every parent before its children, keeping
// the input order otherwise.
func topoOrder(commits []model.Commit) ([]model.Commit, error) {
	byID := make(map[string]model.Commit, len(commits))
	for _, c := range commits {
		byID[c.ID] = c
	}
	for _, c := range commits {
		for _, p := range c.Parents() {
			if _, ok := byID[p]; !ok {
				return nil, &model.Error{Kind: model.KindInvalidParent, Ref: c.ID, Commit: p}
			}
		}
	}

	placed := make(map[string]bool, len(commits))
	out := make([]model.Commit, 0, len(commits))
	pending := commits
	for len(pending) > 0 {
		var next []model.Commit
		for _, c := range pending {
			ready := true
			for _, p := range c.Parents() {
				if !placed[p] {
					ready = false
					break
				}
			}
			if ready {
				placed[c.ID] = true
				out = append(out, c)
			} else {
				next = append(next, c)
			}
		}
		if len(next) == len(pending) {
			return nil, fmt.Errorf("snapshot commits contain a cycle at %q", next[0].ID)
		}
		pending = next
	}
	return out, nil
}
