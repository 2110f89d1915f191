package repo

import (
	"fmt"

	"github.com/kurobon/explaingit/internal/model"
)

// Commit records a new commit on top of HEAD. On an attached branch the
// branch advances; a detached HEAD moves to the new commit and no branch
// changes.
func (r *Repository) Commit(message string) (model.Commit, error) {
	return r.commitOnHead(model.Commit{Message: message})
}

func (r *Repository) commitOnHead(tmpl model.Commit) (model.Commit, error) {
	tmpl.Parent = r.HeadCommit()
	c, err := r.commits.Add(tmpl)
	if err != nil {
		return model.Commit{}, err
	}
	r.moveHead(c.ID)
	return c, nil
}

// CreateBranch creates a branch at HEAD without switching to it.
func (r *Repository) CreateBranch(name string) (model.Ref, error) {
	if err := r.checkNewName(name); err != nil {
		return model.Ref{}, err
	}
	return r.branches.Add(name, r.HeadCommit()), nil
}

// CreateTag creates a tag at HEAD. Tags share the branch namespace.
func (r *Repository) CreateTag(name string) (model.Ref, error) {
	if err := r.checkNewName(name); err != nil {
		return model.Ref{}, err
	}
	return r.tags.Add(name, r.HeadCommit()), nil
}

func (r *Repository) checkNewName(name string) error {
	if err := model.ValidateName(name); err != nil {
		return err
	}
	if r.nameTaken(name) {
		return model.RefError(model.KindNameAlreadyExists, name)
	}
	return nil
}

// DeleteBranch removes local branches. Every name is checked before any
// branch is removed, so a failure leaves all of them in place.
// Remote-tracking branches are owned by fetch and cannot be deleted here.
func (r *Repository) DeleteBranch(names ...string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if err := model.ValidateName(name); err != nil {
			return err
		}
		if name == r.headBranch {
			return model.RefError(model.KindCannotDeleteCurrentBranch, name)
		}
		ref, ok := r.branches.Get(name)
		if !ok || ref.Remote || seen[name] {
			return model.RefError(model.KindBranchNotFound, name)
		}
		seen[name] = true
	}
	for _, name := range names {
		r.branches.Remove(name)
	}
	return nil
}

// DeleteTag removes tags, all or none.
func (r *Repository) DeleteTag(names ...string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if !r.tags.Contains(name) || seen[name] {
			return model.RefError(model.KindRefNotFound, name)
		}
		seen[name] = true
	}
	for _, name := range names {
		r.tags.Remove(name)
	}
	return nil
}

// Checkout moves HEAD. A local branch name attaches HEAD to the branch; any
// other revision (tag, remote-tracking branch, commit id, HEAD~n) detaches
// HEAD at the resolved commit.
func (r *Repository) Checkout(rev string) error {
	if ref, ok := r.branches.Get(rev); ok && ref.Attaches() {
		r.headBranch = rev
		r.headCommit = ""
		return nil
	}
	id, err := r.Resolve(rev)
	if err != nil {
		return err
	}
	r.detach(id)
	return nil
}

func (r *Repository) detach(id string) {
	r.headBranch = ""
	r.headCommit = id
}

// CheckoutNewBranch creates a branch at HEAD and attaches HEAD to it.
func (r *Repository) CheckoutNewBranch(name string) (model.Ref, error) {
	ref, err := r.CreateBranch(name)
	if err != nil {
		return model.Ref{}, err
	}
	r.headBranch = name
	r.headCommit = ""
	return ref, nil
}

// Reset points HEAD at rev. With an attached branch the branch itself is
// moved and stays checked out.
func (r *Repository) Reset(rev string) (string, error) {
	id, err := r.Resolve(rev)
	if err != nil {
		return "", err
	}
	if r.headBranch != "" {
		_ = r.branches.Move(r.headBranch, id)
		return id, nil
	}
	r.detach(id)
	return id, nil
}

// Revert records a commit undoing rev, which must be an ancestor of HEAD.
// The new commit is created exactly like Commit.
func (r *Repository) Revert(rev string) (model.Commit, error) {
	id, err := r.Resolve(rev)
	if err != nil {
		return model.Commit{}, err
	}
	if !r.commits.IsAncestor(id, r.HeadCommit()) {
		return model.Commit{}, &model.Error{Kind: model.KindNotAncestor, Ref: rev, Commit: id}
	}
	orig, _ := r.commits.Get(id)
	return r.commitOnHead(model.Commit{
		Message:  revertMessage(orig),
		Reverted: true,
		Reverts:  id,
	})
}

func revertMessage(c model.Commit) string {
	if c.Message == "" {
		return fmt.Sprintf("Revert %s", c.ID)
	}
	return "Revert \"" + c.Message + "\""
}

// Log returns first-parent history starting at rev, newest first. A limit of
// zero or less means no limit.
func (r *Repository) Log(rev string, limit int) ([]model.Commit, error) {
	id, err := r.Resolve(rev)
	if err != nil {
		return nil, err
	}
	var out []model.Commit
	for id != "" {
		if limit > 0 && len(out) == limit {
			break
		}
		c, ok := r.commits.Get(id)
		if !ok {
			break
		}
		out = append(out, c)
		id = c.Parent
	}
	return out, nil
}
