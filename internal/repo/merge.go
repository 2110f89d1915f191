package repo

import (
	"fmt"

	"github.com/kurobon/explaingit/internal/model"
)

// Outcome tells how a merge or rebase changed history.
type Outcome int

const (
	// FastForward moved HEAD to a descendant without creating commits.
	FastForward Outcome = iota + 1
	// Merged created one merge commit.
	Merged
	// Rebased replayed commits onto a new base.
	Rebased
)

func (o Outcome) String() string {
	switch o {
	case FastForward:
		return "Fast-forward"
	case Merged:
		return "Merged"
	case Rebased:
		return "Rebased"
	}
	return "Unknown"
}

type MergeResult struct {
	Outcome Outcome
	From    string // HEAD before the merge
	To      string // HEAD after the merge
	Commit  model.Commit
}

type RebaseResult struct {
	Outcome Outcome
	From    string
	To      string
	// Base is the first commit on HEAD's first-parent line that target
	// already contains.
	Base string
	// Replayed holds the new commits, oldest first; Originals the ids they
	// were copied from, in the same order.
	Replayed  []model.Commit
	Originals []string
}

// Merge integrates rev into HEAD. When rev is HEAD itself or the commit HEAD
// last merged in, it fails with AlreadyUpToDate; an older ancestor still
// gets a merge commit. When HEAD is an ancestor of rev and noFF is
// false, HEAD fast-forwards; otherwise a merge commit with parent HEAD and
// parent2 rev is created.
func (r *Repository) Merge(rev string, noFF bool) (MergeResult, error) {
	target, err := r.Resolve(rev)
	if err != nil {
		return MergeResult{}, err
	}
	head := r.HeadCommit()
	if r.upToDateWith(target) {
		return MergeResult{}, &model.Error{Kind: model.KindAlreadyUpToDate, Ref: rev, Commit: target}
	}

	if !noFF && r.commits.IsAncestor(head, target) {
		r.moveHead(target)
		return MergeResult{Outcome: FastForward, From: head, To: target}, nil
	}

	c, err := r.commits.Add(model.Commit{
		Parent:  head,
		Parent2: target,
		Message: r.mergeMessage(rev, target),
	})
	if err != nil {
		return MergeResult{}, err
	}
	r.moveHead(c.ID)
	return MergeResult{Outcome: Merged, From: head, To: c.ID, Commit: c}, nil
}

// upToDateWith reports whether target is HEAD or HEAD's second parent.
func (r *Repository) upToDateWith(target string) bool {
	head, _ := r.commits.Get(r.HeadCommit())
	return target == head.ID || (head.Parent2 != "" && head.Parent2 == target)
}

func (r *Repository) mergeMessage(rev, target string) string {
	if ref, ok := r.branches.Get(rev); ok {
		if ref.Remote {
			return fmt.Sprintf("Merge remote-tracking branch '%s'", rev)
		}
		return fmt.Sprintf("Merge branch '%s'", rev)
	}
	if r.tags.Contains(rev) {
		return fmt.Sprintf("Merge tag '%s'", rev)
	}
	return fmt.Sprintf("Merge commit '%s'", target)
}

// Rebase replays the commits on HEAD's first-parent line that rev does not
// contain on top of rev. Every replayed commit is a new node with a new id;
// the originals stay in the graph and every ref other than HEAD's branch
// keeps pointing at them.
func (r *Repository) Rebase(rev string) (RebaseResult, error) {
	target, err := r.Resolve(rev)
	if err != nil {
		return RebaseResult{}, err
	}
	head := r.HeadCommit()
	if r.upToDateWith(target) {
		return RebaseResult{}, &model.Error{Kind: model.KindAlreadyUpToDate, Ref: rev, Commit: target}
	}

	if r.commits.IsAncestor(head, target) {
		r.moveHead(target)
		return RebaseResult{Outcome: FastForward, From: head, To: target, Base: head}, nil
	}

	inTarget := r.commits.Reachable(target)
	var todo []model.Commit
	base := ""
	for id := head; id != ""; {
		if inTarget[id] {
			base = id
			break
		}
		c, _ := r.commits.Get(id)
		todo = append(todo, c)
		id = c.Parent
	}

	result := RebaseResult{Outcome: Rebased, From: head, Base: base}
	tip := target
	for i := len(todo) - 1; i >= 0; i-- {
		orig := todo[i]
		c, err := r.commits.Add(model.Commit{
			Parent:      tip,
			Message:     orig.Message,
			Reverted:    orig.Reverted,
			Reverts:     orig.Reverts,
			Rebased:     true,
			RebasedFrom: orig.ID,
		})
		if err != nil {
			return RebaseResult{}, err
		}
		result.Replayed = append(result.Replayed, c)
		result.Originals = append(result.Originals, orig.ID)
		tip = c.ID
	}

	r.moveHead(tip)
	result.To = tip
	return result, nil
}
