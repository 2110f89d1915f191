package state

import (
	"github.com/kurobon/explaingit/internal/repo"
)

// populateCommits lists commits newest first. The graph stores commits in
// insertion order and a parent is always inserted before its children, so
// walking it backwards keeps every child ahead of its parents.
//
// Unless showAll is set, commits that no ref or HEAD can reach are left out.
func populateCommits(r *repo.Repository, state *GraphState, showAll bool) {
	reachable := r.Reachable()
	onBranch := r.BranchReachable()

	commits := r.Commits()
	for i := len(commits) - 1; i >= 0; i-- {
		c := commits[i]
		if !showAll && !reachable[c.ID] {
			continue
		}
		view := toViewCommit(c)
		view.Reachable = reachable[c.ID]
		view.Branchless = !onBranch[c.ID]
		state.Commits = append(state.Commits, view)
	}
}
