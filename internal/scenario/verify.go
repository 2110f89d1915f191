package scenario

import (
	"strings"

	"github.com/kurobon/explaingit/internal/repo"
)

// Verify evaluates every check against the session's repositories. origin
// may be nil; checks that need it then fail.
func (s *Scenario) Verify(local, origin *repo.Repository) *VerificationResult {
	res := &VerificationResult{Success: true, ScenarioID: s.ID}
	for _, c := range s.Checks {
		passed := evaluate(c, local, origin)
		if c.Negate {
			passed = !passed
		}
		res.Progress = append(res.Progress, CheckResult{Description: c.Description, Passed: passed})
		if !passed {
			res.Success = false
		}
	}
	return res
}

func evaluate(c Check, local, origin *repo.Repository) bool {
	if local == nil {
		return false
	}
	switch c.Type {
	case CheckBranchExists:
		_, ok := local.LookupBranch(c.Name)
		return ok

	case CheckCurrentBranch:
		branch, ok := local.CurrentBranch()
		return ok && branch == c.Name

	case CheckHeadDetached:
		return local.Head().Detached()

	case CheckRefAtMessage:
		id, err := local.Resolve(c.Name)
		if err != nil {
			return false
		}
		commit, _ := local.Get(id)
		return commit.Message == c.Message

	case CheckCommitExists:
		reach := local.Reachable()
		for _, commit := range local.Commits() {
			if reach[commit.ID] && strings.Contains(commit.Message, c.Message) {
				return true
			}
		}
		return false

	case CheckIsAncestor:
		a, err := local.Resolve(c.Ancestor)
		if err != nil {
			return false
		}
		d, err := local.Resolve(c.Descendant)
		if err != nil {
			return false
		}
		return local.IsAncestor(a, d)

	case CheckInSync:
		if origin == nil {
			return false
		}
		mine, ok := local.LookupBranch(c.Name)
		if !ok {
			return false
		}
		theirs, ok := origin.LookupBranch(c.Name)
		return ok && mine.Target == theirs.Target

	case CheckLinear:
		for id := range local.Reachable() {
			if commit, _ := local.Get(id); commit.IsMerge() && local.IsAncestor(id, local.HeadCommit()) {
				return false
			}
		}
		return true
	}
	return false
}
