package state

import (
	"github.com/kurobon/explaingit/internal/model"
	"github.com/kurobon/explaingit/internal/repo"
)

// GetGraphState returns the current state of the local repository for
// frontend visualization. It reads under the session lock, so a command is
// either fully visible or not at all.
func (sm *SessionManager) GetGraphState(sessionID string, showAll bool) (*GraphState, error) {
	session, err := sm.mustSession(sessionID)
	if err != nil {
		return nil, err
	}
	session.RLock()
	defer session.RUnlock()

	state := BuildGraphState(session.Local, showAll)
	state.Version = session.Version
	state.ScenarioID = session.ScenarioID
	state.HasRemote = session.Origin != nil
	return state, nil
}

// GetRemoteGraphState returns the origin's state. A session without a remote
// yields an uninitialized state.
func (sm *SessionManager) GetRemoteGraphState(sessionID string) (*GraphState, error) {
	session, err := sm.mustSession(sessionID)
	if err != nil {
		return nil, err
	}
	session.RLock()
	defer session.RUnlock()

	state := BuildGraphState(session.Origin, false)
	state.Version = session.Version
	state.ScenarioID = session.ScenarioID
	state.HasRemote = session.Origin != nil
	return state, nil
}

// BuildGraphState constructs a GraphState from a Repository.
// It serves both the local repository and the origin.
func BuildGraphState(r *repo.Repository, showAll bool) *GraphState {
	state := &GraphState{
		Commits:        []Commit{},
		Branches:       make(map[string]string),
		RemoteBranches: make(map[string]string),
		Tags:           make(map[string]string),
		Refs:           []Ref{},
		Initialized:    r != nil,
	}

	populateHEAD(r, state)
	if r == nil {
		return state
	}
	populateRefs(r, state)
	populateCommits(r, state, showAll)
	return state
}

func populateHEAD(r *repo.Repository, state *GraphState) {
	if r == nil {
		state.HEAD = Head{Type: "none"}
		return
	}
	head := r.Head()
	if head.Detached() {
		state.HEAD = Head{Type: "commit", ID: head.Commit}
		return
	}
	state.HEAD = Head{Type: "branch", Ref: head.Branch, ID: head.Commit}
}

func populateRefs(r *repo.Repository, state *GraphState) {
	for _, ref := range r.Refs() {
		switch {
		case ref.Kind == model.TagRef:
			state.Tags[ref.Name] = ref.Target
		case ref.Remote:
			state.RemoteBranches[ref.Name] = ref.Target
		default:
			state.Branches[ref.Name] = ref.Target
		}
		state.Refs = append(state.Refs, Ref{
			Name:   ref.Name,
			Target: ref.Target,
			Kind:   ref.Kind.String(),
			Remote: ref.Remote,
		})
	}
}

func toViewCommit(c model.Commit) Commit {
	return Commit{
		ID:             c.ID,
		Message:        c.Message,
		ParentID:       c.Parent,
		SecondParentID: c.Parent2,
		Reverted:       c.Reverted,
		Reverts:        c.Reverts,
		Rebased:        c.Rebased,
		RebasedFrom:    c.RebasedFrom,
	}
}
