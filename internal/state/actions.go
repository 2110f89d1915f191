package state

import (
	"fmt"

	"github.com/kurobon/explaingit/internal/gitbridge"
	"github.com/kurobon/explaingit/internal/model"
	"github.com/kurobon/explaingit/internal/remote"
	"github.com/kurobon/explaingit/internal/repo"
	"github.com/kurobon/explaingit/internal/scenario"
)

// DefaultRemoteCommitMessage is used when a simulated teammate commit has
// no message.
const DefaultRemoteCommitMessage = "Teammate commit"

// ResetSession throws away both repositories and starts over from a fresh
// repository with no remote.
func (sm *SessionManager) ResetSession(sessionID string) error {
	session, err := sm.mustSession(sessionID)
	if err != nil {
		return err
	}
	session.Lock()
	defer session.Unlock()

	session.SetRepos(repo.New(), nil)
	session.ScenarioID = ""
	session.Reflog = nil
	session.logger.Info().Msg("session reset")
	return nil
}

// StartScenario replaces the session's repositories with the fixtures of a
// scenario from the catalog.
func (sm *SessionManager) StartScenario(sessionID, scenarioID string) (*scenario.Scenario, error) {
	if sm.Scenarios == nil {
		return nil, fmt.Errorf("no scenarios available")
	}
	sc, ok := sm.Scenarios.Get(scenarioID)
	if !ok {
		return nil, fmt.Errorf("scenario %q not found", scenarioID)
	}
	session, err := sm.mustSession(sessionID)
	if err != nil {
		return nil, err
	}

	local, origin, err := sc.Build(session.RemoteName())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenarioID, err)
	}

	session.Lock()
	defer session.Unlock()
	session.SetRepos(local, origin)
	session.ScenarioID = sc.ID
	session.Reflog = nil
	session.logger.Info().
		Str("scenario", sc.ID).
		Bool("origin", origin != nil).
		Str("head", local.HeadCommit()).
		Msg("scenario started")
	return sc, nil
}

// VerifyScenario evaluates the checks of the session's current scenario.
func (sm *SessionManager) VerifyScenario(sessionID string) (*scenario.VerificationResult, error) {
	session, err := sm.mustSession(sessionID)
	if err != nil {
		return nil, err
	}
	session.RLock()
	defer session.RUnlock()

	if session.ScenarioID == "" {
		return nil, fmt.Errorf("no scenario in progress")
	}
	if sm.Scenarios == nil {
		return nil, fmt.Errorf("no scenarios available")
	}
	sc, ok := sm.Scenarios.Get(session.ScenarioID)
	if !ok {
		return nil, fmt.Errorf("scenario %q not found", session.ScenarioID)
	}
	return sc.ForRemote(session.RemoteName()).Verify(session.Local, session.Origin), nil
}

// SimulateRemoteCommit creates a commit on a branch of the session's origin,
// as a teammate pushing would. An empty branch means origin's current
// branch. Origin's HEAD is left where it was.
func (sm *SessionManager) SimulateRemoteCommit(sessionID, branch, message string) (model.Commit, error) {
	session, err := sm.mustSession(sessionID)
	if err != nil {
		return model.Commit{}, err
	}
	session.Lock()
	defer session.Unlock()

	origin := session.Origin
	if origin == nil {
		return model.Commit{}, model.RefError(model.KindNoRemote, session.RemoteName())
	}
	prev := origin.Head()
	if branch == "" {
		if prev.Detached() {
			return model.Commit{}, model.RefError(model.KindNoCurrentBranch, model.HeadName)
		}
		branch = prev.Branch
	}
	if ref, ok := origin.LookupBranch(branch); !ok || !ref.Attaches() {
		return model.Commit{}, model.RefError(model.KindBranchNotFound, branch)
	}
	if message == "" {
		message = DefaultRemoteCommitMessage
	}

	if err := origin.Checkout(branch); err != nil {
		return model.Commit{}, err
	}
	c, commitErr := origin.Commit(message)

	restore := prev.Branch
	if prev.Detached() {
		restore = prev.Commit
	}
	if err := origin.Checkout(restore); err != nil {
		return model.Commit{}, fmt.Errorf("restore remote HEAD: %w", err)
	}
	if commitErr != nil {
		return model.Commit{}, commitErr
	}

	session.Version++
	session.logger.Info().Str("branch", branch).Str("commit", c.ID).Msg("simulated remote commit")
	return c, nil
}

// CreateRemote publishes the local repository as the session's origin.
func (sm *SessionManager) CreateRemote(sessionID string) error {
	session, err := sm.mustSession(sessionID)
	if err != nil {
		return err
	}
	session.Lock()
	defer session.Unlock()

	if session.Origin != nil {
		return model.RefError(model.KindNameAlreadyExists, session.RemoteName())
	}
	origin, err := remote.Publish(session.Local, session.RemoteName())
	if err != nil {
		return err
	}
	session.SetRepos(session.Local, origin)
	session.logger.Info().Str("remote", session.RemoteName()).Msg("remote created")
	return nil
}

// RemoveRemote drops the session's origin together with its
// remote-tracking branches.
func (sm *SessionManager) RemoveRemote(sessionID string) error {
	session, err := sm.mustSession(sessionID)
	if err != nil {
		return err
	}
	session.Lock()
	defer session.Unlock()

	if session.Origin == nil {
		return model.RefError(model.KindNoRemote, session.RemoteName())
	}
	pruned := session.Local.PruneRemoteTracking(session.RemoteName() + "/")
	session.SetRepos(session.Local, nil)
	session.logger.Info().Int("pruned", pruned).Msg("remote removed")
	return nil
}

// IngestRemote imports the git repository at dir as the session's origin
// and replaces the local repository with a fresh clone of it.
func (sm *SessionManager) IngestRemote(sessionID, dir string) error {
	session, err := sm.mustSession(sessionID)
	if err != nil {
		return err
	}

	gr, err := gitbridge.OpenDir(dir)
	if err != nil {
		return err
	}
	origin, err := gitbridge.Import(gr)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", dir, err)
	}

	session.Lock()
	defer session.Unlock()

	local, err := remote.Clone(origin, session.RemoteName())
	if err != nil {
		return err
	}
	session.SetRepos(local, origin)
	session.ScenarioID = ""
	session.Reflog = nil
	session.logger.Info().Str("dir", dir).Int("commits", len(origin.Commits())).Msg("remote ingested")
	return nil
}
