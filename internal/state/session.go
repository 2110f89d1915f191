package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kurobon/explaingit/internal/model"
	"github.com/kurobon/explaingit/internal/remote"
	"github.com/kurobon/explaingit/internal/repo"
	"github.com/kurobon/explaingit/internal/scenario"
)

// Session holds one user's simulation: a local repository and, optionally,
// the origin it synchronizes with.
type Session struct {
	ID         string
	Local      *repo.Repository
	Origin     *repo.Repository // nil until a remote exists
	Sync       *remote.SyncEngine
	ScenarioID string
	CreatedAt  time.Time
	Reflog     []ReflogEntry
	// Version increments after every successful command.
	Version   uint64
	PullDelay time.Duration

	remoteName string
	logger     zerolog.Logger
	mu         sync.RWMutex
}

// ReflogEntry records a command executed in the session
type ReflogEntry struct {
	Command   string    `json:"command"`
	Timestamp time.Time `json:"timestamp"`
	Context   string    `json:"context"` // branch, or "HEAD" when detached
	Hash      string    `json:"hash"`
}

// SessionManager handles concurrent access to sessions
type SessionManager struct {
	sessions map[string]*Session
	// Scenarios is consulted by StartScenario; nil disables scenarios.
	Scenarios  *scenario.Catalog
	RemoteName string
	PullDelay  time.Duration
	mu         sync.RWMutex
}

// NewSessionManager creates a new session manager
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions:   make(map[string]*Session),
		RemoteName: remote.DefaultName,
	}
}

func (sm *SessionManager) newSession(id string) *Session {
	s := &Session{
		ID:         id,
		CreatedAt:  time.Now(),
		PullDelay:  sm.PullDelay,
		remoteName: sm.RemoteName,
		logger:     log.With().Str("session", id).Logger(),
	}
	s.setRepos(repo.New(), nil)
	return s
}

// CreateSession returns the session with id, creating it with a fresh
// repository when it does not exist yet.
func (sm *SessionManager) CreateSession(id string) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session id is required")
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if s, exists := sm.sessions[id]; exists {
		return s, nil
	}
	s := sm.newSession(id)
	sm.sessions[id] = s
	s.logger.Info().Msg("session created")
	return s, nil
}

// GetSession retrieves a session by ID
func (sm *SessionManager) GetSession(id string) (*Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[id]
	return s, ok
}

func (sm *SessionManager) mustSession(id string) (*Session, error) {
	s, ok := sm.GetSession(id)
	if !ok {
		return nil, fmt.Errorf("session not found")
	}
	return s, nil
}

// DeleteSession drops a session; it reports whether one existed.
func (sm *SessionManager) DeleteSession(id string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	_, ok := sm.sessions[id]
	delete(sm.sessions, id)
	return ok
}

// Lock locks the session for writing
func (s *Session) Lock() {
	s.mu.Lock()
}

// Unlock unlocks the session
func (s *Session) Unlock() {
	s.mu.Unlock()
}

// RLock locks the session for reading
func (s *Session) RLock() {
	s.mu.RLock()
}

// RUnlock unlocks the session for reading
func (s *Session) RUnlock() {
	s.mu.RUnlock()
}

// Logger returns the session's logger.
func (s *Session) Logger() zerolog.Logger {
	return s.logger
}

// RemoteName is the name of the session's remote (origin by default).
func (s *Session) RemoteName() string {
	if s.remoteName == "" {
		return remote.DefaultName
	}
	return s.remoteName
}

// SetRepos replaces both repositories. The caller holds the write lock.
func (s *Session) SetRepos(local, origin *repo.Repository) {
	s.setRepos(local, origin)
	s.Version++
}

func (s *Session) setRepos(local, origin *repo.Repository) {
	s.Local = local
	s.Origin = origin
	s.Sync = nil
	if origin != nil {
		s.Sync = remote.NewSyncEngine(local, origin)
		s.Sync.Name = s.RemoteName()
		s.Sync.Logger = s.logger
	}
}

// RecordReflog adds an entry to the session reflog. The caller holds the
// write lock.
func (s *Session) RecordReflog(cmd string) {
	head := s.Local.Head()
	ctx := head.Branch
	if head.Detached() {
		ctx = model.HeadName
	}
	s.Reflog = append(s.Reflog, ReflogEntry{
		Command:   cmd,
		Timestamp: time.Now(),
		Context:   ctx,
		Hash:      head.Commit,
	})
}

// Touch bumps the version for a change that no reflog entry describes, such
// as the fetch half of an interrupted pull. The caller holds the write lock.
func (s *Session) Touch() {
	s.Version++
}

// Commit marks the end of a successful command.
func (s *Session) Commit(cmd string) {
	s.RecordReflog(cmd)
	s.Version++
}
