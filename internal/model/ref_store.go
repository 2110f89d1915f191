package model

import (
	"strings"
	"unicode"
)

// HeadName is reserved: no branch or tag may use it.
const HeadName = "HEAD"

type RefKind int

const (
	BranchRef RefKind = iota
	TagRef
)

func (k RefKind) String() string {
	if k == TagRef {
		return "tag"
	}
	return "branch"
}

// Ref is a named pointer to a commit id.
type Ref struct {
	Name   string  `json:"name"`
	Target string  `json:"target"`
	Kind   RefKind `json:"kind"`
	Remote bool    `json:"remote,omitempty"`
}

// Attaches reports whether checking the ref out attaches HEAD to it. Only
// local branches do; tags and remote-tracking branches detach.
func (r Ref) Attaches() bool {
	return r.Kind == BranchRef && !r.Remote
}

// ValidateName rejects names that are empty, contain whitespace, equal HEAD,
// or use characters reserved by revision and refspec syntax.
func ValidateName(name string) error {
	if name == "" || name == HeadName {
		return RefError(KindInvalidName, name)
	}
	if strings.ContainsFunc(name, unicode.IsSpace) || strings.ContainsAny(name, "^~:") {
		return RefError(KindInvalidName, name)
	}
	return nil
}

// RefStore holds the refs of one kind, in creation order.
type RefStore struct {
	kind  RefKind
	refs  []Ref
	index map[string]int
}

func NewRefStore(kind RefKind) *RefStore {
	return &RefStore{kind: kind, index: make(map[string]int)}
}

func (s *RefStore) Kind() RefKind { return s.kind }

// Add creates the ref, or retargets it when the name already exists.
func (s *RefStore) Add(name, target string) Ref {
	return s.upsert(name, target, false)
}

// AddRemoteTracking is Add for refs mirroring a branch of another repository.
func (s *RefStore) AddRemoteTracking(name, target string) Ref {
	return s.upsert(name, target, true)
}

func (s *RefStore) upsert(name, target string, remote bool) Ref {
	if i, ok := s.index[name]; ok {
		s.refs[i].Target = target
		return s.refs[i]
	}
	ref := Ref{Name: name, Target: target, Kind: s.kind, Remote: remote}
	s.index[name] = len(s.refs)
	s.refs = append(s.refs, ref)
	return ref
}

func (s *RefStore) Get(name string) (Ref, bool) {
	i, ok := s.index[name]
	if !ok {
		return Ref{}, false
	}
	return s.refs[i], true
}

func (s *RefStore) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Move repoints an existing ref.
func (s *RefStore) Move(name, target string) error {
	i, ok := s.index[name]
	if !ok {
		return RefError(KindRefNotFound, name)
	}
	s.refs[i].Target = target
	return nil
}

// Remove deletes a ref and reports whether it existed.
func (s *RefStore) Remove(name string) bool {
	i, ok := s.index[name]
	if !ok {
		return false
	}
	s.refs = append(s.refs[:i], s.refs[i+1:]...)
	delete(s.index, name)
	for j := i; j < len(s.refs); j++ {
		s.index[s.refs[j].Name] = j
	}
	return true
}

// Refs returns a copy of every ref in creation order.
func (s *RefStore) Refs() []Ref {
	out := make([]Ref, len(s.refs))
	copy(out, s.refs)
	return out
}

func (s *RefStore) Len() int { return len(s.refs) }
