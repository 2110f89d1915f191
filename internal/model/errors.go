package model

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so that callers can turn it into user-facing text.
type Kind int

const (
	KindUnknown Kind = iota
	KindRefNotFound
	KindInvalidName
	KindNameAlreadyExists
	KindBranchNotFound
	KindCannotDeleteCurrentBranch
	KindNotAncestor
	KindAlreadyUpToDate
	KindNonFastForward
	KindNoCurrentBranch
	KindBranchNotTrackingRemote
	KindUnsupportedNewRemoteBranch
	KindLocalRefNotFound
	KindInvalidParent
	KindCommitNotFound
	KindNoRemote
)

var kindNames = map[Kind]string{
	KindUnknown:                    "Unknown",
	KindRefNotFound:                "RefNotFound",
	KindInvalidName:                "InvalidName",
	KindNameAlreadyExists:          "NameAlreadyExists",
	KindBranchNotFound:             "BranchNotFound",
	KindCannotDeleteCurrentBranch:  "CannotDeleteCurrentBranch",
	KindNotAncestor:                "NotAncestor",
	KindAlreadyUpToDate:            "AlreadyUpToDate",
	KindNonFastForward:             "NonFastForward",
	KindNoCurrentBranch:            "NoCurrentBranch",
	KindBranchNotTrackingRemote:    "BranchNotTrackingRemote",
	KindUnsupportedNewRemoteBranch: "UnsupportedNewRemoteBranch",
	KindLocalRefNotFound:           "LocalRefNotFound",
	KindInvalidParent:              "InvalidParent",
	KindCommitNotFound:             "CommitNotFound",
	KindNoRemote:                   "NoRemote",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is returned by every graph, ref store, repository and sync operation.
// Ref and Commit carry the identifiers the failure is about, when there are any.
type Error struct {
	Kind   Kind
	Ref    string
	Commit string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindRefNotFound:
		return fmt.Sprintf("cannot find ref %q", e.Ref)
	case KindInvalidName:
		return fmt.Sprintf("invalid ref name %q", e.Ref)
	case KindNameAlreadyExists:
		return fmt.Sprintf("ref %q already exists", e.Ref)
	case KindBranchNotFound:
		return fmt.Sprintf("branch %q not found", e.Ref)
	case KindCannotDeleteCurrentBranch:
		return fmt.Sprintf("cannot delete checked-out branch %q", e.Ref)
	case KindNotAncestor:
		return fmt.Sprintf("%s is not an ancestor of HEAD", e.Ref)
	case KindAlreadyUpToDate:
		return "already up to date"
	case KindNonFastForward:
		return fmt.Sprintf("non-fast-forward update of %q rejected", e.Ref)
	case KindNoCurrentBranch:
		return "HEAD is detached"
	case KindBranchNotTrackingRemote:
		return fmt.Sprintf("branch %q has no remote-tracking branch", e.Ref)
	case KindUnsupportedNewRemoteBranch:
		return fmt.Sprintf("remote branch %q does not exist", e.Ref)
	case KindLocalRefNotFound:
		return fmt.Sprintf("local ref %q not found", e.Ref)
	case KindInvalidParent:
		return fmt.Sprintf("parent commit %q does not exist", e.Commit)
	case KindCommitNotFound:
		return fmt.Sprintf("commit %q not found", e.Commit)
	case KindNoRemote:
		return fmt.Sprintf("remote %q is not configured", e.Ref)
	}
	return e.Kind.String()
}

// Is reports whether target is an *Error of the same kind. Identifiers are
// ignored so that the package sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrRefNotFound                = &Error{Kind: KindRefNotFound}
	ErrInvalidName                = &Error{Kind: KindInvalidName}
	ErrNameAlreadyExists          = &Error{Kind: KindNameAlreadyExists}
	ErrBranchNotFound             = &Error{Kind: KindBranchNotFound}
	ErrCannotDeleteCurrentBranch  = &Error{Kind: KindCannotDeleteCurrentBranch}
	ErrNotAncestor                = &Error{Kind: KindNotAncestor}
	ErrAlreadyUpToDate            = &Error{Kind: KindAlreadyUpToDate}
	ErrNonFastForward             = &Error{Kind: KindNonFastForward}
	ErrNoCurrentBranch            = &Error{Kind: KindNoCurrentBranch}
	ErrBranchNotTrackingRemote    = &Error{Kind: KindBranchNotTrackingRemote}
	ErrUnsupportedNewRemoteBranch = &Error{Kind: KindUnsupportedNewRemoteBranch}
	ErrLocalRefNotFound           = &Error{Kind: KindLocalRefNotFound}
	ErrInvalidParent              = &Error{Kind: KindInvalidParent}
	ErrCommitNotFound             = &Error{Kind: KindCommitNotFound}
	ErrNoRemote                   = &Error{Kind: KindNoRemote}
)

// RefError builds an error about a named ref.
func RefError(kind Kind, ref string) *Error {
	return &Error{Kind: kind, Ref: ref}
}

// CommitError builds an error about a commit id.
func CommitError(kind Kind, id string) *Error {
	return &Error{Kind: kind, Commit: id}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
