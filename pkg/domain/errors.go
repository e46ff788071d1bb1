package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrWorkspaceNotFound is returned when a store has no snapshot for a workspace name.
	ErrWorkspaceNotFound = errors.New("workspace not found")

	// ErrWorkspaceExists is returned when provisioning a name that is already taken.
	ErrWorkspaceExists = errors.New("workspace already exists")

	// ErrConflict is returned when a commit was based on a stale snapshot version.
	ErrConflict = errors.New("workspace changed since the snapshot was taken")

	// ErrNoCredential is returned by a credential store that holds nothing.
	ErrNoCredential = errors.New("no stored credential")

	// ErrNotLoggedIn is returned when a session operation needs a user and there is none.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrUnauthorized is returned when a credential is not a member of the workspace.
	ErrUnauthorized = errors.New("credential is not authorized for this workspace")

	ErrEntityNotFound = errors.New("entity not found")
	ErrAbstractClass  = errors.New("class is abstract")
	ErrSingleton      = errors.New("singleton instance")
	ErrTxClosed       = errors.New("transaction is closed")
	ErrStageClosed    = errors.New("stage is closed")
	ErrStageBusy      = errors.New("stage is already running a transaction")
	ErrSessionClosed  = errors.New("session is closed")
)

// UnknownClassError is returned when a class name does not resolve to any class.
type UnknownClassError struct {
	Name string
}

func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("unknown class %q", e.Name)
}

// AmbiguousClassError is returned when a class name matches more than one class.
type AmbiguousClassError struct {
	Name    string
	Matches []ID
}

func (e *AmbiguousClassError) Error() string {
	return fmt.Sprintf("class name %q is ambiguous (%d matches)", e.Name, len(e.Matches))
}

// FieldError reports a rejected field access on an entity.
type FieldError struct {
	Entity ID
	Class  string
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s: field %q: %s", e.Class, e.Entity, e.Field, e.Reason)
}

// Violation is a single broken invariant found in a snapshot.
type Violation struct {
	Entity ID
	Field  string
	Reason string
}

func (v Violation) String() string {
	if v.Field == "" {
		return fmt.Sprintf("%s: %s", v.Entity, v.Reason)
	}
	return fmt.Sprintf("%s.%s: %s", v.Entity, v.Field, v.Reason)
}

// InvariantError aggregates the violations that blocked a commit.
type InvariantError struct {
	Violations []Violation
}

func (e *InvariantError) Error() string {
	if len(e.Violations) == 1 {
		return "invariant violated: " + e.Violations[0].String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d invariant violations:\n", len(e.Violations))
	for i, v := range e.Violations {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, v)
	}
	return b.String()
}
