package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidArgument marks a field that failed validation
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOwnershipMismatch marks an event appended to an aggregate it does not belong to
	ErrOwnershipMismatch = errors.New("ownership mismatch")
	// ErrInvalidTransition marks a status change the lifecycle policy forbids
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrNotFound is returned by repositories and services for missing records
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a uniqueness violation, e.g. a duplicate email
	ErrConflict = errors.New("conflict")
	// ErrConcurrentUpdate marks an append made against a stale event log
	ErrConcurrentUpdate = errors.New("concurrent update")
)

// ValidationError describes a single field that failed a validation rule
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidArgument) match
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// OwnershipError reports an event whose ids disagree with the target aggregate.
// It matches both ErrOwnershipMismatch and ErrInvalidArgument.
type OwnershipError struct {
	Field    string
	Expected uuid.UUID
	Actual   uuid.UUID
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("event %s %s does not match aggregate %s", e.Field, e.Actual, e.Expected)
}

func (e *OwnershipError) Is(target error) bool {
	return target == ErrOwnershipMismatch || target == ErrInvalidArgument
}

// TransitionReason explains why a transition was refused
type TransitionReason string

const (
	ReasonTerminalState TransitionReason = "terminal_state"
	ReasonNoSuchEdge    TransitionReason = "no_such_edge"
	ReasonUnknownStatus TransitionReason = "unknown_status"
)

// TransitionError reports a refused status change
type TransitionError struct {
	From   EventType
	To     EventType
	Reason TransitionReason
}

func (e *TransitionError) Error() string {
	switch e.Reason {
	case ReasonTerminalState:
		return fmt.Sprintf("cannot move from %s to %s: %s is a terminal state", e.From, e.To, e.From)
	case ReasonUnknownStatus:
		return fmt.Sprintf("cannot move from %s to %s: unknown status", e.From, e.To)
	default:
		return fmt.Sprintf("cannot move from %s to %s: transition not allowed", e.From, e.To)
	}
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
