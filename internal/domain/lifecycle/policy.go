// Package lifecycle decides which status changes an application may make and
// applies them through the application repository.
package lifecycle

import (
	"github.com/honeycarbs/career-ledger/internal/domain"
)

// Policy validates a proposed status change
type Policy interface {
	Validate(from, to domain.EventType) error
}

// PolicyFunc adapts a function to Policy
type PolicyFunc func(from, to domain.EventType) error

func (f PolicyFunc) Validate(from, to domain.EventType) error {
	return f(from, to)
}

// DefaultPolicy enforces the edge table below
var DefaultPolicy Policy = PolicyFunc(Validate)

var exits = []domain.EventType{domain.EventRejected, domain.EventWithdrawn}

var pipelineStages = []domain.EventType{
	domain.EventSubmitted,
	domain.EventInReview,
	domain.EventPhoneScreen,
	domain.EventTechnicalInterview,
	domain.EventOnsiteInterview,
	domain.EventOfferReceived,
}

// interview rounds may repeat
var repeatableStage = map[domain.EventType]bool{
	domain.EventPhoneScreen:        true,
	domain.EventTechnicalInterview: true,
	domain.EventOnsiteInterview:    true,
}

// edges maps each non-terminal status to its legal successors. Terminal
// statuses have no entry.
var edges = buildEdges()

func buildEdges() map[domain.EventType]map[domain.EventType]bool {
	out := make(map[domain.EventType]map[domain.EventType]bool, len(pipelineStages))

	for i, from := range pipelineStages {
		next := make(map[domain.EventType]bool)
		// forward, skipping allowed
		for _, to := range pipelineStages[i+1:] {
			next[to] = true
		}
		if repeatableStage[from] {
			next[from] = true
		}
		for _, to := range exits {
			next[to] = true
		}
		out[from] = next
	}

	out[domain.EventOfferReceived][domain.EventOfferAccepted] = true
	out[domain.EventOfferReceived][domain.EventOfferDeclined] = true

	return out
}

// Validate reports whether an application whose current status is from may
// record an event of type to. Failures are *domain.TransitionError.
func Validate(from, to domain.EventType) error {
	if !from.Valid() || !to.Valid() {
		return &domain.TransitionError{From: from, To: to, Reason: domain.ReasonUnknownStatus}
	}
	if from.Terminal() {
		return &domain.TransitionError{From: from, To: to, Reason: domain.ReasonTerminalState}
	}
	if !edges[from][to] {
		return &domain.TransitionError{From: from, To: to, Reason: domain.ReasonNoSuchEdge}
	}
	return nil
}

// Next lists the legal successors of from in declaration order
func Next(from domain.EventType) []domain.EventType {
	next := edges[from]
	if len(next) == 0 {
		return nil
	}

	out := make([]domain.EventType, 0, len(next))
	for _, t := range domain.EventTypes() {
		if next[t] {
			out = append(out, t)
		}
	}
	return out
}
