package audit

import (
	"errors"

	"github.com/ppiankov/gcpwatch/internal/errs"
	"github.com/ppiankov/gcpwatch/internal/narrate"
)

// State is a child's position in the check lifecycle:
//
//	Pending -> InFlight -> Succeeded
//	                    -> FailedTerminal
//	                    -> FailedRetryable -> InFlight ...
type State string

const (
	StatePending         State = "Pending"
	StateInFlight        State = "InFlight"
	StateFailedRetryable State = "FailedRetryable"
	StateSucceeded       State = "Succeeded"
	StateFailedTerminal  State = "FailedTerminal"
)

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailedTerminal
}

// Failure is the caller-visible reason a child could not be checked.
type Failure struct {
	Kind   errs.Kind `json:"kind"`
	Reason string    `json:"reason"`
}

// ChildOutcome is one audited project.
type ChildOutcome struct {
	Scope    string          `json:"scope"`
	State    State           `json:"state"`
	Attempts int             `json:"attempts,omitempty"`
	Record   *narrate.Record `json:"record,omitempty"`
	Failure  *Failure        `json:"failure,omitempty"`
}

// Summary holds outcome counts for a report.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	// Flagged counts succeeded children where the service is disabled.
	Flagged int `json:"flagged"`
}

// Report is the aggregated result of one audit.
type Report struct {
	Root             string         `json:"root"`
	Service          string         `json:"service"`
	Children         []ChildOutcome `json:"children"`
	Summary          Summary        `json:"summary"`
	Truncated        bool           `json:"truncated"`
	DeadlineExceeded bool           `json:"deadline_exceeded"`
	Unreachable      []string       `json:"unreachable,omitempty"`
	DisabledProjects []string       `json:"disabled_projects"`
}

// failureFor renders err as a Failure without exposing its cause.
func failureFor(err error) *Failure {
	var e *errs.Error
	if errors.As(err, &e) {
		return &Failure{Kind: e.Kind, Reason: e.Message}
	}
	return &Failure{Kind: errs.KindOf(err), Reason: "unexpected provider failure"}
}

// finish computes the summary and flagged list from Children.
func (r *Report) finish() {
	r.Summary = Summary{Total: len(r.Children)}
	r.DisabledProjects = []string{}
	for _, c := range r.Children {
		switch c.State {
		case StateSucceeded:
			r.Summary.Succeeded++
			if c.Record != nil && c.Record.Enabled != nil && !*c.Record.Enabled {
				r.Summary.Flagged++
				r.DisabledProjects = append(r.DisabledProjects, c.Scope)
			}
		case StateFailedTerminal:
			r.Summary.Failed++
		}
	}
}
