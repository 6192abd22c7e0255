package syncer

import (
	"fmt"
	"strings"
	"time"
)

// Outcome summarizes how a run ended.
type Outcome string

const (
	// OutcomeUnchanged means the cached address matched and nothing was
	// written.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeUpdated means the provider-side updates went through.
	OutcomeUpdated Outcome = "updated"
	// OutcomeFailed means the run aborted on an error.
	OutcomeFailed Outcome = "error"
)

// Target names the provider resource an action writes.
type Target string

const (
	// TargetDNSRecord is the A record.
	TargetDNSRecord Target = "dns_record"
	// TargetAccessGroup is the Access group document.
	TargetAccessGroup Target = "access_group"
)

// ActionStatus represents the outcome of an action.
type ActionStatus string

const (
	// StatusSuccess indicates the action completed successfully.
	StatusSuccess ActionStatus = "success"
	// StatusFailed indicates the action failed.
	StatusFailed ActionStatus = "failed"
	// StatusSkipped indicates the write was not sent (dry-run).
	StatusSkipped ActionStatus = "skipped"
)

// Action represents one write against the provider.
type Action struct {
	// Target is the kind of resource written.
	Target Target

	// Status is the outcome of the action.
	Status ActionStatus

	// Name is the record or group name.
	Name string

	// ID is the provider identifier of the resource.
	ID string

	// Content is the address written.
	Content string

	// Error contains the error message if Status is StatusFailed.
	Error string

	// DryRun indicates this action was not actually executed.
	DryRun bool

	// Duration is how long the write took.
	Duration time.Duration
}

// String returns a human-readable representation of the action.
func (a Action) String() string {
	status := string(a.Status)
	if a.DryRun && a.Status == StatusSkipped {
		status = "dry-run"
	}

	if a.Error != "" {
		return fmt.Sprintf("[%s] %s %s (%s) -> %s: %s", status, a.Target, a.Name, a.ID, a.Content, a.Error)
	}

	return fmt.Sprintf("[%s] %s %s (%s) -> %s", status, a.Target, a.Name, a.ID, a.Content)
}

// Result holds the complete result of a sync run.
type Result struct {
	// StartTime is when the run started.
	StartTime time.Time

	// EndTime is when the run completed.
	EndTime time.Time

	// ObservedIP is the address reported by the observer.
	ObservedIP string

	// PreviousIP is the address found in the cache, if any.
	PreviousIP string

	// Outcome is how the run ended.
	Outcome Outcome

	// Forced is set when an unchanged address was pushed anyway.
	Forced bool

	// Actions contains every write attempted (or planned in dry-run).
	Actions []Action

	// DryRun indicates if this was a dry-run (no changes applied).
	DryRun bool
}

// NewResult creates a new Result with the start time set to now.
func NewResult(dryRun bool) *Result {
	return &Result{
		StartTime: time.Now(),
		Actions:   make([]Action, 0),
		DryRun:    dryRun,
	}
}

// Complete marks the result as complete with the end time set to now.
func (r *Result) Complete() {
	r.EndTime = time.Now()
}

// Duration returns the total run duration.
func (r *Result) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

// AddAction adds an action to the result.
func (r *Result) AddAction(action Action) {
	action.DryRun = r.DryRun
	r.Actions = append(r.Actions, action)
}

// IPChanged reports whether the observed address differs from the cache.
func (r *Result) IPChanged() bool {
	return r.ObservedIP != "" && r.ObservedIP != r.PreviousIP
}

// Updated returns all successful writes.
func (r *Result) Updated() []Action {
	return r.filterActions(StatusSuccess)
}

// Failed returns all failed writes.
func (r *Result) Failed() []Action {
	return r.filterActions(StatusFailed)
}

// Skipped returns all writes skipped by dry-run.
func (r *Result) Skipped() []Action {
	return r.filterActions(StatusSkipped)
}

func (r *Result) filterActions(status ActionStatus) []Action {
	var filtered []Action
	for _, a := range r.Actions {
		if a.Status == status {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// HasErrors returns true if any actions failed.
func (r *Result) HasErrors() bool {
	return len(r.Failed()) > 0
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	var sb strings.Builder

	mode := "applied"
	if r.DryRun {
		mode = "dry-run"
	}

	fmt.Fprintf(&sb, "Sync %s (%s) in %s\n", r.Outcome, mode, r.Duration().Round(time.Millisecond))
	fmt.Fprintf(&sb, "  Observed address: %s\n", r.ObservedIP)
	if r.PreviousIP != "" {
		fmt.Fprintf(&sb, "  Cached address: %s\n", r.PreviousIP)
	}
	if r.Forced {
		sb.WriteString("  Update forced\n")
	}
	for _, a := range r.Actions {
		fmt.Fprintf(&sb, "  %s\n", a.String())
	}

	return sb.String()
}
