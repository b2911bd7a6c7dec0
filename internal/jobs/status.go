// Package jobs runs long bulk-update operations in the background with a
// pollable, synchronized status record per job type.
package jobs

import (
	"sync"
	"time"
)

// State is the lifecycle of one job type.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateError     State = "error"
)

// Snapshot is a point-in-time copy of a tracker, safe to hand to pollers.
type Snapshot struct {
	JobType       string        `json:"job_type"`
	RunID         string        `json:"run_id"`
	State         State         `json:"state"`
	Step          string        `json:"step"`
	Scanned       int           `json:"scanned"`
	Updated       int           `json:"updated"`
	ExpectedTotal int           `json:"expected_total"`
	StartedAt     time.Time     `json:"started_at"`
	Elapsed       time.Duration `json:"elapsed"`
	Error         string        `json:"error,omitempty"`
}

// Tracker is the mutable status record for one job type. All access goes
// through the mutex; pollers only ever see copies via Snapshot.
type Tracker struct {
	mu sync.Mutex

	jobType       string
	runID         string
	state         State
	step          string
	scanned       int
	updated       int
	expectedTotal int
	startedAt     time.Time
	finishedAt    time.Time
	errMsg        string
	cancel        bool
}

func newTracker(jobType string) *Tracker {
	return &Tracker{jobType: jobType, state: StateIdle}
}

// begin resets the tracker for a fresh run.
func (t *Tracker) begin(runID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runID = runID
	t.state = StateRunning
	t.step = "starting"
	t.scanned = 0
	t.updated = 0
	t.expectedTotal = 0
	t.startedAt = time.Now()
	t.finishedAt = time.Time{}
	t.errMsg = ""
	t.cancel = false
}

func (t *Tracker) finish(state State, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
	t.errMsg = errMsg
	t.finishedAt = time.Now()
}

// SetStep updates the current-step text shown to pollers.
func (t *Tracker) SetStep(step string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.step = step
}

// SetExpectedTotal records how many records the run expects to scan.
func (t *Tracker) SetExpectedTotal(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expectedTotal = n
}

// AddProgress accumulates scanned and updated counts after a batch commit.
func (t *Tracker) AddProgress(scanned, updated int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scanned += scanned
	t.updated += updated
}

// Cancel requests a cooperative stop. The in-flight batch always finishes
// and commits before the flag is honored.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancel = true
}

// Cancelled reports whether a stop has been requested.
func (t *Tracker) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel
}

// Snapshot returns a copy of the current status.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Duration(0)
	if !t.startedAt.IsZero() {
		end := t.finishedAt
		if end.IsZero() {
			end = time.Now()
		}
		elapsed = end.Sub(t.startedAt)
	}

	return Snapshot{
		JobType:       t.jobType,
		RunID:         t.runID,
		State:         t.state,
		Step:          t.step,
		Scanned:       t.scanned,
		Updated:       t.updated,
		ExpectedTotal: t.expectedTotal,
		StartedAt:     t.startedAt,
		Elapsed:       elapsed,
		Error:         t.errMsg,
	}
}

func (t *Tracker) running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == StateRunning
}
