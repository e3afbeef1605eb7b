// Package job models the schedule-job lifecycle as one type per state. Each
// type exposes only the transitions legal from that state, so illegal moves
// fail at compile time rather than at runtime.
package job

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/shiftwork/scheduling-service/internal/domain/model"
)

// Transition is the (id, status) pair produced by consuming a state value. It
// must be persisted before the next-state value is acted on.
type Transition struct {
	ID     uuid.UUID
	Status model.JobStatus
}

// Pending wraps a job whose stored status is Pending. It is the entry point of
// the lifecycle and the re-entry point after a WaitingForRetry reset.
type Pending struct {
	record model.ScheduleJob
}

// FromRecord wraps a stored job as Pending. It fails when the stored status is
// anything else; this is the only runtime status check in the lifecycle and it
// guards the recovery paths.
func FromRecord(rec model.ScheduleJob) (Pending, error) {
	if rec.Status != model.JobStatusPending {
		return Pending{}, fmt.Errorf("job %s has status %s, expected %s", rec.ID, rec.Status, model.JobStatusPending)
	}
	return Pending{record: rec}, nil
}

// Record returns the underlying job row.
func (p Pending) Record() model.ScheduleJob { return p.record }

// ID returns the job id.
func (p Pending) ID() uuid.UUID { return p.record.ID }

// Start consumes the Pending state and yields Processing.
func (p Pending) Start() (Processing, Transition) {
	p.record.Status = model.JobStatusProcessing
	return Processing{record: p.record}, Transition{ID: p.record.ID, Status: model.JobStatusProcessing}
}

// Processing wraps a job whose background task is running.
type Processing struct {
	record model.ScheduleJob
}

// Record returns the underlying job row.
func (p Processing) Record() model.ScheduleJob { return p.record }

// ID returns the job id.
func (p Processing) ID() uuid.UUID { return p.record.ID }

// Complete consumes the Processing state after assignments were persisted.
func (p Processing) Complete() (Completed, Transition) {
	p.record.Status = model.JobStatusCompleted
	return Completed{record: p.record}, Transition{ID: p.record.ID, Status: model.JobStatusCompleted}
}

// Fail consumes the Processing state on a terminal error.
func (p Processing) Fail() (Failed, Transition) {
	p.record.Status = model.JobStatusFailed
	return Failed{record: p.record}, Transition{ID: p.record.ID, Status: model.JobStatusFailed}
}

// Park consumes the Processing state when the data service is unreachable; the
// job waits for the health loop to re-queue it.
func (p Processing) Park() (WaitingForRetry, Transition) {
	p.record.Status = model.JobStatusWaitingForRetry
	return WaitingForRetry{record: p.record}, Transition{ID: p.record.ID, Status: model.JobStatusWaitingForRetry}
}

// WaitingForRetry wraps a job parked until the data service recovers.
type WaitingForRetry struct {
	record model.ScheduleJob
}

// Record returns the underlying job row.
func (w WaitingForRetry) Record() model.ScheduleJob { return w.record }

// ID returns the job id.
func (w WaitingForRetry) ID() uuid.UUID { return w.record.ID }

// Retry consumes the WaitingForRetry state and re-enters Pending.
func (w WaitingForRetry) Retry() (Pending, Transition) {
	w.record.Status = model.JobStatusPending
	return Pending{record: w.record}, Transition{ID: w.record.ID, Status: model.JobStatusPending}
}

// Completed is terminal: assignments exist and the job is done.
type Completed struct {
	record model.ScheduleJob
}

// Record returns the underlying job row.
func (c Completed) Record() model.ScheduleJob { return c.record }

// Failed is terminal: the job cannot make progress.
type Failed struct {
	record model.ScheduleJob
}

// Record returns the underlying job row.
func (f Failed) Record() model.ScheduleJob { return f.record }
