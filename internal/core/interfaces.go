// Package core declares the ports between the scheduling service and its
// adapters. Implementations live in internal/data and internal/adapters.
package core

import (
	"context"

	"github.com/google/uuid"

	"github.com/shiftwork/scheduling-service/internal/domain/model"
)

// ScheduleStore is the persistence port for jobs and assignments. Every
// operation is its own transaction.
type ScheduleStore interface {
	CreateJob(ctx context.Context, staffGroupID uuid.UUID, periodBegin model.Date) (model.ScheduleJob, error)
	FindByID(ctx context.Context, id uuid.UUID) (model.ScheduleJob, error)
	FindByStatus(ctx context.Context, status model.JobStatus) ([]model.ScheduleJob, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.JobStatus) error
	SaveAssignments(ctx context.Context, jobID uuid.UUID, assignments []model.NewShiftAssignment) error
	GetAssignments(ctx context.Context, jobID uuid.UUID) ([]model.ShiftAssignment, error)
	DeleteAssignments(ctx context.Context, jobID uuid.UUID) error
}

// RosterClient resolves a staff group to its flattened member list.
type RosterClient interface {
	GetResolvedMembers(ctx context.Context, groupID uuid.UUID) ([]model.Staff, error)
}

// Pinger probes the data service's liveness endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JobRetrier re-queues all jobs parked in WaitingForRetry. The health loop
// invokes it when the data service recovers.
type JobRetrier interface {
	RetryWaitingJobs(ctx context.Context) error
}
