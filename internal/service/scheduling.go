// Package service implements the scheduling use cases: job submission, the
// background processing pipeline, status and result queries, and the recovery
// sweeps that keep the job table consistent across restarts and outages.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/shiftwork/scheduling-service/internal/core"
	"github.com/shiftwork/scheduling-service/internal/domain/job"
	"github.com/shiftwork/scheduling-service/internal/domain/model"
	"github.com/shiftwork/scheduling-service/internal/domain/rules"
	"github.com/shiftwork/scheduling-service/internal/domain/schedule"
	apperrors "github.com/shiftwork/scheduling-service/internal/errors"
)

// SchedulingService coordinates the job store, the roster client, and the
// schedule generator. One instance is shared by the HTTP layer and the
// background loops.
type SchedulingService struct {
	store    core.ScheduleStore
	roster   core.RosterClient
	ruleList []rules.Rule
	location *time.Location
	logger   *slog.Logger

	tasks sync.WaitGroup
	now   func() time.Time
}

// NewSchedulingService builds the service. The rule list is read-only after
// construction and shared by reference with every background task.
func NewSchedulingService(
	store core.ScheduleStore,
	roster core.RosterClient,
	ruleList []rules.Rule,
	location *time.Location,
	logger *slog.Logger,
) *SchedulingService {
	if logger == nil {
		logger = slog.Default()
	}
	if location == nil {
		location = time.UTC
	}
	return &SchedulingService{
		store:    store,
		roster:   roster,
		ruleList: ruleList,
		location: location,
		logger:   logger.With("component", "scheduling_service"),
		now:      time.Now,
	}
}

// SubmitSchedule validates the request, records a Pending job, and spawns the
// background task that generates the schedule. The returned record is what
// the HTTP layer answers 202 with.
func (s *SchedulingService) SubmitSchedule(ctx context.Context, staffGroupID uuid.UUID, periodBegin model.Date) (model.ScheduleJob, error) {
	if periodBegin.Weekday() != time.Monday {
		return model.ScheduleJob{}, apperrors.BadRequestf(
			"period_begin_date must be a Monday, got %s (%s)", periodBegin, periodBegin.Weekday())
	}
	today := model.DateOf(s.now().In(s.location))
	if periodBegin.Before(today) {
		return model.ScheduleJob{}, apperrors.BadRequestf(
			"period_begin_date must not be in the past, got %s", periodBegin)
	}

	rec, err := s.store.CreateJob(ctx, staffGroupID, periodBegin)
	if err != nil {
		return model.ScheduleJob{}, err
	}

	pending, err := job.FromRecord(rec)
	if err != nil {
		return model.ScheduleJob{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "wrap created job")
	}

	s.logger.InfoContext(ctx, "schedule job submitted",
		"job_id", rec.ID, "staff_group_id", staffGroupID, "period_begin_date", periodBegin)
	s.spawn(pending)
	return rec, nil
}

// GetStatus returns the stored job record.
func (s *SchedulingService) GetStatus(ctx context.Context, id uuid.UUID) (model.ScheduleJob, error) {
	return s.store.FindByID(ctx, id)
}

// GetResult returns the generated schedule of a Completed job. Querying a job
// in any other status is a client error.
func (s *SchedulingService) GetResult(ctx context.Context, id uuid.UUID) (model.ScheduleResult, error) {
	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.ScheduleResult{}, err
	}
	if rec.Status != model.JobStatusCompleted {
		return model.ScheduleResult{}, apperrors.BadRequestf(
			"schedule job %s is not completed (status %s)", id, rec.Status)
	}

	assignments, err := s.store.GetAssignments(ctx, id)
	if err != nil {
		return model.ScheduleResult{}, err
	}
	return model.ScheduleResult{
		ScheduleID:      rec.ID,
		PeriodBeginDate: rec.PeriodBeginDate,
		StaffGroupID:    rec.StaffGroupID,
		Assignments:     assignments,
	}, nil
}

// RecoverStaleJobs re-queues jobs left in Processing by a previous process:
// partial assignments are deleted, the job resets to Pending, and a fresh
// background task takes over. WaitingForRetry jobs are swept afterwards.
func (s *SchedulingService) RecoverStaleJobs(ctx context.Context) error {
	stale, err := s.store.FindByStatus(ctx, model.JobStatusProcessing)
	if err != nil {
		return err
	}
	for _, rec := range stale {
		s.logger.InfoContext(ctx, "recovering stale job", "job_id", rec.ID)
		if delErr := s.store.DeleteAssignments(ctx, rec.ID); delErr != nil {
			return delErr
		}
		if requeueErr := s.requeue(ctx, rec.ID); requeueErr != nil {
			return requeueErr
		}
	}
	return s.RetryWaitingJobs(ctx)
}

// RetryWaitingJobs re-queues every job parked in WaitingForRetry. Callers
// serialize sweeps through the health loop's latch.
func (s *SchedulingService) RetryWaitingJobs(ctx context.Context) error {
	waiting, err := s.store.FindByStatus(ctx, model.JobStatusWaitingForRetry)
	if err != nil {
		return err
	}
	for _, rec := range waiting {
		s.logger.InfoContext(ctx, "re-queueing waiting job", "job_id", rec.ID)
		if requeueErr := s.requeue(ctx, rec.ID); requeueErr != nil {
			return requeueErr
		}
	}
	return nil
}

// requeue resets one job to Pending, reloads it, and spawns a fresh task.
func (s *SchedulingService) requeue(ctx context.Context, id uuid.UUID) error {
	if err := s.store.UpdateStatus(ctx, id, model.JobStatusPending); err != nil {
		return err
	}
	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	pending, err := job.FromRecord(rec)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "wrap requeued job")
	}
	s.spawn(pending)
	return nil
}

// spawn runs processJob on its own goroutine, detached from any request
// context so the task outlives the submitting request.
func (s *SchedulingService) spawn(pending job.Pending) {
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		s.processJob(context.Background(), pending)
	}()
}

// WaitForTasks blocks until all background tasks finish or the budget runs
// out. It reports whether the tracker drained in time; abandoned jobs are
// picked up by RecoverStaleJobs on the next boot.
func (s *SchedulingService) WaitForTasks(budget time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.tasks.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(budget):
		return false
	}
}

// processJob is the background task body. Errors never reach clients; they
// land in the job's terminal status instead.
func (s *SchedulingService) processJob(ctx context.Context, pending job.Pending) {
	rec := pending.Record()
	logger := s.logger.With("job_id", rec.ID, "staff_group_id", rec.StaffGroupID)

	processing, tr := pending.Start()
	if err := s.store.UpdateStatus(ctx, tr.ID, tr.Status); err != nil {
		logger.ErrorContext(ctx, "failed to mark job processing", "err", err)
		return
	}

	staff, err := s.roster.GetResolvedMembers(ctx, rec.StaffGroupID)
	if err != nil {
		if apperrors.IsRecoverable(err) {
			logger.WarnContext(ctx, "data service unavailable, parking job", "err", err)
			_, parkTr := processing.Park()
			s.persistTerminal(ctx, logger, parkTr, err)
			return
		}
		logger.ErrorContext(ctx, "roster fetch failed, failing job", "err", err)
		_, failTr := processing.Fail()
		s.persistTerminal(ctx, logger, failTr, err)
		return
	}

	active := lo.Filter(staff, func(st model.Staff, _ int) bool {
		return st.Status == model.StaffStatusActive
	})
	staffIDs := lo.Map(active, func(st model.Staff, _ int) uuid.UUID {
		return st.ID
	})

	assignments, err := schedule.Generate(staffIDs, rec.PeriodBeginDate, s.ruleList)
	if err != nil {
		logger.ErrorContext(ctx, "schedule generation failed, failing job", "err", err)
		_, failTr := processing.Fail()
		s.persistTerminal(ctx, logger, failTr, err)
		return
	}

	if saveErr := s.store.SaveAssignments(ctx, rec.ID, assignments); saveErr != nil {
		logger.ErrorContext(ctx, "failed to persist assignments, failing job", "err", saveErr)
		_, failTr := processing.Fail()
		s.persistTerminal(ctx, logger, failTr, saveErr)
		return
	}

	_, doneTr := processing.Complete()
	if err := s.store.UpdateStatus(ctx, doneTr.ID, doneTr.Status); err != nil {
		logger.ErrorContext(ctx, "failed to mark job completed", "err", err)
		return
	}
	logger.InfoContext(ctx, "schedule job completed",
		"staff_count", len(staffIDs), "assignments", len(assignments))
}

// persistTerminal writes a terminal or parked status. A persistence failure
// here is logged without masking the original processing error.
func (s *SchedulingService) persistTerminal(ctx context.Context, logger *slog.Logger, tr job.Transition, cause error) {
	if err := s.store.UpdateStatus(ctx, tr.ID, tr.Status); err != nil {
		logger.ErrorContext(ctx, "failed to persist job status",
			"target_status", tr.Status, "persist_err", err, "cause", cause)
	}
}
