package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwork/scheduling-service/internal/domain/model"
	"github.com/shiftwork/scheduling-service/internal/domain/rules"
	apperrors "github.com/shiftwork/scheduling-service/internal/errors"
)

// memStore is an in-memory ScheduleStore that records every status written.
type memStore struct {
	mu          sync.Mutex
	jobs        map[uuid.UUID]model.ScheduleJob
	assignments map[uuid.UUID][]model.ShiftAssignment
	statusLog   map[uuid.UUID][]model.JobStatus
}

func newMemStore() *memStore {
	return &memStore{
		jobs:        make(map[uuid.UUID]model.ScheduleJob),
		assignments: make(map[uuid.UUID][]model.ShiftAssignment),
		statusLog:   make(map[uuid.UUID][]model.JobStatus),
	}
}

func (m *memStore) CreateJob(_ context.Context, groupID uuid.UUID, periodBegin model.Date) (model.ScheduleJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := model.ScheduleJob{
		ID:              uuid.New(),
		StaffGroupID:    groupID,
		PeriodBeginDate: periodBegin,
		Status:          model.JobStatusPending,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	m.jobs[rec.ID] = rec
	m.statusLog[rec.ID] = []model.JobStatus{model.JobStatusPending}
	return rec, nil
}

func (m *memStore) FindByID(_ context.Context, id uuid.UUID) (model.ScheduleJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.jobs[id]
	if !ok {
		return model.ScheduleJob{}, apperrors.NotFoundf("schedule job %s not found", id)
	}
	return rec, nil
}

func (m *memStore) FindByStatus(_ context.Context, status model.JobStatus) ([]model.ScheduleJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ScheduleJob
	for _, rec := range m.jobs {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.jobs[id]
	if !ok {
		return apperrors.NotFoundf("schedule job %s not found", id)
	}
	rec.Status = status
	rec.UpdatedAt = time.Now().UTC()
	m.jobs[id] = rec
	m.statusLog[id] = append(m.statusLog[id], status)
	return nil
}

func (m *memStore) SaveAssignments(_ context.Context, jobID uuid.UUID, in []model.NewShiftAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]model.ShiftAssignment, len(in))
	for i, a := range in {
		stored[i] = model.ShiftAssignment{
			ID:        uuid.New(),
			JobID:     jobID,
			StaffID:   a.StaffID,
			Date:      a.Date,
			ShiftType: a.ShiftType,
		}
	}
	m.assignments[jobID] = stored
	return nil
}

func (m *memStore) GetAssignments(_ context.Context, jobID uuid.UUID) ([]model.ShiftAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assignments[jobID], nil
}

func (m *memStore) DeleteAssignments(_ context.Context, jobID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.assignments, jobID)
	return nil
}

func (m *memStore) status(id uuid.UUID) model.JobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[id].Status
}

func (m *memStore) history(id uuid.UUID) []model.JobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.JobStatus, len(m.statusLog[id]))
	copy(out, m.statusLog[id])
	return out
}

func (m *memStore) assignmentCount(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.assignments[id])
}

// stubRoster returns a scripted roster or error.
type stubRoster struct {
	mu    sync.Mutex
	staff []model.Staff
	err   error
}

func (r *stubRoster) GetResolvedMembers(_ context.Context, _ uuid.UUID) ([]model.Staff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.staff, nil
}

func (r *stubRoster) set(staff []model.Staff, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staff, r.err = staff, err
}

func activeStaff(n int) []model.Staff {
	out := make([]model.Staff, n)
	for i := range out {
		out[i] = model.Staff{ID: uuid.New(), Status: model.StaffStatusActive}
	}
	return out
}

func testRules() []rules.Rule {
	min, max, diff := 1, 2, 1
	return rules.Build(rules.Config{
		MinDayOffPerWeek:      &min,
		MaxDayOffPerWeek:      &max,
		NoMorningAfterEvening: true,
		MaxDailyShiftDiff:     &diff,
	})
}

var testMonday = model.NewDate(2026, time.February, 16)

func newTestService(store *memStore, roster *stubRoster) *SchedulingService {
	svc := NewSchedulingService(store, roster, testRules(), time.UTC, nil)
	svc.now = func() time.Time {
		return time.Date(2026, time.February, 16, 9, 0, 0, 0, time.UTC)
	}
	return svc
}

func waitForStatus(t *testing.T, store *memStore, id uuid.UUID, want model.JobStatus) {
	t.Helper()
	require.Eventually(t, func() bool {
		return store.status(id) == want
	}, 3*time.Second, 10*time.Millisecond, "job never reached %s (last: %s)", want, store.status(id))
}

func TestSubmitSchedule_RejectsNonMonday(t *testing.T) {
	svc := newTestService(newMemStore(), &stubRoster{})

	tuesday := testMonday.AddDays(1)
	_, err := svc.SubmitSchedule(context.Background(), uuid.New(), tuesday)
	require.Error(t, err)
	assert.True(t, apperrors.IsBadRequest(err))
	assert.ErrorContains(t, err, "Monday")
}

func TestSubmitSchedule_RejectsPastDate(t *testing.T) {
	svc := newTestService(newMemStore(), &stubRoster{})

	lastMonday := testMonday.AddDays(-7)
	_, err := svc.SubmitSchedule(context.Background(), uuid.New(), lastMonday)
	require.Error(t, err)
	assert.True(t, apperrors.IsBadRequest(err))
	assert.ErrorContains(t, err, "past")
}

func TestSubmitSchedule_AcceptsToday(t *testing.T) {
	store := newMemStore()
	roster := &stubRoster{}
	roster.set(activeStaff(2), nil)
	svc := newTestService(store, roster)

	rec, err := svc.SubmitSchedule(context.Background(), uuid.New(), testMonday)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPending, rec.Status)

	waitForStatus(t, store, rec.ID, model.JobStatusCompleted)
}

func TestProcessJob_CompletesWithActiveStaffOnly(t *testing.T) {
	store := newMemStore()
	roster := &stubRoster{}
	staff := activeStaff(3)
	staff = append(staff, model.Staff{ID: uuid.New(), Status: model.StaffStatusInactive})
	roster.set(staff, nil)
	svc := newTestService(store, roster)

	rec, err := svc.SubmitSchedule(context.Background(), uuid.New(), testMonday)
	require.NoError(t, err)

	waitForStatus(t, store, rec.ID, model.JobStatusCompleted)
	assert.Equal(t, 3*28, store.assignmentCount(rec.ID))
	assert.Equal(t, []model.JobStatus{
		model.JobStatusPending,
		model.JobStatusProcessing,
		model.JobStatusCompleted,
	}, store.history(rec.ID))
}

func TestProcessJob_RecoverableErrorParksJob(t *testing.T) {
	store := newMemStore()
	roster := &stubRoster{}
	roster.set(nil, apperrors.CircuitOpen())
	svc := newTestService(store, roster)

	rec, err := svc.SubmitSchedule(context.Background(), uuid.New(), testMonday)
	require.NoError(t, err)

	waitForStatus(t, store, rec.ID, model.JobStatusWaitingForRetry)
	assert.Zero(t, store.assignmentCount(rec.ID))
}

func TestProcessJob_TerminalRemoteErrorFailsJob(t *testing.T) {
	store := newMemStore()
	roster := &stubRoster{}
	roster.set(nil, apperrors.DataService("data service returned status 404"))
	svc := newTestService(store, roster)

	rec, err := svc.SubmitSchedule(context.Background(), uuid.New(), testMonday)
	require.NoError(t, err)

	waitForStatus(t, store, rec.ID, model.JobStatusFailed)
}

func TestProcessJob_InfeasibleScheduleFailsJob(t *testing.T) {
	store := newMemStore()
	roster := &stubRoster{}
	roster.set(activeStaff(1), nil)

	// With a single staff, a zero daily diff blocks both working shifts and
	// the weekly DayOff cap runs out.
	max, diff := 2, 0
	ruleList := rules.Build(rules.Config{MaxDayOffPerWeek: &max, MaxDailyShiftDiff: &diff})
	svc := NewSchedulingService(store, roster, ruleList, time.UTC, nil)
	svc.now = func() time.Time {
		return time.Date(2026, time.February, 16, 9, 0, 0, 0, time.UTC)
	}

	rec, err := svc.SubmitSchedule(context.Background(), uuid.New(), testMonday)
	require.NoError(t, err)

	waitForStatus(t, store, rec.ID, model.JobStatusFailed)
	assert.Zero(t, store.assignmentCount(rec.ID))
}

func TestGetStatus(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &stubRoster{})

	rec, err := store.CreateJob(context.Background(), uuid.New(), testMonday)
	require.NoError(t, err)

	got, err := svc.GetStatus(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = svc.GetStatus(context.Background(), uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetResult_RequiresCompleted(t *testing.T) {
	store := newMemStore()
	roster := &stubRoster{}
	roster.set(activeStaff(2), nil)
	svc := newTestService(store, roster)

	rec, err := svc.SubmitSchedule(context.Background(), uuid.New(), testMonday)
	require.NoError(t, err)
	waitForStatus(t, store, rec.ID, model.JobStatusCompleted)

	result, err := svc.GetResult(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, result.ScheduleID)
	assert.Equal(t, rec.StaffGroupID, result.StaffGroupID)
	assert.Len(t, result.Assignments, 2*28)

	// A job that is not Completed yields a client error.
	pending, err := store.CreateJob(context.Background(), uuid.New(), testMonday)
	require.NoError(t, err)
	_, err = svc.GetResult(context.Background(), pending.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsBadRequest(err))

	_, err = svc.GetResult(context.Background(), uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRetryWaitingJobs(t *testing.T) {
	store := newMemStore()
	roster := &stubRoster{}
	roster.set(nil, apperrors.CircuitOpen())
	svc := newTestService(store, roster)

	rec, err := svc.SubmitSchedule(context.Background(), uuid.New(), testMonday)
	require.NoError(t, err)
	waitForStatus(t, store, rec.ID, model.JobStatusWaitingForRetry)

	// Remote is back; the sweep re-queues and the job completes.
	roster.set(activeStaff(2), nil)
	require.NoError(t, svc.RetryWaitingJobs(context.Background()))

	waitForStatus(t, store, rec.ID, model.JobStatusCompleted)
	history := store.history(rec.ID)
	assert.Equal(t, []model.JobStatus{
		model.JobStatusPending,
		model.JobStatusProcessing,
		model.JobStatusWaitingForRetry,
		model.JobStatusPending,
		model.JobStatusProcessing,
		model.JobStatusCompleted,
	}, history)
}

func TestRecoverStaleJobs(t *testing.T) {
	store := newMemStore()
	roster := &stubRoster{}
	roster.set(activeStaff(2), nil)
	svc := newTestService(store, roster)

	// Seed a stale Processing job with partial assignments, as if the process
	// died mid-run.
	stale, err := store.CreateJob(context.Background(), uuid.New(), testMonday)
	require.NoError(t, err)
	require.NoError(t, store.UpdateStatus(context.Background(), stale.ID, model.JobStatusProcessing))
	require.NoError(t, store.SaveAssignments(context.Background(), stale.ID, []model.NewShiftAssignment{
		{StaffID: uuid.New(), Date: testMonday, ShiftType: model.ShiftMorning},
	}))

	// And a parked job waiting for the remote.
	waiting, err := store.CreateJob(context.Background(), uuid.New(), testMonday)
	require.NoError(t, err)
	require.NoError(t, store.UpdateStatus(context.Background(), waiting.ID, model.JobStatusWaitingForRetry))

	require.NoError(t, svc.RecoverStaleJobs(context.Background()))

	waitForStatus(t, store, stale.ID, model.JobStatusCompleted)
	waitForStatus(t, store, waiting.ID, model.JobStatusCompleted)
	assert.Equal(t, 2*28, store.assignmentCount(stale.ID))
}

func TestWaitForTasks(t *testing.T) {
	store := newMemStore()
	roster := &stubRoster{}
	roster.set(activeStaff(1), nil)
	svc := newTestService(store, roster)

	_, err := svc.SubmitSchedule(context.Background(), uuid.New(), testMonday)
	require.NoError(t, err)

	assert.True(t, svc.WaitForTasks(3*time.Second))
}
