package job

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwork/scheduling-service/internal/domain/model"
)

func pendingRecord() model.ScheduleJob {
	return model.ScheduleJob{
		ID:              uuid.New(),
		StaffGroupID:    uuid.New(),
		PeriodBeginDate: model.NewDate(2026, time.February, 16),
		Status:          model.JobStatusPending,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
}

func TestFromRecord(t *testing.T) {
	rec := pendingRecord()

	p, err := FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, p.ID())
	assert.Equal(t, rec, p.Record())
}

func TestFromRecord_RejectsNonPending(t *testing.T) {
	for _, status := range []model.JobStatus{
		model.JobStatusProcessing,
		model.JobStatusCompleted,
		model.JobStatusFailed,
		model.JobStatusWaitingForRetry,
	} {
		rec := pendingRecord()
		rec.Status = status

		_, err := FromRecord(rec)
		assert.Error(t, err, "status %s", status)
		assert.ErrorContains(t, err, string(status))
	}
}

func TestPendingStart(t *testing.T) {
	p, err := FromRecord(pendingRecord())
	require.NoError(t, err)

	proc, tr := p.Start()
	assert.Equal(t, p.ID(), tr.ID)
	assert.Equal(t, model.JobStatusProcessing, tr.Status)
	assert.Equal(t, model.JobStatusProcessing, proc.Record().Status)
}

func TestProcessingComplete(t *testing.T) {
	p, err := FromRecord(pendingRecord())
	require.NoError(t, err)
	proc, _ := p.Start()

	done, tr := proc.Complete()
	assert.Equal(t, proc.ID(), tr.ID)
	assert.Equal(t, model.JobStatusCompleted, tr.Status)
	assert.Equal(t, model.JobStatusCompleted, done.Record().Status)
}

func TestProcessingFail(t *testing.T) {
	p, err := FromRecord(pendingRecord())
	require.NoError(t, err)
	proc, _ := p.Start()

	failed, tr := proc.Fail()
	assert.Equal(t, model.JobStatusFailed, tr.Status)
	assert.Equal(t, model.JobStatusFailed, failed.Record().Status)
}

func TestProcessingPark(t *testing.T) {
	p, err := FromRecord(pendingRecord())
	require.NoError(t, err)
	proc, _ := p.Start()

	waiting, tr := proc.Park()
	assert.Equal(t, model.JobStatusWaitingForRetry, tr.Status)
	assert.Equal(t, model.JobStatusWaitingForRetry, waiting.Record().Status)
}

func TestWaitingForRetryRetry(t *testing.T) {
	p, err := FromRecord(pendingRecord())
	require.NoError(t, err)
	proc, _ := p.Start()
	waiting, _ := proc.Park()

	back, tr := waiting.Retry()
	assert.Equal(t, model.JobStatusPending, tr.Status)
	assert.Equal(t, model.JobStatusPending, back.Record().Status)

	// The re-entered Pending can start again.
	again, tr := back.Start()
	assert.Equal(t, model.JobStatusProcessing, tr.Status)
	assert.Equal(t, p.ID(), again.ID())
}
