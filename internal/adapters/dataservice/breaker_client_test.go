package dataservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwork/scheduling-service/internal/domain/circuit"
	"github.com/shiftwork/scheduling-service/internal/domain/model"
	apperrors "github.com/shiftwork/scheduling-service/internal/errors"
)

// fakeRoster scripts the inner client's responses.
type fakeRoster struct {
	staff []model.Staff
	err   error
	calls int
}

func (f *fakeRoster) GetResolvedMembers(_ context.Context, _ uuid.UUID) ([]model.Staff, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.staff, nil
}

func TestBreakerClient_PassThrough(t *testing.T) {
	inner := &fakeRoster{staff: []model.Staff{{ID: uuid.New(), Status: model.StaffStatusActive}}}
	bc := NewBreakerClient(inner, circuit.New(circuit.DefaultConfig()))

	staff, err := bc.GetResolvedMembers(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Len(t, staff, 1)
	assert.Equal(t, circuit.StateClosed, bc.Breaker().State())
}

func TestBreakerClient_OpensAfterThreshold(t *testing.T) {
	inner := &fakeRoster{err: errors.New("connection refused")}
	bc := NewBreakerClient(inner, circuit.New(circuit.Config{
		FailureThreshold: 2,
		Cooldown:         30 * time.Second,
	}))

	for i := 0; i < 2; i++ {
		_, err := bc.GetResolvedMembers(context.Background(), uuid.New())
		require.Error(t, err)
	}
	assert.Equal(t, circuit.StateOpen, bc.Breaker().State())

	// Fast-fails without touching the inner client.
	_, err := bc.GetResolvedMembers(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsCircuitOpen(err))
	assert.Equal(t, 2, inner.calls)
}

func TestBreakerClient_SuccessResets(t *testing.T) {
	inner := &fakeRoster{err: errors.New("boom")}
	bc := NewBreakerClient(inner, circuit.New(circuit.Config{
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
	}))

	_, _ = bc.GetResolvedMembers(context.Background(), uuid.New())
	_, _ = bc.GetResolvedMembers(context.Background(), uuid.New())

	inner.err = nil
	_, err := bc.GetResolvedMembers(context.Background(), uuid.New())
	require.NoError(t, err)

	// The counter restarted; two more failures do not open the breaker.
	inner.err = errors.New("boom")
	_, _ = bc.GetResolvedMembers(context.Background(), uuid.New())
	_, _ = bc.GetResolvedMembers(context.Background(), uuid.New())
	assert.Equal(t, circuit.StateClosed, bc.Breaker().State())
}
