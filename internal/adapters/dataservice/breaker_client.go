package dataservice

import (
	"context"

	"github.com/google/uuid"

	"github.com/shiftwork/scheduling-service/internal/core"
	"github.com/shiftwork/scheduling-service/internal/domain/circuit"
	"github.com/shiftwork/scheduling-service/internal/domain/model"
	apperrors "github.com/shiftwork/scheduling-service/internal/errors"
)

// BreakerClient guards a RosterClient with the shared circuit breaker. All
// concurrent callers go through the same breaker instance.
type BreakerClient struct {
	inner   core.RosterClient
	breaker *circuit.Breaker
}

// NewBreakerClient wraps inner with the given breaker.
func NewBreakerClient(inner core.RosterClient, breaker *circuit.Breaker) *BreakerClient {
	return &BreakerClient{inner: inner, breaker: breaker}
}

// Breaker exposes the shared breaker for the health loop.
func (b *BreakerClient) Breaker() *circuit.Breaker {
	return b.breaker
}

// GetResolvedMembers fast-fails with CircuitOpen while the breaker rejects
// calls, and otherwise records the outcome of the delegated fetch.
func (b *BreakerClient) GetResolvedMembers(ctx context.Context, groupID uuid.UUID) ([]model.Staff, error) {
	if !b.breaker.CanExecute() {
		return nil, apperrors.CircuitOpen()
	}

	staff, err := b.inner.GetResolvedMembers(ctx, groupID)
	if err != nil {
		b.breaker.RecordFailure()
		return nil, err
	}
	b.breaker.RecordSuccess()
	return staff, nil
}
