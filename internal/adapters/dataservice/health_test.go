package dataservice

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shiftwork/scheduling-service/internal/domain/circuit"
)

type fakePinger struct {
	err atomic.Value // error or nil sentinel
}

func (f *fakePinger) set(err error) {
	if err == nil {
		f.err.Store(errSentinelNone)
	} else {
		f.err.Store(err)
	}
}

var errSentinelNone = errors.New("none")

func (f *fakePinger) Ping(_ context.Context) error {
	v, _ := f.err.Load().(error)
	if v == nil || errors.Is(v, errSentinelNone) {
		return nil
	}
	return v
}

type fakeRetrier struct {
	sweeps atomic.Int32
	block  chan struct{}
}

func (f *fakeRetrier) RetryWaitingJobs(_ context.Context) error {
	f.sweeps.Add(1)
	if f.block != nil {
		<-f.block
	}
	return nil
}

func TestHealthLoop_FailedProbeRecordsFailure(t *testing.T) {
	pinger := &fakePinger{}
	pinger.set(errors.New("connection refused"))
	breaker := circuit.New(circuit.Config{FailureThreshold: 1, Cooldown: time.Minute})
	loop := NewHealthLoop(pinger, breaker, &fakeRetrier{}, time.Minute, time.Second, nil)

	loop.probe(context.Background())
	assert.Equal(t, circuit.StateOpen, breaker.State())
}

func TestHealthLoop_RecoveryForceClosesAndSweeps(t *testing.T) {
	pinger := &fakePinger{}
	pinger.set(nil)
	breaker := circuit.New(circuit.Config{FailureThreshold: 1, Cooldown: time.Minute})
	breaker.RecordFailure()
	assert.Equal(t, circuit.StateOpen, breaker.State())

	retrier := &fakeRetrier{}
	loop := NewHealthLoop(pinger, breaker, retrier, time.Minute, time.Second, nil)

	loop.probe(context.Background())
	assert.Equal(t, circuit.StateClosed, breaker.State())

	assert.Eventually(t, func() bool {
		return retrier.sweeps.Load() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestHealthLoop_ClosedBreakerSkipsSweep(t *testing.T) {
	pinger := &fakePinger{}
	pinger.set(nil)
	breaker := circuit.New(circuit.DefaultConfig())
	retrier := &fakeRetrier{}
	loop := NewHealthLoop(pinger, breaker, retrier, time.Minute, time.Second, nil)

	loop.probe(context.Background())
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 0, retrier.sweeps.Load())
}

func TestHealthLoop_LatchPreventsOverlappingSweeps(t *testing.T) {
	pinger := &fakePinger{}
	pinger.set(nil)
	breaker := circuit.New(circuit.Config{FailureThreshold: 1, Cooldown: time.Minute})
	retrier := &fakeRetrier{block: make(chan struct{})}
	loop := NewHealthLoop(pinger, breaker, retrier, time.Minute, time.Second, nil)

	breaker.RecordFailure()
	loop.probe(context.Background())
	assert.Eventually(t, func() bool {
		return retrier.sweeps.Load() == 1
	}, time.Second, 10*time.Millisecond)

	// While the first sweep is in flight, another recovery must not start a
	// second one.
	breaker.RecordFailure()
	loop.probe(context.Background())
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, retrier.sweeps.Load())

	close(retrier.block)
	assert.Eventually(t, func() bool {
		breaker.RecordFailure()
		loop.probe(context.Background())
		return retrier.sweeps.Load() == 2
	}, time.Second, 20*time.Millisecond)
}

func TestHealthLoop_RunStopsOnCancel(t *testing.T) {
	pinger := &fakePinger{}
	pinger.set(nil)
	loop := NewHealthLoop(pinger, circuit.New(circuit.DefaultConfig()), &fakeRetrier{},
		10*time.Millisecond, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("health loop did not stop on cancel")
	}
}
