package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingAuditor struct {
	calls atomic.Int32
	err   error
}

func (a *countingAuditor) AuditOrphans(context.Context) (int, error) {
	a.calls.Add(1)
	return 0, a.err
}

func TestSchedulerAuditsOnStartAndTick(t *testing.T) {
	auditor := &countingAuditor{}
	s := NewScheduler(auditor, 10*time.Millisecond, zap.NewNop())

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return auditor.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := auditor.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, auditor.calls.Load())
}

func TestSchedulerSurvivesAuditErrors(t *testing.T) {
	auditor := &countingAuditor{err: errors.New("db down")}
	s := NewScheduler(auditor, 10*time.Millisecond, zap.NewNop())

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return auditor.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	auditor := &countingAuditor{}
	s := NewScheduler(auditor, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	stopped := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
