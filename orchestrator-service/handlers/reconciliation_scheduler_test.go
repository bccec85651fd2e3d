package handlers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/draftea/saga-orchestrator/orchestrator-service/application"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReconciler struct {
	calls  atomic.Int32
	report *application.ReconciliationReport
	err    error
}

func (s *stubReconciler) Execute(ctx context.Context) (*application.ReconciliationReport, error) {
	s.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("pass without deadline")
	}
	return s.report, s.err
}

func TestReconciliationScheduler_RunOnce(t *testing.T) {
	tests := []struct {
		name       string
		reconciler *stubReconciler
	}{
		{
			name:       "promotions",
			reconciler: &stubReconciler{report: &application.ReconciliationReport{Scanned: 2, Promoted: []string{"tenantCreation"}}},
		},
		{
			name:       "nothing to do",
			reconciler: &stubReconciler{report: &application.ReconciliationReport{}},
		},
		{
			name:       "failed pass",
			reconciler: &stubReconciler{err: errors.New("connection refused")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduler := NewReconciliationScheduler(tt.reconciler, time.Minute, nil)

			assert.NotPanics(t, scheduler.RunOnce)
			assert.Equal(t, int32(1), tt.reconciler.calls.Load())
		})
	}
}

func TestReconciliationScheduler_StartStop(t *testing.T) {
	reconciler := &stubReconciler{report: &application.ReconciliationReport{}}
	scheduler := NewReconciliationScheduler(reconciler, time.Second, nil)

	require.NoError(t, scheduler.Start(context.Background()))

	assert.Eventually(t, func() bool { return reconciler.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	scheduler.Stop()
	calls := reconciler.calls.Load()
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, calls, reconciler.calls.Load())
}

func TestReconciliationScheduler_CancelledContext(t *testing.T) {
	reconciler := &stubReconciler{report: &application.ReconciliationReport{}}
	scheduler := NewReconciliationScheduler(reconciler, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, scheduler.Start(ctx))
	cancel()

	scheduler.RunOnce()
	scheduler.Stop()

	assert.Equal(t, int32(0), reconciler.calls.Load())
}

func TestReconciliationScheduler_InvalidInterval(t *testing.T) {
	scheduler := NewReconciliationScheduler(&stubReconciler{}, 0, nil)

	assert.Error(t, scheduler.Start(context.Background()))
}
