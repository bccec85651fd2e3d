package handlers

import (
	"context"
	"time"

	"github.com/draftea/saga-orchestrator/orchestrator-service/application"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reconciler runs one reconciliation pass
type Reconciler interface {
	Execute(ctx context.Context) (*application.ReconciliationReport, error)
}

// ReconciliationScheduler runs the reconciler on a fixed interval. A pass
// that is still running when the next one is due causes that one to be skipped.
type ReconciliationScheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
	interval   time.Duration
	timeout    time.Duration
	log        *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewReconciliationScheduler creates a new ReconciliationScheduler
func NewReconciliationScheduler(reconciler Reconciler, interval time.Duration, log *zap.Logger) *ReconciliationScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	cronLog := cronLogger{log: log.Sugar()}
	return &ReconciliationScheduler{
		cron:       cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog))),
		reconciler: reconciler,
		interval:   interval,
		timeout:    interval,
		log:        log,
	}
}

// Start schedules the job and returns immediately
func (s *ReconciliationScheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.Errorf("reconciliation interval must be positive, got %s", s.interval)
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	if _, err := s.cron.AddFunc("@every "+s.interval.String(), s.RunOnce); err != nil {
		return errors.Wrap(err, "failed to schedule reconciliation")
	}

	s.cron.Start()
	s.log.Info("reconciliation scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// RunOnce executes a single reconciliation pass
func (s *ReconciliationScheduler) RunOnce() {
	parent := s.ctx
	if parent == nil {
		parent = context.Background()
	}
	if parent.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	report, err := s.reconciler.Execute(ctx)
	if err != nil {
		s.log.Error("reconciliation pass failed", zap.Error(err))
		return
	}

	if len(report.Promoted) > 0 || report.Errors > 0 {
		s.log.Info("reconciliation pass finished",
			zap.Int("scanned", report.Scanned),
			zap.Strings("promoted", report.Promoted),
			zap.Int("errors", report.Errors),
		)
		return
	}
	s.log.Debug("reconciliation pass finished", zap.Int("scanned", report.Scanned))
}

// Stop stops scheduling and waits for a running pass to finish
func (s *ReconciliationScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.log.Info("reconciliation scheduler stopped")
}

// cronLogger adapts zap to the cron.Logger interface
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
