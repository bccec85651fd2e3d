package application

import (
	"context"

	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
	"github.com/draftea/saga-orchestrator/shared/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

const (
	metricRunsStarted          = "orchestrator_runs_started_total"
	metricRunsFinished         = "orchestrator_runs_finished_total"
	metricStepRetries          = "orchestrator_step_retries_total"
	metricDispatchFailures     = "orchestrator_dispatch_failures_total"
	metricAuditWriteFailures   = "orchestrator_audit_write_failures_total"
	metricReconciledTemplates  = "orchestrator_reconciled_templates_total"
	metricRegistrations        = "orchestrator_registrations_total"
	metricStepResponsesIgnored = "orchestrator_step_responses_ignored_total"
)

// recordTransitionMetrics derives engine counters from the transitions of a run
func recordTransitionMetrics(ctx context.Context, run *domain.OrchestrationRun, transitions []domain.Transition) {
	name := attribute.String("orchestration", run.OrchestrationName)

	for _, t := range transitions {
		switch t.Type {
		case domain.AuditOrchestrationStarted:
			telemetry.RecordCounter(ctx, metricRunsStarted, "Orchestration runs started", 1, name)
		case domain.AuditRetryTriggered:
			telemetry.RecordCounter(ctx, metricStepRetries, "Step retries dispatched", 1, name,
				attribute.String("operation", string(t.Operation)))
		case domain.AuditOrchestrationCompleted, domain.AuditOrchestrationFailed:
			telemetry.RecordCounter(ctx, metricRunsFinished, "Orchestration runs finished", 1, name,
				attribute.String("status", t.Status))
		case domain.AuditRollbackCompleted:
			if t.Status == string(domain.RunStatusUndone) {
				telemetry.RecordCounter(ctx, metricRunsFinished, "Orchestration runs finished", 1, name,
					attribute.String("status", t.Status))
			}
		}
	}
}
