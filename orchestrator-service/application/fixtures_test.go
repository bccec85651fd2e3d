package application

import (
	"context"
	"time"

	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
	"github.com/draftea/saga-orchestrator/orchestrator-service/mocks"
	"github.com/draftea/saga-orchestrator/shared/events"
	"github.com/draftea/saga-orchestrator/shared/models"
	"github.com/stretchr/testify/mock"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func intPtr(v int) *int {
	return &v
}

func registeredTemplate(executionType domain.ExecutionType, maxRetries int, steps ...string) *domain.OrchestrationTemplate {
	template := domain.NewOrchestrationTemplate("tenantCreation", executionType, "tenant-svc", fixedNow)
	for i, name := range steps {
		template.Steps = append(template.Steps, domain.NewStepTemplate("tenantCreation", i+1, name, "Tenant", maxRetries, fixedNow))
	}
	template.Status = domain.RegistrationStatusSuccess
	return template
}

// newTestDispatcher returns a dispatcher that never sleeps on backoff
func newTestDispatcher(runRepo domain.RunRepository, gateway domain.MessageGateway, auditRepo domain.AuditRepository) *StepDispatcher {
	audit := NewAuditService(auditRepo, nil)
	audit.now = func() time.Time { return fixedNow }
	dispatcher := NewStepDispatcher(runRepo, gateway, audit, time.Second, nil)
	dispatcher.now = func() time.Time { return fixedNow }
	dispatcher.wait = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return dispatcher
}

// lockedUpdate makes Update apply fn to run the way the repository does under its row lock
func lockedUpdate(runRepo *mocks.MockRunRepository, run *domain.OrchestrationRun) *mocks.MockRunRepository_Update_Call {
	return runRepo.EXPECT().Update(mock.Anything, run.FlowID, mock.Anything).
		RunAndReturn(func(_ context.Context, _ models.ID, fn func(*domain.OrchestrationRun) error) (*domain.OrchestrationRun, error) {
			if err := fn(run); err != nil {
				return nil, err
			}
			return run, nil
		})
}

// inTx runs transactional callbacks against the same mock
func inTx(repo *mocks.MockTopologyRepository) *mocks.MockTopologyRepository_RunInTx_Call {
	return repo.EXPECT().RunInTx(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, fn func(domain.TopologyRepository) error) error {
			return fn(repo)
		})
}

func publishedTo(topic string) interface{} {
	return mock.MatchedBy(func(evt *events.Event) bool {
		return evt.Topic.String() == topic
	})
}

func auditOf(eventType domain.AuditEventType) interface{} {
	return mock.MatchedBy(func(evt *domain.AuditEvent) bool {
		return evt.EventType == eventType
	})
}
