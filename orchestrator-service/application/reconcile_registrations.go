package application

import (
	"context"
	"time"

	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
	"github.com/draftea/saga-orchestrator/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ReconciliationReport summarizes one reconciliation pass
type ReconciliationReport struct {
	Scanned  int
	Promoted []string
	Errors   int
}

// ReconcileRegistrations use case promotes topologies whose steps are all covered
type ReconcileRegistrations struct {
	topologyRepository domain.TopologyRepository
	log                *zap.Logger
	now                func() time.Time
}

// NewReconcileRegistrations creates a new ReconcileRegistrations use case
func NewReconcileRegistrations(topologyRepository domain.TopologyRepository, log *zap.Logger) *ReconcileRegistrations {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReconcileRegistrations{
		topologyRepository: topologyRepository,
		log:                log,
		now:                func() time.Time { return time.Now().UTC() },
	}
}

// Execute scans PENDING and FAILED templates. A template that cannot be
// reconciled is logged and left for the next pass.
func (uc *ReconcileRegistrations) Execute(ctx context.Context) (*ReconciliationReport, error) {
	templates, err := uc.topologyRepository.FindByStatuses(ctx, domain.RegistrationStatusPending, domain.RegistrationStatusFailed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find unregistered orchestrations")
	}

	report := &ReconciliationReport{Scanned: len(templates)}
	for _, candidate := range templates {
		promoted, err := uc.reconcile(ctx, candidate.Name)
		if err != nil {
			report.Errors++
			uc.log.Error("failed to reconcile orchestration", zap.String("orchestration", candidate.Name), zap.Error(err))
			continue
		}
		if promoted {
			report.Promoted = append(report.Promoted, candidate.Name)
			uc.log.Info("orchestration registration completed", zap.String("orchestration", candidate.Name))
			telemetry.RecordCounter(ctx, metricReconciledTemplates, "Templates promoted by reconciliation", 1,
				attribute.String("orchestration", candidate.Name))
		}
	}

	return report, nil
}

func (uc *ReconcileRegistrations) reconcile(ctx context.Context, name string) (bool, error) {
	promoted := false
	err := uc.topologyRepository.RunInTx(ctx, func(repo domain.TopologyRepository) error {
		// Reload under the transaction, a registration may have raced the scan
		template, err := repo.FindByName(ctx, name)
		if err != nil {
			return errors.Wrap(err, "failed to find orchestration")
		}
		if template == nil || template.Status == domain.RegistrationStatusSuccess {
			return nil
		}

		workers, err := repo.FindWorkers(ctx, name)
		if err != nil {
			return errors.Wrap(err, "failed to find workers")
		}

		template.ApplyCoverage(workers, uc.now())
		if template.Status != domain.RegistrationStatusSuccess {
			return nil
		}

		if err := repo.UpdateStatus(ctx, template); err != nil {
			return errors.Wrap(err, "failed to update registration status")
		}
		promoted = true
		return nil
	})
	return promoted, err
}
