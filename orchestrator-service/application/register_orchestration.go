package application

import (
	"context"
	"strings"
	"time"

	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
	"github.com/draftea/saga-orchestrator/shared/events"
	"github.com/draftea/saga-orchestrator/shared/models"
	"github.com/draftea/saga-orchestrator/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RegistrationCommand represents a registration request sent by a service
type RegistrationCommand struct {
	Registration domain.Registration
	ServiceName  string
}

// registrationProtocol applies one role's registration rules to the topology
type registrationProtocol interface {
	register(ctx context.Context, cmd *RegistrationCommand, result *domain.RegistrationResult) error
}

// RegisterOrchestration use case registers topologies and workers
type RegisterOrchestration struct {
	topologyRepository     domain.TopologyRepository
	registrationRepository domain.RegistrationAuditRepository
	gateway                domain.MessageGateway
	protocols              map[domain.RegistrationRole]registrationProtocol
	log                    *zap.Logger
	now                    func() time.Time
}

// NewRegisterOrchestration creates a new RegisterOrchestration use case.
// defaultMaxRetries applies to steps registered without an explicit limit.
func NewRegisterOrchestration(
	topologyRepository domain.TopologyRepository,
	registrationRepository domain.RegistrationAuditRepository,
	gateway domain.MessageGateway,
	defaultMaxRetries int,
	log *zap.Logger,
) *RegisterOrchestration {
	if log == nil {
		log = zap.NewNop()
	}
	now := func() time.Time { return time.Now().UTC() }

	return &RegisterOrchestration{
		topologyRepository:     topologyRepository,
		registrationRepository: registrationRepository,
		gateway:                gateway,
		protocols: map[domain.RegistrationRole]registrationProtocol{
			domain.RoleInitiator: &initiatorRegistration{
				topologyRepository: topologyRepository,
				gateway:            gateway,
				defaultMaxRetries:  defaultMaxRetries,
				now:                now,
			},
			domain.RoleWorker: &workerRegistration{
				topologyRepository: topologyRepository,
				now:                now,
			},
		},
		log: log,
		now: now,
	}
}

// Execute registers the request and reports per-step outcomes. Only request
// level validation errors are returned as errors; step and storage failures
// are reported in the result.
func (uc *RegisterOrchestration) Execute(ctx context.Context, cmd *RegistrationCommand) (*domain.RegistrationResult, error) {
	if cmd == nil {
		return nil, errors.New("command is required")
	}

	registration := &cmd.Registration
	result := domain.NewRegistrationResult(registration, cmd.ServiceName)
	log := uc.log.With(
		zap.String("orchestration", registration.OrchestrationName),
		zap.String("role", string(registration.Role)),
		zap.String("service", cmd.ServiceName),
	)

	if err := registration.Validate(cmd.ServiceName); err != nil {
		result.Fail(err.Error())
		uc.recordOutcome(ctx, cmd, result)
		return result, errors.Wrap(err, "invalid command")
	}

	protocol, ok := uc.protocols[registration.Role]
	if !ok {
		result.Fail(domain.ErrUnknownRole.Error())
		uc.recordOutcome(ctx, cmd, result)
		return result, errors.Wrapf(domain.ErrUnknownRole, "role %q", registration.Role)
	}

	if err := protocol.register(ctx, cmd, result); err != nil {
		log.Error("registration failed", zap.Error(err))
		result.Fail(err.Error())
		uc.markFailed(ctx, registration.OrchestrationName, err)
	}

	// Status follows coverage regardless of which protocol ran
	if err := uc.refreshStatus(ctx, registration.OrchestrationName, result); err != nil {
		log.Error("failed to refresh registration status", zap.Error(err))
	}

	log.Info("registration processed",
		zap.String("status", string(result.Status)),
		zap.String("template_status", string(result.TemplateStatus)),
		zap.Strings("failed_steps", result.FailedSteps),
	)

	uc.recordOutcome(ctx, cmd, result)
	return result, nil
}

func (uc *RegisterOrchestration) refreshStatus(ctx context.Context, name string, result *domain.RegistrationResult) error {
	return uc.topologyRepository.RunInTx(ctx, func(repo domain.TopologyRepository) error {
		template, err := repo.FindByName(ctx, name)
		if err != nil {
			return errors.Wrap(err, "failed to find orchestration")
		}
		if template == nil {
			return nil
		}

		workers, err := repo.FindWorkers(ctx, name)
		if err != nil {
			return errors.Wrap(err, "failed to find workers")
		}

		if template.ApplyCoverage(workers, uc.now()) {
			if err := repo.UpdateStatus(ctx, template); err != nil {
				return errors.Wrap(err, "failed to update registration status")
			}
		}

		result.TemplateStatus = template.Status
		return nil
	})
}

// markFailed records a storage failure on an existing template
func (uc *RegisterOrchestration) markFailed(ctx context.Context, name string, cause error) {
	err := uc.topologyRepository.RunInTx(ctx, func(repo domain.TopologyRepository) error {
		template, err := repo.FindByName(ctx, name)
		if err != nil || template == nil {
			return err
		}
		template.Status = domain.RegistrationStatusFailed
		template.FailureReason = cause.Error()
		template.Timestamps = template.Timestamps.Update(uc.now())
		return repo.UpdateStatus(ctx, template)
	})
	if err != nil {
		uc.log.Warn("failed to mark orchestration as failed", zap.String("orchestration", name), zap.Error(err))
	}
}

// recordOutcome writes the registration audit and publishes the status event.
// Both are notifications only, so failures are logged.
func (uc *RegisterOrchestration) recordOutcome(ctx context.Context, cmd *RegistrationCommand, result *domain.RegistrationResult) {
	telemetry.RecordCounter(ctx, metricRegistrations, "Registration requests processed", 1,
		attribute.String("role", string(result.Role)),
		attribute.String("status", string(result.Status)),
	)

	if strings.TrimSpace(result.OrchestrationName) == "" {
		return
	}

	audit := domain.NewRegistrationAudit(&cmd.Registration, result, uc.now())
	if err := uc.registrationRepository.Save(ctx, audit); err != nil {
		uc.log.Error("failed to write registration audit",
			zap.String("orchestration", result.OrchestrationName),
			zap.Error(err),
		)
	}

	event := events.NewEventWithTopic(
		models.ID(result.OrchestrationName),
		domain.TopicRegistrationStatus,
		domain.EventTypeRegistrationStatus,
		result,
	).
		WithMetadata(domain.HeaderOrchestrationName, result.OrchestrationName).
		WithMetadata(domain.HeaderServiceName, result.ServiceName).
		WithMetadata(domain.HeaderStatus, string(result.Status))

	if err := uc.gateway.Publish(ctx, event); err != nil {
		uc.log.Warn("failed to publish registration status",
			zap.String("orchestration", result.OrchestrationName),
			zap.Error(err),
		)
	}
}

// initiatorRegistration replaces the whole topology of an orchestration
type initiatorRegistration struct {
	topologyRepository domain.TopologyRepository
	gateway            domain.MessageGateway
	defaultMaxRetries  int
	now                func() time.Time
}

func (p *initiatorRegistration) register(ctx context.Context, cmd *RegistrationCommand, result *domain.RegistrationResult) error {
	registration := &cmd.Registration
	now := p.now()

	steps := p.acceptedSteps(registration, result, now)
	if len(steps) == 0 {
		result.Fail("no valid steps")
		return nil
	}

	err := p.topologyRepository.RunInTx(ctx, func(repo domain.TopologyRepository) error {
		template, err := repo.FindByName(ctx, registration.OrchestrationName)
		if err != nil {
			return errors.Wrap(err, "failed to find orchestration")
		}

		// Re-registration replaces the topology wholesale
		if template == nil {
			template = domain.NewOrchestrationTemplate(registration.OrchestrationName, registration.ExecutionType, cmd.ServiceName, now)
			template.Steps = steps
		} else {
			template.Redefine(registration.ExecutionType, cmd.ServiceName, steps, now)
		}

		if err := repo.Save(ctx, template); err != nil {
			return errors.Wrap(err, "failed to save orchestration")
		}

		if err := repo.ReplaceSteps(ctx, template.Name, steps); err != nil {
			return errors.Wrap(err, "failed to replace steps")
		}

		return p.createTopics(ctx, steps)
	})
	if err != nil {
		return err
	}

	for _, step := range steps {
		result.StepRegistered(step.StepName)
	}
	return nil
}

// acceptedSteps validates every submitted step. The first occurrence of a
// duplicated name or sequence wins.
func (p *initiatorRegistration) acceptedSteps(registration *domain.Registration, result *domain.RegistrationResult, now time.Time) []*domain.StepTemplate {
	names := make(map[string]bool)
	sequences := make(map[int]bool)
	var steps []*domain.StepTemplate

	for _, submitted := range registration.Steps {
		name := strings.TrimSpace(submitted.StepName)
		switch {
		case name == "":
			result.StepFailed(submitted.StepName, "step name is required")
			continue
		case strings.TrimSpace(submitted.ObjectType) == "":
			result.StepFailed(name, "object type is required")
			continue
		case submitted.Sequence == nil:
			result.StepFailed(name, "sequence is required")
			continue
		case names[name]:
			result.StepFailed(name, "duplicate step name")
			continue
		case sequences[*submitted.Sequence]:
			result.StepFailed(name, "duplicate sequence")
			continue
		}

		maxRetries := p.defaultMaxRetries
		if submitted.MaxRetries != nil {
			if *submitted.MaxRetries < 0 {
				result.StepFailed(name, "max retries must not be negative")
				continue
			}
			maxRetries = *submitted.MaxRetries
		}

		names[name] = true
		sequences[*submitted.Sequence] = true
		steps = append(steps, domain.NewStepTemplate(
			registration.OrchestrationName,
			*submitted.Sequence,
			name,
			strings.TrimSpace(submitted.ObjectType),
			maxRetries,
			now,
		))
	}

	return steps
}

func (p *initiatorRegistration) createTopics(ctx context.Context, steps []*domain.StepTemplate) error {
	gr, ctx := errgroup.WithContext(ctx)

	for _, step := range steps {
		for _, topic := range []string{step.DoTopic, step.UndoTopic} {
			gr.Go(func() error {
				exists, err := p.gateway.TopicExists(ctx, topic)
				if err != nil {
					return errors.Wrapf(err, "failed to check topic %s", topic)
				}
				if exists {
					return nil
				}
				if err := p.gateway.CreateTopic(ctx, topic); err != nil {
					return errors.Wrapf(err, "failed to create topic %s", topic)
				}
				return nil
			})
		}
	}

	return gr.Wait()
}

// workerRegistration binds a worker to steps of an existing topology
type workerRegistration struct {
	topologyRepository domain.TopologyRepository
	now                func() time.Time
}

func (p *workerRegistration) register(ctx context.Context, cmd *RegistrationCommand, result *domain.RegistrationResult) error {
	registration := &cmd.Registration
	now := p.now()

	return p.topologyRepository.RunInTx(ctx, func(repo domain.TopologyRepository) error {
		template, err := repo.FindByName(ctx, registration.OrchestrationName)
		if err != nil {
			return errors.Wrap(err, "failed to find orchestration")
		}

		// Workers cannot create topology
		if template == nil {
			for _, submitted := range registration.Steps {
				result.StepFailed(submitted.StepName, domain.ErrOrchestrationNotFound.Error())
			}
			result.Reason = domain.ErrOrchestrationNotFound.Error()
			return nil
		}

		names := make([]string, 0, len(registration.Steps))
		for _, submitted := range registration.Steps {
			if name := strings.TrimSpace(submitted.StepName); name != "" {
				names = append(names, name)
			}
		}

		// Idempotent replace of this worker's earlier registrations
		if err := repo.DeleteWorkerRegistrations(ctx, template.Name, cmd.ServiceName, names); err != nil {
			return errors.Wrap(err, "failed to delete worker registrations")
		}

		workers, err := repo.FindWorkers(ctx, template.Name)
		if err != nil {
			return errors.Wrap(err, "failed to find workers")
		}
		registered := make(map[string]bool)
		for _, w := range workers {
			if w.ServiceName == cmd.ServiceName {
				registered[w.StepName] = true
			}
		}

		for _, submitted := range registration.Steps {
			name := strings.TrimSpace(submitted.StepName)
			if name == "" {
				result.StepFailed(submitted.StepName, "step name is required")
				continue
			}

			step := template.StepByName(name)
			if step == nil {
				result.StepFailed(name, domain.ErrStepNotFound.Error())
				continue
			}

			if registered[name] {
				result.StepFailed(name, "worker already registered for step")
				continue
			}

			if err := repo.SaveWorkerRegistration(ctx, &domain.WorkerRegistration{
				OrchestrationName: template.Name,
				StepName:          name,
				ServiceName:       cmd.ServiceName,
				TopicName:         step.DoTopic,
				CreatedAt:         now,
			}); err != nil {
				return errors.Wrapf(err, "failed to register worker for step %s", name)
			}

			registered[name] = true
			result.StepRegistered(name)
		}

		return nil
	})
}
