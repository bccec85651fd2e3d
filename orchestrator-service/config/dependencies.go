package config

import (
	"context"

	"github.com/draftea/saga-orchestrator/orchestrator-service/application"
	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
	"github.com/draftea/saga-orchestrator/orchestrator-service/handlers"
	"github.com/draftea/saga-orchestrator/orchestrator-service/infrastructure"
	"github.com/draftea/saga-orchestrator/shared/events"
	sharedinfra "github.com/draftea/saga-orchestrator/shared/infrastructure"
	"github.com/draftea/saga-orchestrator/shared/telemetry"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Dependencies struct {
	// Database
	DB *sqlx.DB

	// Redis
	Redis *redis.Client

	// Repositories
	TopologyRepository          *infrastructure.PostgresTopologyRepository
	RunRepository               *infrastructure.PostgresRunRepository
	AuditRepository             *infrastructure.PostgresAuditRepository
	RegistrationAuditRepository *infrastructure.PostgresRegistrationAuditRepository

	// Use Cases
	AuditService           *application.AuditService
	StepDispatcher         *application.StepDispatcher
	RegisterOrchestration  *application.RegisterOrchestration
	StartOrchestration     *application.StartOrchestration
	ProcessStepResponse    *application.ProcessStepResponse
	GetTimeline            *application.GetTimeline
	ReconcileRegistrations *application.ReconcileRegistrations
	Queries                *application.Queries

	// HTTP Handlers
	OrchestratorHandlers *handlers.OrchestratorHandlers

	// Event Handlers
	MessageRouter *handlers.MessageRouter

	// Infrastructure
	Gateway                 *sharedinfra.SNSTopicGateway
	EventSubscriber         *sharedinfra.SQSEventSubscriber
	ReconciliationScheduler *handlers.ReconciliationScheduler

	// Telemetry
	Telemetry         *telemetry.Telemetry
	TelemetryShutdown func()
}

func BuildDependencies(ctx context.Context, config *Config, log *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	// Initialize telemetry first
	if config.Telemetry.Enabled {
		telConfig := telemetry.OrchestratorServiceConfig.
			WithServiceName(config.ServiceName).
			WithOTLPEndpoint(config.Telemetry.OTLPEndpoint)
		tel, telemetryShutdown, err := telemetry.InitTelemetry(ctx, telConfig)
		if err != nil {
			// Continue without telemetry rather than failing
			log.Warn("failed to initialize telemetry", zap.Error(err))
		} else {
			deps.Telemetry = tel
			deps.TelemetryShutdown = telemetryShutdown
		}
	}

	// Initialize database
	db, err := sqlx.ConnectContext(ctx, "postgres", config.GetDatabaseURL())
	if err != nil {
		deps.Close()
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	db.SetMaxOpenConns(config.Database.MaxOpenConns)
	db.SetMaxIdleConns(config.Database.MaxIdleConns)
	deps.DB = db

	if config.Database.AutoMigrate {
		if err := infrastructure.Migrate(ctx, db, log); err != nil {
			deps.Close()
			return nil, err
		}
	}

	// Initialize AWS infrastructure
	snsClient, sqsClient, err := sharedinfra.NewAWSClients(ctx, sharedinfra.AWSOptions{
		Region:          config.AWS.Region,
		AccessKeyID:     config.AWS.AccessKeyID,
		SecretAccessKey: config.AWS.SecretAccessKey,
		EndpointSNS:     config.AWS.EndpointSNS,
		EndpointSQS:     config.AWS.EndpointSQS,
	})
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Gateway = sharedinfra.NewSNSTopicGateway(snsClient, config.AWS.TopicArnPrefix, log)

	// Redis is optional, without it only fencing protects against redelivery
	var dedupe domain.MessageDeduplicator = infrastructure.NoopMessageDeduplicator{}
	if config.Redis.Addr != "" {
		deps.Redis = redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		if err := deps.Redis.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, deduplication fails open", zap.Error(err))
		}
		dedupe = infrastructure.NewRedisMessageDeduplicator(deps.Redis, "", config.Redis.DedupeTTL)
	}

	// Initialize repositories
	deps.TopologyRepository = infrastructure.NewPostgresTopologyRepository(db)
	deps.RunRepository = infrastructure.NewPostgresRunRepository(db)
	deps.AuditRepository = infrastructure.NewPostgresAuditRepository(db)
	deps.RegistrationAuditRepository = infrastructure.NewPostgresRegistrationAuditRepository(db)

	// Initialize use cases
	deps.AuditService = application.NewAuditService(deps.AuditRepository, log)
	deps.StepDispatcher = application.NewStepDispatcher(deps.RunRepository, deps.Gateway, deps.AuditService, config.Engine.RetryBackoff, log)
	deps.RegisterOrchestration = application.NewRegisterOrchestration(
		deps.TopologyRepository, deps.RegistrationAuditRepository, deps.Gateway, config.Engine.DefaultMaxRetries, log,
	)
	deps.StartOrchestration = application.NewStartOrchestration(deps.TopologyRepository, deps.RunRepository, deps.StepDispatcher, log)
	deps.ProcessStepResponse = application.NewProcessStepResponse(deps.RunRepository, deps.StepDispatcher, deps.AuditService, log)
	deps.GetTimeline = application.NewGetTimeline(deps.AuditRepository, log)
	deps.ReconcileRegistrations = application.NewReconcileRegistrations(deps.TopologyRepository, log)
	deps.Queries = application.NewQueries(deps.TopologyRepository, deps.RunRepository, deps.RegistrationAuditRepository)

	// Initialize handlers
	deps.OrchestratorHandlers = handlers.NewOrchestratorHandlers(
		deps.RegisterOrchestration, deps.StartOrchestration, deps.GetTimeline, deps.Queries, log,
	)
	deps.MessageRouter = handlers.NewMessageRouter(
		deps.RegisterOrchestration, deps.StartOrchestration, deps.ProcessStepResponse, dedupe, log,
	)

	if err := ensureTopics(ctx, deps.Gateway, append(deps.MessageRouter.Topics(), domain.TopicRegistrationStatus)); err != nil {
		deps.Close()
		return nil, err
	}

	deps.EventSubscriber = sharedinfra.NewSQSEventSubscriber(
		sqsClient, config.AWS.SQSQueueURL, deps.MessageRouter, log,
		sharedinfra.WithWorkers(config.AWS.Workers),
		sharedinfra.WithReaders(config.AWS.Readers),
		sharedinfra.WithVisibilityTimeout(config.AWS.VisibilityTimeout),
		sharedinfra.WithWaitTimeSeconds(config.AWS.WaitTimeSeconds),
	)

	if config.Reconciliation.Enabled {
		deps.ReconciliationScheduler = handlers.NewReconciliationScheduler(
			deps.ReconcileRegistrations, config.Reconciliation.Interval, log,
		)
	}

	return deps, nil
}

// ensureTopics creates the fixed orchestrator topics
func ensureTopics(ctx context.Context, gateway domain.MessageGateway, topics []events.Topic) error {
	for _, topic := range topics {
		if err := gateway.CreateTopic(ctx, topic.String()); err != nil {
			return errors.Wrapf(err, "failed to create topic %s", topic)
		}
	}
	return nil
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	var errs []error

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "failed to close database"))
		}
	}

	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "failed to close redis"))
		}
	}

	if d.TelemetryShutdown != nil {
		d.TelemetryShutdown()
	}

	if len(errs) > 0 {
		return errors.Errorf("errors closing dependencies: %v", errs)
	}

	return nil
}
