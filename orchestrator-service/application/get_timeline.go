package application

import (
	"context"

	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
	"github.com/draftea/saga-orchestrator/shared/models"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// GetTimelineQuery represents a timeline request
type GetTimelineQuery struct {
	FlowID models.ID
	Filter domain.TimelineFilter
}

// GetTimeline use case reads the audit trail of a run
type GetTimeline struct {
	auditRepository domain.AuditRepository
	log             *zap.Logger
}

// NewGetTimeline creates a new GetTimeline use case
func NewGetTimeline(auditRepository domain.AuditRepository, log *zap.Logger) *GetTimeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &GetTimeline{
		auditRepository: auditRepository,
		log:             log,
	}
}

// Execute returns the ordered timeline, ErrTimelineNotFound when no event matches
func (uc *GetTimeline) Execute(ctx context.Context, query *GetTimelineQuery) (*domain.Timeline, error) {
	if query == nil || query.FlowID.IsZero() {
		return nil, errors.Wrap(domain.ErrInvalidQuery, "flow ID is required")
	}

	if f := query.Filter; f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, errors.Wrap(domain.ErrInvalidQuery, "to must not be before from")
	}

	auditEvents, err := uc.auditRepository.FindByFlowID(ctx, query.FlowID, query.Filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find audit events")
	}

	if len(auditEvents) == 0 {
		return nil, errors.Wrapf(domain.ErrTimelineNotFound, "flow %s", query.FlowID)
	}

	return domain.NewTimeline(query.FlowID, auditEvents), nil
}
