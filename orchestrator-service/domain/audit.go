package domain

import (
	"context"
	"sort"
	"time"

	"github.com/draftea/saga-orchestrator/shared/models"
)

// EntityType tells whether an audit event describes the run or one step
type EntityType string

const (
	EntityOrchestration EntityType = "ORCHESTRATION"
	EntityStep          EntityType = "STEP"
)

// AuditEventType enumerates the lifecycle events of a run
type AuditEventType string

const (
	AuditOrchestrationStarted       AuditEventType = "ORCHESTRATION_STARTED"
	AuditOrchestrationNotRegistered AuditEventType = "ORCHESTRATION_NOT_REGISTERED"
	AuditOrchestrationCompleted     AuditEventType = "ORCHESTRATION_COMPLETED"
	AuditOrchestrationFailed        AuditEventType = "ORCHESTRATION_FAILED"
	AuditStepStarted                AuditEventType = "STEP_STARTED"
	AuditStepSuccess                AuditEventType = "STEP_SUCCESS"
	AuditStepFailed                 AuditEventType = "STEP_FAILED"
	AuditRetryTriggered             AuditEventType = "RETRY_TRIGGERED"
	AuditRollbackTriggered          AuditEventType = "ROLLBACK_TRIGGERED"
	AuditRollbackStarted            AuditEventType = "ROLLBACK_STARTED"
	AuditRollbackCompleted          AuditEventType = "ROLLBACK_COMPLETED"
	AuditUndoStarted                AuditEventType = "UNDO_STARTED"
	AuditUndoCompleted              AuditEventType = "UNDO_COMPLETED"
	AuditUndoFailed                 AuditEventType = "UNDO_FAILED"
	AuditStepResponseIgnored        AuditEventType = "STEP_RESPONSE_IGNORED"
)

// IsFailure reports whether the event type counts as a failure in timeline summaries
func (t AuditEventType) IsFailure() bool {
	switch t {
	case AuditOrchestrationFailed, AuditStepFailed, AuditUndoFailed:
		return true
	}
	return false
}

// AuditEvent is an append-only lifecycle record
type AuditEvent struct {
	ID                models.ID
	FlowID            models.ID
	OrchestrationName string
	EntityType        EntityType
	StepName          string
	EventType         AuditEventType
	Status            string
	Timestamp         time.Time
	Reason            string
	Details           map[string]interface{}
	OperationType     Action
	DurationMs        int64
	RetryCount        int
}

// TimelineFilter narrows a timeline query
type TimelineFilter struct {
	EventType AuditEventType
	Status    string
	From      *time.Time
	To        *time.Time
}

// AuditRepository stores audit events
type AuditRepository interface {
	Save(ctx context.Context, event *AuditEvent) error
	FindByFlowID(ctx context.Context, flowID models.ID, filter TimelineFilter) ([]*AuditEvent, error)
}

// TimelineSummary aggregates a timeline
type TimelineSummary struct {
	Total      int   `json:"total"`
	Failed     int   `json:"failed"`
	Retries    int   `json:"retries"`
	Rollbacks  int   `json:"rollbacks"`
	DurationMs int64 `json:"durationMs"`
}

// Timeline is the ordered audit history of one run
type Timeline struct {
	FlowID            models.ID
	OrchestrationName string
	Events            []*AuditEvent
	Summary           TimelineSummary
}

// NewTimeline orders events by timestamp and summarizes them
func NewTimeline(flowID models.ID, auditEvents []*AuditEvent) *Timeline {
	ordered := make([]*AuditEvent, len(auditEvents))
	copy(ordered, auditEvents)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	timeline := &Timeline{FlowID: flowID, Events: ordered}
	for _, event := range ordered {
		if timeline.OrchestrationName == "" {
			timeline.OrchestrationName = event.OrchestrationName
		}
		timeline.Summary.Total++
		if event.EventType.IsFailure() {
			timeline.Summary.Failed++
		}
		switch event.EventType {
		case AuditRetryTriggered:
			timeline.Summary.Retries++
		case AuditRollbackTriggered:
			timeline.Summary.Rollbacks++
		}
	}

	if len(ordered) > 1 {
		timeline.Summary.DurationMs = ordered[len(ordered)-1].Timestamp.Sub(ordered[0].Timestamp).Milliseconds()
	}

	return timeline
}
