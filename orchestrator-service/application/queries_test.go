package application

import (
	"context"
	"testing"
	"time"

	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
	"github.com/draftea/saga-orchestrator/orchestrator-service/mocks"
	"github.com/draftea/saga-orchestrator/shared/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetTimeline_Execute(t *testing.T) {
	from := fixedNow
	before := fixedNow.Add(-time.Hour)

	tests := []struct {
		name          string
		query         *GetTimelineQuery
		setupMocks    func(repo *mocks.MockAuditRepository)
		expectedError error
		expectedTotal int
	}{
		{
			name:  "events ordered by timestamp",
			query: &GetTimelineQuery{FlowID: "flow-1"},
			setupMocks: func(repo *mocks.MockAuditRepository) {
				repo.EXPECT().FindByFlowID(mock.Anything, models.ID("flow-1"), domain.TimelineFilter{}).Return([]*domain.AuditEvent{
					{FlowID: "flow-1", EventType: domain.AuditStepStarted, Timestamp: fixedNow.Add(time.Second)},
					{FlowID: "flow-1", EventType: domain.AuditOrchestrationStarted, Timestamp: fixedNow},
				}, nil).Once()
			},
			expectedTotal: 2,
		},
		{
			name:  "filters are passed to the repository",
			query: &GetTimelineQuery{FlowID: "flow-1", Filter: domain.TimelineFilter{EventType: domain.AuditStepFailed, From: &from}},
			setupMocks: func(repo *mocks.MockAuditRepository) {
				repo.EXPECT().FindByFlowID(mock.Anything, models.ID("flow-1"), mock.MatchedBy(func(f domain.TimelineFilter) bool {
					return f.EventType == domain.AuditStepFailed && f.From.Equal(from)
				})).Return([]*domain.AuditEvent{{FlowID: "flow-1", EventType: domain.AuditStepFailed, Timestamp: fixedNow}}, nil).Once()
			},
			expectedTotal: 1,
		},
		{
			name:  "no events",
			query: &GetTimelineQuery{FlowID: "flow-2"},
			setupMocks: func(repo *mocks.MockAuditRepository) {
				repo.EXPECT().FindByFlowID(mock.Anything, models.ID("flow-2"), mock.Anything).Return(nil, nil).Once()
			},
			expectedError: domain.ErrTimelineNotFound,
		},
		{
			name:          "missing flow id",
			query:         &GetTimelineQuery{},
			setupMocks:    func(repo *mocks.MockAuditRepository) {},
			expectedError: domain.ErrInvalidQuery,
		},
		{
			name:          "inverted range",
			query:         &GetTimelineQuery{FlowID: "flow-1", Filter: domain.TimelineFilter{From: &from, To: &before}},
			setupMocks:    func(repo *mocks.MockAuditRepository) {},
			expectedError: domain.ErrInvalidQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockAuditRepository(t)
			tt.setupMocks(repo)

			timeline, err := NewGetTimeline(repo, nil).Execute(context.Background(), tt.query)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, timeline)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedTotal, timeline.Summary.Total)
			for i := 1; i < len(timeline.Events); i++ {
				assert.False(t, timeline.Events[i].Timestamp.Before(timeline.Events[i-1].Timestamp))
			}
		})
	}
}

func TestQueries_GetOrchestration(t *testing.T) {
	topology := mocks.NewMockTopologyRepository(t)
	template := registeredTemplate(domain.ExecutionTypeSequential, 3, "createRealm", "createClient")

	topology.EXPECT().FindByName(mock.Anything, "tenantCreation").Return(template, nil).Once()
	topology.EXPECT().FindWorkers(mock.Anything, "tenantCreation").Return([]*domain.WorkerRegistration{
		{OrchestrationName: "tenantCreation", StepName: "createRealm", ServiceName: "realm-a"},
		{OrchestrationName: "tenantCreation", StepName: "createRealm", ServiceName: "realm-b"},
	}, nil).Once()
	topology.EXPECT().FindByName(mock.Anything, "missing").Return(nil, nil).Once()

	q := NewQueries(topology, mocks.NewMockRunRepository(t), mocks.NewMockRegistrationAuditRepository(t))

	detail, err := q.GetOrchestration(context.Background(), "tenantCreation")
	require.NoError(t, err)
	assert.Len(t, detail.Workers["createRealm"], 2)
	assert.True(t, detail.Covered("createRealm"))
	assert.False(t, detail.Covered("createClient"))

	_, err = q.GetOrchestration(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrOrchestrationNotFound)

	_, err = q.GetOrchestration(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestQueries_ListOrchestrations(t *testing.T) {
	topology := mocks.NewMockTopologyRepository(t)
	topology.EXPECT().List(mock.Anything, mock.MatchedBy(func(f domain.TemplateFilter) bool {
		return f.Status == domain.RegistrationStatusPending && f.Page.Size == models.DefaultPageSize
	})).Return([]*domain.OrchestrationTemplate{registeredTemplate(domain.ExecutionTypeSequential, 3, "a")}, 41, nil).Once()

	q := NewQueries(topology, mocks.NewMockRunRepository(t), mocks.NewMockRegistrationAuditRepository(t))

	page, err := q.ListOrchestrations(context.Background(), domain.TemplateFilter{Status: domain.RegistrationStatusPending})
	require.NoError(t, err)
	assert.Equal(t, 41, page.Total)
	assert.Len(t, page.Items, 1)

	_, err = q.ListOrchestrations(context.Background(), domain.TemplateFilter{Status: "DONE"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)

	_, err = q.ListOrchestrations(context.Background(), domain.TemplateFilter{ExecutionType: "PARALLEL"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestQueries_Executions(t *testing.T) {
	runs := mocks.NewMockRunRepository(t)
	run := domain.NewRun("flow-1", "tenantCreation", registeredTemplate(domain.ExecutionTypeSequential, 3, "a"), nil, fixedNow)

	runs.EXPECT().FindByID(mock.Anything, models.ID("flow-1")).Return(run, nil).Once()
	runs.EXPECT().FindByID(mock.Anything, models.ID("flow-2")).Return(nil, nil).Once()
	runs.EXPECT().List(mock.Anything, mock.MatchedBy(func(f domain.RunFilter) bool {
		return f.OrchestrationName == "tenantCreation" && f.Status == domain.RunStatusFailed
	})).Return(nil, 0, errors.New("timeout")).Once()

	q := NewQueries(mocks.NewMockTopologyRepository(t), runs, mocks.NewMockRegistrationAuditRepository(t))

	found, err := q.GetExecution(context.Background(), "flow-1")
	require.NoError(t, err)
	assert.Same(t, run, found)

	_, err = q.GetExecution(context.Background(), "flow-2")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)

	_, err = q.ListExecutions(context.Background(), domain.RunFilter{OrchestrationName: "tenantCreation", Status: domain.RunStatusFailed})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list executions")
}

func TestQueries_ListRegistrationHistory(t *testing.T) {
	registrations := mocks.NewMockRegistrationAuditRepository(t)
	registrations.EXPECT().FindByOrchestration(mock.Anything, "tenantCreation", models.Page{Number: 0, Size: models.DefaultPageSize}).
		Return([]*domain.RegistrationAudit{{OrchestrationName: "tenantCreation", Role: domain.RoleInitiator}}, nil).Once()

	q := NewQueries(mocks.NewMockTopologyRepository(t), mocks.NewMockRunRepository(t), registrations)

	history, err := q.ListRegistrationHistory(context.Background(), "tenantCreation", models.Page{})
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
