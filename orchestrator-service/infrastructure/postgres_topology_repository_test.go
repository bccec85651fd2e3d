package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
	"github.com/draftea/saga-orchestrator/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

var (
	templateRowColumns = []string{"name", "execution_type", "initiator_service", "status", "failure_reason", "created_at", "updated_at"}
	stepRowColumns     = []string{"orchestration_name", "sequence", "step_name", "object_type", "do_topic", "undo_topic", "topic_name", "max_retries", "created_at"}
)

func templateRows() *sqlmock.Rows {
	return sqlmock.NewRows(templateRowColumns).
		AddRow("tenantCreation", "SEQUENTIAL", "tenant-svc", "PENDING", "", fixedNow, fixedNow)
}

func stepRows() *sqlmock.Rows {
	return sqlmock.NewRows(stepRowColumns).
		AddRow("tenantCreation", 1, "createTenant", "Tenant", "tenantCreation-createTenant-do", "tenantCreation-createTenant-undo", "tenantCreation-createTenant", 3, fixedNow).
		AddRow("tenantCreation", 2, "createRealm", "Realm", "tenantCreation-createRealm-do", "tenantCreation-createRealm-undo", "tenantCreation-createRealm", 3, fixedNow)
}

func TestPostgresTopologyRepository_FindByName(t *testing.T) {
	t.Run("template with ordered steps", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT .* FROM orchestration_templates WHERE name = \$1$`).
			WithArgs("tenantCreation").
			WillReturnRows(templateRows())
		mock.ExpectQuery(`FROM orchestration_step_templates\s+WHERE orchestration_name = ANY\(\$1\)`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(stepRows())

		template, err := NewPostgresTopologyRepository(db).FindByName(context.Background(), "tenantCreation")

		require.NoError(t, err)
		require.NotNil(t, template)
		assert.Equal(t, domain.ExecutionTypeSequential, template.ExecutionType)
		assert.Equal(t, domain.RegistrationStatusPending, template.Status)
		require.Len(t, template.Steps, 2)
		assert.Equal(t, "createTenant", template.Steps[0].StepName)
		assert.Equal(t, "tenantCreation-createRealm-undo", template.Steps[1].UndoTopic)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`FROM orchestration_templates WHERE name = \$1`).
			WithArgs("unknown").
			WillReturnRows(sqlmock.NewRows(templateRowColumns))

		template, err := NewPostgresTopologyRepository(db).FindByName(context.Background(), "unknown")

		require.NoError(t, err)
		assert.Nil(t, template)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`FROM orchestration_templates`).WillReturnError(errors.New("connection refused"))

		template, err := NewPostgresTopologyRepository(db).FindByName(context.Background(), "tenantCreation")

		assert.Error(t, err)
		assert.Nil(t, template)
	})
}

func TestPostgresTopologyRepository_RunInTx(t *testing.T) {
	t.Run("commits and locks the template", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM orchestration_templates WHERE name = \$1 FOR UPDATE`).
			WithArgs("tenantCreation").
			WillReturnRows(templateRows())
		mock.ExpectQuery(`FROM orchestration_step_templates`).WillReturnRows(stepRows())
		mock.ExpectExec(`UPDATE orchestration_templates\s+SET status`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewPostgresTopologyRepository(db)
		err := repo.RunInTx(context.Background(), func(tx domain.TopologyRepository) error {
			template, err := tx.FindByName(context.Background(), "tenantCreation")
			if err != nil {
				return err
			}
			template.Status = domain.RegistrationStatusSuccess

			// nested transactions reuse the outer one
			return tx.RunInTx(context.Background(), func(nested domain.TopologyRepository) error {
				return nested.UpdateStatus(context.Background(), template)
			})
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := NewPostgresTopologyRepository(db).RunInTx(context.Background(), func(domain.TopologyRepository) error {
			return boom
		})

		assert.Equal(t, boom, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTopologyRepository_ReplaceSteps(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`DELETE FROM orchestration_step_templates WHERE orchestration_name = \$1`).
		WithArgs("tenantCreation").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO orchestration_step_templates`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO orchestration_step_templates`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM worker_registrations WHERE orchestration_name = \$1 AND NOT \(step_name = ANY\(\$2\)\)`).
		WithArgs("tenantCreation", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	steps := []*domain.StepTemplate{
		domain.NewStepTemplate("tenantCreation", 1, "createTenant", "Tenant", 3, fixedNow),
		domain.NewStepTemplate("tenantCreation", 2, "createRealm", "Realm", 3, fixedNow),
	}
	err := NewPostgresTopologyRepository(db).ReplaceSteps(context.Background(), "tenantCreation", steps)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTopologyRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orchestration_templates WHERE status = \$1 AND execution_type = \$2`).
		WithArgs("SUCCESS", "SEQUENTIAL").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`FROM orchestration_templates WHERE status = \$1 AND execution_type = \$2 ORDER BY created_at DESC, name LIMIT \$3 OFFSET \$4`).
		WithArgs("SUCCESS", "SEQUENTIAL", 5, 5).
		WillReturnRows(templateRows())
	mock.ExpectQuery(`FROM orchestration_step_templates`).WillReturnRows(stepRows())

	templates, total, err := NewPostgresTopologyRepository(db).List(context.Background(), domain.TemplateFilter{
		Status:        domain.RegistrationStatusSuccess,
		ExecutionType: domain.ExecutionTypeSequential,
		Page:          models.Page{Number: 1, Size: 5},
	})

	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, templates, 1)
	assert.Len(t, templates[0].Steps, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTopologyRepository_Workers(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresTopologyRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM worker_registrations\s+WHERE orchestration_name = \$1 AND service_name = \$2 AND step_name = ANY\(\$3\)`).
		WithArgs("tenantCreation", "realm-svc", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO worker_registrations .* ON CONFLICT \(orchestration_name, step_name, service_name\) DO NOTHING`).
		WithArgs("tenantCreation", "createRealm", "realm-svc", "tenantCreation-createRealm-do", fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM worker_registrations\s+WHERE orchestration_name = \$1`).
		WithArgs("tenantCreation").
		WillReturnRows(sqlmock.NewRows([]string{"orchestration_name", "step_name", "service_name", "topic_name", "created_at"}).
			AddRow("tenantCreation", "createRealm", "realm-svc", "tenantCreation-createRealm-do", fixedNow))

	require.NoError(t, repo.DeleteWorkerRegistrations(ctx, "tenantCreation", "realm-svc", []string{"createRealm"}))
	// nothing to delete without steps
	require.NoError(t, repo.DeleteWorkerRegistrations(ctx, "tenantCreation", "realm-svc", nil))
	require.NoError(t, repo.SaveWorkerRegistration(ctx, &domain.WorkerRegistration{
		OrchestrationName: "tenantCreation",
		StepName:          "createRealm",
		ServiceName:       "realm-svc",
		TopicName:         "tenantCreation-createRealm-do",
		CreatedAt:         fixedNow,
	}))
	workers, err := repo.FindWorkers(ctx, "tenantCreation")

	require.NoError(t, err)
	require.Len(t, workers, 1)
	assert.Equal(t, "realm-svc", workers[0].ServiceName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTopologyRepository_FindByStatuses(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM orchestration_templates WHERE status = ANY\(\$1\) ORDER BY name`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(templateRowColumns))

	templates, err := NewPostgresTopologyRepository(db).FindByStatuses(context.Background(),
		domain.RegistrationStatusPending, domain.RegistrationStatusFailed)

	require.NoError(t, err)
	assert.Empty(t, templates)
	assert.NoError(t, mock.ExpectationsWereMet())
}
