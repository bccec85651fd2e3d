package infrastructure

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMigrate(t *testing.T) {
	t.Run("applies the schema", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS orchestration_templates`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := Migrate(context.Background(), db, zap.NewNop())

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stops on failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`CREATE TABLE`).WillReturnError(errors.New("permission denied"))

		err := Migrate(context.Background(), db, zap.NewNop())

		assert.ErrorContains(t, err, "001_init.sql")
	})
}
