package infrastructure

import (
	"context"
	"embed"
	"io/fs"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema files in name order. Every statement
// is idempotent so the whole set runs on each start.
func Migrate(ctx context.Context, db *sqlx.DB, log *zap.Logger) error {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return errors.Wrap(err, "failed to list migrations")
	}
	sort.Strings(files)

	for _, file := range files {
		script, err := migrations.ReadFile(file)
		if err != nil {
			return errors.Wrapf(err, "failed to read migration %s", file)
		}
		if _, err := db.ExecContext(ctx, string(script)); err != nil {
			return errors.Wrapf(err, "failed to apply migration %s", file)
		}
		log.Info("migration applied", zap.String("file", file))
	}
	return nil
}
