package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/upb/hotel-listing/migrations"
	"go.uber.org/zap"
)

// MigrationDirection selects what Migrate does.
type MigrationDirection string

const (
	MigrateUp     MigrationDirection = "up"
	MigrateDown   MigrationDirection = "down"
	MigrateStatus MigrationDirection = "status"
)

type gooseZapLogger struct {
	logger *zap.SugaredLogger
}

var _ goose.Logger = (*gooseZapLogger)(nil)

func (l *gooseZapLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Fatalf(format, v...)
}

func (l *gooseZapLogger) Printf(format string, v ...interface{}) {
	l.logger.Infof(format, v...)
}

// Migrate applies the embedded goose migrations.
func (db *DB) Migrate(ctx context.Context, direction MigrationDirection) error {
	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	goose.SetLogger(&gooseZapLogger{logger: db.logger.Sugar()})

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	db.logger.Info("running database migrations", zap.String("direction", string(direction)))

	var err error
	switch direction {
	case MigrateUp:
		err = goose.UpContext(ctx, db.DB, ".")
	case MigrateDown:
		err = goose.DownContext(ctx, db.DB, ".")
	case MigrateStatus:
		err = goose.StatusContext(ctx, db.DB, ".")
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", direction, err)
	}

	db.logger.Info("migrations completed", zap.String("direction", string(direction)))
	return nil
}
