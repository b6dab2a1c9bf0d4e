// Package repositories contains the PostgreSQL implementations of the
// domain repository contracts.
package repositories

import (
	"context"
	"database/sql"

	"github.com/tendergate/tendergate/internal/infrastructure/database/postgres"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
)

// queryExecutor abstracts sql.DB and sql.Tx so every repository method works
// inside or outside a transaction.
type queryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type baseRepo struct {
	conn *postgres.Connection
	tx   *sql.Tx
	log  logging.Logger
}

func (r *baseRepo) executor() queryExecutor {
	if r.tx != nil {
		return r.tx
	}
	return r.conn.DB()
}
