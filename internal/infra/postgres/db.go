package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// OpenDB connects to Postgres at dsn and returns a bun handle using the
// Postgres dialect.
func OpenDB(ctx context.Context, dsn string) (*bun.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	glog.V(2).Infof("postgres database connected")
	return bun.NewDB(sqldb, pgdialect.New()), nil
}
