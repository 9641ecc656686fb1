package sqlite

import (
	"database/sql"
	"strings"

	"github.com/golang/glog"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// DefaultPath is used when no database path is configured.
const DefaultPath = "worldquiz.db"

// OpenDB opens (creating if needed) the SQLite database at path with foreign
// keys enforced. The pool is limited to one connection so writers serialize.
func OpenDB(path string) (*bun.DB, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}

	sqldb, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", path)
	}
	sqldb.SetMaxOpenConns(1)

	if err := sqldb.Ping(); err != nil {
		_ = sqldb.Close()
		return nil, errors.Wrapf(err, "ping sqlite %s", path)
	}

	glog.V(2).Infof("sqlite database opened at %s", path)
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func dsn(path string) string {
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}
