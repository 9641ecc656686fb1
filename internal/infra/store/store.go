package store

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"worldquiz/internal/domain"
	"worldquiz/internal/infra/postgres"
	"worldquiz/internal/infra/sqlite"
	"worldquiz/internal/infra/store/migrations"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// insertChunkSize keeps each INSERT well under SQLite's bound-variable limit.
	insertChunkSize = 250
)

// Store is the only component that reads or writes the countries, quizzes and
// results tables.
type Store struct {
	db  *bun.DB
	now func() time.Time
}

// New wraps an open handle. The schema is not touched until InitializeSchema.
func New(db *bun.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Open connects to the configured backend. An empty driver means SQLite.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var (
		db  *bun.DB
		err error
	)
	switch driver {
	case "", DriverSQLite:
		db, err = sqlite.OpenDB(dsn)
	case DriverPostgres:
		db, err = postgres.OpenDB(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// InitializeSchema applies pending migrations. Safe to call on every start.
func (s *Store) InitializeSchema(ctx context.Context) error {
	migrator := migrate.NewMigrator(s.db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return domain.WriteError("init migrations", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return domain.WriteError("migrate", err)
	}
	if group.IsZero() {
		glog.V(2).Infof("schema up to date")
		return nil
	}
	glog.Infof("schema migrated to %s", group)
	return nil
}

// ResetSchema drops every table by rolling back all migration groups, then
// migrates again from scratch.
func (s *Store) ResetSchema(ctx context.Context) error {
	migrator := migrate.NewMigrator(s.db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return domain.WriteError("init migrations", err)
	}

	for {
		group, err := migrator.Rollback(ctx)
		if err != nil {
			return domain.WriteError("rollback", err)
		}
		if group.IsZero() {
			break
		}
		glog.Infof("rolled back %s", group)
	}
	return s.InitializeSchema(ctx)
}

// HasReferenceData reports whether any reference row exists; callers import
// only when it is false.
func (s *Store) HasReferenceData(ctx context.Context) (bool, error) {
	exists, err := s.db.NewSelect().Model((*countryRow)(nil)).Exists(ctx)
	if err != nil {
		return false, domain.ReadError("check reference data", err)
	}
	return exists, nil
}

func (s *Store) CountReferenceEntries(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().Model((*countryRow)(nil)).Count(ctx)
	if err != nil {
		return 0, domain.ReadError("count reference entries", err)
	}
	return count, nil
}

// BulkInsertReferenceEntries writes all entries in one transaction; on error
// nothing is visible.
func (s *Store) BulkInsertReferenceEntries(ctx context.Context, entries []domain.ReferencePair) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([]countryRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, countryRow{Country: entry.Name, Continent: entry.Group})
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for start := 0; start < len(rows); start += insertChunkSize {
			chunk := rows[start:min(start+insertChunkSize, len(rows))]
			if _, err := tx.NewInsert().Model(&chunk).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.WriteError("bulk insert reference entries", err)
	}

	glog.V(2).Infof("inserted %d reference entries", len(rows))
	return nil
}

// SampleRandomReferenceEntries returns up to count entries drawn uniformly
// without replacement, keyed by name. Duplicate names collapse and the last
// sampled row wins.
func (s *Store) SampleRandomReferenceEntries(ctx context.Context, count int) (map[string]string, error) {
	pairs := make(map[string]string)
	if count <= 0 {
		return pairs, nil
	}

	var rows []countryRow
	err := s.db.NewSelect().
		Model(&rows).
		Column("country", "continent").
		OrderExpr("RANDOM()").
		Limit(count).
		Scan(ctx)
	if err != nil {
		return nil, domain.ReadError("sample reference entries", err)
	}

	for _, row := range rows {
		pairs[row.Country] = row.Continent
	}
	return pairs, nil
}

// RecordQuizResult creates a quiz session and its result in one transaction,
// both stamped with the same time.
func (s *Store) RecordQuizResult(ctx context.Context, label string, score, total int) (domain.QuizResult, error) {
	if score < 0 || score > total {
		return domain.QuizResult{}, errors.Wrapf(domain.ErrInvalidScore, "score %d of %d", score, total)
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	date := now.Format(domain.DateLayout)

	quiz := &quizRow{Title: label, Date: date}
	result := &resultRow{Score: score, Total: total, Date: date}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(quiz).Exec(ctx); err != nil {
			return err
		}
		result.QuizID = quiz.ID
		_, err := tx.NewInsert().Model(result).Exec(ctx)
		return err
	})
	if err != nil {
		return domain.QuizResult{}, domain.WriteError("record quiz result", err)
	}

	glog.V(2).Infof("recorded quiz %d score %d/%d", quiz.ID, score, total)
	return domain.QuizResult{
		ID:        result.ID,
		SessionID: quiz.ID,
		Score:     score,
		Total:     total,
		Date:      now,
	}, nil
}

// ListAllResults returns every result, most recent first.
func (s *Store) ListAllResults(ctx context.Context) ([]domain.ResultSummary, error) {
	var rows []resultRow
	err := s.db.NewSelect().
		Model(&rows).
		Column("score", "total", "date").
		OrderExpr("date DESC, id DESC").
		Scan(ctx)
	if err != nil {
		return nil, domain.ReadError("list results", err)
	}

	results := make([]domain.ResultSummary, 0, len(rows))
	for _, row := range rows {
		date, err := time.ParseInLocation(domain.DateLayout, row.Date, time.UTC)
		if err != nil {
			return nil, domain.ReadError("parse result date", err)
		}
		results = append(results, domain.ResultSummary{
			Score: row.Score,
			Total: row.Total,
			Date:  date,
		})
	}
	return results, nil
}
