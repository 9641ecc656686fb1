package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

// Table shapes as of this migration; later schema changes get their own migration.
type country struct {
	bun.BaseModel `bun:"table:countries"`

	ID        int64  `bun:"id,pk,autoincrement"`
	Country   string `bun:"country,notnull"`
	Continent string `bun:"continent,notnull"`
}

type quiz struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID    int64  `bun:"id,pk,autoincrement"`
	Title string `bun:"title,notnull"`
	Date  string `bun:"date,notnull"`
}

type result struct {
	bun.BaseModel `bun:"table:results"`

	ID     int64  `bun:"id,pk,autoincrement"`
	QuizID int64  `bun:"quiz_id,notnull"`
	Score  int    `bun:"score,notnull"`
	Total  int    `bun:"total,notnull"`
	Date   string `bun:"date,notnull"`
}

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			for _, model := range []interface{}{(*country)(nil), (*quiz)(nil)} {
				if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
					return err
				}
			}
			if _, err := db.NewCreateTable().
				Model((*result)(nil)).
				IfNotExists().
				ForeignKey(`("quiz_id") REFERENCES "quizzes" ("id") ON DELETE CASCADE`).
				Exec(ctx); err != nil {
				return err
			}
			_, err := db.NewCreateIndex().
				Model((*result)(nil)).
				Index("results_date_idx").
				Column("date").
				IfNotExists().
				Exec(ctx)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			for _, model := range []interface{}{(*result)(nil), (*quiz)(nil), (*country)(nil)} {
				if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
