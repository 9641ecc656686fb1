package store

import "github.com/uptrace/bun"

type countryRow struct {
	bun.BaseModel `bun:"table:countries,alias:c"`

	ID        int64  `bun:"id,pk,autoincrement"`
	Country   string `bun:"country,notnull"`
	Continent string `bun:"continent,notnull"`
}

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:q"`

	ID    int64  `bun:"id,pk,autoincrement"`
	Title string `bun:"title,notnull"`
	Date  string `bun:"date,notnull"`
}

type resultRow struct {
	bun.BaseModel `bun:"table:results,alias:r"`

	ID     int64  `bun:"id,pk,autoincrement"`
	QuizID int64  `bun:"quiz_id,notnull"`
	Score  int    `bun:"score,notnull"`
	Total  int    `bun:"total,notnull"`
	Date   string `bun:"date,notnull"`
}
