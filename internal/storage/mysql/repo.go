package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"hotel_bookings/internal/domain"
)

// MaxListLimit caps ListPredictions.
const MaxListLimit = 500

func valJSON(b []byte) any {
	if len(b) == 0 {
		return "{}"
	}
	return string(b)
}

// Repo is the prediction audit log.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) InsertPrediction(ctx context.Context, p domain.Prediction) error {
	_, err := r.db.ExecContext(ctx, insertPredictionSQL,
		p.ID,
		p.Label,
		p.ProbNotCanceled,
		p.ProbCanceled,
		valJSON(p.Input),
		p.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert prediction %s: %w", p.ID, err)
	}
	return nil
}

func (r *Repo) ListPredictions(ctx context.Context, limit int) (domain.PredictionsPage, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	rows, err := r.db.QueryContext(ctx, listPredictionsSQL, limit)
	if err != nil {
		return domain.PredictionsPage{}, err
	}
	defer rows.Close()

	out := domain.PredictionsPage{Items: []domain.Prediction{}}
	for rows.Next() {
		var p domain.Prediction
		var input []byte
		if err := rows.Scan(&p.ID, &p.Label, &p.ProbNotCanceled, &p.ProbCanceled, &input, &p.CreatedAt); err != nil {
			return domain.PredictionsPage{}, err
		}
		p.Input = input
		out.Items = append(out.Items, p)
	}
	return out, rows.Err()
}
