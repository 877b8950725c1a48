package photostore

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm/clause"

	"github.com/mypictures/photoindex/v1/photo"
	"github.com/mypictures/photoindex/v1/postgres"
)

// Nearest returns up to q.Limit records ordered by ascending cosine distance
// to q.Embedding, i.e. most similar first. Date bounds are inclusive and
// applied before ranking. No similarity threshold is applied here.
func (r *Repository) Nearest(ctx context.Context, q photo.Query) ([]photo.Hit, error) {
	if q.Limit <= 0 {
		return nil, fmt.Errorf("nearest: limit must be positive, got %d", q.Limit)
	}
	if len(q.Embedding) == 0 {
		return nil, fmt.Errorf("nearest: empty query embedding")
	}

	vec := pgvector.NewVector(q.Embedding)

	db := r.pg.DB().WithContext(ctx).
		Model(&photo.Record{}).
		Select("file_path, file_name, date_taken, camera_model, gps_latitude, gps_longitude, "+
			"1 - (embedding <=> ?) AS similarity", vec).
		Where("embedding IS NOT NULL")

	if q.After != nil {
		db = db.Where("date_taken >= ?", q.After.UTC())
	}
	if q.Before != nil {
		db = db.Where("date_taken <= ?", q.Before.UTC())
	}

	var hits []photo.Hit
	err := db.
		Clauses(clause.OrderBy{Expression: clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{vec}}}).
		Limit(q.Limit).
		Scan(&hits).Error
	if err != nil {
		return nil, fmt.Errorf("nearest: %w", postgres.TranslateError(err))
	}
	return hits, nil
}
