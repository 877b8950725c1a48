package photostore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/mypictures/photoindex/v1/logger"
	"github.com/mypictures/photoindex/v1/photo"
	"github.com/mypictures/photoindex/v1/postgres"
)

// ErrStoreWrite marks a batch that the database rejected. Nothing from the
// batch was committed, but the connection is still usable.
var ErrStoreWrite = errors.New("store write failure")

// Repository is the photos table.
type Repository struct {
	pg  *postgres.Postgres
	log logger.Logger
}

// NewRepository returns a Repository on top of pg.
func NewRepository(pg *postgres.Postgres, log logger.Logger) *Repository {
	return &Repository{pg: pg, log: log}
}

// LoadKnown returns every stored path and every non-null stored hash.
func (r *Repository) LoadKnown(ctx context.Context) (paths []string, hashes []string, err error) {
	rows, err := r.pg.DB().WithContext(ctx).
		Model(&photo.Record{}).
		Select("file_path", "file_hash").
		Rows()
	if err != nil {
		return nil, nil, fmt.Errorf("load known photos: %w", postgres.TranslateError(err))
	}
	defer rows.Close()

	for rows.Next() {
		var path string
		var hash *string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, nil, fmt.Errorf("scan known photo: %w", postgres.TranslateError(err))
		}
		paths = append(paths, path)
		if hash != nil && *hash != "" {
			hashes = append(hashes, *hash)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("load known photos: %w", postgres.TranslateError(err))
	}

	return paths, hashes, nil
}

// upsertClause overwrites every mutable column when the path already exists.
var upsertClause = clause.OnConflict{
	Columns:   []clause.Column{{Name: "file_path"}},
	DoUpdates: clause.AssignmentColumns(photo.MutableColumns),
}

// UpsertBatch writes records in a single transaction: either every record is
// inserted or overwritten, or none is. Connectivity problems are reported as
// postgres.ErrConnectivity, anything else as ErrStoreWrite.
func (r *Repository) UpsertBatch(ctx context.Context, records []photo.Record) error {
	if len(records) == 0 {
		return nil
	}

	err := r.pg.Transaction(ctx, func(tx *postgres.Postgres) error {
		for i := range records {
			if err := tx.DB().Clauses(upsertClause).Create(&records[i]).Error; err != nil {
				return fmt.Errorf("upsert %s: %w", records[i].FilePath, err)
			}
		}
		return nil
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, postgres.ErrConnectivity) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("upsert batch of %d: %w", len(records), err)
	}
	return fmt.Errorf("upsert batch of %d: %w: %w", len(records), ErrStoreWrite, err)
}

// Count returns the number of stored records.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pg.DB().WithContext(ctx).Model(&photo.Record{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count photos: %w", postgres.TranslateError(err))
	}
	return n, nil
}

// Get returns the record stored for path.
func (r *Repository) Get(ctx context.Context, path string) (*photo.Record, error) {
	var rec photo.Record
	err := r.pg.DB().WithContext(ctx).Where("file_path = ?", path).Take(&rec).Error
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, postgres.TranslateError(err))
	}
	return &rec, nil
}
