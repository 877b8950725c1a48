package photostore

import (
	"context"
	"fmt"

	"github.com/mypictures/photoindex/v1/postgres"
)

// MaxIndexedDimension is the largest vector the HNSW index accepts.
const MaxIndexedDimension = 2000

const embeddingIndex = "photos_embedding_idx"

func schemaStatements(dim int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS photos (
			id            SERIAL PRIMARY KEY,
			file_path     TEXT UNIQUE NOT NULL,
			file_name     TEXT NOT NULL,
			file_size     BIGINT,
			file_hash     TEXT,
			width         INTEGER,
			height        INTEGER,
			format        TEXT,
			date_taken    TIMESTAMPTZ,
			date_modified TIMESTAMPTZ,
			date_indexed  TIMESTAMPTZ DEFAULT NOW(),
			camera_make   TEXT,
			camera_model  TEXT,
			lens_model    TEXT,
			iso           INTEGER,
			aperture      REAL,
			shutter_speed TEXT,
			focal_length  REAL,
			flash         TEXT,
			gps_latitude  DOUBLE PRECISION,
			gps_longitude DOUBLE PRECISION,
			gps_altitude  DOUBLE PRECISION,
			embedding     vector(%d)
		)`, dim),
		`CREATE INDEX IF NOT EXISTS ` + embeddingIndex + ` ON photos USING hnsw (embedding vector_cosine_ops)`,
		`CREATE INDEX IF NOT EXISTS photos_hash_idx ON photos (file_hash)`,
		`CREATE INDEX IF NOT EXISTS photos_date_taken_idx ON photos (date_taken)`,
	}
}

func resizeStatements(dim int) []string {
	return []string{
		`DROP INDEX IF EXISTS ` + embeddingIndex,
		`DELETE FROM photos`,
		fmt.Sprintf(`ALTER TABLE photos ALTER COLUMN embedding TYPE vector(%d)`, dim),
		`CREATE INDEX ` + embeddingIndex + ` ON photos USING hnsw (embedding vector_cosine_ops)`,
	}
}

func validateDimension(dim int) error {
	if dim <= 0 || dim > MaxIndexedDimension {
		return fmt.Errorf("embedding dimension must be between 1 and %d, got %d", MaxIndexedDimension, dim)
	}
	return nil
}

// EnsureSchema creates the vector extension, the photos table with an
// embedding column of dim dimensions, and its indexes. Existing objects are
// left untouched, so the column keeps its current dimension.
func (r *Repository) EnsureSchema(ctx context.Context, dim int) error {
	if err := validateDimension(dim); err != nil {
		return err
	}
	if err := r.execInTx(ctx, schemaStatements(dim)); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	r.log.Info("schema ready", nil, map[string]interface{}{"dimension": dim})
	return nil
}

// ResizeEmbedding changes the embedding column to dim dimensions. Every
// stored record is deleted, since vectors of another model are meaningless
// in the new space. The index drop, the delete, the column change and the
// index rebuild commit together or not at all.
func (r *Repository) ResizeEmbedding(ctx context.Context, dim int) error {
	if err := validateDimension(dim); err != nil {
		return err
	}

	before, err := r.Count(ctx)
	if err != nil {
		return err
	}

	if err := r.execInTx(ctx, resizeStatements(dim)); err != nil {
		return fmt.Errorf("resize embedding to %d: %w", dim, err)
	}

	r.log.Info("embedding column resized", nil, map[string]interface{}{
		"dimension":       dim,
		"deleted_records": before,
	})
	return nil
}

// EmbeddingDimension reads the declared dimension of the embedding column.
// It returns 0 when the column has no fixed dimension.
func (r *Repository) EmbeddingDimension(ctx context.Context) (int, error) {
	var typmod int
	err := r.pg.DB().WithContext(ctx).Raw(
		`SELECT atttypmod FROM pg_attribute
		 WHERE attrelid = 'photos'::regclass AND attname = 'embedding' AND NOT attisdropped`,
	).Scan(&typmod).Error
	if err != nil {
		return 0, fmt.Errorf("read embedding dimension: %w", postgres.TranslateError(err))
	}
	if typmod < 0 {
		return 0, nil
	}
	return typmod, nil
}

func (r *Repository) execInTx(ctx context.Context, statements []string) error {
	return r.pg.Transaction(ctx, func(tx *postgres.Postgres) error {
		for _, stmt := range statements {
			if err := tx.DB().Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
