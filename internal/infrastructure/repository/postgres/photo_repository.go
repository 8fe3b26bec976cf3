package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/suniel12/insightpic/internal/core/domain"
)

type PhotoRepository struct {
	db *sql.DB
}

func NewPhotoRepository(db *sql.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *PhotoRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS photos (
	id TEXT PRIMARY KEY,
	asset_identifier TEXT NOT NULL UNIQUE,
	metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION,
	technical_quality DOUBLE PRECISION,
	face_quality DOUBLE PRECISION,
	overall_score DOUBLE PRECISION,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_photos_overall_score ON photos(overall_score);
CREATE INDEX IF NOT EXISTS idx_photos_created_at ON photos(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// SavePhoto upserts the photo row. Score columns stay NULL until a scoring
// pass succeeds; a failed photo never persists a partial score.
func (r *PhotoRepository) SavePhoto(ctx context.Context, photo domain.Photo) error {
	metaJSON, err := json.Marshal(photo.Metadata)
	if err != nil {
		return fmt.Errorf("marshal photo metadata: %w", err)
	}

	var lat, lon *float64
	if photo.Location != nil {
		lat = &photo.Location.Latitude
		lon = &photo.Location.Longitude
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO photos (
	id, asset_identifier, metadata, latitude, longitude, technical_quality, face_quality, overall_score, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
	asset_identifier = EXCLUDED.asset_identifier,
	metadata = EXCLUDED.metadata,
	latitude = EXCLUDED.latitude,
	longitude = EXCLUDED.longitude,
	technical_quality = EXCLUDED.technical_quality,
	face_quality = EXCLUDED.face_quality,
	overall_score = EXCLUDED.overall_score,
	updated_at = EXCLUDED.updated_at
`,
		photo.ID, photo.AssetIdentifier, metaJSON, lat, lon,
		photo.TechnicalQuality, photo.FaceQuality, photo.OverallScore,
		photo.CreatedAt, photo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert photo: %w", err)
	}
	return nil
}

func (r *PhotoRepository) LoadPhoto(ctx context.Context, id string) (*domain.Photo, error) {
	row := r.db.QueryRowContext(ctx, photoSelect+` WHERE id = $1`, id)

	photo, err := scanPhoto(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrPhotoNotFound, "load photo", fmt.Errorf("id %s", id))
		}
		return nil, err
	}
	return photo, nil
}

func (r *PhotoRepository) LoadPhotos(ctx context.Context) ([]domain.Photo, error) {
	rows, err := r.db.QueryContext(ctx, photoSelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	defer rows.Close()

	return collectPhotos(rows)
}

func (r *PhotoRepository) LoadPhotosWithoutScores(ctx context.Context) ([]domain.Photo, error) {
	rows, err := r.db.QueryContext(ctx, photoSelect+` WHERE overall_score IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query unscored photos: %w", err)
	}
	defer rows.Close()

	return collectPhotos(rows)
}

const photoSelect = `
SELECT id, asset_identifier, metadata, latitude, longitude, technical_quality, face_quality, overall_score, created_at, updated_at
FROM photos`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row rowScanner) (*domain.Photo, error) {
	var photo domain.Photo
	var metaRaw []byte
	var lat, lon sql.NullFloat64

	err := row.Scan(
		&photo.ID, &photo.AssetIdentifier, &metaRaw, &lat, &lon,
		&photo.TechnicalQuality, &photo.FaceQuality, &photo.OverallScore,
		&photo.CreatedAt, &photo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(metaRaw, &photo.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal photo metadata: %w", err)
	}
	if lat.Valid && lon.Valid {
		photo.Location = &domain.Location{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	return &photo, nil
}

func collectPhotos(rows *sql.Rows) ([]domain.Photo, error) {
	var photos []domain.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, *photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}
	return photos, nil
}
