package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/suniel12/insightpic/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*PhotoRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &PhotoRepository{db: db}, mock, func() { _ = db.Close() }
}

func photoColumns() []string {
	return []string{
		"id", "asset_identifier", "metadata", "latitude", "longitude",
		"technical_quality", "face_quality", "overall_score", "created_at", "updated_at",
	}
}

func TestLoadPhotoReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, asset_identifier, metadata").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.LoadPhoto(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrPhotoNotFound) {
		t.Fatalf("expected ErrPhotoNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLoadPhotoScansScoresAndLocation(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(photoColumns()).AddRow(
		"p1", "2024/beach.jpg", []byte(`{"width":4000,"height":3000}`),
		59.437, 24.7536, 0.8, 0.7, 0.75, now, now,
	)
	mock.ExpectQuery("SELECT id, asset_identifier, metadata").
		WithArgs("p1").
		WillReturnRows(rows)

	photo, err := repo.LoadPhoto(context.Background(), "p1")
	if err != nil {
		t.Fatalf("LoadPhoto: %v", err)
	}
	if photo.Metadata.Width != 4000 || photo.Metadata.Height != 3000 {
		t.Fatalf("unexpected metadata %+v", photo.Metadata)
	}
	if photo.Location == nil || photo.Location.Latitude != 59.437 {
		t.Fatalf("unexpected location %+v", photo.Location)
	}
	if photo.OverallScore == nil || *photo.OverallScore != 0.75 {
		t.Fatalf("unexpected overall score %+v", photo.OverallScore)
	}
	if !photo.IsScored() {
		t.Fatalf("expected scored photo")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLoadPhotosWithoutScoresFiltersNullOverall(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(photoColumns()).AddRow(
		"p2", "2024/raw.jpg", []byte(`{"width":100,"height":100}`),
		nil, nil, nil, nil, nil, now, now,
	)
	mock.ExpectQuery("WHERE overall_score IS NULL").
		WillReturnRows(rows)

	photos, err := repo.LoadPhotosWithoutScores(context.Background())
	if err != nil {
		t.Fatalf("LoadPhotosWithoutScores: %v", err)
	}
	if len(photos) != 1 {
		t.Fatalf("expected 1 photo, got %d", len(photos))
	}
	if photos[0].IsScored() {
		t.Fatalf("expected unscored photo")
	}
	if photos[0].Location != nil {
		t.Fatalf("expected nil location, got %+v", photos[0].Location)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSavePhotoUpserts(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO photos").
		WithArgs("p3", "2024/cafe.jpg", sqlmock.AnyArg(), nil, nil,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	score := 0.6
	photo := domain.Photo{
		ID:              "p3",
		AssetIdentifier: "2024/cafe.jpg",
		Metadata:        domain.PhotoMetadata{Width: 800, Height: 600},
		OverallScore:    &score,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	if err := repo.SavePhoto(context.Background(), photo); err != nil {
		t.Fatalf("SavePhoto: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
