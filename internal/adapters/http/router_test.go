package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/suniel12/insightpic/internal/core/domain"
	"github.com/suniel12/insightpic/internal/core/usecase"
)

type repoFake struct {
	photos   map[string]domain.Photo
	loadErr  error
	saveErr  error
	unscored []domain.Photo
}

func (f *repoFake) LoadPhoto(_ context.Context, id string) (*domain.Photo, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	photo, ok := f.photos[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrPhotoNotFound, "load photo", errors.New("id="+id))
	}
	return &photo, nil
}

func (f *repoFake) SavePhoto(_ context.Context, photo domain.Photo) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.photos == nil {
		f.photos = map[string]domain.Photo{}
	}
	f.photos[photo.ID] = photo
	return nil
}

func (f *repoFake) LoadPhotos(context.Context) ([]domain.Photo, error) {
	out := make([]domain.Photo, 0, len(f.photos))
	for _, p := range f.photos {
		out = append(out, p)
	}
	return out, nil
}

func (f *repoFake) LoadPhotosWithoutScores(context.Context) ([]domain.Photo, error) {
	return f.unscored, nil
}

type imageFake struct{}

func (imageFake) LoadFullResolutionImage(context.Context, string) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 8, 8)), nil
}

type analyzerFake struct{}

func (analyzerFake) Analyze(_ context.Context, photo domain.Photo, _ image.Image) (domain.AnalysisResult, error) {
	return domain.AnalysisResult{PhotoID: photo.ID, Sharpness: 0.5, Exposure: 0.5, Composition: 0.5}, nil
}

type scorerFake struct{}

func (scorerFake) Score(_ context.Context, photo domain.Photo, _ domain.AnalysisResult) (domain.PhotoScore, error) {
	return domain.PhotoScore{PhotoID: photo.ID, Overall: 0.5, PhotoType: domain.PhotoTypeOther}, nil
}

type queueFake struct {
	published []domain.ScoreRequest
	err       error
}

func (f *queueFake) PublishScoreRequest(_ context.Context, req domain.ScoreRequest) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, req)
	return nil
}

func (f *queueFake) SubscribeScoreRequests(context.Context, func(context.Context, domain.ScoreRequest) error) error {
	return nil
}

func newTestRouter(repo *repoFake, queue *queueFake) http.Handler {
	batch := usecase.NewBatchScoreUseCase(analyzerFake{}, scorerFake{}, imageFake{}, repo, nil)
	return NewRouter(repo, batch, usecase.NewScreenshotHeuristic(), queue, "api-test", nil).Handler()
}

func scoredPhoto(id string) domain.Photo {
	score := 0.8
	return domain.Photo{
		ID:              id,
		AssetIdentifier: id + ".jpg",
		Metadata:        domain.PhotoMetadata{Width: 4000, Height: 3000},
		OverallScore:    &score,
		UpdatedAt:       time.Now().UTC(),
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(&repoFake{}, &queueFake{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestGetScoreReturns404ForUnknownPhoto(t *testing.T) {
	handler := newTestRouter(&repoFake{}, &queueFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/photos/missing/score", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestGetScoreReturns404ForUnscoredPhoto(t *testing.T) {
	photo := scoredPhoto("p1")
	photo.OverallScore = nil
	handler := newTestRouter(&repoFake{photos: map[string]domain.Photo{"p1": photo}}, &queueFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/photos/p1/score", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestGetScoreReturnsPersistedScore(t *testing.T) {
	handler := newTestRouter(&repoFake{photos: map[string]domain.Photo{"p1": scoredPhoto("p1")}}, &queueFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/photos/p1/score", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var body struct {
		PhotoID      string   `json:"photo_id"`
		OverallScore *float64 `json:"overall_score"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.PhotoID != "p1" || body.OverallScore == nil || *body.OverallScore != 0.8 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestScorePhotoScoresAndPersists(t *testing.T) {
	photo := scoredPhoto("p1")
	photo.OverallScore = nil
	repo := &repoFake{photos: map[string]domain.Photo{"p1": photo}}
	handler := newTestRouter(repo, &queueFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/photos/p1/score", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	saved := repo.photos["p1"]
	if !saved.IsScored() {
		t.Fatalf("expected persisted score after sync scoring")
	}
}

func TestScreenshotVerdict(t *testing.T) {
	photo := domain.Photo{
		ID:              "p1",
		AssetIdentifier: "IMG_1234_Screenshot.png",
		Metadata:        domain.PhotoMetadata{Width: 1170, Height: 2532},
	}
	handler := newTestRouter(&repoFake{photos: map[string]domain.Photo{"p1": photo}}, &queueFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/photos/p1/screenshot", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var verdict domain.ScreenshotAnalysis
	if err := json.NewDecoder(res.Body).Decode(&verdict); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	if !verdict.IsLikelyScreenshot {
		t.Fatalf("expected screenshot verdict, got %+v", verdict)
	}
}

func TestEnqueueBatchPublishesRequest(t *testing.T) {
	queue := &queueFake{}
	handler := newTestRouter(&repoFake{}, queue)

	payload, _ := json.Marshal(map[string]any{"photo_ids": []string{"p1", "p2"}, "batch_size": 10})
	req := httptest.NewRequest(http.MethodPost, "/v1/scoring/batch", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", res.Code)
	}
	if len(queue.published) != 1 {
		t.Fatalf("expected one published request, got %d", len(queue.published))
	}
	if got := queue.published[0]; len(got.PhotoIDs) != 2 || got.BatchSize != 10 || got.RequestID == "" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestEnqueueBatchMapsTemporaryTo503(t *testing.T) {
	queue := &queueFake{err: domain.WrapError(domain.ErrTemporary, "nats publish", errors.New("no servers"))}
	handler := newTestRouter(&repoFake{}, queue)

	req := httptest.NewRequest(http.MethodPost, "/v1/scoring/batch", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestListUnscored(t *testing.T) {
	repo := &repoFake{unscored: []domain.Photo{{ID: "p9", AssetIdentifier: "p9.jpg"}}}
	handler := newTestRouter(repo, &queueFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/photos/unscored", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var body struct {
		Photos []domain.Photo `json:"photos"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Photos) != 1 || body.Photos[0].ID != "p9" {
		t.Fatalf("unexpected photos %+v", body.Photos)
	}
}
