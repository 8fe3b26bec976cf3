package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/suniel12/insightpic/internal/core/domain"
	"github.com/suniel12/insightpic/internal/core/ports"
	"github.com/suniel12/insightpic/internal/core/usecase"
	"github.com/suniel12/insightpic/internal/observability/metrics"
)

type Router struct {
	repo       ports.PhotoRepository
	batch      *usecase.BatchScoreUseCase
	screenshot ports.ScreenshotDetector
	queue      ports.ScoreQueue

	serviceName string
	httpMetrics *metrics.HTTPServerMetrics
}

func NewRouter(
	repo ports.PhotoRepository,
	batch *usecase.BatchScoreUseCase,
	screenshot ports.ScreenshotDetector,
	queue ports.ScoreQueue,
	serviceName string,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		repo:        repo,
		batch:       batch,
		screenshot:  screenshot,
		queue:       queue,
		serviceName: serviceName,
		httpMetrics: httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", rt.healthz)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/photos/unscored", rt.listUnscored)
		r.Get("/photos/{photoID}/score", rt.getScore)
		r.Post("/photos/{photoID}/score", rt.scorePhoto)
		r.Get("/photos/{photoID}/screenshot", rt.screenshotVerdict)
		r.Post("/scoring/batch", rt.enqueueBatch)
	})

	var handler http.Handler = r
	if rt.httpMetrics != nil {
		handler = rt.httpMetrics.Middleware(rt.serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) listUnscored(w http.ResponseWriter, r *http.Request) {
	photos, err := rt.repo.LoadPhotosWithoutScores(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if photos == nil {
		photos = []domain.Photo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"photos": photos})
}

func (rt *Router) getScore(w http.ResponseWriter, r *http.Request) {
	photo, err := rt.repo.LoadPhoto(r.Context(), chi.URLParam(r, "photoID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !photo.IsScored() {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "photo has no persisted score"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"photo_id":          photo.ID,
		"technical_quality": photo.TechnicalQuality,
		"face_quality":      photo.FaceQuality,
		"overall_score":     photo.OverallScore,
		"updated_at":        photo.UpdatedAt,
	})
}

func (rt *Router) scorePhoto(w http.ResponseWriter, r *http.Request) {
	photo, err := rt.repo.LoadPhoto(r.Context(), chi.URLParam(r, "photoID"))
	if err != nil {
		writeError(w, err)
		return
	}

	score, err := rt.batch.ScorePhoto(r.Context(), *photo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (rt *Router) screenshotVerdict(w http.ResponseWriter, r *http.Request) {
	photo, err := rt.repo.LoadPhoto(r.Context(), chi.URLParam(r, "photoID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.screenshot.Analyze(*photo))
}

func (rt *Router) enqueueBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhotoIDs  []string `json:"photo_ids"`
		BatchSize int      `json:"batch_size"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
	}
	if req.BatchSize < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "batch_size must not be negative"})
		return
	}

	scoreReq := domain.ScoreRequest{
		RequestID: uuid.NewString(),
		PhotoIDs:  req.PhotoIDs,
		BatchSize: req.BatchSize,
	}
	if err := rt.queue.PublishScoreRequest(r.Context(), scoreReq); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, scoreReq)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
