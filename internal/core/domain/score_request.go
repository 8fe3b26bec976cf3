package domain

// ScoreRequest is a queued batch-scoring job. An empty PhotoIDs list means
// "all photos without a persisted score".
type ScoreRequest struct {
	RequestID string   `json:"request_id"`
	PhotoIDs  []string `json:"photo_ids,omitempty"`
	BatchSize int      `json:"batch_size,omitempty"`
}
