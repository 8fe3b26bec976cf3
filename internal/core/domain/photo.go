package domain

import "time"

// PhotoType selects the weighting profile used for the final overall score.
type PhotoType string

const (
	PhotoTypePortrait  PhotoType = "portrait"
	PhotoTypeMultiFace PhotoType = "multi_face"
	PhotoTypeLandscape PhotoType = "landscape"
	PhotoTypeOther     PhotoType = "other"
)

// Location is a GPS coordinate attached to a photo at capture time.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PhotoMetadata carries capture metadata as recorded by the camera. All camera
// fields are optional: screenshots and imported images typically have none.
type PhotoMetadata struct {
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	CameraModel  *string  `json:"camera_model,omitempty"`
	FocalLength  *float64 `json:"focal_length,omitempty"`
	FNumber      *float64 `json:"f_number,omitempty"`
	ExposureTime *float64 `json:"exposure_time,omitempty"`
	ISO          *int     `json:"iso,omitempty"`
}

// HasCameraSettings reports whether any of the exposure-related fields are set.
func (m PhotoMetadata) HasCameraSettings() bool {
	return m.FocalLength != nil || m.FNumber != nil || m.ExposureTime != nil || m.ISO != nil
}

// AspectRatio returns width/height, or 0 for degenerate dimensions.
func (m PhotoMetadata) AspectRatio() float64 {
	if m.Width <= 0 || m.Height <= 0 {
		return 0
	}
	return float64(m.Width) / float64(m.Height)
}

// Photo is the persistence-owned record of a library photo. Scoring never
// mutates a Photo in place; updated copies are returned instead.
type Photo struct {
	ID               string         `json:"id"`
	AssetIdentifier  string         `json:"asset_identifier"`
	Metadata         PhotoMetadata  `json:"metadata"`
	Location         *Location      `json:"location,omitempty"`
	TechnicalQuality *float64       `json:"technical_quality,omitempty"`
	FaceQuality      *float64       `json:"face_quality,omitempty"`
	OverallScore     *float64       `json:"overall_score,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// WithScore returns a copy of the photo carrying the given score values.
func (p Photo) WithScore(score PhotoScore) Photo {
	out := p
	technical := score.Technical.Overall
	face := score.Faces.CompositeScore()
	overall := score.Overall
	out.TechnicalQuality = &technical
	out.FaceQuality = &face
	out.OverallScore = &overall
	out.UpdatedAt = time.Now().UTC()
	return out
}

// IsScored reports whether the photo has a persisted overall score.
func (p Photo) IsScored() bool {
	return p.OverallScore != nil
}
