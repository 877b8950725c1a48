package photo

import "time"

// Query asks for the K records nearest to Embedding, optionally bounded by
// capture date. Both bounds are inclusive; records without a capture date
// never match a bounded query.
type Query struct {
	Embedding []float32
	Limit     int
	After     *time.Time
	Before    *time.Time
}

// Hit is one ranked search result. Similarity is 1 minus the cosine
// distance, so identical directions score 1.
type Hit struct {
	FilePath     string     `gorm:"column:file_path" json:"file_path"`
	FileName     string     `gorm:"column:file_name" json:"file_name"`
	DateTaken    *time.Time `gorm:"column:date_taken" json:"date_taken,omitempty"`
	CameraModel  *string    `gorm:"column:camera_model" json:"camera_model,omitempty"`
	GPSLatitude  *float64   `gorm:"column:gps_latitude" json:"gps_latitude,omitempty"`
	GPSLongitude *float64   `gorm:"column:gps_longitude" json:"gps_longitude,omitempty"`
	Similarity   float64    `gorm:"column:similarity" json:"similarity"`
}
