package photo

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Table is the table every Record is stored in.
const Table = "photos"

// Record is one indexed image, keyed by its absolute path.
type Record struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	FilePath     string     `gorm:"column:file_path;uniqueIndex;not null"`
	FileName     string     `gorm:"column:file_name;not null"`
	FileSize     int64      `gorm:"column:file_size"`
	FileHash     *string    `gorm:"column:file_hash"`
	Width        int        `gorm:"column:width"`
	Height       int        `gorm:"column:height"`
	Format       string     `gorm:"column:format"`
	DateTaken    *time.Time `gorm:"column:date_taken"`
	DateModified time.Time  `gorm:"column:date_modified"`
	DateIndexed  time.Time  `gorm:"column:date_indexed"`
	CameraMake   *string    `gorm:"column:camera_make"`
	CameraModel  *string    `gorm:"column:camera_model"`
	LensModel    *string    `gorm:"column:lens_model"`
	ISO          *int       `gorm:"column:iso"`
	Aperture     *float64   `gorm:"column:aperture"`
	ShutterSpeed *string    `gorm:"column:shutter_speed"`
	FocalLength  *float64   `gorm:"column:focal_length"`
	Flash        *string    `gorm:"column:flash"`
	GPSLatitude  *float64   `gorm:"column:gps_latitude"`
	GPSLongitude *float64   `gorm:"column:gps_longitude"`
	GPSAltitude  *float64   `gorm:"column:gps_altitude"`

	Embedding pgvector.Vector `gorm:"column:embedding;type:vector"`
}

// TableName implements gorm's tabler interface.
func (Record) TableName() string {
	return Table
}

// MutableColumns lists every column rewritten when a path is indexed again.
// id and file_path identify the row and are never updated.
var MutableColumns = []string{
	"file_name", "file_size", "file_hash", "width", "height", "format",
	"date_taken", "date_modified", "date_indexed",
	"camera_make", "camera_model", "lens_model",
	"iso", "aperture", "shutter_speed", "focal_length", "flash",
	"gps_latitude", "gps_longitude", "gps_altitude",
	"embedding",
}

// ApplyMetadata copies the extracted EXIF fields onto r. Fields absent from
// m are cleared so a re-index never keeps stale values.
func (r *Record) ApplyMetadata(m Metadata) {
	r.DateTaken = m.DateTaken
	r.CameraMake = m.CameraMake
	r.CameraModel = m.CameraModel
	r.LensModel = m.LensModel
	r.ISO = m.ISO
	r.Aperture = m.Aperture
	r.ShutterSpeed = m.ShutterSpeed
	r.FocalLength = m.FocalLength
	r.Flash = nil
	if m.FlashFired != nil {
		label := FlashLabel(*m.FlashFired)
		r.Flash = &label
	}
	r.GPSLatitude = m.GPSLatitude
	r.GPSLongitude = m.GPSLongitude
	r.GPSAltitude = m.GPSAltitude
}
