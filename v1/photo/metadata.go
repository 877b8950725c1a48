package photo

import "time"

// Metadata holds the optional EXIF fields of an image. A nil field means the
// tag was missing or could not be converted.
type Metadata struct {
	DateTaken    *time.Time
	CameraMake   *string
	CameraModel  *string
	LensModel    *string
	ISO          *int
	Aperture     *float64
	ShutterSpeed *string
	FocalLength  *float64
	FlashFired   *bool
	GPSLatitude  *float64
	GPSLongitude *float64
	GPSAltitude  *float64
}

// Flash labels as stored in the flash column.
const (
	FlashFired    = "fired"
	FlashNotFired = "not fired"
)

// FlashLabel renders the flash state the way it is persisted.
func FlashLabel(fired bool) string {
	if fired {
		return FlashFired
	}
	return FlashNotFired
}
