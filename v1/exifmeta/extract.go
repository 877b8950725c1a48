// Package exifmeta reads the EXIF fields photoindex stores alongside each
// image. Missing or malformed tags leave the corresponding field nil; only an
// absent or unreadable EXIF block is reported as ErrNoMetadata.
package exifmeta

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/mypictures/photoindex/v1/photo"
)

// ErrNoMetadata is returned by Decode when the content holds no readable EXIF.
var ErrNoMetadata = errors.New("no exif metadata")

// tagSource is satisfied by *exif.Exif.
type tagSource interface {
	Get(name exif.FieldName) (*tiff.Tag, error)
}

// Decode reads EXIF from r, which holds a whole JPEG, PNG, WebP or TIFF
// file. On failure it returns empty metadata together with the reason,
// which callers usually log at debug level and ignore.
//
// The EXIF directories are bounds-checked before they reach the decoder, so
// a corrupt count or offset yields ErrNoMetadata instead of an oversized
// allocation.
func Decode(r io.Reader) (m photo.Metadata, err error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return photo.Metadata{}, fmt.Errorf("%w: %v", ErrNoMetadata, err)
	}

	block, err := locateTIFF(raw)
	if err != nil {
		return photo.Metadata{}, fmt.Errorf("%w: %v", ErrNoMetadata, err)
	}
	if err := checkTIFF(block); err != nil {
		return photo.Metadata{}, fmt.Errorf("%w: %v", ErrNoMetadata, err)
	}

	defer func() {
		if p := recover(); p != nil {
			m, err = photo.Metadata{}, fmt.Errorf("%w: decoder panic: %v", ErrNoMetadata, p)
		}
	}()

	x, err := exif.Decode(bytes.NewReader(block))
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		if err == nil {
			return photo.Metadata{}, ErrNoMetadata
		}
		return photo.Metadata{}, fmt.Errorf("%w: %v", ErrNoMetadata, err)
	}
	return fromTags(x), nil
}

func fromTags(x tagSource) photo.Metadata {
	var m photo.Metadata

	m.CameraMake = text(x, exif.Make)
	m.CameraModel = text(x, exif.Model)
	m.LensModel = text(x, exif.LensModel)

	if s := text(x, exif.DateTimeOriginal); s != nil {
		if t, ok := ParseCaptureTime(*s); ok {
			m.DateTaken = &t
		}
	}

	if iso, ok := integer(x, exif.ISOSpeedRatings); ok {
		m.ISO = &iso
	}

	if num, den, ok := rational(x, exif.FNumber, 0); ok {
		if f, ok := RationalToFloat(num, den); ok {
			m.Aperture = &f
		}
	}

	if num, den, ok := rational(x, exif.ExposureTime, 0); ok {
		if s, ok := FormatShutterSpeed(num, den); ok {
			m.ShutterSpeed = &s
		}
	}

	if num, den, ok := rational(x, exif.FocalLength, 0); ok {
		if f, ok := RationalToFloat(num, den); ok {
			m.FocalLength = &f
		}
	}

	if flash, ok := integer(x, exif.Flash); ok {
		fired := FlashFired(flash)
		m.FlashFired = &fired
	}

	m.GPSLatitude = coordinate(x, exif.GPSLatitude, exif.GPSLatitudeRef, "N")
	m.GPSLongitude = coordinate(x, exif.GPSLongitude, exif.GPSLongitudeRef, "E")

	if num, den, ok := rational(x, exif.GPSAltitude, 0); ok {
		if f, ok := RationalToFloat(num, den); ok {
			m.GPSAltitude = &f
		}
	}

	return m
}

func text(x tagSource, name exif.FieldName) *string {
	tag, err := x.Get(name)
	if err != nil || tag == nil {
		return nil
	}
	raw, err := tag.StringVal()
	if err != nil {
		return nil
	}
	s, ok := CleanText(raw)
	if !ok {
		return nil
	}
	return &s
}

// integer reads the first value of an integer tag, which also unwraps
// tags such as ISOSpeedRatings that may hold a sequence.
func integer(x tagSource, name exif.FieldName) (int, bool) {
	tag, err := x.Get(name)
	if err != nil || tag == nil || tag.Count == 0 {
		return 0, false
	}
	v, err := tag.Int(0)
	if err != nil {
		return 0, false
	}
	return v, true
}

func rational(x tagSource, name exif.FieldName, i int) (int64, int64, bool) {
	tag, err := x.Get(name)
	if err != nil || tag == nil || int(tag.Count) <= i {
		return 0, 0, false
	}
	num, den, err := tag.Rat2(i)
	if err != nil {
		return 0, 0, false
	}
	return num, den, true
}

// coordinate converts a GPS degrees/minutes/seconds triple. All three
// components must be present; an unreadable minute or second counts as
// zero. A missing reference falls back to defaultRef.
func coordinate(x tagSource, value, ref exif.FieldName, defaultRef string) *float64 {
	tag, err := x.Get(value)
	if err != nil || tag == nil || tag.Count < 3 {
		return nil
	}

	num, den, ok := rational(x, value, 0)
	if !ok {
		return nil
	}
	degrees, ok := RationalToFloat(num, den)
	if !ok {
		return nil
	}

	part := func(i int) float64 {
		num, den, ok := rational(x, value, i)
		if !ok {
			return 0
		}
		f, _ := RationalToFloat(num, den)
		return f
	}

	direction := defaultRef
	if s := text(x, ref); s != nil {
		direction = *s
	}

	v := DMSToDecimal(degrees, part(1), part(2), direction)
	return &v
}
