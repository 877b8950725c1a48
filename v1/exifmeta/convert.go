package exifmeta

import (
	"fmt"
	"strings"
	"time"
)

// CaptureTimeLayout is the EXIF DateTimeOriginal format.
const CaptureTimeLayout = "2006:01:02 15:04:05"

// CleanText strips NUL padding and surrounding whitespace from an EXIF
// string. ok is false when nothing is left.
func CleanText(s string) (string, bool) {
	s = strings.TrimSpace(strings.Trim(s, "\x00"))
	return s, s != ""
}

// ParseCaptureTime parses an EXIF timestamp. EXIF carries no zone, so the
// wall clock value is kept as is and labelled UTC.
func ParseCaptureTime(s string) (time.Time, bool) {
	s, ok := CleanText(s)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(CaptureTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// RationalToFloat converts num/den, rejecting a zero denominator.
func RationalToFloat(num, den int64) (float64, bool) {
	if den == 0 {
		return 0, false
	}
	return float64(num) / float64(den), true
}

// FormatShutterSpeed renders an exposure time. Exposures that reduce to a
// unit fraction are written as "1/N", anything else as "num/den".
func FormatShutterSpeed(num, den int64) (string, bool) {
	if num == 0 || den == 0 {
		return "", false
	}
	if den%num == 0 {
		return fmt.Sprintf("1/%d", den/num), true
	}
	return fmt.Sprintf("%d/%d", num, den), true
}

// DMSToDecimal converts degrees, minutes and seconds to decimal degrees.
// Southern and western references produce negative values.
func DMSToDecimal(degrees, minutes, seconds float64, ref string) float64 {
	v := degrees + minutes/60 + seconds/3600
	switch strings.ToUpper(strings.TrimSpace(ref)) {
	case "S", "W":
		return -v
	}
	return v
}

// FlashFired reads bit 0 of the EXIF Flash value.
func FlashFired(flash int) bool {
	return flash&1 == 1
}
