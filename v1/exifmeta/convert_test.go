package exifmeta

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatShutterSpeed(t *testing.T) {
	tests := []struct {
		num, den int64
		want     string
		ok       bool
	}{
		{1, 500, "1/500", true},
		{3, 1000, "3/1000", true},
		{2, 1000, "1/500", true},
		{10, 1, "10/1", true},
		{1, 1, "1/1", true},
		{0, 100, "", false},
		{1, 0, "", false},
	}
	for _, tt := range tests {
		got, ok := FormatShutterSpeed(tt.num, tt.den)
		assert.Equal(t, tt.ok, ok, "%d/%d", tt.num, tt.den)
		assert.Equal(t, tt.want, got, "%d/%d", tt.num, tt.den)
	}
}

func TestRationalToFloat(t *testing.T) {
	f, ok := RationalToFloat(28, 10)
	assert.True(t, ok)
	assert.InDelta(t, 2.8, f, 1e-9)

	_, ok = RationalToFloat(28, 0)
	assert.False(t, ok)
}

func TestDMSToDecimal(t *testing.T) {
	assert.Equal(t, -10.0, DMSToDecimal(10, 0, 0, "S"))
	assert.Equal(t, 10.0, DMSToDecimal(10, 0, 0, "N"))
	assert.InDelta(t, -122.4194, DMSToDecimal(122, 25, 9.84, "W"), 1e-4)
	assert.InDelta(t, 51.5, DMSToDecimal(51, 30, 0, ""), 1e-9)
}

func TestParseCaptureTime(t *testing.T) {
	got, ok := ParseCaptureTime("2019:08:17 14:03:59\x00")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2019, 8, 17, 14, 3, 59, 0, time.UTC), got)

	for _, bad := range []string{"", "0000:00:00 00:00:00", "2019-08-17 14:03:59", "   "} {
		_, ok := ParseCaptureTime(bad)
		assert.False(t, ok, bad)
	}
}

func TestCleanText(t *testing.T) {
	s, ok := CleanText("  Canon\x00\x00")
	assert.True(t, ok)
	assert.Equal(t, "Canon", s)

	_, ok = CleanText("\x00 \x00")
	assert.False(t, ok)
}

func TestFlashFired(t *testing.T) {
	assert.True(t, FlashFired(0x01))
	assert.True(t, FlashFired(0x19))
	assert.False(t, FlashFired(0x10))
	assert.False(t, FlashFired(0))
}
