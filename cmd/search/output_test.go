package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mypictures/photoindex/v1/photo"
)

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "/a/b.jpg", truncatePath("/a/b.jpg", 60))

	long := "/" + strings.Repeat("x", 80) + "/IMG_0001.jpg"
	got := truncatePath(long, 60)
	assert.Len(t, []rune(got), 60)
	assert.True(t, strings.HasPrefix(got, "..."))
	assert.True(t, strings.HasSuffix(got, "IMG_0001.jpg"))
}

func TestPrintHits(t *testing.T) {
	taken := time.Date(2023, 7, 14, 9, 30, 0, 0, time.UTC)
	model := "Canon EOS R5"
	lat, lon := 52.52, 13.405
	hits := []photo.Hit{
		{FilePath: "/p/beach.jpg", Similarity: 0.3312, DateTaken: &taken, CameraModel: &model, GPSLatitude: &lat, GPSLongitude: &lon},
		{FilePath: "/p/scan.png", Similarity: 0.25},
	}

	var buf bytes.Buffer
	printHits(&buf, "beach", hits)
	out := buf.String()

	assert.Contains(t, out, `2 photos match "beach"`)
	assert.Contains(t, out, "0.331")
	assert.Contains(t, out, "2023-07-14")
	assert.Contains(t, out, "Canon EOS R5")
	assert.Contains(t, out, "52.52000,13.40500")
	assert.Contains(t, out, "/p/scan.png")

	buf.Reset()
	printHits(&buf, "nothing", nil)
	assert.Equal(t, "No photos match \"nothing\".\n", buf.String())
}
