package exifmeta

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mypictures/photoindex/v1/photo"
)

// TIFF field types.
const (
	typeASCII    = 2
	typeShort    = 3
	typeLong     = 4
	typeRational = 5
)

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

var le = binary.LittleEndian

func asciiEntry(tag uint16, s string) ifdEntry {
	b := append([]byte(s), 0)
	return ifdEntry{tag: tag, typ: typeASCII, count: uint32(len(b)), data: b}
}

func shortEntry(tag uint16, v uint16) ifdEntry {
	b := make([]byte, 2)
	le.PutUint16(b, v)
	return ifdEntry{tag: tag, typ: typeShort, count: 1, data: b}
}

func longEntry(tag uint16, v uint32) ifdEntry {
	b := make([]byte, 4)
	le.PutUint32(b, v)
	return ifdEntry{tag: tag, typ: typeLong, count: 1, data: b}
}

func rationalEntry(tag uint16, vals ...[2]uint32) ifdEntry {
	b := make([]byte, 0, 8*len(vals))
	for _, v := range vals {
		b = le.AppendUint32(b, v[0])
		b = le.AppendUint32(b, v[1])
	}
	return ifdEntry{tag: tag, typ: typeRational, count: uint32(len(vals)), data: b}
}

// encodeIFD lays out one directory at offset, with out-of-line values
// placed directly after it. The size does not depend on entry values.
func encodeIFD(entries []ifdEntry, offset uint32) []byte {
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	dirSize := uint32(2 + 12*len(entries) + 4)
	var dir, extra []byte
	dir = le.AppendUint16(dir, uint16(len(entries)))
	for _, e := range entries {
		dir = le.AppendUint16(dir, e.tag)
		dir = le.AppendUint16(dir, e.typ)
		dir = le.AppendUint32(dir, e.count)
		if len(e.data) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.data)
			dir = append(dir, inline...)
			continue
		}
		dir = le.AppendUint32(dir, offset+dirSize+uint32(len(extra)))
		extra = append(extra, e.data...)
		if len(extra)%2 == 1 {
			extra = append(extra, 0)
		}
	}
	dir = le.AppendUint32(dir, 0)
	return append(dir, extra...)
}

// buildTIFF assembles a little-endian TIFF with IFD0 and EXIF and GPS
// sub-directories.
func buildTIFF(ifd0, exifIFD, gpsIFD []ifdEntry) []byte {
	const (
		exifPointer = 0x8769
		gpsPointer  = 0x8825
	)

	withPointers := func(exifOff, gpsOff uint32) []ifdEntry {
		entries := append([]ifdEntry{}, ifd0...)
		return append(entries, longEntry(exifPointer, exifOff), longEntry(gpsPointer, gpsOff))
	}

	ifd0Len := uint32(len(encodeIFD(withPointers(0, 0), 8)))
	exifOff := 8 + ifd0Len
	exifBlock := encodeIFD(exifIFD, exifOff)
	gpsOff := exifOff + uint32(len(exifBlock))
	gpsBlock := encodeIFD(gpsIFD, gpsOff)

	out := []byte{'I', 'I', 42, 0}
	out = le.AppendUint32(out, 8)
	out = append(out, encodeIFD(withPointers(exifOff, gpsOff), 8)...)
	out = append(out, exifBlock...)
	return append(out, gpsBlock...)
}

func TestDecodeFullMetadata(t *testing.T) {
	raw := buildTIFF(
		[]ifdEntry{
			asciiEntry(0x010F, "FUJIFILM  "),
			asciiEntry(0x0110, "X100V"),
		},
		[]ifdEntry{
			rationalEntry(0x829A, [2]uint32{1, 250}),
			rationalEntry(0x829D, [2]uint32{28, 10}),
			shortEntry(0x8827, 400),
			asciiEntry(0x9003, "2021:07:04 18:30:05"),
			shortEntry(0x9209, 0x19),
			rationalEntry(0x920A, [2]uint32{23, 1}),
		},
		[]ifdEntry{
			asciiEntry(0x0001, "S"),
			rationalEntry(0x0002, [2]uint32{33, 1}, [2]uint32{52, 1}, [2]uint32{0, 1}),
			asciiEntry(0x0003, "E"),
			rationalEntry(0x0004, [2]uint32{151, 1}, [2]uint32{12, 1}, [2]uint32{36, 1}),
			rationalEntry(0x0006, [2]uint32{585, 10}),
		},
	)

	m, err := Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	require.NotNil(t, m.CameraMake)
	assert.Equal(t, "FUJIFILM", *m.CameraMake)
	require.NotNil(t, m.CameraModel)
	assert.Equal(t, "X100V", *m.CameraModel)
	assert.Nil(t, m.LensModel)

	require.NotNil(t, m.DateTaken)
	assert.Equal(t, time.Date(2021, 7, 4, 18, 30, 5, 0, time.UTC), *m.DateTaken)

	require.NotNil(t, m.ShutterSpeed)
	assert.Equal(t, "1/250", *m.ShutterSpeed)
	require.NotNil(t, m.Aperture)
	assert.InDelta(t, 2.8, *m.Aperture, 1e-9)
	require.NotNil(t, m.ISO)
	assert.Equal(t, 400, *m.ISO)
	require.NotNil(t, m.FocalLength)
	assert.InDelta(t, 23.0, *m.FocalLength, 1e-9)
	require.NotNil(t, m.FlashFired)
	assert.True(t, *m.FlashFired)

	require.NotNil(t, m.GPSLatitude)
	assert.InDelta(t, -33.8667, *m.GPSLatitude, 1e-4)
	require.NotNil(t, m.GPSLongitude)
	assert.InDelta(t, 151.21, *m.GPSLongitude, 1e-4)
	require.NotNil(t, m.GPSAltitude)
	assert.InDelta(t, 58.5, *m.GPSAltitude, 1e-9)
}

func TestDecodeDefaultsAndZeroDenominators(t *testing.T) {
	raw := buildTIFF(
		[]ifdEntry{asciiEntry(0x010F, "\x00")},
		[]ifdEntry{
			rationalEntry(0x829D, [2]uint32{28, 0}),
			rationalEntry(0x829A, [2]uint32{0, 1}),
			asciiEntry(0x9003, "not a date"),
		},
		[]ifdEntry{
			rationalEntry(0x0002, [2]uint32{10, 1}, [2]uint32{30, 0}, [2]uint32{0, 1}),
			rationalEntry(0x0004, [2]uint32{5, 0}, [2]uint32{0, 1}, [2]uint32{0, 1}),
		},
	)

	m, err := Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Nil(t, m.CameraMake, "blank text is dropped")
	assert.Nil(t, m.Aperture, "zero denominator is unset")
	assert.Nil(t, m.ShutterSpeed, "zero numerator is unset")
	assert.Nil(t, m.DateTaken)
	assert.Nil(t, m.FlashFired)

	require.NotNil(t, m.GPSLatitude, "reference defaults to north")
	assert.Equal(t, 10.0, *m.GPSLatitude, "unreadable minutes count as zero")
	assert.Nil(t, m.GPSLongitude, "unreadable degrees drop the coordinate")
}

func TestDecodeGPSNeedsFullTriple(t *testing.T) {
	raw := buildTIFF(
		[]ifdEntry{asciiEntry(0x0110, "Pixel 7")},
		[]ifdEntry{shortEntry(0x8827, 100)},
		[]ifdEntry{
			asciiEntry(0x0001, "S"),
			rationalEntry(0x0002, [2]uint32{10, 1}),
			asciiEntry(0x0003, "W"),
			rationalEntry(0x0004, [2]uint32{20, 1}, [2]uint32{30, 1}),
		},
	)

	m, err := Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Nil(t, m.GPSLatitude, "degrees alone are not a coordinate")
	assert.Nil(t, m.GPSLongitude, "seconds missing")
}

func TestDecodeWithoutExif(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	m, err := Decode(bytes.NewReader(buf.Bytes()))
	assert.ErrorIs(t, err, ErrNoMetadata)
	assert.Equal(t, photo.Metadata{}, m)

	_, err = Decode(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrNoMetadata)

	_, err = Decode(bytes.NewReader([]byte("garbage")))
	assert.ErrorIs(t, err, ErrNoMetadata)
}

func sampleTIFF() []byte {
	return buildTIFF(
		[]ifdEntry{
			asciiEntry(0x010F, "Canon"),
			asciiEntry(0x0110, "Canon EOS R5"),
		},
		[]ifdEntry{
			rationalEntry(0x829A, [2]uint32{1, 500}),
			asciiEntry(0x9003, "2022:01:02 03:04:05"),
		},
		[]ifdEntry{
			asciiEntry(0x0001, "N"),
			rationalEntry(0x0002, [2]uint32{52, 1}, [2]uint32{31, 1}, [2]uint32{12, 1}),
		},
	)
}

func TestDecodeRejectsOversizedCount(t *testing.T) {
	raw := sampleTIFF()
	// IFD0 starts at 8; the first entry's count field follows its tag and type.
	le.PutUint32(raw[8+2+4:], 0x40000000)

	m, err := Decode(bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrNoMetadata)
	assert.Equal(t, photo.Metadata{}, m)
}

func TestDecodeSurvivesCorruptBytes(t *testing.T) {
	valid := sampleTIFF()
	for i := range valid {
		for _, b := range []byte{0x00, 0x7F, 0x80, 0xFF} {
			raw := append([]byte(nil), valid...)
			raw[i] = b
			assert.NotPanics(t, func() {
				_, _ = Decode(bytes.NewReader(raw))
			}, "byte %d set to %#x", i, b)
		}
	}
}

func TestDecodeFindsExifInContainers(t *testing.T) {
	block := sampleTIFF()

	app1 := append(append([]byte(nil), exifHeader...), block...)
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x04, 'J', 'F'}
	jpeg = append(jpeg, 0xFF, 0xE1)
	jpeg = binary.BigEndian.AppendUint16(jpeg, uint16(len(app1)+2))
	jpeg = append(jpeg, app1...)
	jpeg = append(jpeg, 0xFF, 0xD9)

	pngFile := append([]byte(nil), pngMagic...)
	pngFile = binary.BigEndian.AppendUint32(pngFile, uint32(len(block)))
	pngFile = append(pngFile, "eXIf"...)
	pngFile = append(pngFile, block...)
	pngFile = append(pngFile, 0, 0, 0, 0)

	for name, raw := range map[string][]byte{"jpeg": jpeg, "png": pngFile, "tiff": block} {
		t.Run(name, func(t *testing.T) {
			m, err := Decode(bytes.NewReader(raw))
			require.NoError(t, err)
			require.NotNil(t, m.CameraModel)
			assert.Equal(t, "Canon EOS R5", *m.CameraModel)
			require.NotNil(t, m.ShutterSpeed)
			assert.Equal(t, "1/500", *m.ShutterSpeed)
			require.NotNil(t, m.GPSLatitude)
			assert.InDelta(t, 52.52, *m.GPSLatitude, 1e-4)
		})
	}

	truncated := jpeg[:20]
	_, err := Decode(bytes.NewReader(truncated))
	assert.ErrorIs(t, err, ErrNoMetadata)
}
