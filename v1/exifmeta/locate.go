package exifmeta

import (
	"bytes"
	"encoding/binary"
	"errors"
)

var (
	errNoExifBlock  = errors.New("no exif block")
	errMalformedIFD = errors.New("malformed tiff directory")
)

var (
	tiffLittle  = []byte("II*\x00")
	tiffBig     = []byte("MM\x00*")
	exifHeader  = []byte("Exif\x00\x00")
	pngMagic    = []byte("\x89PNG\r\n\x1a\n")
	jpegMagic   = []byte{0xFF, 0xD8}
	riffMagic   = []byte("RIFF")
	webpFourCC  = []byte("WEBP")
	maxIFDs     = 32
	ifdPointers = map[uint16]bool{
		0x8769: true, // Exif
		0x8825: true, // GPS
		0xA005: true, // Interoperability
	}
)

// fieldSize is the byte width of one value of each TIFF field type.
var fieldSize = map[uint16]uint64{
	1:  1, // BYTE
	2:  1, // ASCII
	3:  2, // SHORT
	4:  4, // LONG
	5:  8, // RATIONAL
	6:  1, // SBYTE
	7:  1, // UNDEFINED
	8:  2, // SSHORT
	9:  4, // SLONG
	10: 8, // SRATIONAL
	11: 4, // FLOAT
	12: 8, // DOUBLE
	13: 4, // IFD
}

// locateTIFF finds the TIFF structure holding EXIF in a JPEG, PNG, WebP or
// bare TIFF file.
func locateTIFF(raw []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(raw, tiffLittle), bytes.HasPrefix(raw, tiffBig):
		return raw, nil
	case bytes.HasPrefix(raw, exifHeader):
		return raw[len(exifHeader):], nil
	case bytes.HasPrefix(raw, jpegMagic):
		return jpegExif(raw)
	case bytes.HasPrefix(raw, pngMagic):
		return pngExif(raw)
	case len(raw) >= 12 && bytes.HasPrefix(raw, riffMagic) && bytes.Equal(raw[8:12], webpFourCC):
		return webpExif(raw)
	}
	return nil, errNoExifBlock
}

// jpegExif walks the marker segments up to the start of scan and returns
// the payload of the first Exif APP1 segment.
func jpegExif(raw []byte) ([]byte, error) {
	i := 2
	for i+4 <= len(raw) {
		if raw[i] != 0xFF {
			return nil, errNoExifBlock
		}
		marker := raw[i+1]
		switch {
		case marker == 0xFF:
			i++
			continue
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7):
			i += 2
			continue
		case marker == 0xD9 || marker == 0xDA:
			return nil, errNoExifBlock
		}

		length := int(binary.BigEndian.Uint16(raw[i+2 : i+4]))
		start, end := i+4, i+2+length
		if length < 2 || end > len(raw) {
			return nil, errNoExifBlock
		}
		if marker == 0xE1 && bytes.HasPrefix(raw[start:end], exifHeader) {
			return raw[start+len(exifHeader) : end], nil
		}
		i = end
	}
	return nil, errNoExifBlock
}

// pngExif returns the eXIf chunk.
func pngExif(raw []byte) ([]byte, error) {
	i := len(pngMagic)
	for i+8 <= len(raw) {
		length := uint64(binary.BigEndian.Uint32(raw[i : i+4]))
		kind := string(raw[i+4 : i+8])
		start := uint64(i + 8)
		end := start + length
		if end+4 > uint64(len(raw)) {
			return nil, errNoExifBlock
		}
		switch kind {
		case "eXIf":
			return raw[start:end], nil
		case "IDAT", "IEND":
			return nil, errNoExifBlock
		}
		i = int(end + 4)
	}
	return nil, errNoExifBlock
}

// webpExif returns the EXIF chunk of an extended WebP file.
func webpExif(raw []byte) ([]byte, error) {
	i := 12
	for i+8 <= len(raw) {
		kind := string(raw[i : i+4])
		length := uint64(binary.LittleEndian.Uint32(raw[i+4 : i+8]))
		start := uint64(i + 8)
		end := start + length
		if end > uint64(len(raw)) {
			return nil, errNoExifBlock
		}
		if kind == "EXIF" {
			return bytes.TrimPrefix(raw[start:end], exifHeader), nil
		}
		i = int(end + end%2)
	}
	return nil, errNoExifBlock
}

// checkTIFF walks every directory reachable from the header and rejects
// entries whose values would lie outside block. The decoder sizes its
// buffers from the declared counts, so they must be bounded before it runs.
func checkTIFF(block []byte) error {
	if len(block) < 8 {
		return errMalformedIFD
	}
	var order binary.ByteOrder
	switch {
	case bytes.HasPrefix(block, tiffLittle):
		order = binary.LittleEndian
	case bytes.HasPrefix(block, tiffBig):
		order = binary.BigEndian
	default:
		return errMalformedIFD
	}

	size := uint64(len(block))
	queue := []uint64{uint64(order.Uint32(block[4:8]))}
	seen := map[uint64]bool{}

	for len(queue) > 0 {
		off := queue[0]
		queue = queue[1:]
		if off == 0 {
			continue
		}
		// The decoder follows next-directory links without loop detection.
		if seen[off] || len(seen) >= maxIFDs {
			return errMalformedIFD
		}
		seen[off] = true

		if off+2 > size {
			return errMalformedIFD
		}
		n := uint64(order.Uint16(block[off : off+2]))
		entries := off + 2
		if entries+12*n+4 > size {
			return errMalformedIFD
		}

		for k := uint64(0); k < n; k++ {
			e := block[entries+12*k : entries+12*k+12]
			tag := order.Uint16(e[0:2])
			typ := order.Uint16(e[2:4])
			count := uint64(order.Uint32(e[4:8]))

			width, ok := fieldSize[typ]
			if !ok {
				return errMalformedIFD
			}
			length := count * width
			if length > size {
				return errMalformedIFD
			}
			if length > 4 {
				valueOff := uint64(order.Uint32(e[8:12]))
				if valueOff+length > size {
					return errMalformedIFD
				}
			}

			if ifdPointers[tag] && count >= 1 && (typ == 4 || typ == 13) {
				queue = append(queue, uint64(order.Uint32(e[8:12])))
			}
		}

		queue = append(queue, uint64(order.Uint32(block[entries+12*n:entries+12*n+4])))
	}
	return nil
}
