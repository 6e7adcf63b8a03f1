package cli

import (
	"encoding/binary"
	"errors"
)

var errNoOrientation = errors.New("no exif orientation")

const tagOrientation = 0x0112

// jpegOrientation returns the EXIF orientation (1..8) stored in the first
// IFD of a JPEG's APP1 segment.
func jpegOrientation(data []byte) (int, error) {
	tiffStart, err := exifTIFFStart(data)
	if err != nil {
		return 0, err
	}
	return tiffOrientation(data[tiffStart:])
}

// exifTIFFStart scans the JPEG segments before the scan data for an APP1
// "Exif" block and returns the offset of its TIFF header.
func exifTIFFStart(data []byte) (int, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, errors.New("not a jpeg")
	}
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		if marker == 0xDA || marker == 0xD9 {
			break
		}
		segLen := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		if marker == 0xE1 && segLen >= 8 && i+10 <= len(data) && string(data[i+4:i+10]) == "Exif\x00\x00" {
			return i + 10, nil
		}
		if segLen < 2 {
			i += 2
		} else {
			i += 2 + segLen
		}
	}
	return 0, errNoOrientation
}

// tiffOrientation reads the orientation tag from IFD0 of a TIFF block.
func tiffOrientation(t []byte) (int, error) {
	if len(t) < 8 {
		return 0, errors.New("tiff header truncated")
	}
	var order binary.ByteOrder
	switch string(t[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return 0, errors.New("unknown tiff byte order")
	}
	if order.Uint16(t[2:4]) != 0x002A {
		return 0, errors.New("invalid tiff magic")
	}
	ifd := int(order.Uint32(t[4:8]))
	if ifd < 8 || ifd+2 > len(t) {
		return 0, errNoOrientation
	}
	n := int(order.Uint16(t[ifd : ifd+2]))
	for e := 0; e < n; e++ {
		ent := ifd + 2 + e*12
		if ent+12 > len(t) {
			break
		}
		if order.Uint16(t[ent:ent+2]) != tagOrientation {
			continue
		}
		// SHORT, count 1: value sits in the first two bytes of the field
		if order.Uint16(t[ent+2:ent+4]) != 3 {
			return 0, errors.New("orientation has unexpected type")
		}
		return int(order.Uint16(t[ent+8 : ent+10])), nil
	}
	return 0, errNoOrientation
}
