// Package bmp reads and writes the minimal BMP raster interchange this
// codec needs: 1/4/8-bit palettized and 24-bit truecolor on read, 24-bit
// truecolor on write.
package bmp

import (
	"github.com/pixelkit/codec/cerr"
	"github.com/pixelkit/codec/raster"
)

const (
	fileHeaderSize   = 14
	coreHeaderSize   = 12
	infoHeaderSize   = 40
	paletteEntrySize = 4
)

// Decode parses a BMP byte stream into a top-down RGB image.
func Decode(data []byte) (*raster.Image, error) {
	if len(data) < fileHeaderSize+4 {
		return nil, cerr.New(cerr.IO, "bmp: file too short for headers")
	}
	if data[0] != 'B' || data[1] != 'M' {
		return nil, cerr.New(cerr.Format, "bmp: missing 'BM' signature")
	}
	dataOffset := le32(data[10:14])

	infoSize := le32(data[14:18])
	var width, height int32
	var bitCount int
	var headerEnd uint32

	switch infoSize {
	case coreHeaderSize:
		if len(data) < fileHeaderSize+coreHeaderSize {
			return nil, cerr.New(cerr.IO, "bmp: truncated BITMAPCOREHEADER")
		}
		width = int32(le16(data[18:20]))
		height = int32(le16(data[20:22]))
		bitCount = int(le16(data[24:26]))
		headerEnd = fileHeaderSize + coreHeaderSize
	case infoHeaderSize:
		if len(data) < fileHeaderSize+infoHeaderSize {
			return nil, cerr.New(cerr.IO, "bmp: truncated BITMAPINFOHEADER")
		}
		width = int32(le32(data[18:22]))
		height = int32(le32(data[22:26]))
		bitCount = int(le16(data[28:30]))
		compression := le32(data[30:34])
		if compression != 0 {
			return nil, cerr.New(cerr.Format, "bmp: compressed BMP not supported (compression=%d)", compression)
		}
		headerEnd = fileHeaderSize + infoHeaderSize
	default:
		return nil, cerr.New(cerr.Format, "bmp: unsupported info header size %d", infoSize)
	}

	if bitCount != 1 && bitCount != 4 && bitCount != 8 && bitCount != 24 {
		return nil, cerr.New(cerr.Format, "bmp: unsupported bit depth %d", bitCount)
	}

	bottomUp := height > 0
	if !bottomUp {
		height = -height
	}
	if width <= 0 || height <= 0 {
		return nil, cerr.New(cerr.Format, "bmp: invalid dimensions %dx%d", width, height)
	}

	var palette [][3]byte
	if bitCount <= 8 {
		numColors := 1 << uint(bitCount)
		paletteBytes := numColors * paletteEntrySize
		if int(headerEnd)+paletteBytes > len(data) {
			return nil, cerr.New(cerr.IO, "bmp: truncated palette")
		}
		palette = make([][3]byte, numColors)
		for i := 0; i < numColors; i++ {
			o := int(headerEnd) + i*paletteEntrySize
			palette[i] = [3]byte{data[o+2], data[o+1], data[o]} // BGR -> RGB
		}
	}

	if dataOffset == 0 {
		dataOffset = headerEnd + uint32(len(palette))*paletteEntrySize
	}

	rowBits := bitCount * int(width)
	stride := ((rowBits + 31) / 32) * 4
	if int(dataOffset)+stride*int(height) > len(data) {
		return nil, cerr.New(cerr.LengthMismatch, "bmp: pixel data shorter than stride*height")
	}

	img := raster.New(uint32(width), uint32(height))
	for row := 0; row < int(height); row++ {
		srcRow := row
		if bottomUp {
			srcRow = int(height) - 1 - row
		}
		rowStart := int(dataOffset) + srcRow*stride
		rowBytes := data[rowStart : rowStart+stride]

		for x := 0; x < int(width); x++ {
			var r, g, b byte
			switch bitCount {
			case 24:
				o := x * 3
				b, g, r = rowBytes[o], rowBytes[o+1], rowBytes[o+2]
			case 8:
				r, g, b = palette[rowBytes[x]][0], palette[rowBytes[x]][1], palette[rowBytes[x]][2]
			case 4:
				byteVal := rowBytes[x/2]
				idx := byteVal >> 4
				if x%2 == 1 {
					idx = byteVal & 0x0F
				}
				r, g, b = palette[idx][0], palette[idx][1], palette[idx][2]
			case 1:
				byteVal := rowBytes[x/8]
				bit := (byteVal >> (7 - uint(x%8))) & 1
				r, g, b = palette[bit][0], palette[bit][1], palette[bit][2]
			}
			img.Set(uint32(x), uint32(row), r, g, b)
		}
	}
	return img, nil
}

// Encode writes img as a bottom-up 24-bit BMP with a 12-byte
// BITMAPCOREHEADER.
func Encode(img *raster.Image) ([]byte, error) {
	if err := img.Validate(); err != nil {
		return nil, cerr.Wrap(err, cerr.Format, "bmp: encode")
	}

	stride := (int(img.Width)*3 + 3) &^ 3
	pixelBytes := stride * int(img.Height)
	dataOffset := fileHeaderSize + coreHeaderSize
	fileSize := dataOffset + pixelBytes

	out := make([]byte, 0, fileSize)
	out = append(out, 'B', 'M')
	out = appendLE32(out, uint32(fileSize))
	out = appendLE32(out, 0) // reserved
	out = appendLE32(out, uint32(dataOffset))

	out = appendLE32(out, coreHeaderSize)
	out = appendLE16(out, uint16(img.Width))
	out = appendLE16(out, uint16(img.Height))
	out = appendLE16(out, 1)  // planes
	out = appendLE16(out, 24) // bit count

	row := make([]byte, stride)
	for y := int(img.Height) - 1; y >= 0; y-- {
		for x := 0; x < int(img.Width); x++ {
			r, g, b := img.At(uint32(x), uint32(y))
			o := x * 3
			row[o], row[o+1], row[o+2] = b, g, r
		}
		for i := int(img.Width) * 3; i < stride; i++ {
			row[i] = 0
		}
		out = append(out, row...)
	}
	return out, nil
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 { return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24 }

func appendLE16(out []byte, v uint16) []byte {
	return append(out, byte(v), byte(v>>8))
}

func appendLE32(out []byte, v uint32) []byte {
	return append(out, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
