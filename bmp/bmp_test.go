package bmp

import (
	"bytes"
	"testing"

	"github.com/pixelkit/codec/raster"
)

// build24 constructs a minimal bottom-up 24-bit BMP. rows[0] is the
// bottom-most row in file storage order (bottom-up), matching BMP's
// on-disk layout.
func build24(width, height int, rows [][][3]byte) []byte {
	stride := (width*3 + 3) &^ 3
	dataOffset := fileHeaderSize + coreHeaderSize
	fileSize := dataOffset + stride*height

	out := make([]byte, 0, fileSize)
	out = append(out, 'B', 'M')
	out = appendLE32(out, uint32(fileSize))
	out = appendLE32(out, 0)
	out = appendLE32(out, uint32(dataOffset))
	out = appendLE32(out, coreHeaderSize)
	out = appendLE16(out, uint16(width))
	out = appendLE16(out, uint16(height))
	out = appendLE16(out, 1)
	out = appendLE16(out, 24)

	for _, row := range rows {
		buf := make([]byte, stride)
		for x, px := range row {
			buf[x*3], buf[x*3+1], buf[x*3+2] = px[2], px[1], px[0]
		}
		out = append(out, buf...)
	}
	return out
}

func TestDecode24BitRoundTrip(t *testing.T) {
	red := [3]byte{255, 0, 0}
	green := [3]byte{0, 255, 0}
	data := build24(2, 1, [][][3]byte{{red, green}})

	img, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != 2 || img.Height != 1 {
		t.Fatalf("got %dx%d, want 2x1", img.Width, img.Height)
	}
	if r, g, b := img.At(0, 0); [3]byte{r, g, b} != red {
		t.Fatalf("pixel (0,0) = %v, want %v", [3]byte{r, g, b}, red)
	}
	if r, g, b := img.At(1, 0); [3]byte{r, g, b} != green {
		t.Fatalf("pixel (1,0) = %v, want %v", [3]byte{r, g, b}, green)
	}
}

func TestDecodeRejectsBadSignature(t *testing.T) {
	data := build24(2, 1, [][][3]byte{{{1, 2, 3}, {4, 5, 6}}})
	data[0] = 'X'
	if _, err := Decode(data); err == nil {
		t.Fatalf("expected an error for a bad signature, got nil")
	}
}

func TestDecodeTwoRowsPreservesOrientation(t *testing.T) {
	top := [3]byte{10, 20, 30}
	bottom := [3]byte{40, 50, 60}
	// the file stores the bottom row first (bottom-up storage).
	data := build24(1, 2, [][][3]byte{{bottom}, {top}})

	img, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r, g, b := img.At(0, 0); [3]byte{r, g, b} != top {
		t.Fatalf("top row decoded as %v, want %v", [3]byte{r, g, b}, top)
	}
	if r, g, b := img.At(0, 1); [3]byte{r, g, b} != bottom {
		t.Fatalf("bottom row decoded as %v, want %v", [3]byte{r, g, b}, bottom)
	}
}

func TestEncodeThenDecodeRoundTrip(t *testing.T) {
	img := raster.New(3, 2)
	for y := uint32(0); y < 2; y++ {
		for x := uint32(0); x < 3; x++ {
			img.Set(x, y, byte(x*10), byte(y*10), byte(x+y))
		}
	}
	data, err := Encode(img)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Width != img.Width || got.Height != img.Height {
		t.Fatalf("dimensions mismatch: got %dx%d, want %dx%d", got.Width, got.Height, img.Width, img.Height)
	}
	if !bytes.Equal(got.Pix, img.Pix) {
		t.Fatalf("pixel round trip mismatch: got %v, want %v", got.Pix, img.Pix)
	}
}

func TestDecodePalettized8Bit(t *testing.T) {
	width, height := 2, 1
	headerEnd := fileHeaderSize + infoHeaderSize
	palette := make([]byte, 256*4)
	palette[0*4+0], palette[0*4+1], palette[0*4+2] = 9, 8, 7 // index0 BGR
	palette[1*4+0], palette[1*4+1], palette[1*4+2] = 1, 2, 3 // index1 BGR
	dataOffset := headerEnd + len(palette)
	stride := ((8*width + 31) / 32) * 4
	fileSize := dataOffset + stride*height

	out := make([]byte, 0, fileSize)
	out = append(out, 'B', 'M')
	out = appendLE32(out, uint32(fileSize))
	out = appendLE32(out, 0)
	out = appendLE32(out, uint32(dataOffset))
	out = appendLE32(out, infoHeaderSize)
	out = appendLE32(out, uint32(width))
	out = appendLE32(out, uint32(height))
	out = appendLE16(out, 1)
	out = appendLE16(out, 8)
	out = appendLE32(out, 0) // compression
	out = appendLE32(out, 0)
	out = appendLE32(out, 0)
	out = appendLE32(out, 0)
	out = appendLE32(out, 0)
	out = appendLE32(out, 0)
	out = append(out, palette...)
	row := make([]byte, stride)
	row[0], row[1] = 0, 1
	out = append(out, row...)

	img, err := Decode(out)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r, g, b := img.At(0, 0); [3]byte{r, g, b} != [3]byte{7, 8, 9} {
		t.Fatalf("pixel(0,0) = %v, want {7 8 9}", [3]byte{r, g, b})
	}
	if r, g, b := img.At(1, 0); [3]byte{r, g, b} != [3]byte{3, 2, 1} {
		t.Fatalf("pixel(1,0) = %v, want {3 2 1}", [3]byte{r, g, b})
	}
}
