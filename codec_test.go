package codec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pixelkit/codec/cerr"
	"github.com/pixelkit/codec/raster"
)

func writeBMPFile(t *testing.T, dir, name string, img *raster.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := EncodeBMP(img, path); err != nil {
		t.Fatalf("EncodeBMP: %v", err)
	}
	return path
}

func absDiff(a, b byte) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// TestBMPToJPEGToBMPPrimaries runs the 2x2 primary-color image through a
// full BMP -> JPEG -> decode cycle at quality 100 and checks every channel
// stays within the rounding slack chroma conversion introduces.
func TestBMPToJPEGToBMPPrimaries(t *testing.T) {
	dir := t.TempDir()

	src := raster.New(2, 2)
	src.Set(0, 0, 255, 0, 0)
	src.Set(1, 0, 0, 255, 0)
	src.Set(0, 1, 0, 0, 255)
	src.Set(1, 1, 255, 255, 255)

	bmpPath := writeBMPFile(t, dir, "in.bmp", src)
	loaded, err := DecodeBMP(bmpPath)
	if err != nil {
		t.Fatalf("DecodeBMP: %v", err)
	}

	jpegPath := filepath.Join(dir, "out.jpeg")
	opts := EncodeOptions{LuminanceQuality: 100, ChrominanceQuality: 100}
	if err := EncodeJPEG(loaded, jpegPath, opts); err != nil {
		t.Fatalf("EncodeJPEG: %v", err)
	}

	got, err := DecodeJPEG(jpegPath)
	if err != nil {
		t.Fatalf("DecodeJPEG: %v", err)
	}
	if got.Width != 2 || got.Height != 2 {
		t.Fatalf("decoded dimensions %dx%d, want 2x2", got.Width, got.Height)
	}
	for i := range src.Pix {
		if d := absDiff(got.Pix[i], src.Pix[i]); d > 3 {
			t.Fatalf("pixel byte %d differs by %d (> 3): got %d want %d",
				i, d, got.Pix[i], src.Pix[i])
		}
	}
}

// TestFlatGreyIsExact: a flat (128,128,128) image level-shifts to an
// all-zero block, so every coefficient quantizes to zero and the decode is
// bit-exact regardless of quality.
func TestFlatGreyIsExact(t *testing.T) {
	dir := t.TempDir()

	src := raster.New(8, 8)
	for y := uint32(0); y < 8; y++ {
		for x := uint32(0); x < 8; x++ {
			src.Set(x, y, 128, 128, 128)
		}
	}

	jpegPath := filepath.Join(dir, "grey.jpeg")
	opts := EncodeOptions{LuminanceQuality: 90, ChrominanceQuality: 90}
	if err := EncodeJPEG(src, jpegPath, opts); err != nil {
		t.Fatalf("EncodeJPEG: %v", err)
	}
	got, err := DecodeJPEG(jpegPath)
	if err != nil {
		t.Fatalf("DecodeJPEG: %v", err)
	}
	for i, v := range got.Pix {
		if v != 128 {
			t.Fatalf("pixel byte %d = %d, want 128 exactly", i, v)
		}
	}
}

// TestEncodeLeavesNoFileOnError: a failed encode must not create or clobber
// anything at the destination path.
func TestEncodeLeavesNoFileOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "never.jpeg")

	bad := &raster.Image{Width: 4, Height: 4, Pix: []byte{1, 2, 3}} // wrong Pix length
	if err := EncodeJPEG(bad, path, EncodeOptions{LuminanceQuality: 90, ChrominanceQuality: 90}); err == nil {
		t.Fatalf("expected an error for a malformed image")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("failed encode left a file at %s", path)
	}
}

// TestDecodeJPEGMissingFileIsIOError exercises the path-taking entry point's
// error wrapping.
func TestDecodeJPEGMissingFileIsIOError(t *testing.T) {
	_, err := DecodeJPEG(filepath.Join(t.TempDir(), "nope.jpeg"))
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}
	if !cerr.Is(err, cerr.IO) {
		t.Fatalf("missing file error = %v, want kind IO", err)
	}
}
