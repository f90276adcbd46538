// Package codec exposes the decode/encode operations of the JPEG and BMP
// still-image codec: DecodeJPEG, DecodeBMP, EncodeJPEG, EncodeBMP, plus
// io.Reader/io.Writer variants for callers that do not want to go through
// the filesystem.
package codec

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pixelkit/codec/bmp"
	"github.com/pixelkit/codec/cerr"
	"github.com/pixelkit/codec/jpeg"
	"github.com/pixelkit/codec/raster"
)

// EncodeOptions controls baseline JPEG encoding quality and Huffman table
// construction. It mirrors jpeg.EncodeOptions so callers never need to
// import the jpeg package directly.
type EncodeOptions = jpeg.EncodeOptions

// DecodeJPEG reads and decodes the JPEG file at path.
func DecodeJPEG(path string) (*raster.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cerr.Wrap(err, cerr.IO, "codec: open "+path)
	}
	defer f.Close()
	return DecodeJPEGReader(f)
}

// DecodeJPEGReader decodes a JPEG bitstream read from r.
func DecodeJPEGReader(r io.Reader) (*raster.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, cerr.Wrap(err, cerr.IO, "codec: read JPEG stream")
	}
	return jpeg.Decode(data)
}

// DecodeBMP reads and decodes the BMP file at path.
func DecodeBMP(path string) (*raster.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cerr.Wrap(err, cerr.IO, "codec: open "+path)
	}
	defer f.Close()
	return DecodeBMPReader(f)
}

// DecodeBMPReader decodes a BMP bitstream read from r.
func DecodeBMPReader(r io.Reader) (*raster.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, cerr.Wrap(err, cerr.IO, "codec: read BMP stream")
	}
	return bmp.Decode(data)
}

// EncodeJPEG encodes img as JPEG and writes it to path. The write is
// atomic: on any encode error, no file is created or modified at path.
func EncodeJPEG(img *raster.Image, path string, opts EncodeOptions) error {
	data, err := jpeg.Encode(img, opts)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// EncodeJPEGWriter encodes img as JPEG directly to w, with no atomicity
// guarantee beyond what w itself offers.
func EncodeJPEGWriter(img *raster.Image, w io.Writer, opts EncodeOptions) error {
	data, err := jpeg.Encode(img, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	if err != nil {
		return cerr.Wrap(err, cerr.IO, "codec: write JPEG stream")
	}
	return nil
}

// EncodeBMP encodes img as a 24-bit BMP and writes it to path. The write
// is atomic: on any encode error, no file is created or modified at path.
func EncodeBMP(img *raster.Image, path string) error {
	data, err := bmp.Encode(img)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// EncodeBMPWriter encodes img as a 24-bit BMP directly to w.
func EncodeBMPWriter(img *raster.Image, w io.Writer) error {
	data, err := bmp.Encode(img)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	if err != nil {
		return cerr.Wrap(err, cerr.IO, "codec: write BMP stream")
	}
	return nil
}

// writeAtomic writes data to a temporary file beside path and renames it
// into place, so a failed or interrupted write never leaves a truncated
// file at path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".codec-tmp-*")
	if err != nil {
		return cerr.Wrap(err, cerr.IO, "codec: create temp file in "+dir)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return cerr.Wrap(err, cerr.IO, "codec: write temp file "+tmpPath)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return cerr.Wrap(err, cerr.IO, "codec: close temp file "+tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return cerr.Wrap(err, cerr.IO, "codec: rename into "+path)
	}
	return nil
}
