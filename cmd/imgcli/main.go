// Command imgcli is a thin CLI over the codec package: render prints a
// summary of an image file, convert transcodes between JPEG and BMP.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pixelkit/codec"
	"github.com/pixelkit/codec/raster"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("imgcli: ")
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "render":
		err = runRender(args[1:])
	case "convert":
		err = runConvert(args[1:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n  %s render <path>\n  %s convert <in> <out-format> [<out-path>]\n",
		os.Args[0], os.Args[0])
}

func runRender(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("render: expected exactly one path argument")
	}
	img, err := load(args[0])
	if err != nil {
		return err
	}
	// A real windowing/shader stack is out of scope for this module; render
	// prints the summary a caller with a display surface would need.
	fmt.Printf("%s: %dx%d, %d bytes of pixel data\n", args[0], img.Width, img.Height, len(img.Pix))
	fmt.Println("(no on-screen renderer in this build; the display surface is an external collaborator)")
	return nil
}

func runConvert(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("convert: expected <in> <out-format> [<out-path>]")
	}
	in := args[0]
	format := strings.ToLower(args[1])

	out := replaceExt(in, format)
	if len(args) == 3 {
		out = args[2]
	}

	img, err := load(in)
	if err != nil {
		return err
	}

	switch format {
	case "jpeg", "jpg":
		opts := codec.EncodeOptions{LuminanceQuality: 85, ChrominanceQuality: 85, OptimizeHuffman: true}
		return codec.EncodeJPEG(img, out, opts)
	case "bmp":
		return codec.EncodeBMP(img, out)
	default:
		return fmt.Errorf("convert: unsupported output format %q (want jpeg or bmp)", format)
	}
}

func load(path string) (*raster.Image, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		return codec.DecodeBMP(path)
	case ".jpg", ".jpeg":
		return codec.DecodeJPEG(path)
	default:
		return nil, fmt.Errorf("load: cannot infer format from extension of %q", path)
	}
}

func replaceExt(path, format string) string {
	ext := format
	if ext == "jpg" {
		ext = "jpeg"
	}
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return base + "." + ext
}
