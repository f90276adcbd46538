package jpeg

import (
	"fmt"

	"github.com/pixelkit/codec/bitio"
	"github.com/pixelkit/codec/cerr"
	"github.com/pixelkit/codec/huffman"
	"github.com/pixelkit/codec/quant"
	"github.com/pixelkit/codec/raster"
)

// EncodeOptions controls baseline JPEG encoding quality and Huffman table
// construction.
type EncodeOptions struct {
	LuminanceQuality   int // 1..100
	ChrominanceQuality int // 1..100
	OptimizeHuffman    bool
}

// Encode writes img as a single-scan, 4:4:4-sampled baseline JPEG.
func Encode(img *raster.Image, opts EncodeOptions) ([]byte, error) {
	if err := img.Validate(); err != nil {
		return nil, cerr.Wrap(err, cerr.Format, "jpeg: encode")
	}
	if opts.LuminanceQuality < 1 || opts.LuminanceQuality > 100 {
		return nil, cerr.New(cerr.Format, "jpeg: luminance quality %d out of range [1,100]", opts.LuminanceQuality)
	}
	if opts.ChrominanceQuality < 1 || opts.ChrominanceQuality > 100 {
		return nil, cerr.New(cerr.Format, "jpeg: chrominance quality %d out of range [1,100]", opts.ChrominanceQuality)
	}

	lumTable, err := quant.ScaleForQuality(stdLuminanceQuant, opts.LuminanceQuality, 8, 0)
	if err != nil {
		return nil, err
	}
	chromaTable, err := quant.ScaleForQuality(stdChrominanceQuant, opts.ChrominanceQuality, 8, 1)
	if err != nil {
		return nil, err
	}

	blocksX := int((img.Width + 7) / 8)
	blocksY := int((img.Height + 7) / 8)
	n := blocksX * blocksY

	yBlocks := make([]CoeffBlock, n)
	cbBlocks := make([]CoeffBlock, n)
	crBlocks := make([]CoeffBlock, n)

	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			idx := by*blocksX + bx
			var yF, cbF, crF quant.Block
			for py := 0; py < 8; py++ {
				sy := clampIndex(by*8+py, int(img.Height))
				for px := 0; px < 8; px++ {
					sx := clampIndex(bx*8+px, int(img.Width))
					r, g, b := img.At(uint32(sx), uint32(sy))
					y, cb, cr := rgbToYCbCr(r, g, b)
					yF[py*8+px] = y
					cbF[py*8+px] = cb
					crF[py*8+px] = cr
				}
			}
			quant.ForwardDCT(&yF)
			quant.ForwardDCT(&cbF)
			quant.ForwardDCT(&crF)
			yBlocks[idx] = toCoeffBlock(lumTable.Quantize(yF))
			cbBlocks[idx] = toCoeffBlock(chromaTable.Quantize(cbF))
			crBlocks[idx] = toCoeffBlock(chromaTable.Quantize(crF))
		}
	}

	lumDC, lumAC, chromaDC, chromaAC, err := buildEncoderTables(yBlocks, cbBlocks, crBlocks, opts.OptimizeHuffman)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, n*64)
	out = appendMarker(out, markerSOI)
	out = appendDQT(out, lumTable)
	out = appendDQT(out, chromaTable)
	out = appendSOF0(out, img.Width, img.Height)
	out = appendDHT(out, 0, 0, lumDC)
	out = appendDHT(out, 0, 1, chromaDC)
	out = appendDHT(out, 1, 0, lumAC)
	out = appendDHT(out, 1, 1, chromaAC)
	out = appendSOS(out)

	scan := encodeScanData(yBlocks, cbBlocks, crBlocks, lumDC, lumAC, chromaDC, chromaAC)
	out = append(out, scan...)
	out = appendMarker(out, markerEOI)
	return out, nil
}

func clampIndex(i, limit int) int {
	if i >= limit {
		return limit - 1
	}
	return i
}

func toCoeffBlock(v [64]int32) CoeffBlock {
	var out CoeffBlock
	copy(out[:], v[:])
	return out
}

func buildEncoderTables(yBlocks, cbBlocks, crBlocks []CoeffBlock, optimize bool) (lumDC, lumAC, chromaDC, chromaAC *huffman.Table, err error) {
	if !optimize {
		if lumDC, err = huffman.Build(stdDCLumaSymbols, stdDCLumaCounts); err != nil {
			return
		}
		if lumAC, err = huffman.Build(stdACLumaSymbols, stdACLumaCounts); err != nil {
			return
		}
		if chromaDC, err = huffman.Build(stdDCChromaSymbols, stdDCChromaCounts); err != nil {
			return
		}
		chromaAC, err = huffman.Build(stdACChromaSymbols, stdACChromaCounts)
		return
	}

	var lumDCSyms, lumACSyms, chromaDCSyms, chromaACSyms []uint8
	var prevY, prevCb, prevCr int32
	for i := range yBlocks {
		dc := rleDC(prevY, yBlocks[i][0])
		prevY = yBlocks[i][0]
		lumDCSyms = append(lumDCSyms, dc.Sym)
		for _, s := range rleAC(&yBlocks[i]) {
			lumACSyms = append(lumACSyms, s.Sym)
		}

		dcCb := rleDC(prevCb, cbBlocks[i][0])
		prevCb = cbBlocks[i][0]
		chromaDCSyms = append(chromaDCSyms, dcCb.Sym)
		for _, s := range rleAC(&cbBlocks[i]) {
			chromaACSyms = append(chromaACSyms, s.Sym)
		}

		dcCr := rleDC(prevCr, crBlocks[i][0])
		prevCr = crBlocks[i][0]
		chromaDCSyms = append(chromaDCSyms, dcCr.Sym)
		for _, s := range rleAC(&crBlocks[i]) {
			chromaACSyms = append(chromaACSyms, s.Sym)
		}
	}

	build := func(rle []uint8) (*huffman.Table, error) {
		symbols, counts, oerr := huffman.Optimize(rle)
		if oerr != nil {
			return nil, oerr
		}
		return huffman.Build(symbols, counts)
	}
	if lumDC, err = build(lumDCSyms); err != nil {
		return
	}
	if lumAC, err = build(lumACSyms); err != nil {
		return
	}
	if chromaDC, err = build(chromaDCSyms); err != nil {
		return
	}
	chromaAC, err = build(chromaACSyms)
	return
}

func encodeScanData(yBlocks, cbBlocks, crBlocks []CoeffBlock, lumDC, lumAC, chromaDC, chromaAC *huffman.Table) []byte {
	w := bitio.NewWriter()
	w.SetStuffing(true)

	var prevY, prevCb, prevCr int32
	emitBlock := func(b *CoeffBlock, prevDC *int32, dcTable, acTable *huffman.Table) {
		dc := rleDC(*prevDC, b[0])
		*prevDC = b[0]
		emitSymbol(w, dcTable, dc)
		for _, s := range rleAC(b) {
			emitSymbol(w, acTable, s)
		}
	}

	for i := range yBlocks {
		emitBlock(&yBlocks[i], &prevY, lumDC, lumAC)
		emitBlock(&cbBlocks[i], &prevCb, chromaDC, chromaAC)
		emitBlock(&crBlocks[i], &prevCr, chromaDC, chromaAC)
	}

	w.FlushByte(true)
	w.SetStuffing(false)
	return w.Bytes()
}

func emitSymbol(w *bitio.Writer, t *huffman.Table, s rleSymbol) {
	code, length, ok := t.Encode(s.Sym)
	if !ok {
		panic(fmt.Sprintf("jpeg: encoder Huffman table missing symbol 0x%02X", s.Sym))
	}
	w.WriteBits(uint32(code), uint(length))
	if s.NBits > 0 {
		w.WriteBits(s.Bits, uint(s.NBits))
	}
}
