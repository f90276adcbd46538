package jpeg

import (
	"github.com/pixelkit/codec/cerr"
	"github.com/pixelkit/codec/quant"
	"github.com/pixelkit/codec/raster"
)

// Decode parses and decodes a complete JPEG byte stream into an RGB image.
func Decode(data []byte) (*raster.Image, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, cerr.New(cerr.Format, "jpeg: missing SOI signature")
	}

	pr, err := parse(data)
	if err != nil {
		return nil, err
	}

	var qtables [4]*quant.Table
	qtIter := pr.dqt.current()
	for dest := 0; dest < 4; dest++ {
		qtables[dest] = pr.dqt.at(qtIter, dest)
	}
	for _, c := range pr.frame.Components {
		if qtables[c.QTableSel] == nil {
			return nil, cerr.New(cerr.Format, "jpeg: component %d references undefined quantization table %d", c.ID, c.QTableSel)
		}
	}

	// Height 0 at SOF time is legal only when a DNL segment supplies the
	// real value before decode; by now both dimensions must be known.
	if pr.frame.Width == 0 || pr.frame.Height == 0 {
		return nil, cerr.New(cerr.Format, "jpeg: frame dimensions %dx%d invalid",
			pr.frame.Width, pr.frame.Height)
	}

	for _, sh := range pr.scans {
		if err := validateScanTables(sh, pr.frame.Progressive, &pr.dcHuff, &pr.acHuff); err != nil {
			return nil, err
		}
	}

	g := newGrid(pr.frame)
	co := newCoordinator(g, pr.frame.Components, int(pr.frame.MaxH), int(pr.frame.MaxV), qtables)

	if !pr.frame.Progressive {
		if len(pr.scans) != 1 {
			return nil, cerr.New(cerr.Format, "jpeg: baseline frame must carry exactly one scan, got %d", len(pr.scans))
		}
		err = co.run(func(dequantC chan<- int) {
			runBaseline(co, g, pr.frame, pr.scans[0], pr.scanData[0], pr.restartIntervals[0], &pr.dcHuff, &pr.acHuff, dequantC)
		})
	} else {
		err = co.run(func(dequantC chan<- int) {
			runProgressive(co, g, pr, dequantC)
		})
	}
	if err != nil {
		return nil, err
	}

	return assembleImage(g, pr.frame), nil
}

// runProgressive launches one goroutine per scan, each gated by the
// previous scan's fence; only the last scan feeds dequantC.
func runProgressive(co *coordinator, g *grid, pr *parseResult, dequantC chan<- int) {
	fences := make([]*fence, len(pr.scans))
	for k := range fences {
		fences[k] = newFence(-1)
	}
	// Fence -1 (the implicit predecessor of scan 0) starts "done" for the
	// whole grid so the first scan is never blocked.
	start := newFence(g.size() - 1)

	done := make(chan struct{}, len(pr.scans))
	for k, sh := range pr.scans {
		upstream := start
		if k > 0 {
			upstream = fences[k-1]
		}
		isFinal := k == len(pr.scans)-1
		go func(k int, sh *ScanHeader, scanData []byte, restartInterval int, upstream, self *fence, isFinal bool) {
			runProgressiveScan(co, g, pr.frame, sh, scanData, restartInterval, &pr.dcHuff, &pr.acHuff, upstream, self, isFinal, dequantC)
			done <- struct{}{}
		}(k, sh, pr.scanData[k], pr.restartIntervals[k], upstream, fences[k], isFinal)
	}
	for range pr.scans {
		<-done
	}
}

// assembleImage converts the fully colour-converted MCU grid into a
// cropped, top-down RGB raster.Image.
func assembleImage(g *grid, frame *FrameHeader) *raster.Image {
	img := raster.New(frame.Width, frame.Height)
	maxH := int(frame.MaxH)

	for mcuRow := 0; mcuRow < g.height; mcuRow++ {
		for mcuCol := 0; mcuCol < g.width; mcuCol++ {
			mcu := g.at(mcuRow*g.width + mcuCol)
			for idx, cb := range mcu.Color {
				blockCol := idx % maxH
				blockRow := idx / maxH
				baseX := uint32(mcuCol)*frame.MCUPxW + uint32(blockCol)*8
				baseY := uint32(mcuRow)*frame.MCUPxH + uint32(blockRow)*8
				for py := 0; py < 8; py++ {
					y := baseY + uint32(py)
					if y >= frame.Height {
						continue
					}
					for px := 0; px < 8; px++ {
						x := baseX + uint32(px)
						if x >= frame.Width {
							continue
						}
						rgb := cb[py*8+px]
						img.Set(x, y, rgb[0], rgb[1], rgb[2])
					}
				}
			}
		}
	}
	return img
}
