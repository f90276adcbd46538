package jpeg

import (
	"github.com/pixelkit/codec/bitio"
	"github.com/pixelkit/codec/cerr"
	"github.com/pixelkit/codec/huffman"
)

// scanTables resolves, for one scan, the DC/AC Huffman table to use for
// each of its component selectors, in the same order as sh.Components.
func scanTables(sh *ScanHeader, dcReg, acReg *registry[huffman.Table]) (dc, ac []*huffman.Table) {
	dc = make([]*huffman.Table, len(sh.Components))
	ac = make([]*huffman.Table, len(sh.Components))
	for i, comp := range sh.Components {
		dc[i] = dcReg.at(sh.DCIteration, int(comp.DCTableSel))
		ac[i] = acReg.at(sh.ACIteration, int(comp.ACTableSel))
	}
	return dc, ac
}

// validateScanTables checks that every Huffman table a scan will consult is
// actually defined in the iteration the scan was bound to. DC refinement
// scans consult no table at all; other progressive scans consult only the
// class matching their spectral range.
func validateScanTables(sh *ScanHeader, progressive bool, dcReg, acReg *registry[huffman.Table]) error {
	needDC := !progressive || (sh.isDCOnly() && sh.isFirst())
	needAC := !progressive || !sh.isDCOnly()
	for _, comp := range sh.Components {
		if needDC && dcReg.at(sh.DCIteration, int(comp.DCTableSel)) == nil {
			return cerr.New(cerr.Format, "jpeg: scan component %d references undefined DC table %d",
				comp.ComponentID, comp.DCTableSel)
		}
		if needAC && acReg.at(sh.ACIteration, int(comp.ACTableSel)) == nil {
			return cerr.New(cerr.Format, "jpeg: scan component %d references undefined AC table %d",
				comp.ComponentID, comp.ACTableSel)
		}
	}
	return nil
}

// blocksFor returns, for a component selector within an MCU, the slice of
// its coefficient blocks: H*V entries for the first (luminance) component,
// one for chroma. Non-interleaved progressive scans are assumed to run
// over 1x1-sampled images (the only sampling our own encoder emits);
// subsampled progressive decode is out of scope (see DESIGN.md).
func blocksFor(mcu *MCU, frame *FrameHeader, componentID uint8) []*CoeffBlock {
	idx, _ := frame.componentIndex(componentID)
	if idx == 0 {
		out := make([]*CoeffBlock, len(mcu.Y))
		for i := range mcu.Y {
			out[i] = &mcu.Y[i]
		}
		return out
	}
	if idx == 1 {
		return []*CoeffBlock{&mcu.Cb}
	}
	return []*CoeffBlock{&mcu.Cr}
}

// runBaseline decodes every MCU of a baseline scan in raster order,
// pushing each onto dequantC as it completes.
func runBaseline(co *coordinator, g *grid, frame *FrameHeader, sh *ScanHeader, scanData []byte, restartInterval int, dcReg, acReg *registry[huffman.Table], dequantC chan<- int) {
	defer close(dequantC)

	dcTables, acTables := scanTables(sh, dcReg, acReg)
	r := bitio.NewReader(scanData)
	prevDC := make([]int32, len(sh.Components))

	for mcuIndex := 0; mcuIndex < g.size(); mcuIndex++ {
		if restartInterval > 0 && mcuIndex > 0 && mcuIndex%restartInterval == 0 {
			r.AlignToByte()
			for i := range prevDC {
				prevDC[i] = 0
			}
		}
		mcu := g.at(mcuIndex)
		for ci, comp := range sh.Components {
			blocks := blocksFor(mcu, frame, comp.ComponentID)
			for _, b := range blocks {
				decoded, err := decodeBaselineBlock(r, dcTables[ci], acTables[ci], &prevDC[ci])
				if err != nil {
					co.setFatal(err)
					return
				}
				*b = decoded
			}
		}
		dequantC <- mcuIndex
	}
}

// progressiveScanState tracks the decoder-local state that persists across
// MCUs within one progressive scan: previous DC values and the EOB run.
type progressiveScanState struct {
	prevDC []int32
	eobrun int
}

// runProgressiveScan decodes every MCU of one progressive scan, honouring
// the upstream fence (for scans after the first) and advancing its own
// fence as it completes each MCU. If it is the final scan, it also pushes
// completed MCUs onto dequantC.
func runProgressiveScan(co *coordinator, g *grid, frame *FrameHeader, sh *ScanHeader, scanData []byte, restartInterval int, dcReg, acReg *registry[huffman.Table], upstream, self *fence, isFinal bool, dequantC chan<- int) {
	if isFinal {
		defer close(dequantC)
	}
	dcTables, acTables := scanTables(sh, dcReg, acReg)
	r := bitio.NewReader(scanData)
	st := &progressiveScanState{prevDC: make([]int32, len(sh.Components))}

	for mcuIndex := 0; mcuIndex < g.size(); mcuIndex++ {
		if restartInterval > 0 && mcuIndex > 0 && mcuIndex%restartInterval == 0 {
			r.AlignToByte()
			for i := range st.prevDC {
				st.prevDC[i] = 0
			}
			st.eobrun = 0
		}
		upstream.waitAtLeast(mcuIndex)

		mcu := g.at(mcuIndex)
		if err := decodeProgressiveMCU(r, mcu, frame, sh, dcTables, acTables, st); err != nil {
			co.setFatal(err)
			self.advance(g.size())
			return
		}

		self.advance(mcuIndex)
		if isFinal {
			dequantC <- mcuIndex
		}
	}
}

func decodeProgressiveMCU(r *bitio.Reader, mcu *MCU, frame *FrameHeader, sh *ScanHeader, dcTables, acTables []*huffman.Table, st *progressiveScanState) error {
	for ci, comp := range sh.Components {
		blocks := blocksFor(mcu, frame, comp.ComponentID)
		for _, b := range blocks {
			var err error
			switch {
			case sh.isDCOnly() && sh.isFirst():
				b[0], err = decodeDCFirst(r, dcTables[ci], &st.prevDC[ci], sh.Al)
			case sh.isDCOnly() && !sh.isFirst():
				b[0] = decodeDCRefine(r, b[0], sh.Al)
			case !sh.isDCOnly() && sh.isFirst():
				err = decodeACFirst(r, acTables[ci], b, sh.Ss, sh.Se, sh.Al, &st.eobrun)
			default:
				err = decodeACRefine(r, acTables[ci], b, sh.Ss, sh.Se, sh.Al, &st.eobrun)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
