package jpeg

import (
	"github.com/pixelkit/codec/cerr"
)

// ComponentInfo is one SOFn component record.
type ComponentInfo struct {
	ID        uint8
	H, V      uint8 // sampling factors, each in [1,4] on the wire
	QTableSel uint8
}

// FrameHeader is the parsed SOF0/SOF2 segment plus the derived MCU geometry.
type FrameHeader struct {
	Progressive bool
	Precision   uint8
	Height      uint32
	Width       uint32
	Components  []ComponentInfo

	MaxH, MaxV         uint8
	MCUPxW, MCUPxH     uint32
	MCUGridW, MCUGridH uint32
}

// maxSamplingProduct caps H*V summed across components (T.81 B.2.2 limits
// the sum to 10); anything above is an unsupported sampling layout.
const maxSamplingProduct = 10

func newFrameHeader(progressive bool, precision uint8, height, width uint32, comps []ComponentInfo) (*FrameHeader, error) {
	if precision != 8 {
		return nil, cerr.New(cerr.Format, "jpeg: unsupported sample precision %d, only 8-bit is supported", precision)
	}
	if len(comps) < 1 || len(comps) > 4 {
		return nil, cerr.New(cerr.Format, "jpeg: component count %d out of range [1,4]", len(comps))
	}

	var maxH, maxV uint8 = 1, 1
	sum := 0
	for i, c := range comps {
		if c.H < 1 || c.H > 4 || c.V < 1 || c.V > 4 {
			return nil, cerr.New(cerr.Format, "jpeg: component %d sampling factors out of range", c.ID)
		}
		if i > 0 && (c.H != 1 || c.V != 1) {
			return nil, cerr.New(cerr.Format, "jpeg: chroma component %d must have H=V=1, got H=%d V=%d", c.ID, c.H, c.V)
		}
		if c.H > maxH {
			maxH = c.H
		}
		if c.V > maxV {
			maxV = c.V
		}
		sum += int(c.H) * int(c.V)
	}
	if sum > maxSamplingProduct {
		return nil, cerr.New(cerr.Format, "jpeg: sum of H*V sampling products %d exceeds %d", sum, maxSamplingProduct)
	}

	mcuPxW := uint32(8) * uint32(maxH)
	mcuPxH := uint32(8) * uint32(maxV)
	gridW := (width + mcuPxW - 1) / mcuPxW
	gridH := (height + mcuPxH - 1) / mcuPxH

	return &FrameHeader{
		Progressive: progressive,
		Precision:   precision,
		Height:      height,
		Width:       width,
		Components:  comps,
		MaxH:        maxH,
		MaxV:        maxV,
		MCUPxW:      mcuPxW,
		MCUPxH:      mcuPxH,
		MCUGridW:    gridW,
		MCUGridH:    gridH,
	}, nil
}

// componentIndex returns the position of a component id within the frame.
func (f *FrameHeader) componentIndex(id uint8) (int, bool) {
	for i, c := range f.Components {
		if c.ID == id {
			return i, true
		}
	}
	return 0, false
}

// ScanComponentSel is one SOS component selector.
type ScanComponentSel struct {
	ComponentID uint8
	DCTableSel  uint8
	ACTableSel  uint8
}

// ScanHeader is a parsed SOS segment, with the table iteration it is bound
// to frozen at parse time.
type ScanHeader struct {
	Components  []ScanComponentSel
	Ss, Se      uint8
	Ah, Al      uint8
	DCIteration int
	ACIteration int
}

func newScanHeader(comps []ScanComponentSel, ss, se, ah, al uint8, dcIter, acIter int) (*ScanHeader, error) {
	if ss > 63 || se > 63 || ss > se {
		return nil, cerr.New(cerr.Corrupt, "jpeg: spectral selection [%d,%d] invalid", ss, se)
	}
	if len(comps) < 1 || len(comps) > 4 {
		return nil, cerr.New(cerr.Format, "jpeg: scan component count %d out of range [1,4]", len(comps))
	}
	return &ScanHeader{
		Components:  comps,
		Ss:          ss,
		Se:          se,
		Ah:          ah,
		Al:          al,
		DCIteration: dcIter,
		ACIteration: acIter,
	}, nil
}

// isDCOnly reports whether this progressive scan carries only DC bits.
func (s *ScanHeader) isDCOnly() bool {
	return s.Ss == 0 && s.Se == 0
}

// isFirst reports whether this is a first (non-refinement) scan.
func (s *ScanHeader) isFirst() bool {
	return s.Ah == 0
}
