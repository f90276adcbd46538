package jpeg

import (
	"github.com/pixelkit/codec/cerr"
	"github.com/pixelkit/codec/huffman"
	"github.com/pixelkit/codec/quant"
)

// parseResult is everything the marker parser extracts from a JPEG file
// before decode begins: the frame geometry, every scan header together with
// its already byte-destuffed entropy-coded segment, and the final state of
// every table registry.
type parseResult struct {
	frame            *FrameHeader
	scans            []*ScanHeader
	scanData         [][]byte
	restartIntervals []int

	dqt    registry[quant.Table]
	dcHuff registry[huffman.Table]
	acHuff registry[huffman.Table]
}

type parseState int

const (
	stateInit parseState = iota
	stateApplication
	stateFrame
	stateScan
	stateFinal
)

func parse(data []byte) (*parseResult, error) {
	p := &parseResult{}
	state := stateInit
	restartInterval := 0
	i := 0

	readMarker := func() (marker, error) {
		for i+1 < len(data) && data[i] == 0xFF && data[i+1] == 0xFF {
			i++ // skip fill bytes
		}
		if i+1 >= len(data) || data[i] != 0xFF {
			return 0, cerr.New(cerr.Format, "jpeg: expected marker at offset %d", i)
		}
		m := marker(uint16(data[i])<<8 | uint16(data[i+1]))
		i += 2
		return m, nil
	}

	read16 := func() (uint16, error) {
		if i+2 > len(data) {
			return 0, cerr.New(cerr.IO, "jpeg: truncated segment length at offset %d", i)
		}
		v := uint16(data[i])<<8 | uint16(data[i+1])
		i += 2
		return v, nil
	}

	for {
		m, err := readMarker()
		if err != nil {
			return nil, err
		}

		switch m {
		case markerSOI:
			if state != stateInit {
				return nil, cerr.New(cerr.Format, "jpeg: unexpected SOI in state %d", int(state))
			}
			state = stateApplication
			continue
		case markerEOI:
			state = stateFinal
		}
		if state == stateFinal {
			break
		}

		switch {
		case m.isRST():
			return nil, cerr.New(cerr.Format, "jpeg: RSTn marker outside scan data at offset %d", i)
		case m.isApp(), m == markerCOM:
			length, err := read16()
			if err != nil {
				return nil, err
			}
			if int(length) < 2 || i+int(length)-2 > len(data) {
				return nil, cerr.New(cerr.LengthMismatch, "jpeg: bad %s length %d", m.name(), length)
			}
			i += int(length) - 2
		case m == markerDQT:
			if err := parseDQT(data, &i, &p.dqt); err != nil {
				return nil, err
			}
			state = stateFrame
		case m == markerDHT:
			if err := parseDHT(data, &i, &p.dcHuff, &p.acHuff); err != nil {
				return nil, err
			}
			state = stateFrame
		case m == markerDRI:
			length, err := read16()
			if err != nil {
				return nil, err
			}
			if length != 4 || i+2 > len(data) {
				return nil, cerr.New(cerr.LengthMismatch, "jpeg: DRI length must be 4, got %d", length)
			}
			restartInterval = int(data[i])<<8 | int(data[i+1])
			i += 2
			state = stateFrame
		case m == markerDNL:
			length, err := read16()
			if err != nil {
				return nil, err
			}
			if length != 4 || i+2 > len(data) {
				return nil, cerr.New(cerr.LengthMismatch, "jpeg: DNL length must be 4, got %d", length)
			}
			lines := uint32(data[i])<<8 | uint32(data[i+1])
			i += 2
			if p.frame != nil {
				p.frame.Height = lines
				p.frame.MCUGridH = (lines + p.frame.MCUPxH - 1) / p.frame.MCUPxH
			}
		case m == markerSOF0 || m == markerSOF2:
			if p.frame != nil {
				return nil, cerr.New(cerr.Format, "jpeg: multiple SOF segments not supported")
			}
			f, err := parseSOF(data, &i, m == markerSOF2)
			if err != nil {
				return nil, err
			}
			p.frame = f
			state = stateScan
		case m == markerSOF1 || m == markerSOF3 || (m >= markerSOF5 && m <= markerSOFF && m != markerDHT && m != markerDAC):
			return nil, cerr.New(cerr.Format, "jpeg: unsupported SOF variant %s", m.name())
		case m == markerSOS:
			if p.frame == nil {
				return nil, cerr.New(cerr.Format, "jpeg: SOS before SOF")
			}
			sh, err := parseSOS(data, &i, p.frame, &p.dcHuff, &p.acHuff)
			if err != nil {
				return nil, err
			}
			ecs := destuffScanData(data, &i)
			p.scans = append(p.scans, sh)
			p.scanData = append(p.scanData, ecs)
			p.restartIntervals = append(p.restartIntervals, restartInterval)
			state = stateScan
		default:
			return nil, cerr.New(cerr.Format, "jpeg: unsupported marker %s (0x%04X)", m.name(), uint16(m))
		}
	}

	if p.frame == nil {
		return nil, cerr.New(cerr.Format, "jpeg: no SOF segment found")
	}
	if len(p.scans) == 0 {
		return nil, cerr.New(cerr.Format, "jpeg: no SOS segment found")
	}
	return p, nil
}

// destuffScanData consumes entropy-coded bytes from *i up to (but not
// including) the next real marker, dropping RSTn markers entirely and
// undoing FF 00 byte stuffing.
func destuffScanData(data []byte, i *int) []byte {
	var out []byte
	for *i < len(data) {
		b := data[*i]
		if b != 0xFF {
			out = append(out, b)
			*i++
			continue
		}
		if *i+1 >= len(data) {
			*i++
			break
		}
		next := data[*i+1]
		switch {
		case next == 0x00:
			out = append(out, 0xFF)
			*i += 2
		case marker(uint16(0xFF)<<8|uint16(next)).isRST():
			*i += 2
		default:
			return out // real marker follows; stop here, don't consume it
		}
	}
	return out
}
