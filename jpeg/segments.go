package jpeg

import (
	"github.com/pixelkit/codec/cerr"
	"github.com/pixelkit/codec/huffman"
	"github.com/pixelkit/codec/quant"
)

// parseDQT parses one DQT segment, which may carry several quantization
// tables back to back, storing each into the registry.
func parseDQT(data []byte, i *int, reg *registry[quant.Table]) error {
	length, err := readU16(data, i)
	if err != nil {
		return err
	}
	end := *i + int(length) - 2
	if end > len(data) {
		return cerr.New(cerr.LengthMismatch, "jpeg: DQT segment exceeds buffer")
	}
	for *i < end {
		pqTq := data[*i]
		*i++
		pq := pqTq >> 4
		tq := int(pqTq & 0x0F)
		if pq > 1 {
			return cerr.New(cerr.Format, "jpeg: DQT precision nibble %d must be 0 or 1", pq)
		}
		if tq > 3 {
			return cerr.New(cerr.Format, "jpeg: DQT destination %d out of range [0,3]", tq)
		}
		var zz [64]uint16
		for k := 0; k < 64; k++ {
			if pq == 0 {
				if *i >= len(data) {
					return cerr.New(cerr.IO, "jpeg: truncated DQT table")
				}
				zz[k] = uint16(data[*i])
				*i++
			} else {
				if *i+2 > len(data) {
					return cerr.New(cerr.IO, "jpeg: truncated DQT table")
				}
				zz[k] = uint16(data[*i])<<8 | uint16(data[*i+1])
				*i += 2
			}
		}
		precision := 8
		if pq != 0 {
			precision = 16
		}
		table, err := quant.FromWire(zz, precision, tq)
		if err != nil {
			return err
		}
		reg.define(tq, table)
	}
	if *i != end {
		return cerr.New(cerr.LengthMismatch, "jpeg: DQT length mismatch")
	}
	return nil
}

// parseDHT parses one DHT segment, which may carry several Huffman tables
// back to back, storing each into the DC or AC registry by class.
func parseDHT(data []byte, i *int, dc, ac *registry[huffman.Table]) error {
	length, err := readU16(data, i)
	if err != nil {
		return err
	}
	end := *i + int(length) - 2
	if end > len(data) {
		return cerr.New(cerr.LengthMismatch, "jpeg: DHT segment exceeds buffer")
	}
	for *i < end {
		classDest := data[*i]
		*i++
		class := classDest >> 4
		dest := int(classDest & 0x0F)
		if class > 1 {
			return cerr.New(cerr.Format, "jpeg: DHT class nibble %d must be 0 or 1", class)
		}
		if dest > 3 {
			return cerr.New(cerr.Format, "jpeg: DHT destination %d out of range [0,3]", dest)
		}
		if *i+16 > len(data) {
			return cerr.New(cerr.IO, "jpeg: truncated DHT length counts")
		}
		var counts [16]int
		total := 0
		for k := 0; k < 16; k++ {
			counts[k] = int(data[*i+k])
			total += counts[k]
		}
		*i += 16
		if *i+total > len(data) {
			return cerr.New(cerr.IO, "jpeg: truncated DHT symbol list")
		}
		symbols := make([]uint8, total)
		copy(symbols, data[*i:*i+total])
		*i += total

		table, err := huffman.Build(symbols, counts)
		if err != nil {
			return err
		}
		if class == 0 {
			dc.define(dest, table)
		} else {
			ac.define(dest, table)
		}
	}
	if *i != end {
		return cerr.New(cerr.LengthMismatch, "jpeg: DHT length mismatch")
	}
	return nil
}

func parseSOF(data []byte, i *int, progressive bool) (*FrameHeader, error) {
	length, err := readU16(data, i)
	if err != nil {
		return nil, err
	}
	end := *i + int(length) - 2
	if *i+6 > len(data) {
		return nil, cerr.New(cerr.IO, "jpeg: truncated SOF")
	}
	precision := data[*i]
	height := uint32(data[*i+1])<<8 | uint32(data[*i+2])
	width := uint32(data[*i+3])<<8 | uint32(data[*i+4])
	numComp := int(data[*i+5])
	*i += 6

	if *i+3*numComp > len(data) {
		return nil, cerr.New(cerr.IO, "jpeg: truncated SOF component list")
	}
	comps := make([]ComponentInfo, numComp)
	for c := 0; c < numComp; c++ {
		comps[c] = ComponentInfo{
			ID:        data[*i],
			H:         data[*i+1] >> 4,
			V:         data[*i+1] & 0x0F,
			QTableSel: data[*i+2],
		}
		*i += 3
	}
	if *i != end {
		return nil, cerr.New(cerr.LengthMismatch, "jpeg: SOF length mismatch")
	}
	return newFrameHeader(progressive, precision, height, width, comps)
}

func parseSOS(data []byte, i *int, frame *FrameHeader, dc, ac *registry[huffman.Table]) (*ScanHeader, error) {
	length, err := readU16(data, i)
	if err != nil {
		return nil, err
	}
	end := *i + int(length) - 2
	if *i+1 > len(data) {
		return nil, cerr.New(cerr.IO, "jpeg: truncated SOS")
	}
	numComp := int(data[*i])
	*i++
	if *i+2*numComp > len(data) {
		return nil, cerr.New(cerr.IO, "jpeg: truncated SOS component list")
	}
	comps := make([]ScanComponentSel, numComp)
	for c := 0; c < numComp; c++ {
		id := data[*i]
		if _, ok := frame.componentIndex(id); !ok {
			return nil, cerr.New(cerr.Format, "jpeg: scan references undeclared component %d", id)
		}
		comps[c] = ScanComponentSel{
			ComponentID: id,
			DCTableSel:  data[*i+1] >> 4,
			ACTableSel:  data[*i+1] & 0x0F,
		}
		*i += 2
	}
	if *i+3 > len(data) {
		return nil, cerr.New(cerr.IO, "jpeg: truncated SOS spectral/approximation fields")
	}
	ss := data[*i]
	se := data[*i+1]
	ah := data[*i+2] >> 4
	al := data[*i+2] & 0x0F
	*i += 3
	if *i != end {
		return nil, cerr.New(cerr.LengthMismatch, "jpeg: SOS length mismatch")
	}
	return newScanHeader(comps, ss, se, ah, al, dc.current(), ac.current())
}

func readU16(data []byte, i *int) (uint16, error) {
	if *i+2 > len(data) {
		return 0, cerr.New(cerr.IO, "jpeg: truncated segment length")
	}
	v := uint16(data[*i])<<8 | uint16(data[*i+1])
	*i += 2
	return v, nil
}
