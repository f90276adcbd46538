package jpeg

import (
	"github.com/pixelkit/codec/bitio"
	"github.com/pixelkit/codec/cerr"
	"github.com/pixelkit/codec/huffman"
	"github.com/pixelkit/codec/quant"
)

// decodeValue peeks 16 bits, resolves a Huffman symbol, and consumes the
// bits the code actually took.
func decodeValue(r *bitio.Reader, t *huffman.Table) (uint8, error) {
	word := r.PeekWord()
	consumed, symbol, err := t.Decode(word)
	if err != nil {
		return 0, cerr.Wrap(err, cerr.Corrupt, "jpeg: entropy decode")
	}
	r.SkipBits(uint(consumed))
	return symbol, nil
}

// extend interprets bits as a signed ssss-bit magnitude per JPEG's
// "additional bits" encoding (Annex F.2.2.1).
func extend(ssss uint8, bits uint32) int32 {
	if ssss == 0 {
		return 0
	}
	vt := int32(1) << (ssss - 1)
	v := int32(bits)
	if v < vt {
		return v - (int32(1)<<ssss - 1)
	}
	return v
}

func decodeDC(r *bitio.Reader, dcTable *huffman.Table) (int32, error) {
	ssss, err := decodeValue(r, dcTable)
	if err != nil {
		return 0, err
	}
	if ssss > 16 {
		return 0, cerr.New(cerr.Corrupt, "jpeg: DC magnitude category %d out of range", ssss)
	}
	bits := r.ReadBits(uint(ssss))
	return extend(ssss, bits), nil
}

// decodeAC reads one (run, size) pair: the run of preceding zeros and the
// magnitude category of the following coefficient, split from one byte.
func decodeAC(r *bitio.Reader, acTable *huffman.Table) (run, size uint8, err error) {
	rs, err := decodeValue(r, acTable)
	if err != nil {
		return 0, 0, err
	}
	return rs >> 4, rs & 0x0F, nil
}

// decodeBaselineBlock decodes one full 8x8 block (DC + all AC) for baseline
// scans, updating prevDC in place.
func decodeBaselineBlock(r *bitio.Reader, dcTable, acTable *huffman.Table, prevDC *int32) (CoeffBlock, error) {
	var block CoeffBlock

	diff, err := decodeDC(r, dcTable)
	if err != nil {
		return block, err
	}
	*prevDC += diff
	block[0] = *prevDC

	i := 1
	for i < 64 {
		run, size, err := decodeAC(r, acTable)
		if err != nil {
			return block, err
		}
		if run == 0 && size == 0 { // EOB
			break
		}
		if run == 15 && size == 0 { // ZRL
			i += 16
			continue
		}
		i += int(run)
		if i >= 64 {
			return block, cerr.New(cerr.Corrupt, "jpeg: AC run overruns block")
		}
		bits := r.ReadBits(uint(size))
		block[quant.ZigZag[i]] = extend(size, bits)
		i++
	}
	return block, nil
}
