package jpeg

import (
	"math/bits"

	"github.com/pixelkit/codec/quant"
)

// rleSymbol is one emitted (Huffman symbol, additional bits) pair from the
// encoder's RLE stage: DC emits exactly one per block, AC emits a sequence
// terminated by EOB (or none, if the last zigzag position is non-zero).
type rleSymbol struct {
	Sym   uint8 // DC: ssss. AC: (run<<4)|size, or 0xF0 (ZRL) / 0x00 (EOB).
	Bits  uint32
	NBits uint8
}

// magnitudeCategory returns the JPEG "ssss" category of v: the number of
// bits needed to hold |v|, or 0 for v == 0.
func magnitudeCategory(v int32) uint8 {
	if v == 0 {
		return 0
	}
	mag := v
	if mag < 0 {
		mag = -mag
	}
	return uint8(bits.Len32(uint32(mag)))
}

// additionalBits computes the JPEG "additional bits" code word for v given
// its category ssss: this is extend's exact inverse.
func additionalBits(v int32, ssss uint8) uint32 {
	if ssss == 0 {
		return 0
	}
	if v >= 0 {
		return uint32(v)
	}
	return uint32(v + (int32(1)<<ssss - 1))
}

// rleDC builds the single DC symbol for one block.
func rleDC(prevDC, dc int32) rleSymbol {
	diff := dc - prevDC
	ssss := magnitudeCategory(diff)
	return rleSymbol{Sym: ssss, Bits: additionalBits(diff, ssss), NBits: ssss}
}

// rleAC walks a block's AC coefficients in zigzag order and returns its RLE
// symbol stream, including ZRL and the trailing EOB (omitted only when the
// last zigzag position holds a non-zero coefficient).
func rleAC(block *CoeffBlock) []rleSymbol {
	var out []rleSymbol
	run := 0
	lastNonZero := 0
	for i := 1; i < 64; i++ {
		if block[quant.ZigZag[i]] != 0 {
			lastNonZero = i
		}
	}
	for i := 1; i <= lastNonZero; i++ {
		v := block[quant.ZigZag[i]]
		if v == 0 {
			run++
			for run > 15 {
				out = append(out, rleSymbol{Sym: 0xF0})
				run -= 16
			}
			continue
		}
		ssss := magnitudeCategory(v)
		out = append(out, rleSymbol{
			Sym:   uint8(run<<4) | ssss,
			Bits:  additionalBits(v, ssss),
			NBits: ssss,
		})
		run = 0
	}
	if lastNonZero < 63 {
		out = append(out, rleSymbol{Sym: 0x00})
	}
	return out
}
