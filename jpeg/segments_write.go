package jpeg

import (
	"github.com/pixelkit/codec/huffman"
	"github.com/pixelkit/codec/quant"
)

func appendMarker(out []byte, m marker) []byte {
	return append(out, byte(m>>8), byte(m))
}

func appendU16(out []byte, v uint16) []byte {
	return append(out, byte(v>>8), byte(v))
}

func appendDQT(out []byte, t *quant.Table) []byte {
	out = appendMarker(out, markerDQT)
	if t.Precision == 16 {
		out = appendU16(out, uint16(2+1+128))
		out = append(out, byte(1<<4)|byte(t.Dest&0x0F))
		for _, v := range t.ToWire() {
			out = appendU16(out, uint16(v))
		}
		return out
	}
	out = appendU16(out, uint16(2+1+64))
	out = append(out, byte(t.Dest&0x0F))
	for _, v := range t.ToWire() {
		out = append(out, byte(v))
	}
	return out
}

func appendSOF0(out []byte, width, height uint32) []byte {
	out = appendMarker(out, markerSOF0)
	out = appendU16(out, uint16(2+1+2+2+1+3*3))
	out = append(out, 8) // precision
	out = appendU16(out, uint16(height))
	out = appendU16(out, uint16(width))
	out = append(out, 3) // component count
	out = append(out, 1, 0x11, 0)
	out = append(out, 2, 0x11, 1)
	out = append(out, 3, 0x11, 1)
	return out
}

func appendDHT(out []byte, class, dest int, t *huffman.Table) []byte {
	symbols, counts := t.CodeLengthCounts()
	out = appendMarker(out, markerDHT)
	out = appendU16(out, uint16(2+1+16+len(symbols)))
	out = append(out, byte(class<<4)|byte(dest))
	for _, c := range counts {
		out = append(out, byte(c))
	}
	out = append(out, symbols...)
	return out
}

func appendSOS(out []byte) []byte {
	out = appendMarker(out, markerSOS)
	out = appendU16(out, uint16(2+1+3*2+3))
	out = append(out, 3)
	out = append(out, 1, 0x00) // Y: DC table 0, AC table 0
	out = append(out, 2, 0x11) // Cb: DC table 1, AC table 1
	out = append(out, 3, 0x11) // Cr: DC table 1, AC table 1
	out = append(out, 0, 63, 0)
	return out
}
