package quant

import "github.com/pixelkit/codec/cerr"

// Table is a dequantization/quantization table, held in natural (row-major)
// order in memory even though the wire format transmits it zigzag-ordered.
type Table struct {
	Values    [64]int32
	Precision int // 8 or 16 (bits per element on the wire)
	Dest      int // destination id, 0..3
}

// FromWire builds a Table from the 64 wire-order (zigzag) values read out
// of a DQT segment.
func FromWire(zigzagValues [64]uint16, precision, dest int) (*Table, error) {
	if precision != 8 && precision != 16 {
		return nil, cerr.New(cerr.Format, "quant: precision nibble must be 8 or 16, got %d", precision)
	}
	if dest < 0 || dest > 3 {
		return nil, cerr.New(cerr.Format, "quant: destination %d out of range [0,3]", dest)
	}
	var zz [64]int32
	for i, v := range zigzagValues {
		zz[i] = int32(v)
	}
	return &Table{Values: Dezigzag(zz), Precision: precision, Dest: dest}, nil
}

// ToWire returns the table's values in zigzag (wire) order.
func (t *Table) ToWire() [64]int32 {
	return Zigzag(t.Values)
}

// ScaleForQuality derives a Table from a base (quality-100) table using the
// standard JPEG quality scaling formula: scale = q<50 ? 5000/q : 200-2q;
// each base value is multiplied by scale/100, rounded, and clamped to
// [1, 255] for 8-bit tables or [1, 65535] for 16-bit.
func ScaleForQuality(base [64]int32, quality int, precision, dest int) (*Table, error) {
	if quality < 1 || quality > 100 {
		return nil, cerr.New(cerr.Format, "quant: quality %d out of range [1,100]", quality)
	}
	var scale int
	if quality < 50 {
		scale = 5000 / quality
	} else {
		scale = 200 - 2*quality
	}

	max := int32(255)
	if precision == 16 {
		max = 65535
	}

	var out [64]int32
	for i, v := range base {
		scaled := (v*int32(scale) + 50) / 100
		if scaled < 1 {
			scaled = 1
		} else if scaled > max {
			scaled = max
		}
		out[i] = scaled
	}
	return &Table{Values: out, Precision: precision, Dest: dest}, nil
}

// Quantize divides each coefficient by the matching table entry and rounds
// to the nearest integer (JPEG does not mandate round-to-even).
func (t *Table) Quantize(block [64]float32) [64]int32 {
	var out [64]int32
	for i, v := range block {
		q := v / float32(t.Values[i])
		if q >= 0 {
			out[i] = int32(q + 0.5)
		} else {
			out[i] = int32(q - 0.5)
		}
	}
	return out
}

// Dequantize multiplies each coefficient by the matching table entry.
func (t *Table) Dequantize(block [64]int32) [64]float32 {
	var out [64]float32
	for i, v := range block {
		out[i] = float32(v) * float32(t.Values[i])
	}
	return out
}
