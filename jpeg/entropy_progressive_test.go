package jpeg

import (
	"testing"

	"github.com/pixelkit/codec/bitio"
	"github.com/pixelkit/codec/huffman"
)

// singleSymbolTable builds a degenerate one-symbol Huffman table: symbol
// encodes as the single 1-bit code "0".
func singleSymbolTable(t *testing.T, symbol uint8) *huffman.Table {
	t.Helper()
	tbl, err := huffman.Build([]uint8{symbol}, [16]int{1})
	if err != nil {
		t.Fatalf("huffman.Build: %v", err)
	}
	return tbl
}

// TestDecodeACFirstEOBRUN reproduces the run-length scenario: (r,s)=(3,0)
// followed by the r=3 additional bits 0b010 must yield eobrun=9, per
// eobrun = (1<<3) + 2 - 1.
func TestDecodeACFirstEOBRUN(t *testing.T) {
	acTable := singleSymbolTable(t, 0x30) // run=3, size=0

	w := bitio.NewWriter()
	code, length, ok := acTable.Encode(0x30)
	if !ok {
		t.Fatalf("Encode: symbol 0x30 not found")
	}
	w.WriteBits(uint32(code), uint(length))
	w.WriteBits(0b010, 3) // the r=3 "additional bits"
	w.FlushByte(false)

	r := bitio.NewReader(w.Bytes())
	var block CoeffBlock
	eobrun := 0
	if err := decodeACFirst(r, acTable, &block, 1, 63, 0, &eobrun); err != nil {
		t.Fatalf("decodeACFirst: %v", err)
	}
	if eobrun != 9 {
		t.Fatalf("eobrun = %d, want 9", eobrun)
	}
	for i, v := range block {
		if v != 0 {
			t.Fatalf("block[%d] = %d, want 0 (r<15 terminates with no new coefficients)", i, v)
		}
	}
}

// TestDecodeACFirstSkipsWhileEOBRunPositive confirms a block is skipped
// entirely (the eobrun counter only decrements) once eobrun > 0.
func TestDecodeACFirstSkipsWhileEOBRunPositive(t *testing.T) {
	acTable := singleSymbolTable(t, 0x30)
	r := bitio.NewReader(nil) // should not be consulted at all
	var block CoeffBlock
	eobrun := 4
	if err := decodeACFirst(r, acTable, &block, 1, 63, 0, &eobrun); err != nil {
		t.Fatalf("decodeACFirst: %v", err)
	}
	if eobrun != 3 {
		t.Fatalf("eobrun = %d, want 3", eobrun)
	}
}

// TestDecodeACFirstZRL confirms (15,0) skips exactly 16 zero positions
// without terminating the scan.
func TestDecodeACFirstZRL(t *testing.T) {
	acTable := singleSymbolTable(t, 0xF0) // ZRL

	w := bitio.NewWriter()
	code, length, _ := acTable.Encode(0xF0)
	w.WriteBits(uint32(code), uint(length)) // positions 1..16
	w.WriteBits(uint32(code), uint(length)) // positions 17..32
	w.FlushByte(false)

	r := bitio.NewReader(w.Bytes())
	var block CoeffBlock
	eobrun := 0
	if err := decodeACFirst(r, acTable, &block, 1, 63, 0, &eobrun); err != nil {
		t.Fatalf("decodeACFirst: %v", err)
	}
	if eobrun != 0 {
		t.Fatalf("eobrun = %d, want 0 (no terminating run symbol was seen)", eobrun)
	}
}
