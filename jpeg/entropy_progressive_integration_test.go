package jpeg

import (
	"testing"

	"github.com/pixelkit/codec/bitio"
	"github.com/pixelkit/codec/huffman"
)

// TestRunProgressiveScanDCFirstThenRefine drives two real progressive
// scans over the same single-MCU grid through runProgressiveScan, the
// same entry point the decoder's scan goroutines use, checking that a DC
// coefficient approximated in one scan and refined by a second lands on
// the exact value a non-progressive decode of the same coefficient would
// produce.
func TestRunProgressiveScanDCFirstThenRefine(t *testing.T) {
	frame, err := newFrameHeader(true, 8, 8, 8, []ComponentInfo{{ID: 1, H: 1, V: 1, QTableSel: 0}})
	if err != nil {
		t.Fatalf("newFrameHeader: %v", err)
	}
	g := newGrid(frame)
	if g.size() != 1 {
		t.Fatalf("expected a single MCU, got %d", g.size())
	}

	dcTable := oneSymbolTable(t, 3) // ssss=3, covers the diff of 5 below
	var dcReg registry[huffman.Table]
	var acReg registry[huffman.Table]
	dcReg.define(0, dcTable)

	// First scan: Ss=Se=0 (DC), Ah=0, Al=1. diff=5 (category 3), shifted
	// left by Al leaves the true DC (11) with its low bit truncated: 10.
	sh0, err := newScanHeader([]ScanComponentSel{{ComponentID: 1}}, 0, 0, 0, 1, 0, 0)
	if err != nil {
		t.Fatalf("newScanHeader scan0: %v", err)
	}
	w0 := bitio.NewWriter()
	w0.WriteBit(0) // dcTable's only code
	w0.WriteBits(additionalBits(5, 3), 3)
	w0.FlushByte(false)

	// Second scan: Ah=1 (refining the bit at Al=1), Al=0, restores the
	// truncated low bit.
	sh1, err := newScanHeader([]ScanComponentSel{{ComponentID: 1}}, 0, 0, 1, 0, 0, 0)
	if err != nil {
		t.Fatalf("newScanHeader scan1: %v", err)
	}
	w1 := bitio.NewWriter()
	w1.WriteBit(1)
	w1.FlushByte(false)

	co := &coordinator{fatal: &fatal{}}
	start := newFence(g.size() - 1)
	fence0 := newFence(-1)
	fence1 := newFence(-1)

	runProgressiveScan(co, g, frame, sh0, w0.Bytes(), 0, &dcReg, &acReg, start, fence0, false, nil)
	if err := co.fatal.get(); err != nil {
		t.Fatalf("scan 0: %v", err)
	}
	if got := g.at(0).Y[0][0]; got != 10 {
		t.Fatalf("after first DC scan, coefficient = %d, want 10 (truncated low bit)", got)
	}

	dequantC := make(chan int, 1)
	runProgressiveScan(co, g, frame, sh1, w1.Bytes(), 0, &dcReg, &acReg, fence0, fence1, true, dequantC)
	if err := co.fatal.get(); err != nil {
		t.Fatalf("scan 1: %v", err)
	}
	if got := g.at(0).Y[0][0]; got != 11 {
		t.Fatalf("after DC refine scan, coefficient = %d, want 11", got)
	}
	if _, ok := <-dequantC; !ok {
		t.Fatalf("final scan should have pushed the MCU index before closing dequantC")
	}
}
