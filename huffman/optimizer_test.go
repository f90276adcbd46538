package huffman

import "testing"

func TestOptimizerLengthBound(t *testing.T) {
	// A skewed-but-non-degenerate frequency table: symbol 0 dominates,
	// a long tail of rare symbols.
	var rle []uint8
	for i := 0; i < 500; i++ {
		rle = append(rle, 0)
	}
	for s := 1; s < 40; s++ {
		rle = append(rle, uint8(s))
	}

	symbols, counts, err := Optimize(rle)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	total := 0
	for _, c := range counts {
		if c < 0 {
			t.Fatalf("negative count in %v", counts)
		}
		total += c
	}
	if total != len(symbols) {
		t.Fatalf("sum(counts)=%d != len(symbols)=%d", total, len(symbols))
	}

	table, err := Build(symbols, counts)
	if err != nil {
		t.Fatalf("Build(optimized): %v", err)
	}
	for _, e := range table.Encodings() {
		if e.Length < 1 || e.Length > 16 {
			t.Fatalf("symbol %d got out-of-range length %d", e.Symbol, e.Length)
		}
		allOnes := uint16(1)<<e.Length - 1
		if e.Code == allOnes {
			t.Fatalf("symbol %d got the all-ones code for length %d", e.Symbol, e.Length)
		}
	}
}

func TestOptimizerPathologicalManySymbols(t *testing.T) {
	// Nearly-uniform frequencies across all 256 symbols force long codes;
	// the length limiter must still cap every code at 16 bits.
	var rle []uint8
	for s := 0; s < 256; s++ {
		n := 1
		if s%7 == 0 {
			n = 2
		}
		for i := 0; i < n; i++ {
			rle = append(rle, uint8(s))
		}
	}
	symbols, counts, err := Optimize(rle)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	for i, c := range counts {
		if i+1 > 16 && c != 0 {
			t.Fatalf("count at length %d should not exist in a fixed [16]int", i+1)
		}
	}
	if _, err := Build(symbols, counts); err != nil {
		t.Fatalf("Build(optimized pathological): %v", err)
	}
}
