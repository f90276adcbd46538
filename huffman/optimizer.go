package huffman

import "github.com/pixelkit/codec/cerr"

// maxSymbols is 256 real symbols (0..255) plus one reserved slot (256) that
// never appears in the data, guaranteeing no real symbol is assigned the
// all-ones code of its length (JPEG Annex K.2).
const maxSymbols = 257

// Optimize runs the JPEG Annex K frequency-count / package-merge / length-
// limiting algorithm over a stream of RLE-encoded symbols (DC or AC,
// already separated by component class) and returns (symbols, counts)
// ready for Build.
func Optimize(rleSymbols []uint8) (symbols []uint8, counts [16]int, err error) {
	var freq [maxSymbols]int64
	for _, s := range rleSymbols {
		freq[s]++
	}
	freq[256] = 1 // reserved symbol, guaranteed never to collide

	var codeSize [maxSymbols]int
	var others [maxSymbols]int
	for i := range others {
		others[i] = -1
	}

	work := freq
	for {
		v1 := smallestNonZero(&work, -1)
		if v1 == -1 {
			break
		}
		v2 := smallestNonZero(&work, v1)
		if v2 == -1 {
			break
		}

		work[v1] += work[v2]
		work[v2] = 0

		codeSize[v1]++
		for others[v1] != -1 {
			v1 = others[v1]
			codeSize[v1]++
		}
		others[v1] = v2

		codeSize[v2]++
		for others[v2] != -1 {
			v2 = others[v2]
			codeSize[v2]++
		}
	}

	var bits [33]int
	for i := 0; i < maxSymbols; i++ {
		if codeSize[i] > 0 {
			if codeSize[i] > 32 {
				return nil, counts, cerr.New(cerr.BudgetExceeded,
					"huffman optimizer: symbol %d needs %d bits, exceeds 32", i, codeSize[i])
			}
			bits[codeSize[i]]++
		}
	}

	// Annex K.3: limit code lengths to 16 bits.
	for i := 32; i > 16; i-- {
		for bits[i] > 0 {
			j := i - 2
			for j >= 0 && bits[j] == 0 {
				j--
			}
			if j < 0 {
				return nil, counts, cerr.New(cerr.BudgetExceeded,
					"huffman optimizer: cannot length-limit codes to 16 bits")
			}
			bits[i] -= 2
			bits[i-1]++
			bits[j+1] += 2
			bits[j]--
		}
	}
	// drop the reserved symbol from the highest remaining length
	for i := 16; i > 0; i-- {
		if bits[i] > 0 {
			bits[i]--
			break
		}
	}

	for i := 0; i < 16; i++ {
		counts[i] = bits[i+1]
	}

	type symLen struct {
		sym uint8
		len int
	}
	var ordered []symLen
	for i := 0; i < 256; i++ {
		if codeSize[i] > 0 {
			ordered = append(ordered, symLen{uint8(i), codeSize[i]})
		}
	}
	// stable sort by (length, symbol) ascending; insertion sort is fine,
	// inputs are at most 256 entries.
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0; j-- {
			a, b := ordered[j-1], ordered[j]
			if a.len < b.len || (a.len == b.len && a.sym < b.sym) {
				break
			}
			ordered[j-1], ordered[j] = ordered[j], ordered[j-1]
		}
	}
	symbols = make([]uint8, len(ordered))
	for i, sl := range ordered {
		symbols[i] = sl.sym
	}
	return symbols, counts, nil
}

// smallestNonZero finds the index of the smallest non-zero frequency in
// work, excluding exclude, breaking ties by choosing the larger index (JPEG
// Annex K.2's tie-break rule).
func smallestNonZero(work *[maxSymbols]int64, exclude int) int {
	best := -1
	for i := 0; i < maxSymbols; i++ {
		if i == exclude || work[i] == 0 {
			continue
		}
		if best == -1 || work[i] < work[best] || (work[i] == work[best] && i > best) {
			best = i
		}
	}
	return best
}
