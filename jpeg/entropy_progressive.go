package jpeg

import (
	"github.com/pixelkit/codec/bitio"
	"github.com/pixelkit/codec/cerr"
	"github.com/pixelkit/codec/huffman"
	"github.com/pixelkit/codec/quant"
)

// decodeDCFirst decodes the initial DC bit-plane of a progressive scan.
func decodeDCFirst(r *bitio.Reader, dcTable *huffman.Table, prevDC *int32, al uint8) (int32, error) {
	diff, err := decodeDC(r, dcTable)
	if err != nil {
		return 0, err
	}
	*prevDC += diff
	return *prevDC << al, nil
}

// decodeDCRefine appends one more bit to an already-decoded DC coefficient.
func decodeDCRefine(r *bitio.Reader, dc int32, al uint8) int32 {
	return dc | int32(r.ReadBit())<<al
}

// decodeACFirst decodes an AC first scan for one block, honouring and
// updating the shared EOB run counter. block must start zeroed at Ss..Se.
func decodeACFirst(r *bitio.Reader, acTable *huffman.Table, block *CoeffBlock, ss, se, al uint8, eobrun *int) error {
	if *eobrun > 0 {
		*eobrun--
		return nil
	}
	i := int(ss)
	for i <= int(se) {
		run, size, err := decodeAC(r, acTable)
		if err != nil {
			return err
		}
		if size != 0 {
			i += int(run)
			if i > int(se) {
				return cerr.New(cerr.Corrupt, "jpeg: AC first scan run overruns spectral range")
			}
			bits := r.ReadBits(uint(size))
			block[quant.ZigZag[i]] = extend(size, bits) << al
			i++
			continue
		}
		// size == 0
		if run == 15 { // ZRL
			i += 16
			continue
		}
		runBits := r.ReadBits(uint(run))
		*eobrun = (1 << run) + int(runBits) - 1
		break
	}
	return nil
}

// decodeACRefine decodes an AC refinement scan for one block, per JPEG
// Annex G.1.2.3. p1/m1 are the +/- correction magnitudes for this bit
// plane (1<<Al and its negation).
func decodeACRefine(r *bitio.Reader, acTable *huffman.Table, block *CoeffBlock, ss, se, al uint8, eobrun *int) error {
	p1 := int32(1) << al
	m1 := -p1

	k := int(ss)
	if *eobrun == 0 {
		for k <= int(se) {
			run, size, err := decodeAC(r, acTable)
			if err != nil {
				return err
			}
			var newVal int32
			haveNew := false
			if size != 0 {
				// size is always 1 here (Annex G coefficients are single bits).
				if r.ReadBit() != 0 {
					newVal = p1
				} else {
					newVal = m1
				}
				haveNew = true
			} else if run != 15 {
				runBits := r.ReadBits(uint(run))
				*eobrun = (1 << run) + int(runBits)
				break
			}

			// Skip over `run` zero-history coefficients, refining any
			// nonzero coefficients encountered (including past ZRL's 16).
			for {
				if k > int(se) {
					return cerr.New(cerr.Corrupt, "jpeg: AC refinement run overruns spectral range")
				}
				pos := quant.ZigZag[k]
				if block[pos] != 0 {
					if r.ReadBit() != 0 && (block[pos]&p1) == 0 {
						if block[pos] >= 0 {
							block[pos] += p1
						} else {
							block[pos] += m1
						}
					}
				} else {
					if run == 0 {
						if haveNew {
							block[pos] = newVal
						}
						k++
						break
					}
					run--
				}
				k++
			}
		}
	}
	if *eobrun > 0 {
		for ; k <= int(se); k++ {
			pos := quant.ZigZag[k]
			if block[pos] != 0 {
				if r.ReadBit() != 0 && (block[pos]&p1) == 0 {
					if block[pos] >= 0 {
						block[pos] += p1
					} else {
						block[pos] += m1
					}
				}
			}
		}
		*eobrun--
	}
	return nil
}
