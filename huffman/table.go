// Package huffman builds canonical JPEG Huffman tables (RFC-style
// symbol/length lists per JPEG Annex C), a two-level decode lookup, a
// symbol->code encode map, and the Annex K table optimizer.
package huffman

import "github.com/pixelkit/codec/cerr"

// Encoding is one canonical (code, length, symbol) triple.
type Encoding struct {
	Code   uint16
	Length uint8 // 1..16
	Symbol uint8
}

// entry is one slot of a decode lookup level: Length == 0 means "no
// encoding here" (a corrupt stream if actually looked up).
type entry struct {
	length uint8
	symbol uint8
	nested *[256]entry // present only for codes longer than 8 bits
}

// Table is a constructed canonical Huffman table, immutable once built:
// a two-level 256-entry decode lookup plus a symbol->encoding map for
// encoding.
type Table struct {
	encodings []Encoding
	top       [256]entry
	bySymbol  map[uint8]Encoding
}

// Build constructs a Table from parallel symbol and per-length-count lists,
// as read from a DHT segment or produced by the Optimizer. counts has 16
// entries, counts[i] is the number of codes of length i+1.
func Build(symbols []uint8, counts [16]int) (*Table, error) {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total != len(symbols) {
		return nil, cerr.New(cerr.Format,
			"huffman: sum(counts)=%d does not match %d symbols", total, len(symbols))
	}

	encodings := make([]Encoding, 0, len(symbols))
	code := uint16(0)
	si := 0
	for length := 1; length <= 16; length++ {
		n := counts[length-1]
		for i := 0; i < n; i++ {
			encodings = append(encodings, Encoding{
				Code:   code,
				Length: uint8(length),
				Symbol: symbols[si],
			})
			si++
			code++
		}
		code <<= 1
	}

	t := &Table{
		encodings: encodings,
		bySymbol:  make(map[uint8]Encoding, len(encodings)),
	}
	for _, e := range encodings {
		t.bySymbol[e.Symbol] = e
		if err := t.insert(e); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) insert(e Encoding) error {
	if e.Length == 0 || e.Length > 16 {
		return cerr.New(cerr.Format, "huffman: invalid code length %d", e.Length)
	}
	if e.Length <= 8 {
		aligned := uint16(e.Code) << (8 - e.Length)
		for i := uint16(0); i < (1 << (8 - e.Length)); i++ {
			idx := i | aligned
			t.top[idx] = entry{length: e.Length, symbol: e.Symbol}
		}
		return nil
	}
	hi := e.Code >> (e.Length - 8)
	lo := uint16(e.Code) << (16 - e.Length) & 0xFF
	if t.top[hi].nested == nil {
		t.top[hi].nested = &[256]entry{}
	}
	sub := t.top[hi].nested
	for i := uint16(0); i < (1 << (16 - e.Length)); i++ {
		idx := i | lo
		sub[idx] = entry{length: e.Length, symbol: e.Symbol}
	}
	return nil
}

// Encodings returns the canonical encodings in ascending-code order.
func (t *Table) Encodings() []Encoding {
	return t.encodings
}

// Encode looks up the (code, length) for a symbol.
func (t *Table) Encode(symbol uint8) (code uint16, length uint8, ok bool) {
	e, found := t.bySymbol[symbol]
	if !found {
		return 0, 0, false
	}
	return e.Code, e.Length, true
}

// Decode consumes a code from word (the next 16 bits MSB-first) and returns
// how many bits it consumed and the decoded symbol. A zero consumed count
// signals a corrupt stream (lookup miss).
func (t *Table) Decode(word uint16) (consumed uint8, symbol uint8, err error) {
	top := t.top[word>>8]
	if top.nested == nil {
		if top.length == 0 {
			return 0, 0, cerr.New(cerr.Corrupt, "huffman: decode miss at top level")
		}
		return top.length, top.symbol, nil
	}
	sub := top.nested[word&0xFF]
	if sub.length == 0 {
		return 0, 0, cerr.New(cerr.Corrupt, "huffman: decode miss in nested table")
	}
	return sub.length, sub.symbol, nil
}

// CodeLengthCounts re-derives the ascending per-length symbol counts from
// the table's encodings, and the symbols in canonical code-assignment order
// (ascending length, then the order Build received them). This is the Table side of the Huffman canonical law: given
// a table built from (symbols, counts), rebuilding (symbols, counts) from
// its encodings must reproduce the original inputs.
func (t *Table) CodeLengthCounts() (symbols []uint8, counts [16]int) {
	for _, e := range t.encodings {
		counts[e.Length-1]++
		symbols = append(symbols, e.Symbol)
	}
	return symbols, counts
}
