package bitio

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

// TestPeekIsStateless exercises PeekByte/PeekWord with chained quicktest
// assertions rather than the package's usual bare testing.T style, covering
// the same peek/consume law from a second angle.
func TestPeekIsStateless(t *testing.T) {
	c := qt.New(t)
	r := NewReader([]byte{0b10110011, 0b01010101})

	c.Assert(r.PeekByte(), qt.Equals, uint8(0b10110011))
	c.Assert(r.PeekWord(), qt.Equals, uint16(0b1011001101010101))
	// peeking twice must return the same value: it must not advance state.
	c.Assert(r.PeekByte(), qt.Equals, uint8(0b10110011))

	c.Assert(r.ReadBits(8), qt.Equals, uint32(0b10110011))
	c.Assert(r.PeekByte(), qt.Equals, uint8(0b01010101))
}

func TestAlignToByteNoOpWhenAligned(t *testing.T) {
	c := qt.New(t)
	r := NewReader([]byte{0xAB, 0xCD})
	r.AlignToByte()
	c.Assert(r.BytePos(), qt.Equals, 0)
	r.ReadBits(3)
	r.AlignToByte()
	c.Assert(r.BytePos(), qt.Equals, 1)
	c.Assert(r.PeekByte(), qt.Equals, uint8(0xCD))
}
