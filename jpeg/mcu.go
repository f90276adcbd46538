package jpeg

// CoeffBlock is one 8x8 block of DCT coefficients in natural (row-major,
// dezigzagged) order. Entropy decoding, dequantization and the IDCT all
// operate through this representation before colour conversion.
type CoeffBlock [64]int32

// ColorBlock holds one 8x8 block of clamped RGB samples, one per luminance
// block in the owning MCU.
type ColorBlock [64][3]byte

// MCU is a Minimum Coded Unit: H*V luminance blocks plus one Cb and one Cr
// block (absent entirely for single-component/grayscale frames).
type MCU struct {
	Y     []CoeffBlock // length H*V
	Cb    CoeffBlock
	Cr    CoeffBlock
	Mono  bool
	Color []ColorBlock // length H*V, filled by the colour stage
}

func newMCU(hv int, mono bool) *MCU {
	m := &MCU{
		Y:     make([]CoeffBlock, hv),
		Mono:  mono,
		Color: make([]ColorBlock, hv),
	}
	return m
}

// grid is the up-front allocated MCU vector for a frame, addressed in
// raster order of the MCU grid.
type grid struct {
	width, height int // in MCUs
	mcus          []*MCU
}

func newGrid(f *FrameHeader) *grid {
	w := int(f.MCUGridW)
	h := int(f.MCUGridH)
	hv := int(f.MaxH) * int(f.MaxV)
	mono := len(f.Components) == 1

	g := &grid{width: w, height: h, mcus: make([]*MCU, w*h)}
	for i := range g.mcus {
		g.mcus[i] = newMCU(hv, mono)
	}
	return g
}

func (g *grid) at(index int) *MCU {
	return g.mcus[index]
}

func (g *grid) size() int {
	return g.width * g.height
}
