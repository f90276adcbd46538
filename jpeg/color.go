package jpeg

// colorConvert fills mcu.Color from the dequantized+IDCT'd Y/Cb/Cr blocks,
// level-shifting back from centred [-128,127] to [0,255] and clamping.
// Chroma is nearest-neighbour upsampled: component H_i=V_i=1 always holds
// (enforced at frame-header parse time), so the single Cb/Cr 8x8 block
// covers the whole maxH*8 x maxV*8 MCU pixel area.
func colorConvert(mcu *MCU, maxH, maxV int) {
	for idx := range mcu.Color {
		col := idx % maxH
		row := idx / maxH
		var out ColorBlock
		for py := 0; py < 8; py++ {
			cy := (row*8 + py) / maxV
			for px := 0; px < 8; px++ {
				cx := (col*8 + px) / maxH
				yv := sample(mcu.yBlock(idx), px, py)
				var cb, cr float32
				if !mcu.Mono {
					cb = sample(&mcu.Cb, cx, cy)
					cr = sample(&mcu.Cr, cx, cy)
				}
				r, g, b := ycbcrToRGB(yv, cb, cr)
				out[py*8+px] = [3]byte{r, g, b}
			}
		}
		mcu.Color[idx] = out
	}
}

func (m *MCU) yBlock(idx int) *CoeffBlock {
	return &m.Y[idx]
}

func sample(b *CoeffBlock, x, y int) float32 {
	return float32(b[y*8+x])
}

func clampByte(v float32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}

// ycbcrToRGB converts level-shifted (centred on 0) Y/Cb/Cr samples to RGB;
// the +128 level shift happens at this boundary.
func ycbcrToRGB(y, cb, cr float32) (r, g, b byte) {
	y += 128
	r = clampByte(y + 1.402*cr)
	g = clampByte(y - 0.344136*cb - 0.714136*cr)
	b = clampByte(y + 1.772*cb)
	return r, g, b
}

// rgbToYCbCr converts 8-bit RGB to centred ([-128,127]) Y/Cb/Cr, the
// encoder's mirror of ycbcrToRGB.
func rgbToYCbCr(r, g, b byte) (y, cb, cr float32) {
	rf, gf, bf := float32(r), float32(g), float32(b)
	y = 0.299*rf + 0.587*gf + 0.114*bf - 128
	cb = -0.168736*rf - 0.331264*gf + 0.5*bf
	cr = 0.5*rf - 0.418688*gf - 0.081312*bf
	return y, cb, cr
}
