package quant

// ZigZag is the fixed 64-entry permutation JPEG uses to serialize an 8x8
// coefficient block from low to high spatial frequency: ZigZag[i] is the
// natural (row-major) index of the i-th coefficient in zigzag order.
var ZigZag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// Dezigzag copies a 64-element array given in zigzag (wire) order into
// natural row-major order.
func Dezigzag[T any](zigzagOrder [64]T) (natural [64]T) {
	for i, v := range zigzagOrder {
		natural[ZigZag[i]] = v
	}
	return natural
}

// Zigzag copies a 64-element array given in natural row-major order into
// zigzag (wire) order.
func Zigzag[T any](natural [64]T) (zigzagOrder [64]T) {
	for i := range zigzagOrder {
		zigzagOrder[i] = natural[ZigZag[i]]
	}
	return zigzagOrder
}
