package bit

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte will be the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// CheckedAdd adds two 8 bit unsigned values and detects if an overflow happened.
func CheckedAdd(a, b uint8) (result uint8, overflow bool) {
	overflow = (uint16(a)+uint16(b))&0xFF00 != 0
	result = a + b
	return
}

// CheckedSub subtracts b from a and reports whether a was strictly greater than b.
// This is the CHIP-8 "no borrow" convention: equal operands report false.
func CheckedSub(a, b uint8) (result uint8, noBorrow bool) {
	noBorrow = a > b
	result = a - b
	return
}

// IsSet will check if the bit at the specified index is set to 1 or not.
func IsSet(index, byte uint8) bool {
	return ((byte >> index) & 1) == 1
}

// Low returns the low (LSB) part of a 16 bit number.
func Low(value uint16) uint8 {
	return uint8(value)
}

// Nibble returns the 4 bit group at the given index, 0 being the least significant.
// Example: Nibble(0xABCD, 2) -> 0xB
func Nibble(value uint16, index uint8) uint8 {
	return uint8((value >> (index * 4)) & 0xF)
}

// FromBool returns 1 for true and 0 for false.
func FromBool(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
