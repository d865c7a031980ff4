package bit

// Combine joins two 8 bit values into a 16 bit word, high byte first.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// Low returns the least significant byte of a word.
func Low(value uint16) uint8 {
	return uint8(value)
}

// High returns the most significant byte of a word.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// IsSet reports whether the bit at index is 1.
func IsSet(index, value uint8) bool {
	return (value>>index)&1 == 1
}

// IsSet16 is IsSet for 16 bit values.
func IsSet16(index, value uint16) bool {
	return (value>>index)&1 == 1
}

// Set returns value with the bit at index set to 1.
func Set(index, value uint8) uint8 {
	return value | (1 << index)
}

// Reset returns value with the bit at index set to 0.
func Reset(index, value uint8) uint8 {
	return value &^ (1 << index)
}

// Value returns 1 if the bit at index is set, 0 otherwise.
func Value(index, value uint8) uint8 {
	return (value >> index) & 1
}

// Extract returns the bits from high down to low (inclusive), shifted down.
//
//	Extract(0b11010110, 6, 4) == 0b101
func Extract(value uint8, high, low uint8) uint8 {
	width := high - low + 1
	return (value >> low) & uint8((1<<width)-1)
}

// HalfCarryAdd reports a carry out of bit 3 when adding a, b and carry.
func HalfCarryAdd(a, b, carry uint8) bool {
	return (a&0x0F)+(b&0x0F)+carry > 0x0F
}

// HalfCarrySub reports a borrow from bit 4 when subtracting b and carry from a.
func HalfCarrySub(a, b, carry uint8) bool {
	return int(a&0x0F)-int(b&0x0F)-int(carry) < 0
}

// HalfCarryAdd16 reports a carry out of bit 11 for 16 bit additions.
func HalfCarryAdd16(a, b uint16) bool {
	return (a&0x0FFF)+(b&0x0FFF) > 0x0FFF
}
