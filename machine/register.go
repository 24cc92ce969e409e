package machine

import (
	"fmt"
	"strings"
)

const (
	REGISTER_COUNT = 4 // Number of registers.
	BYTE_BITS      = 8 // Width of a register, in bits.
)

// Register mask constants.
const (
	REG_A   = Mask(1 << 0)
	REG_B   = Mask(1 << 1)
	REG_C   = Mask(1 << 2)
	REG_D   = Mask(1 << 3)
	REG_ALL = REG_A | REG_B | REG_C | REG_D
)

// registerNames are the assembler names of the registers, by index.
const registerNames = "abcd"

// popCount is the number of registers selected by each nibble.
var popCount = [16]int{0, 1, 1, 2, 1, 2, 2, 3, 1, 2, 2, 3, 2, 3, 3, 4}

// Mask selects registers: bit i of the low nibble selects register i.
type Mask byte

// Count returns the number of registers selected by the low nibble.
func (mask Mask) Count() int {
	return popCount[mask&0xf]
}

// Valid returns true if the mask is a valid source mask for exactly
// count registers: the upper nibble is clear and count bits are set.
func (mask Mask) Valid(count int) bool {
	if mask&0xf0 != 0 {
		return false
	}

	return mask.Count() == count
}

// String returns the register letters of the mask, '-' for the empty mask.
// Masks with upper nibble bits set are shown as a number.
func (mask Mask) String() string {
	if mask&0xf0 != 0 {
		return fmt.Sprintf("0x%02x", byte(mask))
	}

	if mask == 0 {
		return "-"
	}

	var sb strings.Builder
	for n := range REGISTER_COUNT {
		if mask&(1<<n) != 0 {
			sb.WriteByte(registerNames[n])
		}
	}

	return sb.String()
}

// ParseMask parses register letters ("abd", "-") into a mask.
func ParseMask(word string) (mask Mask, ok bool) {
	if word == "-" {
		return 0, true
	}

	if len(word) == 0 || len(word) > REGISTER_COUNT {
		return
	}

	for _, ch := range strings.ToLower(word) {
		n := strings.IndexRune(registerNames, ch)
		if n < 0 || mask&(1<<n) != 0 {
			return 0, false
		}
		mask |= 1 << n
	}

	return mask, true
}

// Registers is the register bank, indexed A=0 through D=3.
type Registers [REGISTER_COUNT]byte

// Resolve returns the registers selected by mask, in ascending index
// order, and their count.
func (regs *Registers) Resolve(mask Mask) (slots [REGISTER_COUNT]*byte, count int) {
	for n := range REGISTER_COUNT {
		if mask&(1<<n) != 0 {
			slots[count] = &regs[n]
			count++
		}
	}

	return
}

// Values returns a copy of the values of the registers selected by mask,
// in ascending index order, and their count.
func (regs *Registers) Values(mask Mask) (values [REGISTER_COUNT]byte, count int) {
	slots, count := regs.Resolve(mask)
	for n, slot := range slots[:count] {
		values[n] = *slot
	}

	return
}

// Compose concatenates the selected registers into a single value.
// The lowest selected register is the least significant byte.
func (regs *Registers) Compose(mask Mask) (value uint32) {
	for n := REGISTER_COUNT - 1; n >= 0; n-- {
		if mask&(1<<n) != 0 {
			value <<= BYTE_BITS
			value |= uint32(regs[n])
		}
	}

	return
}

// Decompose splits value into the selected registers, least significant
// byte first into the lowest selected register. Bytes beyond the selected
// registers are discarded.
func (regs *Registers) Decompose(mask Mask, value uint32) {
	slots, count := regs.Resolve(mask)
	for _, slot := range slots[:count] {
		*slot = byte(value)
		value >>= BYTE_BITS
	}
}

// Broadcast stores the same value into every selected register.
func (regs *Registers) Broadcast(mask Mask, value byte) {
	slots, count := regs.Resolve(mask)
	for _, slot := range slots[:count] {
		*slot = value
	}
}
