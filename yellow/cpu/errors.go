package cpu

import "fmt"

// IllegalOpcodeError is raised (as a panic value) when the binary executes one
// of the eleven undefined opcodes.
type IllegalOpcodeError struct {
	PC     uint16
	Opcode uint8
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode 0x%02X at 0x%04X", e.Opcode, e.PC)
}

// TargetError is raised when native code calls or jumps outside executable memory.
type TargetError struct {
	Op      string
	Address uint16
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("%s: invalid target 0x%04X", e.Op, e.Address)
}

// StackImbalanceError is raised when a called routine returns to the synthetic
// return address with a different stack pointer than the one it was called with.
type StackImbalanceError struct {
	Target uint16
	Want   uint16
	Got    uint16
}

func (e *StackImbalanceError) Error() string {
	return fmt.Sprintf("call 0x%04X returned with SP 0x%04X, want 0x%04X", e.Target, e.Got, e.Want)
}

// StackPointerError is raised when native code manipulates a stack that is not
// in work RAM or high RAM.
type StackPointerError struct {
	Op string
	SP uint16
}

func (e *StackPointerError) Error() string {
	return fmt.Sprintf("%s: stack pointer 0x%04X outside WRAM/HRAM", e.Op, e.SP)
}

// AuthorityError is raised when a native-only operation runs while the binary
// holds execution authority, for example after the native frame already jumped.
type AuthorityError struct {
	Op        string
	Authority Authority
}

func (e *AuthorityError) Error() string {
	return fmt.Sprintf("%s: requires native control, authority is %s", e.Op, e.Authority)
}
