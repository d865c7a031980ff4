package cpu

import (
	"fmt"

	"github.com/valerio/go-yellow/yellow/addr"
	"github.com/valerio/go-yellow/yellow/bit"
)

// SyntheticReturn is pushed by Call as the return address of the called routine.
// It lies in the unusable gap after OAM, so the binary can only reach it by
// returning from a native call.
const SyntheticReturn uint16 = 0xFEFF

// hookCycles is the cost reported for a native routine, the same as a RET.
const hookCycles = 16

// Mode says who owns the program counter.
type Mode uint8

const (
	// BinaryControl: opcodes are fetched from the binary.
	BinaryControl Mode = iota
	// NativeControl: a native routine is running and the binary is suspended.
	NativeControl
)

func (m Mode) String() string {
	if m == NativeControl {
		return "native"
	}
	return "binary"
}

// Authority is the execution authority state. While the binary runs on behalf
// of a native Call, Calling is set and ReturnPC/ReturnSP describe the point at
// which control goes back to native code.
type Authority struct {
	Mode     Mode
	Calling  bool
	ReturnPC uint16
	ReturnSP uint16
}

func (a Authority) String() string {
	if a.Mode == BinaryControl && a.Calling {
		return fmt.Sprintf("binary(return=0x%04X sp=0x%04X)", a.ReturnPC, a.ReturnSP)
	}
	return a.Mode.String()
}

// Location identifies code in banked ROM. Bank is 0 for 0x0000-0x3FFF.
type Location struct {
	Bank    int
	Address uint16
}

func (l Location) String() string {
	return fmt.Sprintf("%02X:%04X", l.Bank, l.Address)
}

// nativeFrame records the authority to restore once a native routine finishes.
type nativeFrame struct {
	outer  Authority
	jumped bool
}

// Authority returns the current execution authority.
func (c *CPU) Authority() Authority {
	return c.authority
}

// Hook registers fn to run in place of the binary code at loc. When the binary
// reaches loc, fn runs with native authority; if it returns without jumping,
// the CPU performs a RET on the binary's behalf.
func (c *CPU) Hook(loc Location, fn func()) {
	if loc.Address <= addr.ROM0End {
		loc.Bank = 0
	}
	c.hooks[loc] = fn
}

func (c *CPU) hookAt(pc uint16) func() {
	if len(c.hooks) == 0 || pc > addr.ROMXEnd {
		return nil
	}
	loc := Location{Address: pc}
	if pc > addr.ROM0End {
		loc.Bank = c.bus.ROMBank()
	}
	return c.hooks[loc]
}

func (c *CPU) dispatchNative(hook func()) int {
	if !c.runNative(hook) {
		c.pc = c.popStack()
	}
	return hookCycles
}

// RunNative runs fn with native authority and restores the previous authority
// afterwards, unless fn handed control to the binary with Jump.
func (c *CPU) RunNative(fn func()) {
	c.runNative(fn)
}

func (c *CPU) runNative(fn func()) (jumped bool) {
	c.frames = append(c.frames, nativeFrame{outer: c.authority})
	c.authority = Authority{Mode: NativeControl}

	defer func() {
		frame := c.frames[len(c.frames)-1]
		c.frames = c.frames[:len(c.frames)-1]
		c.authority = frame.outer
		jumped = frame.jumped
	}()

	fn()
	return
}

func (c *CPU) requireNative(op string) {
	if c.authority.Mode != NativeControl {
		panic(&AuthorityError{Op: op, Authority: c.authority})
	}
}

func validTarget(a uint16) bool {
	return addr.InROM(a) ||
		(a >= addr.SRAMStart && a <= addr.WRAMEnd) ||
		addr.InHRAM(a)
}

func (c *CPU) requireStack(op string) {
	sp := c.sp
	inWRAM := sp > addr.WRAMStart+1 && sp <= addr.WRAMEnd+1
	inHRAM := sp > addr.HRAMStart+1 && sp <= addr.HRAMEnd+1
	if !inWRAM && !inHRAM {
		panic(&StackPointerError{Op: op, SP: sp})
	}
}

// Call runs the binary routine at target as if the binary had called it, and
// returns once the routine returns. Registers and memory are left as the routine
// left them. A routine that never returns never gives control back.
func (c *CPU) Call(target uint16) {
	c.requireNative("call")
	if !validTarget(target) {
		panic(&TargetError{Op: "call", Address: target})
	}
	c.requireStack("call")

	savedPC, spBefore := c.pc, c.sp
	c.pushStack(SyntheticReturn)
	c.pc = target
	c.runBinaryUntilReturn(target, spBefore)
	c.pc = savedPC
}

// Jump hands control to the binary at target for good: the current native
// routine must return right after, and its caller does not RET on its behalf.
func (c *CPU) Jump(target uint16) {
	c.requireNative("jump")
	if !validTarget(target) {
		panic(&TargetError{Op: "jump", Address: target})
	}

	frame := &c.frames[len(c.frames)-1]
	frame.jumped = true
	c.pc = target
	c.authority = frame.outer
}

// StackPush pushes a 16 bit value, for routines that expect arguments on the stack.
func (c *CPU) StackPush(value uint16) {
	c.requireNative("stack push")
	c.requireStack("stack push")
	c.pushStack(value)
}

// StackPop pops a 16 bit value.
func (c *CPU) StackPop() uint16 {
	c.requireNative("stack pop")
	return c.popStack()
}

// ServiceInterrupts dispatches a pending enabled interrupt while native code
// holds authority, running its handler to completion as a nested call. Returns
// the cycles spent, 0 if nothing was serviced.
func (c *CPU) ServiceInterrupts() int {
	c.requireNative("service interrupts")
	if !c.ime {
		return 0
	}
	pending := c.pendingInterrupts()
	if pending == 0 {
		return 0
	}

	for i := uint8(0); i < 5; i++ {
		if !bit.IsSet(i, pending) {
			continue
		}
		before := c.cycles
		savedPC, spBefore := c.pc, c.sp
		c.bus.Write(addr.IF, bit.Reset(i, c.bus.Read(addr.IF)))
		c.ime = false
		c.pushStack(SyntheticReturn)
		c.pc = addr.Vector(i)
		c.cycles += interruptServiceCycles
		c.bus.Tick(interruptServiceCycles)
		c.runBinaryUntilReturn(c.pc, spBefore)
		c.pc = savedPC
		return int(c.cycles - before)
	}
	return 0
}

// runBinaryUntilReturn steps the binary until it returns to SyntheticReturn,
// then gives authority back to the native caller.
func (c *CPU) runBinaryUntilReturn(target, spBefore uint16) {
	c.authority = Authority{Mode: BinaryControl, Calling: true, ReturnPC: SyntheticReturn, ReturnSP: spBefore}

	for {
		c.Step()
		if c.pc != SyntheticReturn {
			continue
		}
		if c.sp != spBefore {
			panic(&StackImbalanceError{Target: target, Want: spBefore, Got: c.sp})
		}
		break
	}

	c.authority = Authority{Mode: NativeControl}
}
