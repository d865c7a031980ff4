package cpu

import (
	"github.com/valerio/go-yellow/yellow/addr"
	"github.com/valerio/go-yellow/yellow/bit"
)

// Bus connects the CPU to memory and to the clocked peripherals.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	// Tick advances every peripheral by the given number of cycles.
	Tick(cycles int)
	// ROMBank returns the bank mapped at 0x4000-0x7FFF, used to resolve native hooks.
	ROMBank() int
}

// Flag is one of the 4 flags held in the high nibble of F.
type Flag uint8

const (
	ZeroFlag      Flag = 0x80
	SubFlag       Flag = 0x40
	HalfCarryFlag Flag = 0x20
	CarryFlag     Flag = 0x10
)

const interruptServiceCycles = 20

// CPU is the SM83 register file plus the execution authority used to splice
// native routines into the binary's control flow.
type CPU struct {
	a, f, b, c, d, e, h, l uint8
	sp, pc                 uint16

	ime       bool
	eiPending bool
	halted    bool
	haltBug   bool
	cycles    uint64

	authority Authority
	frames    []nativeFrame
	hooks     map[Location]func()

	bus Bus
}

// postBootIO is the register state the boot ROM leaves behind on a DMG.
var postBootIO = []struct {
	address uint16
	value   uint8
}{
	{addr.TIMA, 0x00}, {addr.TMA, 0x00}, {addr.TAC, 0x00},
	{addr.NR52, 0xF1}, {addr.NR10, 0x80}, {addr.NR11, 0xBF}, {addr.NR12, 0xF3},
	{addr.NR14, 0xBF}, {addr.NR21, 0x3F}, {addr.NR22, 0x00}, {addr.NR24, 0xBF},
	{addr.NR30, 0x7F}, {addr.NR31, 0xFF}, {addr.NR32, 0x9F}, {addr.NR34, 0xBF},
	{addr.NR41, 0xFF}, {addr.NR42, 0x00}, {addr.NR43, 0x00}, {addr.NR44, 0xBF},
	{addr.NR50, 0x77}, {addr.NR51, 0xF3},
	{addr.LCDC, 0x91}, {addr.SCY, 0x00}, {addr.SCX, 0x00}, {addr.LYC, 0x00},
	{addr.BGP, 0xFC}, {addr.OBP0, 0xFF}, {addr.OBP1, 0xFF}, {addr.WY, 0x00}, {addr.WX, 0x00},
	{addr.IF, 0x01}, {addr.IE, 0x00},
}

// New returns a CPU in the state the DMG boot ROM hands over to the cartridge:
// PC at the entry point, SP at the top of high RAM.
func New(bus Bus) *CPU {
	for _, r := range postBootIO {
		bus.Write(r.address, r.value)
	}

	c := &CPU{
		bus:   bus,
		hooks: make(map[Location]func()),
	}
	c.SetAF(0x01B0)
	c.SetBC(0x0013)
	c.SetDE(0x00D8)
	c.SetHL(0x014D)
	c.sp = addr.InitialStackTop
	c.pc = addr.EntryPoint

	return c
}

// DoCycle runs one scheduling quantum: an interrupt dispatch, an idle HALT step,
// a native hook, or one opcode. While native code holds authority it does nothing
// and returns 0.
func (c *CPU) DoCycle() int {
	if c.authority.Mode == NativeControl {
		return 0
	}
	return c.Step()
}

// Step advances the binary by one quantum regardless of authority bookkeeping.
// Peripherals are ticked by the returned amount of cycles.
func (c *CPU) Step() int {
	cycles := c.step()
	c.cycles += uint64(cycles)
	c.bus.Tick(cycles)
	return cycles
}

func (c *CPU) step() int {
	if c.serviceInterrupt() {
		return interruptServiceCycles
	}
	if c.halted {
		return 4
	}
	if hook := c.hookAt(c.pc); hook != nil {
		return c.dispatchNative(hook)
	}
	return c.execute()
}

// pendingInterrupts returns the interrupts that are both requested and enabled.
func (c *CPU) pendingInterrupts() uint8 {
	return c.bus.Read(addr.IE) & c.bus.Read(addr.IF) & 0x1F
}

// serviceInterrupt wakes the CPU from HALT on any pending interrupt and, if IME
// is set, jumps to the vector of the highest priority one.
func (c *CPU) serviceInterrupt() bool {
	pending := c.pendingInterrupts()
	if pending == 0 {
		return false
	}
	c.halted = false
	if !c.ime {
		return false
	}

	for i := uint8(0); i < 5; i++ {
		if !bit.IsSet(i, pending) {
			continue
		}
		c.bus.Write(addr.IF, bit.Reset(i, c.bus.Read(addr.IF)))
		c.ime = false
		c.pushStack(c.pc)
		c.pc = addr.Vector(i)
		return true
	}
	return false
}

// fetch reads the byte at PC. Right after a HALT bug the PC fails to advance once.
func (c *CPU) fetch() uint8 {
	op := c.bus.Read(c.pc)
	if c.haltBug {
		c.haltBug = false
	} else {
		c.pc++
	}
	return op
}

func (c *CPU) readImmediate() uint8 {
	n := c.bus.Read(c.pc)
	c.pc++
	return n
}

func (c *CPU) readImmediateWord() uint16 {
	low := c.readImmediate()
	high := c.readImmediate()
	return bit.Combine(high, low)
}

func (c *CPU) readSignedImmediate() int8 {
	return int8(c.readImmediate())
}

func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(value))
	c.sp--
	c.bus.Write(c.sp, bit.Low(value))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

func (c *CPU) setFlag(flag Flag, set bool) {
	if set {
		c.f |= uint8(flag)
	} else {
		c.f &^= uint8(flag)
	}
}

func (c *CPU) isSet(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

// carry returns the carry flag as 0 or 1.
func (c *CPU) carry() uint8 {
	if c.isSet(CarryFlag) {
		return 1
	}
	return 0
}

func (c *CPU) setZNHC(z, n, h, cy bool) {
	c.f = 0
	c.setFlag(ZeroFlag, z)
	c.setFlag(SubFlag, n)
	c.setFlag(HalfCarryFlag, h)
	c.setFlag(CarryFlag, cy)
}

// Register accessors, for native routines and tests.

func (c *CPU) GetA() uint8 { return c.a }
func (c *CPU) GetF() uint8 { return c.f }
func (c *CPU) GetB() uint8 { return c.b }
func (c *CPU) GetC() uint8 { return c.c }
func (c *CPU) GetD() uint8 { return c.d }
func (c *CPU) GetE() uint8 { return c.e }
func (c *CPU) GetH() uint8 { return c.h }
func (c *CPU) GetL() uint8 { return c.l }

func (c *CPU) SetA(v uint8) { c.a = v }
func (c *CPU) SetB(v uint8) { c.b = v }
func (c *CPU) SetC(v uint8) { c.c = v }
func (c *CPU) SetD(v uint8) { c.d = v }
func (c *CPU) SetE(v uint8) { c.e = v }
func (c *CPU) SetH(v uint8) { c.h = v }
func (c *CPU) SetL(v uint8) { c.l = v }

func (c *CPU) GetAF() uint16 { return bit.Combine(c.a, c.f) }
func (c *CPU) GetBC() uint16 { return bit.Combine(c.b, c.c) }
func (c *CPU) GetDE() uint16 { return bit.Combine(c.d, c.e) }
func (c *CPU) GetHL() uint16 { return bit.Combine(c.h, c.l) }

// SetAF sets A and F. The low nibble of F always reads as zero.
func (c *CPU) SetAF(v uint16) { c.a, c.f = bit.High(v), bit.Low(v)&0xF0 }
func (c *CPU) SetBC(v uint16) { c.b, c.c = bit.High(v), bit.Low(v) }
func (c *CPU) SetDE(v uint16) { c.d, c.e = bit.High(v), bit.Low(v) }
func (c *CPU) SetHL(v uint16) { c.h, c.l = bit.High(v), bit.Low(v) }

func (c *CPU) GetSP() uint16     { return c.sp }
func (c *CPU) GetPC() uint16     { return c.pc }
func (c *CPU) GetCycles() uint64 { return c.cycles }
func (c *CPU) GetIME() bool      { return c.ime }
func (c *CPU) IsHalted() bool    { return c.halted }

// Flag reports whether flag is set.
func (c *CPU) Flag(flag Flag) bool { return c.isSet(flag) }

// SetFlag sets or clears flag.
func (c *CPU) SetFlag(flag Flag, set bool) { c.setFlag(flag, set) }
