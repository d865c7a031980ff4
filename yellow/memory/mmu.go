package memory

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-yellow/yellow/addr"
	"github.com/valerio/go-yellow/yellow/bit"
	"github.com/valerio/go-yellow/yellow/serial"
)

// ErrRAMSize is returned when a RAM image does not match the cartridge RAM size.
var ErrRAMSize = errors.New("ram image size mismatch")

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionHigh
)

// IODevice is a block of registers mapped into the IO page that advances with the CPU clock.
type IODevice interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Tick(cycles int)
}

// SerialPort is a device wired to SB/SC. Implementations only see those two addresses.
type SerialPort interface {
	IODevice
	Reset()
}

// MMU resolves the 16 bit address space: cartridge ROM/RAM through the bank
// controller, internal RAM, and the IO page with its devices.
type MMU struct {
	cart      *Cartridge
	memory    []byte
	regionMap [256]memRegion

	joypad Joypad
	timer  Timer
	serial SerialPort
	sound  IODevice
}

// New creates a memory unit without a cartridge. Cartridge space reads 0xFF.
func New() *MMU {
	m := &MMU{
		memory: make([]byte, 0x10000),
		joypad: newJoypad(),
	}
	m.serial = serial.NewLogSink(func() { m.RequestInterrupt(addr.SerialInterrupt) })
	m.timer.OnOverflow = func() { m.RequestInterrupt(addr.TimerInterrupt) }
	initRegionMap(m)
	return m
}

// NewWithCartridge creates a memory unit with cart inserted.
func NewWithCartridge(cart *Cartridge) *MMU {
	m := New()
	m.cart = cart
	return m
}

func initRegionMap(m *MMU) {
	for i := 0x00; i <= 0xFF; i++ {
		var r memRegion
		switch {
		case i <= 0x7F:
			r = regionROM
		case i <= 0x9F:
			r = regionVRAM
		case i <= 0xBF:
			r = regionExtRAM
		case i <= 0xDF:
			r = regionWRAM
		case i <= 0xFD:
			r = regionEcho
		case i == 0xFE:
			r = regionOAM
		default:
			r = regionHigh
		}
		m.regionMap[i] = r
	}
}

// AttachSerial replaces the device on the link port.
func (m *MMU) AttachSerial(port SerialPort) {
	m.serial = port
}

// AttachSound maps a sound unit onto 0xFF10-0xFF3F.
func (m *MMU) AttachSound(dev IODevice) {
	m.sound = dev
}

// SeedTimer sets the internal system counter.
func (m *MMU) SeedTimer(counter uint16) {
	m.timer.Seed(counter)
}

// Tick advances the clocked IO devices.
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles)
	if m.serial != nil {
		m.serial.Tick(cycles)
	}
	if m.sound != nil {
		m.sound.Tick(cycles)
	}
}

// RequestInterrupt raises the IF bit for interrupt.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	m.memory[addr.IF] |= uint8(interrupt) | 0xE0
}

// ROMBank returns the bank mapped at 0x4000-0x7FFF.
func (m *MMU) ROMBank() int {
	if m.cart == nil {
		return 1
	}
	return m.cart.mbc.ROMBank()
}

// SetIO writes a register without the CPU-facing write semantics. Used by
// hardware that owns read-only register bits (LY, STAT mode).
func (m *MMU) SetIO(address uint16, value uint8) {
	m.memory[address] = value
}

// Press marks a joypad button as held, raising the joypad interrupt on a new press.
func (m *MMU) Press(b Button) {
	if m.joypad.press(b) {
		m.RequestInterrupt(addr.JoypadInterrupt)
	}
}

// Release marks a joypad button as released.
func (m *MMU) Release(b Button) {
	m.joypad.release(b)
}

// Held reports whether b is currently pressed.
func (m *MMU) Held(b Button) bool {
	return m.joypad.Held(b)
}

// ReplaceRAM overwrites the cartridge's battery-backed RAM with image. The image
// must match the RAM size exactly, otherwise nothing is written. Bank registers
// are left untouched.
func (m *MMU) ReplaceRAM(image []byte) error {
	var ram []byte
	if m.cart != nil {
		ram = m.cart.mbc.RAM()
	}
	if len(image) != len(ram) {
		return fmt.Errorf("%w: want %d bytes, got %d", ErrRAMSize, len(ram), len(image))
	}
	copy(ram, image)
	return nil
}

// RAMImage returns a copy of the cartridge's battery-backed RAM.
func (m *MMU) RAMImage() []byte {
	if m.cart == nil {
		return nil
	}
	ram := m.cart.mbc.RAM()
	image := make([]byte, len(ram))
	copy(image, ram)
	return image
}

func (m *MMU) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, m.Read(address))
}

func (m *MMU) Read(address uint16) uint8 {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if m.cart == nil {
			return 0xFF
		}
		return m.cart.mbc.Read(address)
	case regionVRAM, regionWRAM:
		return m.memory[address]
	case regionEcho:
		return m.memory[address-0x2000]
	case regionOAM:
		if address > addr.OAMEnd {
			return 0xFF
		}
		return m.memory[address]
	default:
		return m.readHigh(address)
	}
}

func (m *MMU) readHigh(address uint16) uint8 {
	switch {
	case address >= addr.HRAMStart:
		return m.memory[address]
	case address == addr.P1:
		return m.joypad.register()
	case address == addr.SB || address == addr.SC:
		if m.serial == nil {
			return 0xFF
		}
		return m.serial.Read(address)
	case address >= addr.DIV && address <= addr.TAC:
		return m.timer.Read(address)
	case address == addr.IF:
		return m.memory[address] | 0xE0
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		if m.sound != nil {
			return m.sound.Read(address)
		}
		return m.memory[address]
	case address == addr.STAT:
		return m.memory[address] | 0x80
	case address > addr.WX:
		return 0xFF
	}
	return m.memory[address]
}

func (m *MMU) Write(address uint16, value uint8) {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if m.cart == nil {
			slog.Debug("Write to cartridge space with no cartridge", "addr", fmt.Sprintf("0x%04X", address))
			return
		}
		m.cart.mbc.Write(address, value)
	case regionVRAM, regionWRAM:
		m.memory[address] = value
	case regionEcho:
		m.memory[address-0x2000] = value
	case regionOAM:
		if address <= addr.OAMEnd {
			m.memory[address] = value
		}
	default:
		m.writeHigh(address, value)
	}
}

func (m *MMU) writeHigh(address uint16, value uint8) {
	switch {
	case address >= addr.HRAMStart:
		m.memory[address] = value
	case address == addr.P1:
		m.joypad.write(value)
	case address == addr.SB || address == addr.SC:
		if m.serial != nil {
			m.serial.Write(address, value)
		}
	case address >= addr.DIV && address <= addr.TAC:
		m.timer.Write(address, value)
	case address == addr.IF:
		m.memory[address] = value | 0xE0
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		if m.sound != nil {
			m.sound.Write(address, value)
			return
		}
		m.memory[address] = value
	case address == addr.LY:
		// read only
	case address == addr.STAT:
		m.memory[address] = value&0x78 | m.memory[address]&0x07
	case address == addr.DMA:
		m.memory[address] = value
		m.transferOAM(uint16(value) << 8)
	case address > addr.WX:
		// CGB registers, unmapped on DMG
	default:
		m.memory[address] = value
	}
}

// transferOAM copies 160 bytes from source to OAM. The copy is instantaneous.
func (m *MMU) transferOAM(source uint16) {
	for i := range uint16(0xA0) {
		m.memory[addr.OAMStart+i] = m.Read(source + i)
	}
}
