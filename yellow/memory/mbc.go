package memory

import (
	"github.com/valerio/go-yellow/yellow/addr"
)

// MBC is a memory bank controller. It owns the cartridge ROM and external RAM and
// resolves reads/writes in 0x0000-0x7FFF and 0xA000-0xBFFF.
type MBC interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	// ROMBank returns the bank currently mapped at 0x4000-0x7FFF.
	ROMBank() int
	// RAM exposes the external RAM backing store, nil when the cartridge has none.
	RAM() []byte
}

// bankedStore holds the ROM/RAM slices shared by every controller and resolves
// bank-relative offsets, wrapping bank indices to the banks physically present.
type bankedStore struct {
	rom []byte
	ram []byte
}

func newBankedStore(rom []byte, ramBanks int) bankedStore {
	return bankedStore{rom: rom, ram: make([]byte, ramBanks*ramBankSize)}
}

func (s *bankedStore) romBanks() int {
	n := len(s.rom) / romBankSize
	if n == 0 {
		return 1
	}
	return n
}

func (s *bankedStore) ramBanks() int {
	return len(s.ram) / ramBankSize
}

func (s *bankedStore) readROM(bank int, address uint16) uint8 {
	offset := (bank%s.romBanks())*romBankSize + int(address&0x3FFF)
	if offset >= len(s.rom) {
		return 0xFF
	}
	return s.rom[offset]
}

func (s *bankedStore) ramOffset(bank int, address uint16) (int, bool) {
	n := s.ramBanks()
	if n == 0 {
		return 0, false
	}
	return (bank%n)*ramBankSize + int(address-addr.SRAMStart), true
}

func (s *bankedStore) RAM() []byte {
	if len(s.ram) == 0 {
		return nil
	}
	return s.ram
}

// NoMBC maps up to 32KB of ROM directly, with optional unbanked RAM.
type NoMBC struct {
	bankedStore
}

func NewNoMBC(rom []byte, ramBanks int) *NoMBC {
	return &NoMBC{bankedStore: newBankedStore(rom, min(ramBanks, 1))}
}

func (m *NoMBC) Read(address uint16) uint8 {
	switch {
	case address <= addr.ROM0End:
		return m.readROM(0, address)
	case address <= addr.ROMXEnd:
		return m.readROM(1, address)
	case address >= addr.SRAMStart && address <= addr.SRAMEnd:
		if off, ok := m.ramOffset(0, address); ok {
			return m.ram[off]
		}
	}
	return 0xFF
}

func (m *NoMBC) Write(address uint16, value uint8) {
	if address >= addr.SRAMStart && address <= addr.SRAMEnd {
		if off, ok := m.ramOffset(0, address); ok {
			m.ram[off] = value
		}
	}
}

func (m *NoMBC) ROMBank() int { return 1 }

// MBC1 supports up to 2MB ROM and 32KB RAM.
//
//   - 0x0000-0x1FFF: RAM enable, 0x0A in the low nibble enables
//   - 0x2000-0x3FFF: low 5 bits of the ROM bank, 0 is treated as 1
//   - 0x4000-0x5FFF: 2 bit register, RAM bank or upper ROM bank bits
//   - 0x6000-0x7FFF: banking mode. In mode 1 (advanced) the 2 bit register
//     also applies to 0x0000-0x3FFF and selects the RAM bank.
type MBC1 struct {
	bankedStore
	ramEnabled bool
	low        uint8
	upper      uint8
	advanced   bool
}

func NewMBC1(rom []byte, ramBanks int) *MBC1 {
	return &MBC1{bankedStore: newBankedStore(rom, ramBanks), low: 1}
}

func (m *MBC1) ROMBank() int {
	return (int(m.upper)<<5 | int(m.low)) % m.romBanks()
}

func (m *MBC1) ramBank() int {
	if m.advanced {
		return int(m.upper)
	}
	return 0
}

func (m *MBC1) Read(address uint16) uint8 {
	switch {
	case address <= addr.ROM0End:
		bank := 0
		if m.advanced {
			bank = int(m.upper) << 5
		}
		return m.readROM(bank, address)
	case address <= addr.ROMXEnd:
		return m.readROM(m.ROMBank(), address)
	case address >= addr.SRAMStart && address <= addr.SRAMEnd:
		if !m.ramEnabled {
			return 0xFF
		}
		if off, ok := m.ramOffset(m.ramBank(), address); ok {
			return m.ram[off]
		}
	}
	return 0xFF
}

func (m *MBC1) Write(address uint16, value uint8) {
	switch {
	case address <= addr.RAMEnableEnd:
		m.ramEnabled = value&addr.RAMEnableMagicMsk == addr.RAMEnableMagic
	case address <= addr.ROMBankEnd:
		m.low = value & 0x1F
		if m.low == 0 {
			m.low = 1
		}
	case address <= addr.RAMBankEnd:
		m.upper = value & 0x03
	case address <= addr.BankingModeEnd:
		m.advanced = value&0x01 == 1
	case address >= addr.SRAMStart && address <= addr.SRAMEnd:
		if !m.ramEnabled {
			return
		}
		if off, ok := m.ramOffset(m.ramBank(), address); ok {
			m.ram[off] = value
		}
	}
}

// MBC5 supports up to 8MB ROM (9 bit bank number, bank 0 selectable in the
// switchable window) and up to 128KB RAM.
type MBC5 struct {
	bankedStore
	ramEnabled bool
	romBank    uint16
	ramBank    uint8
}

func NewMBC5(rom []byte, ramBanks int) *MBC5 {
	return &MBC5{bankedStore: newBankedStore(rom, ramBanks), romBank: 1}
}

func (m *MBC5) ROMBank() int {
	return int(m.romBank) % m.romBanks()
}

func (m *MBC5) Read(address uint16) uint8 {
	switch {
	case address <= addr.ROM0End:
		return m.readROM(0, address)
	case address <= addr.ROMXEnd:
		return m.readROM(m.ROMBank(), address)
	case address >= addr.SRAMStart && address <= addr.SRAMEnd:
		if !m.ramEnabled {
			return 0xFF
		}
		if off, ok := m.ramOffset(int(m.ramBank), address); ok {
			return m.ram[off]
		}
	}
	return 0xFF
}

func (m *MBC5) Write(address uint16, value uint8) {
	switch {
	case address <= addr.RAMEnableEnd:
		m.ramEnabled = value&addr.RAMEnableMagicMsk == addr.RAMEnableMagic
	case address <= 0x2FFF:
		m.romBank = m.romBank&0x100 | uint16(value)
	case address <= addr.ROMBankEnd:
		m.romBank = m.romBank&0xFF | uint16(value&0x01)<<8
	case address <= addr.RAMBankEnd:
		m.ramBank = value & 0x0F
	case address <= addr.BankingModeEnd:
		// no banking mode on MBC5
	case address >= addr.SRAMStart && address <= addr.SRAMEnd:
		if !m.ramEnabled {
			return
		}
		if off, ok := m.ramOffset(int(m.ramBank), address); ok {
			m.ram[off] = value
		}
	}
}
