package addr

// video registers
const (
	// LCDC is the LCD control register.
	LCDC uint16 = 0xFF40
	// STAT is the LCD status register.
	STAT uint16 = 0xFF41
	SCY  uint16 = 0xFF42
	SCX  uint16 = 0xFF43
	// LY is the current scanline, read only.
	LY  uint16 = 0xFF44
	LYC uint16 = 0xFF45
	// DMA starts an OAM transfer from (value << 8).
	DMA  uint16 = 0xFF46
	BGP  uint16 = 0xFF47
	OBP0 uint16 = 0xFF48
	OBP1 uint16 = 0xFF49
	WY   uint16 = 0xFF4A
	WX   uint16 = 0xFF4B
)

// sound registers
// Reference: https://gbdev.io/pandocs/Audio_Registers.html
const (
	AudioStart uint16 = 0xFF10
	AudioEnd   uint16 = 0xFF3F

	NR10 uint16 = 0xFF10 // ch1 sweep
	NR11 uint16 = 0xFF11 // ch1 length & duty
	NR12 uint16 = 0xFF12 // ch1 envelope
	NR13 uint16 = 0xFF13 // ch1 period low
	NR14 uint16 = 0xFF14 // ch1 period high & trigger

	NR21 uint16 = 0xFF16
	NR22 uint16 = 0xFF17
	NR23 uint16 = 0xFF18
	NR24 uint16 = 0xFF19

	NR30 uint16 = 0xFF1A // ch3 DAC
	NR31 uint16 = 0xFF1B
	NR32 uint16 = 0xFF1C // ch3 output level
	NR33 uint16 = 0xFF1D
	NR34 uint16 = 0xFF1E

	NR41 uint16 = 0xFF20
	NR42 uint16 = 0xFF21
	NR43 uint16 = 0xFF22 // ch4 clock & LFSR width
	NR44 uint16 = 0xFF23

	NR50 uint16 = 0xFF24 // master volume
	NR51 uint16 = 0xFF25 // panning
	NR52 uint16 = 0xFF26 // power & channel status

	WaveRAMStart uint16 = 0xFF30
	WaveRAMEnd   uint16 = 0xFF3F
)

// tile data and tile maps
const (
	// TileData0 is the unsigned tile data block, tiles 0-255.
	TileData0 uint16 = 0x8000
	// TileData1 holds signed tiles -128 to -1.
	TileData1 uint16 = 0x8800
	// TileData2 holds signed tiles 0-127.
	TileData2 uint16 = 0x9000

	TileMap0 uint16 = 0x9800
	TileMap1 uint16 = 0x9C00
)

const (
	// IF is the interrupt flags register.
	IF uint16 = 0xFF0F
	// IE is the interrupt enable register.
	IE uint16 = 0xFFFF
	// P1 selects and reads the joypad lines.
	P1 uint16 = 0xFF00
)

// serial I/O
const (
	// SB holds the byte to transmit; after a transfer it holds the byte received from the peer.
	SB uint16 = 0xFF01
	// SC bit 7 starts a transfer and is cleared by hardware on completion.
	// Bit 0 selects the internal clock.
	SC uint16 = 0xFF02
)

// timers
const (
	// DIV is the upper byte of the 16 bit system counter. Writing resets it.
	DIV  uint16 = 0xFF04
	TIMA uint16 = 0xFF05
	TMA  uint16 = 0xFF06
	TAC  uint16 = 0xFF07
)

// Interrupt is one of the five interrupt sources, encoded as its IF/IE bit.
type Interrupt uint8

const (
	VBlankInterrupt  Interrupt = 1 << 0
	LCDSTATInterrupt Interrupt = 1 << 1
	TimerInterrupt   Interrupt = 1 << 2
	SerialInterrupt  Interrupt = 1 << 3
	JoypadInterrupt  Interrupt = 1 << 4
)

// Vector returns the handler address for the interrupt with the given bit index.
func Vector(index uint8) uint16 {
	return 0x40 + uint16(index)*8
}
