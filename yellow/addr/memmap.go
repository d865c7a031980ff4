package addr

// Memory map windows. Ends are inclusive.
const (
	ROM0Start uint16 = 0x0000
	ROM0End   uint16 = 0x3FFF
	ROMXStart uint16 = 0x4000
	ROMXEnd   uint16 = 0x7FFF
	VRAMStart uint16 = 0x8000
	VRAMEnd   uint16 = 0x9FFF
	SRAMStart uint16 = 0xA000
	SRAMEnd   uint16 = 0xBFFF
	WRAMStart uint16 = 0xC000
	WRAMEnd   uint16 = 0xDFFF
	EchoStart uint16 = 0xE000
	EchoEnd   uint16 = 0xFDFF
	OAMStart  uint16 = 0xFE00
	OAMEnd    uint16 = 0xFE9F
	// Unusable region between OAM and IO. Reads 0xFF, writes are ignored.
	UnusedStart uint16 = 0xFEA0
	UnusedEnd   uint16 = 0xFEFF
	IOStart     uint16 = 0xFF00
	IOEnd       uint16 = 0xFF7F
	HRAMStart   uint16 = 0xFF80
	HRAMEnd     uint16 = 0xFFFE
)

// Bank controller register windows. Writes into ROM space land here.
const (
	RAMEnableStart    uint16 = 0x0000
	RAMEnableEnd      uint16 = 0x1FFF
	ROMBankStart      uint16 = 0x2000
	ROMBankEnd        uint16 = 0x3FFF
	RAMBankStart      uint16 = 0x4000
	RAMBankEnd        uint16 = 0x5FFF
	BankingModeStart  uint16 = 0x6000
	BankingModeEnd    uint16 = 0x7FFF
	RAMEnableMagic    uint8  = 0x0A
	RAMEnableMagicMsk uint8  = 0x0F
)

// Cartridge header offsets.
const (
	HeaderTitle     uint16 = 0x0134
	HeaderCGBFlag   uint16 = 0x0143
	HeaderCartType  uint16 = 0x0147
	HeaderROMSize   uint16 = 0x0148
	HeaderRAMSize   uint16 = 0x0149
	HeaderChecksum  uint16 = 0x014D
	HeaderEnd       uint16 = 0x014F
	EntryPoint      uint16 = 0x0100
	InitialStackTop uint16 = 0xFFFE
)

// InROM reports whether a is mapped to cartridge ROM.
func InROM(a uint16) bool { return a <= ROMXEnd }

// InHRAM reports whether a is in high RAM.
func InHRAM(a uint16) bool { return a >= HRAMStart && a <= HRAMEnd }
