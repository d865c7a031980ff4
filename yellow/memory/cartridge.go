package memory

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/valerio/go-yellow/yellow/addr"
)

const (
	romBankSize = 0x4000
	ramBankSize = 0x2000
	titleLength = 16
)

var (
	ErrShortImage           = errors.New("image too small to contain a cartridge header")
	ErrUnsupportedCartridge = errors.New("unsupported cartridge type")
)

// Header holds the decoded cartridge header fields the emulator cares about.
type Header struct {
	Title       string
	CGBFlag     uint8
	CartType    uint8
	ROMSizeCode uint8
	RAMSizeCode uint8
	Checksum    uint8
	ROMBanks    int
	RAMBanks    int
	Battery     bool
}

// Expectation is a fixed byte the header must carry for the image to be accepted.
type Expectation struct {
	Offset uint16
	Value  uint8
	Name   string
}

// YellowHeader identifies the supported image: CGB-compatible, MBC5+RAM+BATTERY, 32KB save RAM.
var YellowHeader = []Expectation{
	{Offset: addr.HeaderCGBFlag, Value: 0x80, Name: "cgb flag"},
	{Offset: addr.HeaderCartType, Value: 0x1B, Name: "cartridge type"},
	{Offset: addr.HeaderRAMSize, Value: 0x03, Name: "ram size"},
}

// HeaderError reports the first header byte that did not match its expectation.
type HeaderError struct {
	Expectation
	Got uint8
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("header %s at 0x%04X: want 0x%02X, got 0x%02X", e.Name, e.Offset, e.Value, e.Got)
}

// ValidateHeader checks rom against every expectation, in order.
func ValidateHeader(rom []byte, expectations []Expectation) error {
	if len(rom) <= int(addr.HeaderEnd) {
		return ErrShortImage
	}
	for _, exp := range expectations {
		if got := rom[exp.Offset]; got != exp.Value {
			return &HeaderError{Expectation: exp, Got: got}
		}
	}
	return nil
}

// HeaderChecksumOK verifies the checksum byte at 0x014D.
func HeaderChecksumOK(rom []byte) bool {
	if len(rom) <= int(addr.HeaderChecksum) {
		return false
	}
	var sum uint8
	for i := 0x0134; i <= 0x014C; i++ {
		sum = sum - rom[i] - 1
	}
	return sum == rom[addr.HeaderChecksum]
}

// ParseHeader decodes the header of a raw image.
func ParseHeader(rom []byte) (Header, error) {
	if len(rom) <= int(addr.HeaderEnd) {
		return Header{}, ErrShortImage
	}

	// CGB-aware images reuse the last title byte as the CGB flag.
	n := titleLength
	if rom[addr.HeaderCGBFlag]&0x80 != 0 {
		n--
	}

	h := Header{
		Title:       cleanTitle(rom[addr.HeaderTitle : int(addr.HeaderTitle)+n]),
		CGBFlag:     rom[addr.HeaderCGBFlag],
		CartType:    rom[addr.HeaderCartType],
		ROMSizeCode: rom[addr.HeaderROMSize],
		RAMSizeCode: rom[addr.HeaderRAMSize],
		Checksum:    rom[addr.HeaderChecksum],
	}
	if h.ROMSizeCode <= 0x08 {
		h.ROMBanks = 2 << h.ROMSizeCode
	}
	switch h.RAMSizeCode {
	case 0x02:
		h.RAMBanks = 1
	case 0x03:
		h.RAMBanks = 4
	case 0x04:
		h.RAMBanks = 16
	case 0x05:
		h.RAMBanks = 8
	}
	switch h.CartType {
	case 0x03, 0x06, 0x09, 0x0D, 0x0F, 0x10, 0x13, 0x1B, 0x1E:
		h.Battery = true
	}
	return h, nil
}

// Cartridge is a parsed image plus the bank controller that maps it.
type Cartridge struct {
	Header Header
	mbc    MBC
}

// NewCartridge parses the header of rom and picks the matching bank controller.
func NewCartridge(rom []byte) (*Cartridge, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	if !HeaderChecksumOK(rom) {
		slog.Warn("Cartridge header checksum mismatch", "title", h.Title)
	}

	data := make([]byte, len(rom))
	copy(data, rom)

	cart := &Cartridge{Header: h}
	switch h.CartType {
	case 0x00, 0x08, 0x09:
		cart.mbc = NewNoMBC(data, h.RAMBanks)
	case 0x01, 0x02, 0x03:
		cart.mbc = NewMBC1(data, h.RAMBanks)
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		cart.mbc = NewMBC5(data, h.RAMBanks)
	default:
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnsupportedCartridge, h.CartType)
	}

	slog.Info("Loaded cartridge",
		"title", h.Title,
		"type", fmt.Sprintf("0x%02X", h.CartType),
		"rom_banks", len(data)/romBankSize,
		"ram_banks", h.RAMBanks,
		"battery", h.Battery)

	return cart, nil
}

// cleanTitle turns the raw title bytes into printable text.
func cleanTitle(raw []byte) string {
	runes := make([]rune, 0, len(raw))
	for _, b := range raw {
		r := rune(b)
		switch {
		case r == 0:
			r = ' '
		case r > unicode.MaxASCII || !unicode.IsPrint(r):
			r = '?'
		}
		runes = append(runes, r)
	}
	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(Untitled)"
	}
	return title
}
