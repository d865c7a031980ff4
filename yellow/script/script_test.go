package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/valerio/go-yellow/yellow"
	"github.com/valerio/go-yellow/yellow/addr"
	"github.com/valerio/go-yellow/yellow/cpu"
	"github.com/valerio/go-yellow/yellow/keypad"
	"github.com/valerio/go-yellow/yellow/video"
)

func testROM(program ...uint8) []byte {
	rom := make([]byte, 0x8000)
	rom[addr.HeaderCGBFlag] = 0x80
	rom[addr.HeaderCartType] = 0x1B
	rom[addr.HeaderRAMSize] = 0x03
	copy(rom[addr.EntryPoint:], program)
	return rom
}

func newEngine(t *testing.T, rom []byte, opts yellow.Options) (*yellow.Session, *Engine) {
	t.Helper()
	s, err := yellow.New(rom, opts)
	require.NoError(t, err)
	e := New(s, nil)
	t.Cleanup(e.Close)
	return s, e
}

func TestHookRunsLua(t *testing.T) {
	// CALL 0x0150; LD (0xC001),A; JR -2
	s, e := newEngine(t, testROM(0xCD, 0x50, 0x01, 0xEA, 0x01, 0xC0, 0x18, 0xFE), yellow.Options{})

	require.NoError(t, e.LoadString(`
gb.hook(0, 0x0150, function()
  gb.write(0xC000, gb.read(0x0100) + 1)
  gb.setreg("a", 0x5A)
end)
`))
	for range 3 {
		s.DoCycle()
	}

	assert.Equal(t, uint8(0xCE), s.ReadByte(0xC000))
	assert.Equal(t, uint8(0x5A), s.ReadByte(0xC001))
	assert.Equal(t, cpu.BinaryControl, s.CPU().Authority().Mode)
}

func TestLayersFromLua(t *testing.T) {
	keys := make(chan keypad.Event, 1)
	keys <- keypad.Event{Key: keypad.A, Shift: true}
	s, e := newEngine(t, testROM(0x18, 0xFE), yellow.Options{Keys: keys})

	require.NoError(t, e.LoadString(`
result = {}
function menu()
  local h = gb.layer()
  gb.box(h, 0, 0, 4, 1)
  gb.text(h, 1, 1, "AB")
  gb.rect(h, 10, 10, 2, 2, 3, true)
  gb.update()
  result.key, result.shift = gb.wait()
  result.bad = gb.pop_layer(h + 100)
  result.ok = gb.pop_layer(h)
end
`))

	s.RunNative(func(*yellow.Session) {
		require.NoError(t, e.L.CallByParam(lua.P{Fn: e.L.GetGlobal("menu"), NRet: 0, Protect: true}))
	})

	result := e.L.GetGlobal("result")
	assert.Equal(t, "a", e.L.GetField(result, "key").String())
	assert.Equal(t, "true", e.L.GetField(result, "shift").String())
	assert.Contains(t, e.L.GetField(result, "bad").String(), "unknown layer")
	assert.Equal(t, "nil", e.L.GetField(result, "ok").String())

	frame := <-s.Frames()
	assert.Len(t, frame, video.FrameBytes)
}

func TestMachineFaultKeepsType(t *testing.T) {
	s, e := newEngine(t, testROM(0x18, 0xFE), yellow.Options{})
	require.NoError(t, e.LoadString(`gb.hook(0, 0x0100, function() gb.call(0x8000) end)`))

	err := s.Run(context.Background())

	var target *cpu.TargetError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, uint16(0x8000), target.Address)
}

func TestLuaErrorIsLogged(t *testing.T) {
	// CALL 0x0150; LD (0xC000),A
	s, e := newEngine(t, testROM(0xCD, 0x50, 0x01, 0xEA, 0x00, 0xC0), yellow.Options{})
	require.NoError(t, e.LoadString(`gb.hook(0, 0x0150, function() gb.reg("q") end)`))

	assert.NotPanics(t, func() {
		for range 3 {
			s.DoCycle()
		}
	})
	assert.Equal(t, s.CPU().GetA(), s.ReadByte(0xC000), "binary resumed after the failed hook")
}

func TestLoadFile(t *testing.T) {
	_, e := newEngine(t, testROM(0x18, 0xFE), yellow.Options{})

	path := filepath.Join(t.TempDir(), "hooks.lua")
	require.NoError(t, os.WriteFile(path, []byte(`loaded = string.format("%02X", 255)`), 0o644))
	require.NoError(t, e.LoadFile(path))
	assert.Equal(t, "FF", e.L.GetGlobal("loaded").String())

	assert.Error(t, e.LoadString("gb.hook("))
	assert.Error(t, e.LoadFile(filepath.Join(t.TempDir(), "missing.lua")))
}
