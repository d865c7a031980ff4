// Package script lets native routines be written in Lua. A script registers
// hooks through the global gb table; each hook runs with native authority
// and drives the session through the same operations Go routines use.
//
//	gb.hook(0x00, 0x0150, function()
//	  local h = gb.layer()
//	  gb.box(h, 0, 12, 18, 4)
//	  gb.text(h, 1, 14, "Hello!")
//	  gb.update()
//	  gb.wait()
//	  gb.pop_layer(h)
//	end)
package script

import (
	"fmt"
	"log/slog"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/valerio/go-yellow/yellow"
	"github.com/valerio/go-yellow/yellow/video"
)

// Engine owns a Lua state bound to one session. It is not safe for
// concurrent use, which matches the session it drives.
type Engine struct {
	L       *lua.LState
	session *yellow.Session
	logger  *slog.Logger

	// fault holds a machine panic raised inside a Lua call until the call
	// has unwound, so it can be re-raised with its original type.
	fault any
}

// New creates an engine with the base, string, table and math libraries.
func New(s *yellow.Session, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	e := &Engine{L: L, session: s, logger: logger}
	e.bind()
	return e
}

// LoadFile runs the script at path, which registers its hooks.
func (e *Engine) LoadFile(path string) error {
	if err := e.L.DoFile(path); err != nil {
		return fmt.Errorf("load script %s: %w", path, err)
	}
	return nil
}

// LoadString runs src as a script.
func (e *Engine) LoadString(src string) error {
	if err := e.L.DoString(src); err != nil {
		return fmt.Errorf("load script: %w", err)
	}
	return nil
}

func (e *Engine) Close() { e.L.Close() }

func (e *Engine) bind() {
	gb := e.L.NewTable()
	e.L.SetFuncs(gb, map[string]lua.LGFunction{
		"hook":      e.guard(e.hook),
		"call":      e.guard(e.call),
		"jump":      e.guard(e.jump),
		"push":      e.guard(e.push),
		"pop":       e.guard(e.pop),
		"read":      e.guard(e.read),
		"write":     e.guard(e.write),
		"reg":       e.guard(e.reg),
		"setreg":    e.guard(e.setReg),
		"wait":      e.guard(e.wait),
		"layer":     e.guard(e.pushLayer),
		"pop_layer": e.guard(e.popLayer),
		"tile":      e.guard(e.tile),
		"text":      e.guard(e.text),
		"box":       e.guard(e.box),
		"rect":      e.guard(e.rect),
		"clear":     e.guard(e.clear),
		"update":    e.guard(e.update),
		"save":      e.guard(e.save),
		"log":       e.log,
	})
	e.L.SetGlobal("gb", gb)
}

// guard turns a machine panic into a Lua error so the Lua stack unwinds
// cleanly, and remembers it for runHook to re-raise.
func (e *Engine) guard(fn lua.LGFunction) lua.LGFunction {
	return func(L *lua.LState) int {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(*lua.ApiError); ok {
					panic(r)
				}
				e.fault = r
				L.RaiseError("%v", r)
			}
		}()
		return fn(L)
	}
}

func (e *Engine) hook(L *lua.LState) int {
	bank := L.CheckInt(1)
	address := uint16(L.CheckInt(2))
	fn := L.CheckFunction(3)

	e.session.Register(bank, address, func(*yellow.Session) { e.runHook(fn, bank, address) })
	return 0
}

func (e *Engine) runHook(fn *lua.LFunction, bank int, address uint16) {
	err := e.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	if fault := e.fault; fault != nil {
		e.fault = nil
		panic(fault)
	}
	if err != nil {
		e.logger.Error("Script hook failed", "bank", bank, "addr", fmt.Sprintf("0x%04X", address), "err", err)
	}
}

func (e *Engine) call(L *lua.LState) int {
	e.session.Call(uint16(L.CheckInt(1)))
	return 0
}

func (e *Engine) jump(L *lua.LState) int {
	e.session.Jump(uint16(L.CheckInt(1)))
	return 0
}

func (e *Engine) push(L *lua.LState) int {
	e.session.StackPush(uint16(L.CheckInt(1)))
	return 0
}

func (e *Engine) pop(L *lua.LState) int {
	L.Push(lua.LNumber(e.session.StackPop()))
	return 1
}

func (e *Engine) read(L *lua.LState) int {
	L.Push(lua.LNumber(e.session.ReadByte(uint16(L.CheckInt(1)))))
	return 1
}

func (e *Engine) write(L *lua.LState) int {
	e.session.WriteByte(uint16(L.CheckInt(1)), uint8(L.CheckInt(2)))
	return 0
}

func (e *Engine) reg(L *lua.LState) int {
	c := e.session.CPU()
	var v uint16
	switch name := strings.ToLower(L.CheckString(1)); name {
	case "a":
		v = uint16(c.GetA())
	case "b":
		v = uint16(c.GetB())
	case "c":
		v = uint16(c.GetC())
	case "d":
		v = uint16(c.GetD())
	case "e":
		v = uint16(c.GetE())
	case "h":
		v = uint16(c.GetH())
	case "l":
		v = uint16(c.GetL())
	case "af":
		v = c.GetAF()
	case "bc":
		v = c.GetBC()
	case "de":
		v = c.GetDE()
	case "hl":
		v = c.GetHL()
	case "sp":
		v = c.GetSP()
	case "pc":
		v = c.GetPC()
	default:
		L.ArgError(1, "unknown register "+name)
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (e *Engine) setReg(L *lua.LState) int {
	c := e.session.CPU()
	v := L.CheckInt(2)
	switch name := strings.ToLower(L.CheckString(1)); name {
	case "a":
		c.SetA(uint8(v))
	case "b":
		c.SetB(uint8(v))
	case "c":
		c.SetC(uint8(v))
	case "d":
		c.SetD(uint8(v))
	case "e":
		c.SetE(uint8(v))
	case "h":
		c.SetH(uint8(v))
	case "l":
		c.SetL(uint8(v))
	case "af":
		c.SetAF(uint16(v))
	case "bc":
		c.SetBC(uint16(v))
	case "de":
		c.SetDE(uint16(v))
	case "hl":
		c.SetHL(uint16(v))
	default:
		L.ArgError(1, "register "+name+" is not writable")
	}
	return 0
}

// wait returns the pressed key name and whether shift was held.
func (e *Engine) wait(L *lua.LState) int {
	ev := e.session.KeypadWait()
	L.Push(lua.LString(ev.Key.String()))
	L.Push(lua.LBool(ev.Shift))
	return 2
}

func (e *Engine) pushLayer(L *lua.LState) int {
	L.Push(lua.LNumber(e.session.PushLayer()))
	return 1
}

// popLayer returns nil, or an error message for an out of order pop.
func (e *Engine) popLayer(L *lua.LState) int {
	if err := e.session.PopLayer(video.LayerHandle(L.CheckInt(1))); err != nil {
		L.Push(lua.LString(err.Error()))
		return 1
	}
	L.Push(lua.LNil)
	return 1
}

func (e *Engine) layer(L *lua.LState) *video.Layer {
	h := video.LayerHandle(L.CheckInt(1))
	l := e.session.MutLayer(h)
	if l == nil {
		L.ArgError(1, fmt.Sprintf("layer %d is not on the stack", h))
	}
	return l
}

func (e *Engine) tile(L *lua.LState) int {
	e.layer(L).SetBackground(L.CheckInt(2), L.CheckInt(3), uint8(L.CheckInt(4)))
	return 0
}

func (e *Engine) text(L *lua.LState) int {
	e.layer(L).PlaceString(L.CheckInt(2), L.CheckInt(3), L.CheckString(4))
	return 0
}

func (e *Engine) box(L *lua.LState) int {
	e.layer(L).TextBoxBorder(L.CheckInt(2), L.CheckInt(3), L.CheckInt(4), L.CheckInt(5))
	return 0
}

// rect(h, x, y, w, h, shade, filled)
func (e *Engine) rect(L *lua.LState) int {
	l := e.layer(L)
	r := video.Rect{X: L.CheckInt(2), Y: L.CheckInt(3), W: L.CheckInt(4), H: L.CheckInt(5), Filled: L.OptBool(7, false)}
	l.Draw(r, video.Fill(video.Shade(L.CheckInt(6))))
	return 0
}

func (e *Engine) clear(L *lua.LState) int {
	e.layer(L).Clear()
	return 0
}

func (e *Engine) update(*lua.LState) int {
	e.session.UpdateScreen()
	return 0
}

// save(table of bytes) replaces cartridge RAM and returns nil or an error message.
func (e *Engine) save(L *lua.LState) int {
	tbl := L.CheckTable(1)
	image := make([]byte, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		n, ok := tbl.RawGetInt(i).(lua.LNumber)
		if !ok {
			L.ArgError(1, fmt.Sprintf("entry %d is not a number", i))
		}
		image = append(image, uint8(n))
	}
	if err := e.session.ReplaceRAM(image); err != nil {
		L.Push(lua.LString(err.Error()))
		return 1
	}
	L.Push(lua.LNil)
	return 1
}

func (e *Engine) log(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	e.logger.Info("script", "msg", strings.Join(parts, " "))
	return 0
}
