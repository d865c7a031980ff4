package cpu

import (
	"github.com/valerio/go-yellow/yellow/bit"
)

// operand index order used by the opcode encoding: B C D E H L (HL) A
const hlIndirect = 6

func (c *CPU) readReg(i uint8) uint8 {
	switch i {
	case 0:
		return c.b
	case 1:
		return c.c
	case 2:
		return c.d
	case 3:
		return c.e
	case 4:
		return c.h
	case 5:
		return c.l
	case hlIndirect:
		return c.bus.Read(c.GetHL())
	default:
		return c.a
	}
}

func (c *CPU) writeReg(i uint8, v uint8) {
	switch i {
	case 0:
		c.b = v
	case 1:
		c.c = v
	case 2:
		c.d = v
	case 3:
		c.e = v
	case 4:
		c.h = v
	case 5:
		c.l = v
	case hlIndirect:
		c.bus.Write(c.GetHL(), v)
	default:
		c.a = v
	}
}

// readPair and writePair use the BC DE HL SP table. With af set, index 3 is AF instead.
func (c *CPU) readPair(p uint8, af bool) uint16 {
	switch p {
	case 0:
		return c.GetBC()
	case 1:
		return c.GetDE()
	case 2:
		return c.GetHL()
	}
	if af {
		return c.GetAF()
	}
	return c.sp
}

func (c *CPU) writePair(p uint8, v uint16, af bool) {
	switch p {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		if af {
			c.SetAF(v)
		} else {
			c.sp = v
		}
	}
}

// condition evaluates NZ Z NC C.
func (c *CPU) condition(cc uint8) bool {
	switch cc {
	case 0:
		return !c.isSet(ZeroFlag)
	case 1:
		return c.isSet(ZeroFlag)
	case 2:
		return !c.isSet(CarryFlag)
	default:
		return c.isSet(CarryFlag)
	}
}

func (c *CPU) inc(v uint8) uint8 {
	r := v + 1
	c.setFlag(ZeroFlag, r == 0)
	c.setFlag(SubFlag, false)
	c.setFlag(HalfCarryFlag, v&0x0F == 0x0F)
	return r
}

func (c *CPU) dec(v uint8) uint8 {
	r := v - 1
	c.setFlag(ZeroFlag, r == 0)
	c.setFlag(SubFlag, true)
	c.setFlag(HalfCarryFlag, v&0x0F == 0)
	return r
}

func (c *CPU) add(v uint8, carryIn bool) {
	var cy uint8
	if carryIn {
		cy = c.carry()
	}
	sum := uint16(c.a) + uint16(v) + uint16(cy)
	h := bit.HalfCarryAdd(c.a, v, cy)
	c.a = uint8(sum)
	c.setZNHC(c.a == 0, false, h, sum > 0xFF)
}

// sub computes A - v (- carry). With store unset it only sets flags (CP).
func (c *CPU) sub(v uint8, carryIn, store bool) {
	var cy uint8
	if carryIn {
		cy = c.carry()
	}
	diff := int(c.a) - int(v) - int(cy)
	h := bit.HalfCarrySub(c.a, v, cy)
	r := uint8(diff)
	c.setZNHC(r == 0, true, h, diff < 0)
	if store {
		c.a = r
	}
}

func (c *CPU) and(v uint8) {
	c.a &= v
	c.setZNHC(c.a == 0, false, true, false)
}

func (c *CPU) xor(v uint8) {
	c.a ^= v
	c.setZNHC(c.a == 0, false, false, false)
}

func (c *CPU) or(v uint8) {
	c.a |= v
	c.setZNHC(c.a == 0, false, false, false)
}

// alu applies ADD ADC SUB SBC AND XOR OR CP, in encoding order.
func (c *CPU) alu(op uint8, v uint8) {
	switch op {
	case 0:
		c.add(v, false)
	case 1:
		c.add(v, true)
	case 2:
		c.sub(v, false, true)
	case 3:
		c.sub(v, true, true)
	case 4:
		c.and(v)
	case 5:
		c.xor(v)
	case 6:
		c.or(v)
	default:
		c.sub(v, false, false)
	}
}

func (c *CPU) addHL(v uint16) {
	hl := c.GetHL()
	sum := uint32(hl) + uint32(v)
	c.setFlag(SubFlag, false)
	c.setFlag(HalfCarryFlag, bit.HalfCarryAdd16(hl, v))
	c.setFlag(CarryFlag, sum > 0xFFFF)
	c.SetHL(uint16(sum))
}

// addSPSigned returns SP + e. Flags come from the unsigned low byte addition.
func (c *CPU) addSPSigned(e int8) uint16 {
	u := uint16(uint8(e))
	h := (c.sp&0x0F)+(u&0x0F) > 0x0F
	cy := (c.sp&0xFF)+(u&0xFF) > 0xFF
	c.setZNHC(false, false, h, cy)
	return c.sp + uint16(int16(e))
}

func (c *CPU) daa() {
	a := c.a
	var adjust uint8
	cy := c.isSet(CarryFlag)

	if c.isSet(SubFlag) {
		if c.isSet(HalfCarryFlag) {
			adjust |= 0x06
		}
		if cy {
			adjust |= 0x60
		}
		a -= adjust
	} else {
		if c.isSet(HalfCarryFlag) || a&0x0F > 0x09 {
			adjust |= 0x06
		}
		if cy || a > 0x99 {
			adjust |= 0x60
			cy = true
		}
		a += adjust
	}

	c.a = a
	c.setFlag(ZeroFlag, a == 0)
	c.setFlag(HalfCarryFlag, false)
	c.setFlag(CarryFlag, cy)
}

// rotate applies RLC RRC RL RR SLA SRA SWAP SRL, in CB encoding order,
// and sets Z from the result.
func (c *CPU) rotate(op uint8, v uint8) uint8 {
	var r uint8
	var cy bool
	switch op {
	case 0:
		cy = v&0x80 != 0
		r = v<<1 | v>>7
	case 1:
		cy = v&0x01 != 0
		r = v>>1 | v<<7
	case 2:
		cy = v&0x80 != 0
		r = v<<1 | c.carry()
	case 3:
		cy = v&0x01 != 0
		r = v>>1 | c.carry()<<7
	case 4:
		cy = v&0x80 != 0
		r = v << 1
	case 5:
		cy = v&0x01 != 0
		r = v>>1 | v&0x80
	case 6:
		r = v<<4 | v>>4
	default:
		cy = v&0x01 != 0
		r = v >> 1
	}
	c.setZNHC(r == 0, false, false, cy)
	return r
}

func (c *CPU) testBit(index, v uint8) {
	c.setFlag(ZeroFlag, !bit.IsSet(index, v))
	c.setFlag(SubFlag, false)
	c.setFlag(HalfCarryFlag, true)
}
