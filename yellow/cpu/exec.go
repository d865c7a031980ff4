package cpu

// execute decodes and runs the opcode at PC and returns its cost in cycles.
//
// Opcodes are decoded from their octal fields: x = op[7:6], y = op[5:3], z = op[2:0],
// with p = y>>1 and q = y&1.
func (c *CPU) execute() int {
	enableAfter := c.eiPending
	start := c.pc
	op := c.fetch()

	cycles := c.dispatch(op, start)

	if enableAfter && c.eiPending {
		c.eiPending = false
		c.ime = true
	}
	return cycles
}

func (c *CPU) dispatch(op uint8, start uint16) int {
	x, y, z := op>>6, (op>>3)&7, op&7
	p, q := y>>1, y&1

	switch x {
	case 0:
		return c.execBlock0(y, z, p, q)
	case 1:
		if op == 0x76 {
			c.halt()
			return 4
		}
		c.writeReg(y, c.readReg(z))
		if y == hlIndirect || z == hlIndirect {
			return 8
		}
		return 4
	case 2:
		c.alu(y, c.readReg(z))
		if z == hlIndirect {
			return 8
		}
		return 4
	}
	return c.execBlock3(op, start, y, z, p, q)
}

func (c *CPU) execBlock0(y, z, p, q uint8) int {
	switch z {
	case 0:
		switch y {
		case 0: // NOP
			return 4
		case 1: // LD (nn),SP
			nn := c.readImmediateWord()
			c.bus.Write(nn, uint8(c.sp))
			c.bus.Write(nn+1, uint8(c.sp>>8))
			return 20
		case 2: // STOP
			c.readImmediate()
			return 4
		case 3: // JR e
			e := c.readSignedImmediate()
			c.pc += uint16(int16(e))
			return 12
		default: // JR cc,e
			e := c.readSignedImmediate()
			if c.condition(y - 4) {
				c.pc += uint16(int16(e))
				return 12
			}
			return 8
		}
	case 1:
		if q == 0 {
			c.writePair(p, c.readImmediateWord(), false)
			return 12
		}
		c.addHL(c.readPair(p, false))
		return 8
	case 2:
		var address uint16
		switch p {
		case 0:
			address = c.GetBC()
		case 1:
			address = c.GetDE()
		case 2:
			address = c.GetHL()
			c.SetHL(address + 1)
		default:
			address = c.GetHL()
			c.SetHL(address - 1)
		}
		if q == 0 {
			c.bus.Write(address, c.a)
		} else {
			c.a = c.bus.Read(address)
		}
		return 8
	case 3:
		v := c.readPair(p, false)
		if q == 0 {
			v++
		} else {
			v--
		}
		c.writePair(p, v, false)
		return 8
	case 4, 5:
		v := c.readReg(y)
		if z == 4 {
			v = c.inc(v)
		} else {
			v = c.dec(v)
		}
		c.writeReg(y, v)
		if y == hlIndirect {
			return 12
		}
		return 4
	case 6:
		c.writeReg(y, c.readImmediate())
		if y == hlIndirect {
			return 12
		}
		return 8
	}

	switch y {
	case 0: // RLCA
		c.a = c.rotate(0, c.a)
		c.setFlag(ZeroFlag, false)
	case 1: // RRCA
		c.a = c.rotate(1, c.a)
		c.setFlag(ZeroFlag, false)
	case 2: // RLA
		c.a = c.rotate(2, c.a)
		c.setFlag(ZeroFlag, false)
	case 3: // RRA
		c.a = c.rotate(3, c.a)
		c.setFlag(ZeroFlag, false)
	case 4:
		c.daa()
	case 5: // CPL
		c.a = ^c.a
		c.setFlag(SubFlag, true)
		c.setFlag(HalfCarryFlag, true)
	case 6: // SCF
		c.setFlag(SubFlag, false)
		c.setFlag(HalfCarryFlag, false)
		c.setFlag(CarryFlag, true)
	default: // CCF
		c.setFlag(SubFlag, false)
		c.setFlag(HalfCarryFlag, false)
		c.setFlag(CarryFlag, !c.isSet(CarryFlag))
	}
	return 4
}

func (c *CPU) execBlock3(op uint8, start uint16, y, z, p, q uint8) int {
	switch z {
	case 0:
		switch y {
		case 4: // LDH (n),A
			c.bus.Write(0xFF00|uint16(c.readImmediate()), c.a)
			return 12
		case 5: // ADD SP,e
			c.sp = c.addSPSigned(c.readSignedImmediate())
			return 16
		case 6: // LDH A,(n)
			c.a = c.bus.Read(0xFF00 | uint16(c.readImmediate()))
			return 12
		case 7: // LD HL,SP+e
			c.SetHL(c.addSPSigned(c.readSignedImmediate()))
			return 12
		}
		if c.condition(y) {
			c.pc = c.popStack()
			return 20
		}
		return 8
	case 1:
		if q == 0 {
			c.writePair(p, c.popStack(), true)
			return 12
		}
		switch p {
		case 0: // RET
			c.pc = c.popStack()
			return 16
		case 1: // RETI
			c.pc = c.popStack()
			c.ime = true
			return 16
		case 2: // JP HL
			c.pc = c.GetHL()
			return 4
		default: // LD SP,HL
			c.sp = c.GetHL()
			return 8
		}
	case 2:
		switch y {
		case 4: // LD (C),A
			c.bus.Write(0xFF00|uint16(c.c), c.a)
			return 8
		case 5: // LD (nn),A
			c.bus.Write(c.readImmediateWord(), c.a)
			return 16
		case 6: // LD A,(C)
			c.a = c.bus.Read(0xFF00 | uint16(c.c))
			return 8
		case 7: // LD A,(nn)
			c.a = c.bus.Read(c.readImmediateWord())
			return 16
		}
		nn := c.readImmediateWord()
		if c.condition(y) {
			c.pc = nn
			return 16
		}
		return 12
	case 3:
		switch y {
		case 0: // JP nn
			c.pc = c.readImmediateWord()
			return 16
		case 1:
			return c.executeCB(c.readImmediate())
		case 6: // DI
			c.ime = false
			c.eiPending = false
			return 4
		case 7: // EI
			c.eiPending = true
			return 4
		}
	case 4:
		if y < 4 {
			nn := c.readImmediateWord()
			if c.condition(y) {
				c.pushStack(c.pc)
				c.pc = nn
				return 24
			}
			return 12
		}
	case 5:
		if q == 0 {
			c.pushStack(c.readPair(p, true))
			return 16
		}
		if p == 0 { // CALL nn
			nn := c.readImmediateWord()
			c.pushStack(c.pc)
			c.pc = nn
			return 24
		}
	case 6:
		c.alu(y, c.readImmediate())
		return 8
	case 7: // RST
		c.pushStack(c.pc)
		c.pc = uint16(y) * 8
		return 16
	}

	panic(&IllegalOpcodeError{PC: start, Opcode: op})
}

func (c *CPU) executeCB(op uint8) int {
	x, y, z := op>>6, (op>>3)&7, op&7
	v := c.readReg(z)

	switch x {
	case 0:
		c.writeReg(z, c.rotate(y, v))
	case 1:
		c.testBit(y, v)
		if z == hlIndirect {
			return 12
		}
		return 8
	case 2:
		c.writeReg(z, v&^(1<<y))
	default:
		c.writeReg(z, v|(1<<y))
	}

	if z == hlIndirect {
		return 16
	}
	return 8
}

// halt suspends execution until an interrupt is pending. With IME clear and an
// interrupt already pending the CPU does not halt and instead fails to advance
// PC on the next fetch.
func (c *CPU) halt() {
	if !c.ime && c.pendingInterrupts() != 0 {
		c.haltBug = true
		return
	}
	c.halted = true
}
