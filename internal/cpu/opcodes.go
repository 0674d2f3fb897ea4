package cpu

// decode is called with the freshly-fetched opcode and appends the
// remaining bus cycles for that instruction to c.queue. fetchAddr is the
// address the opcode itself was read from (used only for jam reporting).
//
// Coverage is deliberately partial: this is the "opaque" component the
// specification treats as an external collaborator, reimplemented here only
// far enough to exercise the bus, debug core and RSP engine end to end.
func (c *CPU) decode(fetchAddr uint16, op uint8) {
	switch op {
	case 0xEA: // NOP
		return

	case 0xA9: // LDA #imm
		c.queue = append(c.queue, c.readImmediate(func(v uint8) { c.A = v; c.setNZ(c.A) }))
	case 0xA5: // LDA zp
		c.readZeroPage(func(v uint8) { c.A = v; c.setNZ(c.A) })
	case 0xB5: // LDA zp,X
		c.readZeroPageIndexed(c.X, func(v uint8) { c.A = v; c.setNZ(c.A) })
	case 0xAD: // LDA abs
		c.readAbsolute(0, func(v uint8) { c.A = v; c.setNZ(c.A) })
	case 0xBD: // LDA abs,X
		c.readAbsolute(c.X, func(v uint8) { c.A = v; c.setNZ(c.A) })
	case 0xB9: // LDA abs,Y
		c.readAbsolute(c.Y, func(v uint8) { c.A = v; c.setNZ(c.A) })

	case 0xA2: // LDX #imm
		c.queue = append(c.queue, c.readImmediate(func(v uint8) { c.X = v; c.setNZ(c.X) }))
	case 0xA6: // LDX zp
		c.readZeroPage(func(v uint8) { c.X = v; c.setNZ(c.X) })
	case 0xAE: // LDX abs
		c.readAbsolute(0, func(v uint8) { c.X = v; c.setNZ(c.X) })

	case 0xA0: // LDY #imm
		c.queue = append(c.queue, c.readImmediate(func(v uint8) { c.Y = v; c.setNZ(c.Y) }))
	case 0xA4: // LDY zp
		c.readZeroPage(func(v uint8) { c.Y = v; c.setNZ(c.Y) })
	case 0xAC: // LDY abs
		c.readAbsolute(0, func(v uint8) { c.Y = v; c.setNZ(c.Y) })

	case 0x85: // STA zp
		c.writeZeroPage(func() uint8 { return c.A })
	case 0x95: // STA zp,X
		c.writeZeroPageIndexed(c.X, func() uint8 { return c.A })
	case 0x8D: // STA abs
		c.writeAbsolute(0, func() uint8 { return c.A })
	case 0x9D: // STA abs,X
		c.writeAbsolute(c.X, func() uint8 { return c.A })
	case 0x99: // STA abs,Y
		c.writeAbsolute(c.Y, func() uint8 { return c.A })

	case 0x86: // STX zp
		c.writeZeroPage(func() uint8 { return c.X })
	case 0x8E: // STX abs
		c.writeAbsolute(0, func() uint8 { return c.X })

	case 0x84: // STY zp
		c.writeZeroPage(func() uint8 { return c.Y })
	case 0x8C: // STY abs
		c.writeAbsolute(0, func() uint8 { return c.Y })

	case 0xAA: // TAX
		c.X = c.A
		c.setNZ(c.X)
	case 0x8A: // TXA
		c.A = c.X
		c.setNZ(c.A)
	case 0xA8: // TAY
		c.Y = c.A
		c.setNZ(c.Y)
	case 0x98: // TYA
		c.A = c.Y
		c.setNZ(c.A)
	case 0xBA: // TSX
		c.X = c.S
		c.setNZ(c.X)
	case 0x9A: // TXS
		c.S = c.X

	case 0xE8: // INX
		c.X++
		c.setNZ(c.X)
	case 0xC8: // INY
		c.Y++
		c.setNZ(c.Y)
	case 0xCA: // DEX
		c.X--
		c.setNZ(c.X)
	case 0x88: // DEY
		c.Y--
		c.setNZ(c.Y)

	case 0x69: // ADC #imm
		c.queue = append(c.queue, c.readImmediate(c.adc))
	case 0xE9: // SBC #imm
		c.queue = append(c.queue, c.readImmediate(c.sbc))
	case 0x29: // AND #imm
		c.queue = append(c.queue, c.readImmediate(func(v uint8) { c.A &= v; c.setNZ(c.A) }))
	case 0x09: // ORA #imm
		c.queue = append(c.queue, c.readImmediate(func(v uint8) { c.A |= v; c.setNZ(c.A) }))
	case 0x49: // EOR #imm
		c.queue = append(c.queue, c.readImmediate(func(v uint8) { c.A ^= v; c.setNZ(c.A) }))
	case 0xC9: // CMP #imm
		c.queue = append(c.queue, c.readImmediate(func(v uint8) { c.compare(c.A, v) }))
	case 0xE0: // CPX #imm
		c.queue = append(c.queue, c.readImmediate(func(v uint8) { c.compare(c.X, v) }))
	case 0xC0: // CPY #imm
		c.queue = append(c.queue, c.readImmediate(func(v uint8) { c.compare(c.Y, v) }))

	case 0x38: // SEC
		c.P |= flagC
	case 0x18: // CLC
		c.P &^= flagC
	case 0x78: // SEI
		c.P |= flagI
	case 0x58: // CLI
		c.P &^= flagI
	case 0xF8: // SED
		c.P |= flagD
	case 0xD8: // CLD
		c.P &^= flagD
	case 0xB8: // CLV
		c.P &^= flagV

	case 0x48: // PHA
		c.queue = append(c.queue, c.push(c.A, nil))
	case 0x08: // PHP
		c.queue = append(c.queue, c.push(c.P|flagB|flagU, nil))
	case 0x68: // PLA
		c.pullInto(func(v uint8) { c.A = v; c.setNZ(c.A) })
	case 0x28: // PLP
		c.pullInto(func(v uint8) { c.P = v&^flagB | flagU })

	case 0x4C: // JMP abs
		c.readOperand16(func(addr uint16) { c.PC = addr })
	case 0x20: // JSR abs
		c.jsr()
	case 0x60: // RTS
		c.rts()
	case 0x40: // RTI
		c.rti()
	case 0x00: // BRK
		c.PC++
		c.queue = append(c.queue, c.buildInterruptSteps(vectorIRQ, true)...)

	case 0xF0: // BEQ
		c.branch(c.P&flagZ != 0)
	case 0xD0: // BNE
		c.branch(c.P&flagZ == 0)
	case 0xB0: // BCS
		c.branch(c.P&flagC != 0)
	case 0x90: // BCC
		c.branch(c.P&flagC == 0)
	case 0x30: // BMI
		c.branch(c.P&flagN != 0)
	case 0x10: // BPL
		c.branch(c.P&flagN == 0)
	case 0x70: // BVS
		c.branch(c.P&flagV != 0)
	case 0x50: // BVC
		c.branch(c.P&flagV == 0)

	default:
		c.jam(fetchAddr)
	}
}

func (c *CPU) readImmediate(next func(uint8)) step {
	addr := c.PC
	c.PC++
	return step{addr: addr, after: next}
}

func (c *CPU) readZeroPage(next func(uint8)) {
	c.queue = append(c.queue, c.readImmediate(func(lo uint8) {
		addr := uint16(lo)
		c.queue = append(c.queue, step{addr: addr, after: next})
	}))
}

func (c *CPU) readZeroPageIndexed(index uint8, next func(uint8)) {
	c.queue = append(c.queue, c.readImmediate(func(lo uint8) {
		addr := uint16(lo + index)
		c.queue = append(c.queue, step{addr: addr, after: next})
	}))
}

func (c *CPU) writeZeroPage(value func() uint8) {
	c.queue = append(c.queue, c.readImmediate(func(lo uint8) {
		addr := uint16(lo)
		c.queue = append(c.queue, step{addr: addr, write: true, data: value()})
	}))
}

func (c *CPU) writeZeroPageIndexed(index uint8, value func() uint8) {
	c.queue = append(c.queue, c.readImmediate(func(lo uint8) {
		addr := uint16(lo + index)
		c.queue = append(c.queue, step{addr: addr, write: true, data: value()})
	}))
}

func (c *CPU) readOperand16(next func(addr uint16)) {
	c.queue = append(c.queue, c.readImmediate(func(lo uint8) {
		c.queue = append(c.queue, c.readImmediate(func(hi uint8) {
			next(uint16(lo) | uint16(hi)<<8)
		}))
	}))
}

func (c *CPU) readAbsolute(index uint8, next func(uint8)) {
	c.readOperand16(func(addr uint16) {
		addr += uint16(index)
		c.queue = append(c.queue, step{addr: addr, after: next})
	})
}

func (c *CPU) writeAbsolute(index uint8, value func() uint8) {
	c.readOperand16(func(addr uint16) {
		addr += uint16(index)
		c.queue = append(c.queue, step{addr: addr, write: true, data: value()})
	})
}

func (c *CPU) pullInto(next func(uint8)) {
	c.queue = append(c.queue, step{addr: 0x0100 | uint16(c.S)})
	c.S++
	c.queue = append(c.queue, step{addr: 0x0100 | uint16(c.S), after: next})
}

func (c *CPU) jsr() {
	c.readOperand16(func(target uint16) {
		ret := c.PC - 1
		c.queue = append(c.queue, c.push(uint8(ret>>8), nil))
		c.queue = append(c.queue, c.push(uint8(ret), func() { c.PC = target }))
	})
}

func (c *CPU) rts() {
	c.pullInto(func(lo uint8) {
		c.queue = append(c.queue, step{addr: 0x0100 | uint16(c.S)})
		c.S++
		c.queue = append(c.queue, step{addr: 0x0100 | uint16(c.S), after: func(hi uint8) {
			c.PC = (uint16(lo) | uint16(hi)<<8) + 1
		}})
	})
}

func (c *CPU) rti() {
	c.pullInto(func(p uint8) {
		c.P = p&^flagB | flagU
		c.queue = append(c.queue, step{addr: 0x0100 | uint16(c.S)})
		c.S++
		c.queue = append(c.queue, step{addr: 0x0100 | uint16(c.S), after: func(lo uint8) {
			c.queue = append(c.queue, step{addr: 0x0100 | uint16(c.S+1), after: func(hi uint8) {
				c.PC = uint16(lo) | uint16(hi)<<8
			}})
			c.S++
		}})
	})
}

func (c *CPU) branch(taken bool) {
	c.queue = append(c.queue, c.readImmediate(func(offset uint8) {
		if !taken {
			return
		}
		base := c.PC
		target := base + uint16(int16(int8(offset)))
		c.queue = append(c.queue, step{addr: base, after: func(uint8) {
			c.queue = append(c.queue, step{addr: base, after: func(uint8) { c.PC = target }})
		}})
	}))
}

func (c *CPU) adc(v uint8) {
	carry := uint16(0)
	if c.P&flagC != 0 {
		carry = 1
	}
	sum := uint16(c.A) + uint16(v) + carry
	result := uint8(sum)
	c.P &^= flagC | flagV
	if sum > 0xFF {
		c.P |= flagC
	}
	if (c.A^v)&0x80 == 0 && (c.A^result)&0x80 != 0 {
		c.P |= flagV
	}
	c.A = result
	c.setNZ(c.A)
}

func (c *CPU) sbc(v uint8) {
	c.adc(^v)
}

func (c *CPU) compare(reg, v uint8) {
	result := reg - v
	c.P &^= flagC | flagN | flagZ
	if reg >= v {
		c.P |= flagC
	}
	c.setNZ(result)
}
