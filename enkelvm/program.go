package enkelvm

import (
	"encoding/binary"
	"fmt"
	"math"
)

type Func struct {
	Name      string `cbor:"1,keyasint"`
	Entry     uint32 `cbor:"2,keyasint"`
	NumParams int    `cbor:"3,keyasint"`
}

type Extern struct {
	Name    string `cbor:"1,keyasint"`
	MinArgs int    `cbor:"2,keyasint"`
}

// Program is a compiled instruction stream. Operands are little-endian.
type Program struct {
	Code    []byte   `cbor:"1,keyasint"`
	Funcs   []Func   `cbor:"2,keyasint"`
	Externs []Extern `cbor:"3,keyasint"`
	// Globals names the slots of the main frame
	Globals []string `cbor:"4,keyasint"`
}

func (p *Program) emit(op OpCode) uint32 {
	at := uint32(len(p.Code))
	p.Code = append(p.Code, byte(op))
	return at
}

func (p *Program) emitU8(op OpCode, operand uint8) uint32 {
	at := p.emit(op)
	p.Code = append(p.Code, operand)
	return at
}

func (p *Program) emitU16(op OpCode, operand uint16) uint32 {
	at := p.emit(op)
	p.Code = binary.LittleEndian.AppendUint16(p.Code, operand)
	return at
}

func (p *Program) emitU32(op OpCode, operand uint32) uint32 {
	at := p.emit(op)
	p.Code = binary.LittleEndian.AppendUint32(p.Code, operand)
	return at
}

func (p *Program) emitF32(op OpCode, operand float32) uint32 {
	return p.emitU32(op, math.Float32bits(operand))
}

// patchU32 rewrites the operand of the 5-byte instruction at offset.
func (p *Program) patchU32(at uint32, operand uint32) {
	binary.LittleEndian.PutUint32(p.Code[at+1:], operand)
}

func (p *Program) patchU8(at uint32, operand uint8) {
	p.Code[at+1] = operand
}

func (p *Program) here() uint32 {
	return uint32(len(p.Code))
}

// Validate checks that every instruction decodes and every jump and
// function entry lands on an instruction boundary.
func (p *Program) Validate() error {
	starts := make(map[uint32]bool)
	var jumps []uint32
	for pc := 0; pc < len(p.Code); {
		op := OpCode(p.Code[pc])
		if !op.Valid() {
			return fmt.Errorf("%w: opcode %d at %d", ErrBadProgram, op, pc)
		}
		if pc+op.Len() > len(p.Code) {
			return fmt.Errorf("%w: truncated %s at %d", ErrBadProgram, op, pc)
		}
		starts[uint32(pc)] = true
		switch op {
		case OpJumpU32, OpJumpIfTrueU32, OpJumpIfFalseU32:
			jumps = append(jumps, binary.LittleEndian.Uint32(p.Code[pc+1:]))
		case OpPushFuncRefU32:
			if index := binary.LittleEndian.Uint32(p.Code[pc+1:]); int(index) >= len(p.Funcs) {
				return fmt.Errorf("%w: function %d at %d", ErrBadProgram, index, pc)
			}
		case OpCallExternU16:
			if index := binary.LittleEndian.Uint16(p.Code[pc+1:]); int(index) >= len(p.Externs) {
				return fmt.Errorf("%w: extern %d at %d", ErrBadProgram, index, pc)
			}
		}
		pc += op.Len()
	}
	for _, target := range jumps {
		if !starts[target] {
			return fmt.Errorf("%w: jump target %d", ErrBadProgram, target)
		}
	}
	for _, fn := range p.Funcs {
		if !starts[fn.Entry] {
			return fmt.Errorf("%w: entry of %s at %d", ErrBadProgram, fn.Name, fn.Entry)
		}
	}
	return nil
}
