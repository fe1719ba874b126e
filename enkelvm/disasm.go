package enkelvm

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
)

// Disassemble writes one line per instruction: byte offset, mnemonic and
// raw operand bytes, followed by a decoded operand where one applies.
func Disassemble(w io.Writer, p *Program) error {
	entries := make(map[uint32][]string)
	for i, fn := range p.Funcs {
		entries[fn.Entry] = append(entries[fn.Entry], fmt.Sprintf("func #%d %s/%d", i, fn.Name, fn.NumParams))
	}

	for pc := 0; pc < len(p.Code); {
		for _, label := range entries[uint32(pc)] {
			if _, err := fmt.Fprintf(w, "%s:\n", label); err != nil {
				return err
			}
		}

		op := OpCode(p.Code[pc])
		if !op.Valid() || pc+op.Len() > len(p.Code) {
			return fmt.Errorf("%w: cannot decode opcode %d at %d", ErrBadProgram, op, pc)
		}
		operand := p.Code[pc+1 : pc+op.Len()]

		var raw strings.Builder
		for i, b := range operand {
			if i > 0 {
				raw.WriteString(" ")
			}
			fmt.Fprintf(&raw, "%02x", b)
		}

		var decoded string
		switch op {
		case OpAllocFrameU8, OpPushVarU8, OpPushU8, OpPopVarU8:
			decoded = fmt.Sprint(operand[0])
		case OpPushF32:
			decoded = fmt.Sprint(math.Float32frombits(binary.LittleEndian.Uint32(operand)))
		case OpJumpU32, OpJumpIfTrueU32, OpJumpIfFalseU32:
			decoded = fmt.Sprintf("-> %08x", binary.LittleEndian.Uint32(operand))
		case OpPushFuncRefU32:
			index := binary.LittleEndian.Uint32(operand)
			decoded = fmt.Sprintf("#%d", index)
			if int(index) < len(p.Funcs) {
				decoded += " " + p.Funcs[index].Name
			}
		case OpCallExternU16:
			index := binary.LittleEndian.Uint16(operand)
			decoded = fmt.Sprintf("#%d", index)
			if int(index) < len(p.Externs) {
				decoded += " " + p.Externs[index].Name
			}
		}

		line := fmt.Sprintf("%08x  %-18s %-12s %s", pc, op, raw.String(), decoded)
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
		pc += op.Len()
	}
	return nil
}
