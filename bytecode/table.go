package bytecode

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Table is the flat instruction buffer for one FunctionDef. Code is append-only except for Patch, which
// rewrites an already-emitted jump's offset once its target is known.
type Table struct {
	Code []byte
}

// New returns an empty bytecode table.
func New() *Table {
	return &Table{}
}

// Len reports the current code size in bytes; also the PC a not-yet-emitted
// instruction would land at.
func (t *Table) Len() int { return len(t.Code) }

// Emit appends op with no operand and returns its PC.
func (t *Table) Emit(op Op) int {
	pc := len(t.Code)
	t.Code = append(t.Code, byte(op))
	return pc
}

// EmitU8 appends op followed by a one-byte operand.
func (t *Table) EmitU8(op Op, operand uint8) int {
	pc := len(t.Code)
	t.Code = append(t.Code, byte(op), operand)
	return pc
}

// EmitU16 appends op followed by a little-endian two-byte operand.
func (t *Table) EmitU16(op Op, operand uint16) int {
	pc := len(t.Code)
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], operand)
	t.Code = append(t.Code, byte(op))
	t.Code = append(t.Code, buf[:]...)
	return pc
}

// EmitU32 appends op followed by a little-endian four-byte operand.
func (t *Table) EmitU32(op Op, operand uint32) int {
	pc := len(t.Code)
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], operand)
	t.Code = append(t.Code, byte(op))
	t.Code = append(t.Code, buf[:]...)
	return pc
}

// EmitJump appends a jump opcode (IfEq, Goto, FinallyGoto) with a
// placeholder i16 offset and returns the PC of the opcode byte, to be passed
// to PatchJump once the target PC is known.
func (t *Table) EmitJump(op Op) int {
	pc := len(t.Code)
	t.Code = append(t.Code, byte(op), 0, 0)
	return pc
}

// PatchJump rewrites the i16 offset of the jump instruction at pc so it
// targets targetPC. The offset is relative to the PC of the instruction
// immediately following the jump.
func (t *Table) PatchJump(pc int, targetPC int) error {
	if pc < 0 || pc+3 > len(t.Code) {
		return fmt.Errorf("bytecode: patch out of range at pc=%d", pc)
	}
	nextPC := pc + 3
	offset := targetPC - nextPC
	if offset < -32768 || offset > 32767 {
		return fmt.Errorf("bytecode: jump offset %d out of i16 range", offset)
	}
	binary.LittleEndian.PutUint16(t.Code[pc+1:pc+3], uint16(int16(offset)))
	return nil
}

// ReadU8 reads a one-byte operand at pc.
func (t *Table) ReadU8(pc int) uint8 { return t.Code[pc] }

// ReadU16 reads a little-endian two-byte operand at pc.
func (t *Table) ReadU16(pc int) uint16 { return binary.LittleEndian.Uint16(t.Code[pc : pc+2]) }

// ReadU32 reads a little-endian four-byte operand at pc.
func (t *Table) ReadU32(pc int) uint32 { return binary.LittleEndian.Uint32(t.Code[pc : pc+4]) }

// ReadI16 reads a little-endian two-byte signed jump offset at pc.
func (t *Table) ReadI16(pc int) int16 { return int16(binary.LittleEndian.Uint16(t.Code[pc : pc+2])) }

// ReadI8 reads a one-byte signed const-pool index at pc; its sign
// discriminates global from local pool, per value.ConstIndex.
func (t *Table) ReadI8(pc int) int8 { return int8(t.Code[pc]) }

// ReadI32 reads a little-endian four-byte signed const-pool index at pc; its
// sign discriminates global from local pool, per value.ConstIndex.
func (t *Table) ReadI32(pc int) int32 { return int32(binary.LittleEndian.Uint32(t.Code[pc : pc+4])) }

// InstructionLen returns the total byte length (opcode + operand) of the
// instruction starting at pc.
func (t *Table) InstructionLen(pc int) int {
	op := Op(t.Code[pc])
	return 1 + Info(op).Operand.Size()
}

// Disassemble renders the table in a one-instruction-per-line textual form,
// resolving jump targets to absolute PCs.
func (t *Table) Disassemble() string {
	var b strings.Builder
	pc := 0
	for pc < len(t.Code) {
		op := Op(t.Code[pc])
		info := Info(op)
		operandPC := pc + 1
		fmt.Fprintf(&b, "%6d %-16s", pc, info.Name)
		switch info.Operand {
		case OperandU8:
			fmt.Fprintf(&b, " %d", t.ReadU8(operandPC))
		case OperandU16:
			fmt.Fprintf(&b, " %d", t.ReadU16(operandPC))
		case OperandU32:
			fmt.Fprintf(&b, " #%d", t.ReadU32(operandPC))
		case OperandI16:
			off := int(t.ReadI16(operandPC))
			target := operandPC + 2 + off
			fmt.Fprintf(&b, " -> %d", target)
		}
		b.WriteByte('\n')
		pc += 1 + info.Operand.Size()
	}
	return b.String()
}
