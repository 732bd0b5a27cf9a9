package bytecode

import (
	"strings"
	"testing"
)

func TestEmitAndReadOperands(t *testing.T) {
	tbl := New()
	tbl.EmitU8(OpVLoad, 3)
	tbl.EmitU32(OpPropertyLoad, 123456)
	tbl.Emit(OpAdd)

	if got := tbl.ReadU8(1); got != 3 {
		t.Fatalf("ReadU8 = %d, want 3", got)
	}
	if got := tbl.ReadU32(3); got != 123456 {
		t.Fatalf("ReadU32 = %d, want 123456", got)
	}
}

func TestEmitJumpPatchResolvesRelativeToNextPC(t *testing.T) {
	tbl := New()
	jumpPC := tbl.EmitJump(OpGoto)
	targetPC := tbl.Len()
	tbl.Emit(OpReturn)

	if err := tbl.PatchJump(jumpPC, targetPC); err != nil {
		t.Fatal(err)
	}

	offset := tbl.ReadI16(jumpPC + 1)
	nextPC := jumpPC + 3
	if nextPC+int(offset) != targetPC {
		t.Fatalf("jump target resolved to %d, want %d", nextPC+int(offset), targetPC)
	}
}

func TestPatchJumpRejectsOutOfRangeOffset(t *testing.T) {
	tbl := New()
	jumpPC := tbl.EmitJump(OpIfEq)
	if err := tbl.PatchJump(jumpPC, 1<<20); err == nil {
		t.Fatal("expected an error for an offset outside i16 range")
	}
}

func TestDisassembleIncludesOperandsAndResolvedJumpTargets(t *testing.T) {
	tbl := New()
	tbl.Emit(OpCLoad_0)
	jumpPC := tbl.EmitJump(OpIfEq)
	targetPC := tbl.Len()
	tbl.Emit(OpUndefined)
	_ = tbl.PatchJump(jumpPC, targetPC)

	out := tbl.Disassemble()
	if out == "" {
		t.Fatal("Disassemble produced no output")
	}
	if !strings.Contains(out, "IfEq") {
		t.Fatalf("Disassemble output lacks the IfEq instruction:\n%s", out)
	}
	if !strings.Contains(out, "-> 4") {
		t.Fatalf("Disassemble output lacks the resolved jump target 4:\n%s", out)
	}
}

func TestInstructionLenMatchesOperandKind(t *testing.T) {
	tbl := New()
	tbl.EmitU32(OpClosure, 7)
	if got := tbl.InstructionLen(0); got != 5 {
		t.Fatalf("InstructionLen = %d, want 5 (1 opcode + 4 operand bytes)", got)
	}
}
