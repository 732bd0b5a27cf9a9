package object

import (
	"testing"

	"github.com/voskan/mjsvm/value"
)

func TestClosureVarSharedMutation(t *testing.T) {
	cell := NewClosureVar(value.Int64(1))
	cell.Retain() // simulate a second closure capturing the same local

	cell.Set(value.Int64(2))
	if cell.Get().Int64() != 2 {
		t.Fatal("Set should be visible through any owner's reference")
	}

	if cell.Release() {
		t.Fatal("cell should still be owned after releasing only one of two references")
	}
	if !cell.Release() {
		t.Fatal("releasing the last reference should report true")
	}
}
