package funcdef

import (
	"testing"

	"github.com/voskan/mjsvm/value"
)

func TestModuleDefExportTable(t *testing.T) {
	m := NewModule("./foo.js")
	name := value.GlobalIndex(0)
	m.ExportVarDefTable[name] = ExportVarDef{NameConst: name, Slot: 2}

	exp, ok := m.ExportVarDefTable[name]
	if !ok || exp.Slot != 2 {
		t.Fatalf("ExportVarDefTable lookup = (%+v, %v)", exp, ok)
	}
	if m.Path != "./foo.js" {
		t.Fatalf("Path = %q", m.Path)
	}
}

func TestLineForStatement(t *testing.T) {
	m := NewModule("./bar.js")
	m.LineTable = []LineEntry{{StartPC: 0, Line: 1}, {StartPC: 20, Line: 5}}
	line, ok := m.LineForStatement(25)
	if !ok || line != 5 {
		t.Fatalf("LineForStatement(25) = (%d, %v), want 5", line, ok)
	}
}
