package funcdef

import "github.com/voskan/mjsvm/value"

// ExportVarDef describes one named export of a module: the const index of
// its name and the local slot (in the module's top-level frame) that holds
// the live binding, per the design section 6's export/import linkage.
type ExportVarDef struct {
	NameConst value.ConstIndex
	Slot int
}

// LineEntry maps a top-level statement boundary back to a source line,
// distinct from DebugTable's per-PC granularity: ModuleDef additionally
// tracks statement boundaries for module-level error reporting.
type LineEntry struct {
	StartPC int
	Line int
}

// ModuleDef is a FunctionDef representing a module's top-level code, plus
// the export table and statement-level line table the design section 3.6 and
// section 6 call for. The module's body runs once, on first GetModule; its
// FunctionDef's Hotness counter is unused since a module body never runs
// twice.
type ModuleDef struct {
	*FunctionDef
	Path string
	ExportVarDefTable map[value.ConstIndex]ExportVarDef
	LineTable []LineEntry

	// ImportedPaths are the paths this module's body references, resolved
	// and loaded by the embedder's module.Source before the body itself
	// begins executing.
	ImportedPaths []string
}

// NewModule constructs an empty ModuleDef for the given resolved path.
func NewModule(path string) *ModuleDef {
	return &ModuleDef{
		FunctionDef: New(path, 0),
		Path: path,
		ExportVarDefTable: make(map[value.ConstIndex]ExportVarDef),
	}
}

// LineForStatement resolves pc to a module-level source line via LineTable,
// distinct from FunctionDef.LineForPC's per-instruction debug table.
func (m *ModuleDef) LineForStatement(pc int) (int, bool) {
	line, found := 0, false
	for _, e := range m.LineTable {
		if e.StartPC > pc {
			break
		}
		line, found = e.Line, true
	}
	return line, found
}
