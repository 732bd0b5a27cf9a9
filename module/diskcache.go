package module

import (
	"bytes"
	"encoding/gob"
	"errors"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/voskan/mjsvm/bytecode"
	"github.com/voskan/mjsvm/funcdef"
	"github.com/voskan/mjsvm/jit"
	"github.com/voskan/mjsvm/value"
)

// DiskCache is an optional L2 store for compiled ModuleDef bytecode, backed
// by badger and layered under Manager's in-memory L1: Manager's in-memory
// moduleDefs map is L1, DiskCache is L2, consulted only on an L1 miss so a
// Runtime restart skips re-resolving and re-building a module whose
// resolved path has not changed.
type DiskCache struct {
	db     *badger.DB
	logger *zap.Logger
}

// OpenDiskCache opens (or creates) a badger database rooted at dir.
func OpenDiskCache(dir string, logger *zap.Logger) (*DiskCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &DiskCache{db: db, logger: logger}, nil
}

// Close releases the underlying badger database.
func (c *DiskCache) Close() error { return c.db.Close() }

// Clear drops every entry, the L2 counterpart to Manager.ClearModuleCache's
// in-memory reset.
func (c *DiskCache) Clear() error { return c.db.DropAll() }

// Load looks up a previously stored ModuleDef by resolved path. Entries are
// keyed purely by resolved path rather than a content hash of the source:
// Manager.compile only ever consults L2 on an L1 miss, and invalidation is
// ClearModuleCache's job (it also drops every L2 entry via Clear), so a
// module whose source changed keeps serving its old compiled form, even
// across process restarts, until the cache is cleared.
func (c *DiskCache) Load(resolvedPath string) (*funcdef.ModuleDef, bool) {
	var blob []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(resolvedPath))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			blob = append([]byte(nil), v ...)
			return nil
		})
	})
	if err != nil {
		return nil, false
	}
	def, err := decodeModuleDef(blob)
	if err != nil {
		c.logger.Warn("module disk cache entry failed to decode, ignoring", zap.String("path", resolvedPath), zap.Error(err))
		return nil, false
	}
	return def, true
}

// Store persists def under resolvedPath.
func (c *DiskCache) Store(resolvedPath string, def *funcdef.ModuleDef) error {
	blob, err := encodeModuleDef(def)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(resolvedPath), blob)
	})
}

// wireFunctionDef/wireModuleDef mirror FunctionDef/ModuleDef field-for-field
// except Hotness, which is process-local call-count state that must never
// be persisted or shared across a process restart — a freshly loaded
// ModuleDef always starts back at TierInterpreted.
type wireFunctionDef struct {
	Name            string
	ParamCount      int
	Code            []byte
	VarDefTable     []funcdef.VarDef
	ClosureVarTable []funcdef.ClosureVarDef
	ExceptionTable  []funcdef.ExceptionEntry
	DebugTable      []funcdef.DebugEntry
	IsGenerator     bool
	IsAsync         bool
}

type wireModuleDef struct {
	Function          wireFunctionDef
	Path              string
	ExportVarDefTable map[value.ConstIndex]funcdef.ExportVarDef
	LineTable         []funcdef.LineEntry
	ImportedPaths     []string
}

func encodeModuleDef(m *funcdef.ModuleDef) ([]byte, error) {
	w := wireModuleDef{
		Function: wireFunctionDef{
			Name:            m.Name,
			ParamCount:      m.ParamCount,
			Code:            m.BytecodeTable.Code,
			VarDefTable:     m.VarDefTable,
			ClosureVarTable: m.ClosureVarTable,
			ExceptionTable:  m.ExceptionTable,
			DebugTable:      m.DebugTable,
			IsGenerator:     m.IsGenerator,
			IsAsync:         m.IsAsync,
		},
		Path:              m.Path,
		ExportVarDefTable: m.ExportVarDefTable,
		LineTable:         m.LineTable,
		ImportedPaths:     m.ImportedPaths,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeModuleDef(blob []byte) (*funcdef.ModuleDef, error) {
	var w wireModuleDef
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&w); err != nil {
		return nil, err
	}
	if w.Function.Name == "" && w.Path == "" {
		return nil, errors.New("module: empty disk cache entry")
	}
	fd := &funcdef.FunctionDef{
		Name:            w.Function.Name,
		ParamCount:      w.Function.ParamCount,
		BytecodeTable:   &bytecode.Table{Code: w.Function.Code},
		VarDefTable:     w.Function.VarDefTable,
		ClosureVarTable: w.Function.ClosureVarTable,
		ExceptionTable:  w.Function.ExceptionTable,
		DebugTable:      w.Function.DebugTable,
		Hotness:         jit.NewHotnessCounter(),
		IsGenerator:     w.Function.IsGenerator,
		IsAsync:         w.Function.IsAsync,
	}
	return &funcdef.ModuleDef{
		FunctionDef:       fd,
		Path:              w.Path,
		ExportVarDefTable: w.ExportVarDefTable,
		LineTable:         w.LineTable,
		ImportedPaths:     w.ImportedPaths,
	}, nil
}
