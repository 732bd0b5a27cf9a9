package value

// ConstIndex identifies an entry in one of the two constant pools. Its sign
// discriminates which pool to consult: positive indexes the process-global
// pool, negative indexes the current Context's local pool, and zero is the
// sentinel "invalid index".
type ConstIndex int32

// InvalidConstIndex is the sentinel returned when no interning took place.
const InvalidConstIndex ConstIndex = 0

// IsGlobal reports whether idx addresses the global constant pool.
func (idx ConstIndex) IsGlobal() bool { return idx > 0 }

// IsLocal reports whether idx addresses the context-local constant pool.
func (idx ConstIndex) IsLocal() bool { return idx < 0 }

// IsValid reports whether idx is anything other than the sentinel.
func (idx ConstIndex) IsValid() bool { return idx != InvalidConstIndex }

// GlobalSlot returns the zero-based slot this index names in the global pool.
// Only meaningful when IsGlobal() is true.
func (idx ConstIndex) GlobalSlot() int { return int(idx) - 1 }

// LocalSlot returns the zero-based slot this index names in the local pool.
// Only meaningful when IsLocal() is true.
func (idx ConstIndex) LocalSlot() int { return int(-idx) - 1 }

// GlobalIndex builds the ConstIndex for the given zero-based global slot.
func GlobalIndex(slot int) ConstIndex { return ConstIndex(slot + 1) }

// LocalIndex builds the ConstIndex for the given zero-based local slot.
func LocalIndex(slot int) ConstIndex { return ConstIndex(-(slot + 1)) }
