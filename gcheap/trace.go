package gcheap

import (
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
)

// objectReachedThrough resolves a root or traversed slot to the
// *object.Object it keeps alive, looking through a boxed closure-variable
// cell first. A ClosureVar cell is not itself GC-traced, but a local variable can be boxed into one
// before any closure has captured it — e.g. the instant a frame marks a
// slot IsCaptured at call entry — so the object it currently holds must
// still be found as a root via the raw stack slot, not only once some
// FunctionData.ClosureVars slice reaches it.
func objectReachedThrough(v value.Value) *object.Object {
	if cv := object.ClosureVarFromValue(v); cv != nil {
		return objectReachedThrough(cv.Get())
	}
	return object.FromValue(v)
}
