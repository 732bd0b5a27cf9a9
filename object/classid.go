package object

// ClassID identifies which built-in prototype/constructor applies to an
// Object when no user __proto__ has been set.
type ClassID uint16

const (
	ClassPlainObject ClassID = iota
	ClassArray
	ClassString
	ClassFunction
	ClassPromise
	ClassGenerator
	ClassAsyncGenerator
	ClassSymbol
	ClassModule
	ClassError
	numBuiltinClasses
)

// NumBuiltinClasses is the number of statically known class ids; embedders
// adding native classes allocate ids starting here.
const NumBuiltinClasses = int(numBuiltinClasses)
