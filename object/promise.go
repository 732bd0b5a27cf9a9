package object

import "github.com/voskan/mjsvm/value"

// PromiseState is a ClassPromise object's settlement state.
type PromiseState uint8

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

// PromiseData is installed on every ClassPromise Object. OnFulfill/OnReject
// hold the reaction thunks registered by Then while the promise is still
// pending; Resolve/Reject drain them into the owning Context's JobQueue
// (package promise owns that logic — this struct is just the storage,
// kept here so Object.GCTraverse can see into it without an import cycle).
type PromiseData struct {
	State PromiseState
	Result value.Value
	OnFulfill []value.Value
	OnReject []value.Value
}
