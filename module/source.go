// Package module implements the module interface contract: an in-process
// (L1) compiled-module cache, an optional badger-backed (L2) disk cache, and
// the embedder seams for resolving/loading/building module source, using a
// generic loader-plus-singleflight pattern repurposed from cache-value
// loading to module compiling.
package module

import "github.com/voskan/mjsvm/funcdef"

// Source is the embedder-supplied file-system (or virtual-filesystem) half
// of the module contract: Resolve turns a specifier as written in an import
// into a canonical path, Load reads its raw source bytes. Both must be safe
// for concurrent use and must not re-enter the Manager.
type Source interface {
	Resolve(path string) (string, error)
	Load(resolvedPath string) ([]byte, error)
}

// Builder compiles raw module source into a funcdef.ModuleDef. mjsvm ships
// no parser of its own; an embedder supplies this the same way it supplies
// Source.
type Builder interface {
	Build(resolvedPath string, src []byte) (*funcdef.ModuleDef, error)
}
