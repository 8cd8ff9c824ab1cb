package graph

import "fmt"

// Index looks nodes up by id for consumers that resolve pointers.
// Document-scoped ids are keyed by id alone, system-scoped ids by system and id.
type Index[T any] struct {
	document map[string]T
	system   map[[2]string]T
}

// NewIndex returns an empty index.
func NewIndex[T any]() *Index[T] {
	return &Index[T]{document: make(map[string]T), system: make(map[[2]string]T)}
}

// Add indexes a defined node. Pointers and nodes without an id are ignored.
// A second definition of the same id within its scope is an error.
func (ix *Index[T]) Add(n Node[T]) error {
	content, ok := n.Content()
	if !ok || n.identity.ID == "" {
		return nil
	}
	if n.identity.Scope == ScopeSystem {
		k := [2]string{n.identity.System, n.identity.ID}
		if _, dup := ix.system[k]; dup {
			return fmt.Errorf("id %q defined twice in system %q", n.identity.ID, n.identity.System)
		}
		ix.system[k] = content
		return nil
	}
	if _, dup := ix.document[n.identity.ID]; dup {
		return fmt.Errorf("id %q defined twice in document", n.identity.ID)
	}
	ix.document[n.identity.ID] = content
	return nil
}

// Lookup finds the content a reference points at, trying the system scope
// first when the reference names a system.
func (ix *Index[T]) Lookup(ref Reference) (T, bool) {
	if ref.System != "" {
		if c, ok := ix.system[[2]string{ref.System, ref.ID}]; ok {
			return c, true
		}
	}
	c, ok := ix.document[ref.ID]
	return c, ok
}

// Resolve returns the content of n, following n into the index if it is a
// pointer.
func (ix *Index[T]) Resolve(n Node[T]) (T, bool) {
	if ref, ok := n.Reference(); ok {
		return ix.Lookup(ref)
	}
	return n.Content()
}

// Len returns the number of indexed definitions.
func (ix *Index[T]) Len() int {
	return len(ix.document) + len(ix.system)
}
