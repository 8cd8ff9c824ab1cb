package graph

import (
	"fmt"

	"github.com/vvka-141/dwca/pkg/dwca"
)

// Scope is the namespace within which a node id is unique.
type Scope string

const (
	ScopeDocument Scope = "document"
	ScopeSystem   Scope = "system"
)

// ParseScope maps an attribute value to a Scope. Empty means ScopeDocument.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeDocument:
		return ScopeDocument, nil
	case ScopeSystem:
		return ScopeSystem, nil
	}
	return "", fmt.Errorf("unknown scope %q", s)
}

// Identity is the id triple of a defined node.
type Identity struct {
	ID     string
	Scope  Scope
	System string
}

// Reference points at the node defined with ID within System.
type Reference struct {
	ID     string
	System string
}

// Node is a tagged variant: Defined(content) or Reference(id, system).
type Node[T any] struct {
	identity Identity
	ref      *Reference
	content  T
}

// Define returns a defined node.
func Define[T any](id Identity, content T) Node[T] {
	if id.Scope == "" {
		id.Scope = ScopeDocument
	}
	return Node[T]{identity: id, content: content}
}

// Refer returns a pointer node.
func Refer[T any](ref Reference) Node[T] {
	return Node[T]{ref: &ref}
}

// New returns a pointer node when ref is non-nil and a defined node
// otherwise. A node carrying both an id and a reference is rejected with
// dwca.ErrReferenceWithID.
func New[T any](id Identity, ref *Reference, content T) (Node[T], error) {
	if ref != nil {
		if id.ID != "" {
			return Node[T]{}, fmt.Errorf("id %q with references %q: %w", id.ID, ref.ID, dwca.ErrReferenceWithID)
		}
		return Refer[T](*ref), nil
	}
	return Define(id, content), nil
}

// IsReference reports whether n is a pointer node.
func (n Node[T]) IsReference() bool {
	return n.ref != nil
}

// Reference returns the pointer of a pointer node.
func (n Node[T]) Reference() (Reference, bool) {
	if n.ref == nil {
		return Reference{}, false
	}
	return *n.ref, true
}

// Identity returns the id triple. It is zero for pointer nodes.
func (n Node[T]) Identity() Identity {
	return n.identity
}

// Content returns the content of a defined node. ok is false for pointers.
func (n Node[T]) Content() (T, bool) {
	if n.ref != nil {
		var zero T
		return zero, false
	}
	return n.content, true
}

// MustContent returns the content, or the zero value for pointers.
func (n Node[T]) MustContent() T {
	c, _ := n.Content()
	return c
}

// Ptr returns a pointer to the content of a defined node so callers can edit
// it in place, or nil for pointers.
func (n *Node[T]) Ptr() *T {
	if n.ref != nil {
		return nil
	}
	return &n.content
}
