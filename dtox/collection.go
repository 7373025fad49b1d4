package dtox

import (
	"iter"
	"slices"
)

// Collection is an ordered container of items. FromCollection rebuilds its result
// from Empty and Add, so the input's own mutability rules apply to the output.
type Collection interface {
	All() iter.Seq[any]
	Len() int
	// Empty returns a new, empty collection of the same kind
	Empty() Collection
	// Add appends item. Mutable collections return the receiver, immutable ones a copy.
	Add(item any) Collection
	Immutable() bool
}

// ArrayCollection is a mutable slice-backed Collection
type ArrayCollection struct {
	items []any
}

// NewArrayCollection creates a mutable collection holding items
func NewArrayCollection(items ...any) *ArrayCollection {
	return &ArrayCollection{items: slices.Clone(items)}
}

func (c *ArrayCollection) All() iter.Seq[any] { return slices.Values(c.items) }
func (c *ArrayCollection) Len() int           { return len(c.items) }
func (c *ArrayCollection) Empty() Collection  { return &ArrayCollection{} }
func (c *ArrayCollection) Immutable() bool    { return false }

func (c *ArrayCollection) Add(item any) Collection {
	c.items = append(c.items, item)
	return c
}

// Items returns a copy of the underlying slice
func (c *ArrayCollection) Items() []any { return slices.Clone(c.items) }

// ImmutableCollection never changes after construction; Add returns a new collection
type ImmutableCollection struct {
	items []any
}

// NewImmutableCollection creates an immutable collection holding items
func NewImmutableCollection(items ...any) ImmutableCollection {
	return ImmutableCollection{items: slices.Clone(items)}
}

func (c ImmutableCollection) All() iter.Seq[any] { return slices.Values(c.items) }
func (c ImmutableCollection) Len() int           { return len(c.items) }
func (c ImmutableCollection) Empty() Collection  { return ImmutableCollection{} }
func (c ImmutableCollection) Immutable() bool    { return true }

func (c ImmutableCollection) Add(item any) Collection {
	items := make([]any, len(c.items), len(c.items)+1)
	copy(items, c.items)
	return ImmutableCollection{items: append(items, item)}
}

// Items returns a copy of the underlying slice
func (c ImmutableCollection) Items() []any { return slices.Clone(c.items) }
