package dtox

import (
	"iter"
	"slices"

	"github.com/Conversia-AI/craftable-dto/logx"
)

// Mapper builds DTOs of one type from mappings, iterables, collections and pages.
// A configured Mapper holds no mutable state and can be shared between goroutines;
// the With* methods return modified copies.
type Mapper struct {
	factory       Factory
	normalizer    NormalizerFunc
	ignoreMissing bool
	style         KeyStyle
}

// NewMapper creates a mapper producing DTOs through factory
func NewMapper(factory Factory) *Mapper {
	return &Mapper{factory: factory}
}

// WithNormalizer sets the fallback used for items no built-in rule handles
func (m *Mapper) WithNormalizer(fn NormalizerFunc) *Mapper {
	c := *m
	c.normalizer = fn
	return &c
}

// WithIgnoreMissing lets construction succeed when required fields are absent
func (m *Mapper) WithIgnoreMissing(ignore bool) *Mapper {
	c := *m
	c.ignoreMissing = ignore
	return &c
}

// WithKeyStyle selects the key inflection passed to the factory
func (m *Mapper) WithKeyStyle(style KeyStyle) *Mapper {
	c := *m
	c.style = style
	return &c
}

// FromMapping builds a single DTO. Factory errors are returned unchanged.
func (m *Mapper) FromMapping(data Mapping) (DTO, error) {
	return m.factory.CreateFromMapping(data, m.ignoreMissing, m.style)
}

// FromIterable builds one DTO per item, in order. Items that already are DTOs are
// kept as they are, whatever their type. The first failure aborts the whole call.
func (m *Mapper) FromIterable(items iter.Seq[any]) ([]DTO, error) {
	out := make([]DTO, 0)
	i := 0
	for item := range items {
		dto, err := m.fromItem(item, i)
		if err != nil {
			logx.Debug("dtox: item %d failed: %v", i, err)
			return nil, err
		}
		out = append(out, dto)
		i++
	}
	logx.Trace("dtox: mapped %d items", len(out))
	return out, nil
}

// FromCollection maps every item of c into a collection obtained from c.Empty()
func (m *Mapper) FromCollection(c Collection) (Collection, error) {
	out := c.Empty()
	i := 0
	for item := range c.All() {
		dto, err := m.fromItem(item, i)
		if err != nil {
			logx.Debug("dtox: collection item %d failed: %v", i, err)
			return nil, err
		}
		out = out.Add(dto)
		i++
	}
	return out, nil
}

// FromPaginated maps items and wraps them with the given metadata, verbatim
func (m *Mapper) FromPaginated(items iter.Seq[any], total, perPage, page int) (*Page, error) {
	dtos, err := m.FromIterable(items)
	if err != nil {
		return nil, err
	}
	return NewPage(dtos, total, perPage, page), nil
}

func (m *Mapper) fromItem(item any, index int) (DTO, error) {
	if dto, ok := item.(DTO); ok {
		return dto, nil
	}
	data, err := normalizeAt(item, m.normalizer, index)
	if err != nil {
		return nil, err
	}
	return m.FromMapping(data)
}

// Items adapts a slice of any element type for FromIterable and FromPaginated
func Items[E any](items []E) iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
}

// Values adapts a typed sequence
func Values[E any](seq iter.Seq[E]) iter.Seq[any] {
	return func(yield func(any) bool) {
		for item := range seq {
			if !yield(item) {
				return
			}
		}
	}
}

// Cast narrows mapped DTOs to a concrete type
func Cast[T DTO](dtos []DTO) ([]T, error) {
	out := make([]T, 0, len(dtos))
	for i, dto := range dtos {
		t, ok := dto.(T)
		if !ok {
			var want T
			return nil, ErrorRegistry.New(ErrUnexpectedType).
				WithDetail("index", i).
				WithDetail("want", typeName(want)).
				WithDetail("got", typeName(dto))
		}
		out = append(out, t)
	}
	return out, nil
}

// CollectionItems snapshots a collection as a slice
func CollectionItems(c Collection) []any {
	return slices.Collect(c.All())
}
