package dtox

import (
	"reflect"
	"strings"
	"unicode"
)

// Mapping is a normalized key/value representation of a DTO
type Mapping = map[string]any

// DTO is a typed record that can be built from and dumped to a Mapping.
// Implementations are usually pointer types of plain structs:
//
//	type UserDTO struct {
//		Name  string `dto:"name,required"`
//		Email string `dto:"email"`
//	}
//
//	func (u *UserDTO) ToMapping() dtox.Mapping { return dtox.Dump(u, dtox.KeyStyleDefault) }
//	func (u *UserDTO) FromMapping(data dtox.Mapping, ignoreMissing bool, style dtox.KeyStyle) error {
//		return dtox.Hydrate(u, data, ignoreMissing, style)
//	}
type DTO interface {
	ToMapping() Mapping
	FromMapping(data Mapping, ignoreMissing bool, style KeyStyle) error
}

// Mappable is implemented by objects that can describe themselves as a mapping.
// The returned value must be a string-keyed map.
type Mappable interface {
	AsMapping() any
}

// mappingView is the read-only half of DTO
type mappingView interface {
	ToMapping() Mapping
}

// NormalizerFunc turns an otherwise unsupported item into a mapping
type NormalizerFunc func(item any) (any, error)

// Factory builds DTO instances of one concrete type
type Factory interface {
	CreateFromMapping(data Mapping, ignoreMissing bool, style KeyStyle) (DTO, error)
}

// FactoryFunc adapts a function to Factory
type FactoryFunc func(data Mapping, ignoreMissing bool, style KeyStyle) (DTO, error)

func (f FactoryFunc) CreateFromMapping(data Mapping, ignoreMissing bool, style KeyStyle) (DTO, error) {
	return f(data, ignoreMissing, style)
}

type typedFactory[T any, PT interface {
	*T
	DTO
}] struct{}

func (typedFactory[T, PT]) CreateFromMapping(data Mapping, ignoreMissing bool, style KeyStyle) (DTO, error) {
	var v T
	dto := PT(&v)
	if err := dto.FromMapping(data, ignoreMissing, style); err != nil {
		return nil, err
	}
	return dto, nil
}

// FactoryOf returns the factory for the DTO type *T
//
//	mapper := dtox.NewMapper(dtox.FactoryOf[UserDTO]())
func FactoryOf[T any, PT interface {
	*T
	DTO
}]() Factory {
	return typedFactory[T, PT]{}
}

var dtoType = reflect.TypeFor[DTO]()

type reflectFactory struct {
	elem reflect.Type
}

func (f reflectFactory) CreateFromMapping(data Mapping, ignoreMissing bool, style KeyStyle) (DTO, error) {
	dto := reflect.New(f.elem).Interface().(DTO)
	if err := dto.FromMapping(data, ignoreMissing, style); err != nil {
		return nil, err
	}
	return dto, nil
}

// FactoryFor returns a factory for t when t or *t implements DTO with a pointer receiver.
// The factory always produces *Elem values.
func FactoryFor(t reflect.Type) (Factory, bool) {
	if t == nil {
		return nil, false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Pointer || !reflect.PointerTo(t).Implements(dtoType) {
		return nil, false
	}
	return reflectFactory{elem: t}, true
}

// KeyStyle selects how declared field names appear as mapping keys
type KeyStyle string

const (
	// KeyStyleDefault uses declared names as is (camelBack by convention)
	KeyStyleDefault KeyStyle = ""
	// KeyStyleUnderscored uses snake_case keys
	KeyStyleUnderscored KeyStyle = "underscored"
	// KeyStyleDashed uses kebab-case keys
	KeyStyleDashed KeyStyle = "dashed"
)

// ParseKeyStyle accepts "", "default", "camel", "underscored", "snake", "dashed" and "kebab"
func ParseKeyStyle(s string) (KeyStyle, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", "camel":
		return KeyStyleDefault, true
	case "underscored", "snake":
		return KeyStyleUnderscored, true
	case "dashed", "kebab":
		return KeyStyleDashed, true
	}
	return KeyStyleDefault, false
}

// Key inflects a declared field name
func (s KeyStyle) Key(name string) string {
	switch s {
	case KeyStyleUnderscored:
		return separate(name, '_')
	case KeyStyleDashed:
		return separate(name, '-')
	default:
		return name
	}
}

// separate splits camel humps: userID -> user_id, HTTPStatus -> http_status
func separate(name string, sep rune) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range runes {
		if r == '_' || r == '-' || r == ' ' {
			b.WriteRune(sep)
			continue
		}
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteRune(sep)
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
