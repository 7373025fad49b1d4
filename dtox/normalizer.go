package dtox

import (
	"encoding"
	"reflect"

	"github.com/goccy/go-json"
)

const noIndex = -1

// Normalize converts item into a Mapping. Supported inputs, checked in order:
//
//   - a DTO, dumped through ToMapping
//   - a plain string-keyed map, returned as is
//   - a Mappable or a value with ToMapping, invoked
//   - a json.Marshaler, decoded from its JSON object
//   - anything the custom normalizer accepts
//
// Anything else fails with ErrUnsupportedInput. A step that yields something
// other than a string-keyed map fails with ErrInvalidNormalization. Errors
// returned by MarshalJSON or by custom are passed through unchanged.
func Normalize(item any, custom NormalizerFunc) (Mapping, error) {
	return normalizeAt(item, custom, noIndex)
}

func normalizeAt(item any, custom NormalizerFunc, index int) (Mapping, error) {
	if item == nil {
		return nil, unsupported(item, index)
	}
	// methods of typed nil pointers may dereference their receiver
	if rv := reflect.ValueOf(item); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, unsupported(item, index)
	}

	switch v := item.(type) {
	case DTO:
		return expectMapping(v.ToMapping(), "ToMapping", index)
	case Mapping:
		return v, nil
	}

	if data, ok := toMapping(item); ok {
		return data, nil
	}

	switch v := item.(type) {
	case Mappable:
		return expectMapping(v.AsMapping(), "AsMapping", index)
	case mappingView:
		return expectMapping(v.ToMapping(), "ToMapping", index)
	case json.Marshaler:
		raw, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			e := ErrorRegistry.NewWithCause(ErrInvalidNormalization, err).WithDetail("source", "MarshalJSON")
			if index != noIndex {
				e.WithDetail("index", index)
			}
			return nil, e
		}
		return expectMapping(decoded, "MarshalJSON", index)
	}

	if custom != nil {
		out, err := custom(item)
		if err != nil {
			return nil, err
		}
		return expectMapping(out, "normalizer", index)
	}

	return nil, unsupported(item, index)
}

// toMapping accepts map[string]any and any other map kind keyed by strings
// (bson.M, url.Values, map[string]string...). Text-marshaling keys are not
// considered.
func toMapping(v any) (Mapping, bool) {
	if m, ok := v.(Mapping); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	if rv.Type().Key().Implements(textMarshalerType) {
		return nil, false
	}
	if rv.IsNil() {
		return Mapping{}, true
	}
	out := make(Mapping, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

var textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()

func expectMapping(v any, source string, index int) (Mapping, error) {
	if data, ok := toMapping(v); ok {
		return data, nil
	}
	err := ErrorRegistry.New(ErrInvalidNormalization).
		WithDetail("source", source).
		WithDetail("got", typeName(v))
	if index != noIndex {
		err.WithDetail("index", index)
	}
	return nil, err
}

func unsupported(item any, index int) error {
	err := ErrorRegistry.New(ErrUnsupportedInput).WithDetail("type", typeName(item))
	if index != noIndex {
		err.WithDetail("index", index)
	}
	return err
}
