package dtox

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/Conversia-AI/craftable-dto/errx"
	"github.com/spf13/cast"
)

type fieldInfo struct {
	index     []int
	name      string
	required  bool
	omitEmpty bool
	rule      Rule
}

var (
	fieldCache sync.Map // reflect.Type -> []fieldInfo
	timeType   = reflect.TypeFor[time.Time]()
	stringType = reflect.TypeFor[string]()
)

func fieldsOf(src any) ([]fieldInfo, bool) {
	t := reflect.TypeOf(src)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, false
	}
	return cachedFields(t), true
}

func cachedFields(t reflect.Type) []fieldInfo {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]fieldInfo)
	}
	fields := collectFields(t, nil)
	actual, _ := fieldCache.LoadOrStore(t, fields)
	return actual.([]fieldInfo)
}

func collectFields(t reflect.Type, parent []int) []fieldInfo {
	var fields []fieldInfo
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int(nil), parent...), i)

		tag, hasTag := sf.Tag.Lookup("dto")
		if tag == "-" {
			continue
		}
		if sf.Anonymous && !hasTag && sf.Type.Kind() == reflect.Struct {
			fields = append(fields, collectFields(sf.Type, index)...)
			continue
		}
		if !sf.IsExported() {
			continue
		}

		f := fieldInfo{index: index}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			if jsonTag, ok := sf.Tag.Lookup("json"); ok {
				if jsonTag == "-" {
					continue
				}
				jsonName, jsonOpts, _ := strings.Cut(jsonTag, ",")
				name = jsonName
				if !hasTag && strings.Contains(jsonOpts, "omitempty") {
					f.omitEmpty = true
				}
			}
		}
		if name == "" {
			name = lowerCamel(sf.Name)
		}
		f.name = name

		for _, opt := range strings.Split(opts, ",") {
			key, val, _ := strings.Cut(strings.TrimSpace(opt), "=")
			switch key {
			case "required":
				f.required = true
				f.rule.Required = true
			case "omitempty":
				f.omitEmpty = true
			case "minLength":
				f.rule.MinLength = intOpt(val)
			case "maxLength":
				f.rule.MaxLength = intOpt(val)
			case "min":
				f.rule.Min = floatOpt(val)
			case "max":
				f.rule.Max = floatOpt(val)
			}
		}
		f.rule.Pattern = sf.Tag.Get("pattern")

		fields = append(fields, f)
	}
	return fields
}

func intOpt(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func floatOpt(s string) *float64 {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &n
}

// lowerCamel lowers the leading hump: FirstName -> firstName, ID -> id, HTTPStatus -> httpStatus
func lowerCamel(name string) string {
	runes := []rune(name)
	for i := 0; i < len(runes) && unicode.IsUpper(runes[i]); i++ {
		if i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
			break
		}
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

type hydrator struct {
	ignoreMissing bool
	style         KeyStyle
}

// Hydrate fills the struct pointed to by dst from data. Keys the struct does not
// declare are ignored. A declared `required` field absent from data fails with
// ErrMissingField unless ignoreMissing is set.
func Hydrate(dst any, data Mapping, ignoreMissing bool, style KeyStyle) error {
	rv := reflect.ValueOf(dst)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrorRegistry.New(ErrInvalidTarget).WithDetail("type", typeName(dst))
	}
	h := hydrator{ignoreMissing: ignoreMissing, style: style}
	return h.hydrateStruct(rv.Elem(), data)
}

func (h hydrator) hydrateStruct(sv reflect.Value, data Mapping) error {
	var missing []string
	for _, f := range cachedFields(sv.Type()) {
		key := h.style.Key(f.name)
		raw, ok := data[key]
		if !ok {
			if f.required && !h.ignoreMissing {
				missing = append(missing, key)
			}
			continue
		}
		if err := h.setValue(sv.FieldByIndex(f.index), raw); err != nil {
			return withFieldPath(err, key)
		}
	}
	if len(missing) > 0 {
		return ErrorRegistry.New(ErrMissingField).
			WithDetail("field", missing[0]).
			WithDetail("fields", missing).
			WithDetail("dto", sv.Type().Name())
	}
	return nil
}

func withFieldPath(err error, key string) error {
	var xerr *errx.Error
	if !errors.As(err, &xerr) {
		return err
	}
	if inner, ok := xerr.Details["field"].(string); ok && inner != "" {
		return xerr.WithDetail("field", key+"."+inner)
	}
	return xerr.WithDetail("field", key)
}

func (h hydrator) setValue(dst reflect.Value, raw any) error {
	if raw == nil {
		dst.SetZero()
		return nil
	}
	src := reflect.ValueOf(raw)
	dt := dst.Type()

	if src.Type().AssignableTo(dt) {
		dst.Set(src)
		return nil
	}

	if dt.Kind() == reflect.Pointer {
		elem := reflect.New(dt.Elem())
		if err := h.setValue(elem.Elem(), raw); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}

	if reflect.PointerTo(dt).Implements(dtoType) {
		data, ok := toMapping(raw)
		if !ok {
			return conversionError(src, dt)
		}
		dto := reflect.New(dt)
		if err := dto.Interface().(DTO).FromMapping(data, h.ignoreMissing, h.style); err != nil {
			return err
		}
		dst.Set(dto.Elem())
		return nil
	}

	if src.Kind() == dt.Kind() && src.Type().ConvertibleTo(dt) {
		dst.Set(src.Convert(dt))
		return nil
	}

	if src.Kind() == reflect.String && src.Type() != stringType {
		// json.Number and other named strings
		raw = src.String()
	}

	switch dt.Kind() {
	case reflect.String:
		if !isScalar(src.Kind()) {
			return conversionError(src, dt)
		}
		s, err := cast.ToStringE(raw)
		if err != nil {
			return conversionError(src, dt)
		}
		dst.SetString(s)
		return nil

	case reflect.Bool:
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return conversionError(src, dt)
		}
		dst.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if src.CanFloat() && src.Float() != float64(int64(src.Float())) {
			return conversionError(src, dt)
		}
		n, err := cast.ToInt64E(raw)
		if err != nil || dst.OverflowInt(n) {
			return conversionError(src, dt)
		}
		dst.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if src.CanFloat() && src.Float() != float64(uint64(src.Float())) {
			return conversionError(src, dt)
		}
		n, err := cast.ToUint64E(raw)
		if err != nil || dst.OverflowUint(n) {
			return conversionError(src, dt)
		}
		dst.SetUint(n)
		return nil

	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(raw)
		if err != nil || dst.OverflowFloat(f) {
			return conversionError(src, dt)
		}
		dst.SetFloat(f)
		return nil

	case reflect.Slice:
		if dt.Elem().Kind() == reflect.Uint8 && src.Kind() == reflect.String {
			dst.SetBytes([]byte(src.String()))
			return nil
		}
		if isScalar(src.Kind()) {
			// a single query value for a list field
			src = reflect.ValueOf([]any{raw})
		}
		if src.Kind() != reflect.Slice && src.Kind() != reflect.Array {
			return conversionError(src, dt)
		}
		out := reflect.MakeSlice(dt, src.Len(), src.Len())
		for i := 0; i < src.Len(); i++ {
			if err := h.setValue(out.Index(i), src.Index(i).Interface()); err != nil {
				return withFieldPath(err, strconv.Itoa(i))
			}
		}
		dst.Set(out)
		return nil

	case reflect.Map:
		if dt.Key().Kind() != reflect.String || src.Kind() != reflect.Map || src.Type().Key().Kind() != reflect.String {
			return conversionError(src, dt)
		}
		out := reflect.MakeMapWithSize(dt, src.Len())
		iter := src.MapRange()
		for iter.Next() {
			elem := reflect.New(dt.Elem()).Elem()
			if err := h.setValue(elem, iter.Value().Interface()); err != nil {
				return withFieldPath(err, iter.Key().String())
			}
			out.SetMapIndex(iter.Key().Convert(dt.Key()), elem)
		}
		dst.Set(out)
		return nil

	case reflect.Struct:
		if dt == timeType {
			t, err := cast.ToTimeE(raw)
			if err != nil {
				return conversionError(src, dt)
			}
			dst.Set(reflect.ValueOf(t))
			return nil
		}
		data, ok := toMapping(raw)
		if !ok {
			return conversionError(src, dt)
		}
		return h.hydrateStruct(dst, data)
	}

	return conversionError(src, dt)
}

func isScalar(k reflect.Kind) bool {
	switch k {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer,
		reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return false
	}
	return true
}

func conversionError(src reflect.Value, dst reflect.Type) error {
	return ErrorRegistry.New(ErrTypeConversion).
		WithDetail("source_type", src.Type().String()).
		WithDetail("target_type", dst.String())
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

// Dump converts a struct (or pointer to one) into a Mapping using the declared
// field names inflected by style.
func Dump(src any, style KeyStyle) Mapping {
	rv := reflect.ValueOf(src)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Mapping{}
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return Mapping{}
	}
	return dumpStruct(rv, style)
}

func dumpStruct(sv reflect.Value, style KeyStyle) Mapping {
	out := make(Mapping)
	for _, f := range cachedFields(sv.Type()) {
		fv := sv.FieldByIndex(f.index)
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		out[style.Key(f.name)] = dumpValue(fv, style)
	}
	return out
}

func dumpValue(v reflect.Value, style KeyStyle) any {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
	}

	if style == KeyStyleDefault && v.CanInterface() {
		if view, ok := v.Interface().(mappingView); ok {
			return view.ToMapping()
		}
		if v.CanAddr() {
			if view, ok := v.Addr().Interface().(mappingView); ok {
				return view.ToMapping()
			}
		}
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return dumpValue(v.Elem(), style)
	case reflect.Struct:
		if v.Type() == timeType || len(cachedFields(v.Type())) == 0 {
			return v.Interface()
		}
		return dumpStruct(v, style)
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Interface()
		}
		out := make([]any, v.Len())
		for i := range out {
			out[i] = dumpValue(v.Index(i), style)
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		if v.Type().Key().Kind() != reflect.String {
			return v.Interface()
		}
		out := make(Mapping, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = dumpValue(iter.Value(), style)
		}
		return out
	}
	return v.Interface()
}
