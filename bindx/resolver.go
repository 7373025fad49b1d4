package bindx

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/Conversia-AI/craftable-dto/configx"
	"github.com/Conversia-AI/craftable-dto/dtox"
	"github.com/Conversia-AI/craftable-dto/logx"
	"github.com/goccy/go-json"
)

// Source selects where a DTO's raw data is read from
type Source string

const (
	// SourceBody reads the JSON body, or the form fields of a non-JSON request
	SourceBody Source = "body"
	// SourceQuery reads the query string
	SourceQuery Source = "query"
	// SourceRequest reads query and form parameters together
	SourceRequest Source = "request"
	// SourceAuto reads the query for GET and HEAD, otherwise the body,
	// falling back to the query when the body yields nothing
	SourceAuto Source = "auto"
)

// ParseSource accepts the source names used in `bind` tags. An empty name is Auto.
func ParseSource(s string) (Source, error) {
	switch src := Source(strings.ToLower(strings.TrimSpace(s))); src {
	case "":
		return SourceAuto, nil
	case SourceBody, SourceQuery, SourceRequest, SourceAuto:
		return src, nil
	}
	return "", ErrorRegistry.New(ErrUnknownSource).WithDetail("source", s)
}

// MapRequest is the per-argument binding declaration
type MapRequest struct {
	Source Source
}

// Argument describes one DTO to resolve
type Argument struct {
	Name     string
	Factory  dtox.Factory
	Nullable bool
	// Hint is the explicit declaration; nil means none was given
	Hint *MapRequest
}

// Options tunes how extracted data becomes DTOs
type Options struct {
	// UseNumber decodes JSON numbers as json.Number instead of float64
	UseNumber     bool
	IgnoreMissing bool
	KeyStyle      dtox.KeyStyle
	// MaxBodyBytes bounds bodies read by Resolver.Request; zero means unbounded
	MaxBodyBytes int64
}

// OptionsFromConfig reads the bind.* keys
func OptionsFromConfig(cfg *configx.Config) (Options, error) {
	opts := Options{
		UseNumber:     cfg.Get("bind.use.number").AsBoolOr(false),
		IgnoreMissing: cfg.Get("bind.ignore.missing").AsBoolOr(false),
		MaxBodyBytes:  cfg.Get("bind.max.body").AsInt64(),
	}

	if raw := cfg.Get("bind.key.style").AsString(); raw != "" {
		style, ok := dtox.ParseKeyStyle(raw)
		if !ok {
			return Options{}, ErrorRegistry.New(ErrInvalidOption).WithDetail("bind.key.style", raw)
		}
		opts.KeyStyle = style
	}
	return opts, nil
}

// Resolver turns requests into DTOs. It holds only its options and is safe for concurrent use.
type Resolver struct {
	opts Options
}

func NewResolver(opts Options) *Resolver {
	return &Resolver{opts: opts}
}

// Options returns the resolver's options
func (r *Resolver) Options() Options {
	return r.opts
}

// Request snapshots an *http.Request with the configured body limit
func (r *Resolver) Request(req *http.Request) (*HTTPRequest, error) {
	return NewHTTPRequest(req, WithMaxBodyBytes(r.opts.MaxBodyBytes))
}

// Extract returns the raw mapping of req for source. The request is only read.
func (r *Resolver) Extract(req Request, source Source) (dtox.Mapping, error) {
	switch source {
	case SourceBody:
		return r.body(req)
	case SourceQuery:
		return req.QueryParameters(), nil
	case SourceRequest:
		return req.AllParameters(), nil
	case SourceAuto, "":
		return r.auto(req)
	}
	return nil, ErrorRegistry.New(ErrUnknownSource).WithDetail("source", string(source))
}

func (r *Resolver) auto(req Request) (dtox.Mapping, error) {
	switch strings.ToUpper(req.Method()) {
	case http.MethodGet, http.MethodHead:
		return req.QueryParameters(), nil
	}

	data, err := r.body(req)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		return data, nil
	}
	// bodiless writes such as DELETE with query filters
	return req.QueryParameters(), nil
}

func (r *Resolver) body(req Request) (dtox.Mapping, error) {
	if req.ContentFormat() != FormatJSON {
		return req.FormParameters(), nil
	}

	raw := req.RawBody()
	if len(bytes.TrimSpace(raw)) == 0 {
		return dtox.Mapping{}, nil
	}
	return r.decode(raw)
}

// decode accepts exactly one JSON object
func (r *Resolver) decode(raw []byte) (dtox.Mapping, error) {
	if !utf8.Valid(raw) {
		return nil, ErrorRegistry.New(ErrParseError).WithDetail("reason", "invalid UTF-8")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if r.opts.UseNumber {
		dec.UseNumber()
	}

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, ErrorRegistry.NewWithCause(ErrParseError, err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, ErrorRegistry.NewWithCause(ErrParseError, err).WithDetail("reason", "trailing data")
	}

	data, ok := v.(map[string]any)
	if !ok {
		return nil, ErrorRegistry.New(ErrParseError).WithDetail("reason", "body is not a JSON object")
	}
	return data, nil
}

// Resolve builds the DTO described by arg. It yields zero results, without
// error, for a nullable argument that carries no declaration.
func (r *Resolver) Resolve(req Request, arg Argument) ([]dtox.DTO, error) {
	if arg.Factory == nil {
		return nil, ErrorRegistry.New(ErrInvalidArgument).WithDetail("argument", arg.Name)
	}

	source := SourceAuto
	switch {
	case arg.Hint != nil:
		if arg.Hint.Source != "" {
			source = arg.Hint.Source
		}
	case arg.Nullable:
		logx.Debug("bindx: skipping nullable argument %q without declaration", arg.Name)
		return []dtox.DTO{}, nil
	}

	data, err := r.Extract(req, source)
	if err != nil {
		return nil, err
	}
	logx.Debug("bindx: resolving %q from %s (%d keys)", arg.Name, source, len(data))

	dto, err := r.Mapper(arg.Factory).FromMapping(data)
	if err != nil {
		return nil, err
	}
	return []dtox.DTO{dto}, nil
}

// Mapper returns a mapper for factory configured with the resolver's options
func (r *Resolver) Mapper(factory dtox.Factory) *dtox.Mapper {
	return dtox.NewMapper(factory).
		WithIgnoreMissing(r.opts.IgnoreMissing).
		WithKeyStyle(r.opts.KeyStyle)
}

// Bind resolves every DTO field of the struct dst points to. Fields are
// declared with `bind:"body|query|request|auto"`; `bind:"-"` skips a field.
// Untagged pointer fields are nullable and stay nil, untagged value fields
// resolve with Auto. Fields whose type is not a DTO are ignored unless tagged.
//
//	var args struct {
//		Filter *FilterDTO `bind:"query"`
//		Body   CreateDTO
//	}
//	err := resolver.Bind(req, &args)
func (r *Resolver) Bind(req Request, dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrorRegistry.New(ErrInvalidArgument).WithDetail("target", typeName(dst))
	}
	v = v.Elem()
	t := v.Type()

	for i := range t.NumField() {
		sf := t.Field(i)
		tag, tagged := sf.Tag.Lookup("bind")
		if !sf.IsExported() || tag == "-" {
			continue
		}

		factory, ok := dtox.FactoryFor(sf.Type)
		if !ok {
			if tagged {
				return ErrorRegistry.New(ErrInvalidArgument).
					WithDetail("field", sf.Name).
					WithDetail("reason", "not a DTO")
			}
			continue
		}

		arg := Argument{
			Name:     sf.Name,
			Factory:  factory,
			Nullable: sf.Type.Kind() == reflect.Pointer,
		}
		if tagged {
			source, err := ParseSource(tag)
			if err != nil {
				return err
			}
			arg.Hint = &MapRequest{Source: source}
		}

		dtos, err := r.Resolve(req, arg)
		if err != nil {
			return err
		}
		if len(dtos) == 0 {
			continue
		}

		// factories from FactoryFor always produce *Elem
		got := reflect.ValueOf(dtos[0])
		field := v.Field(i)
		if sf.Type.Kind() == reflect.Pointer {
			field.Set(got)
		} else {
			field.Set(got.Elem())
		}
	}
	return nil
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
