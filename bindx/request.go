package bindx

import (
	"maps"
	"mime"
	"net/url"
	"slices"
	"strings"

	"github.com/Conversia-AI/craftable-dto/dtox"
)

// ContentFormat is the coarse format of a request body
type ContentFormat string

const (
	FormatJSON  ContentFormat = "json"
	FormatForm  ContentFormat = "form"
	FormatOther ContentFormat = ""
)

// FormatFromContentType classifies a Content-Type header value
func FormatFromContentType(contentType string) ContentFormat {
	mediaType := mediaTypeOf(contentType)
	switch {
	case mediaType == "application/json", mediaType == "application/x-json", strings.HasSuffix(mediaType, "+json"):
		return FormatJSON
	case mediaType == "application/x-www-form-urlencoded", mediaType == "multipart/form-data":
		return FormatForm
	}
	return FormatOther
}

func mediaTypeOf(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// Request is the read-only view of an incoming request the Resolver works on.
// Parameter accessors return fresh mappings, never nil.
type Request interface {
	Method() string
	ContentFormat() ContentFormat
	RawBody() []byte
	QueryParameters() dtox.Mapping
	FormParameters() dtox.Mapping
	// AllParameters is the union of query and form parameters, form winning
	AllParameters() dtox.Mapping
}

// Values converts url.Values into a mapping. A key with one value maps to a
// string, a repeated key or one ending in "[]" maps to []any. When both "k"
// and "k[]" are present their values are merged into one list, "k" first.
func Values(values url.Values) dtox.Mapping {
	out := make(dtox.Mapping, len(values))
	for _, key := range slices.Sorted(maps.Keys(values)) {
		vs := values[key]
		name, list := strings.CutSuffix(key, "[]")

		prev, seen := out[name]
		if !seen && !list && len(vs) == 1 {
			out[name] = vs[0]
			continue
		}

		var items []any
		switch p := prev.(type) {
		case []any:
			items = p
		case string:
			items = []any{p}
		}
		for _, v := range vs {
			items = append(items, v)
		}
		if items == nil {
			items = []any{}
		}
		out[name] = items
	}
	return out
}

// union overlays the later mappings onto the earlier ones
func union(layers ...dtox.Mapping) dtox.Mapping {
	out := dtox.Mapping{}
	for _, l := range layers {
		maps.Copy(out, l)
	}
	return out
}
