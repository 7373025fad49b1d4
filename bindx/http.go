package bindx

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"

	"github.com/Conversia-AI/craftable-dto/dtox"
)

const multipartMemory = 32 << 20

// HTTPRequest is a Request snapshot: the body is buffered and parameters are
// parsed once, so the underlying transport request is never consulted again.
type HTTPRequest struct {
	method string
	format ContentFormat
	body   []byte
	query  dtox.Mapping
	form   dtox.Mapping
	path   dtox.Mapping
}

type httpConfig struct {
	maxBody int64
}

// HTTPOption configures NewHTTPRequest
type HTTPOption func(*httpConfig)

// WithMaxBodyBytes rejects bodies larger than n bytes. Zero or less means no limit.
func WithMaxBodyBytes(n int64) HTTPOption {
	return func(c *httpConfig) {
		c.maxBody = n
	}
}

// NewHTTPRequest buffers the body of r and parses its parameters. r.Body is
// replaced by an equivalent reader so downstream handlers can still read it;
// ParseForm is never called.
func NewHTTPRequest(r *http.Request, opts ...HTTPOption) (*HTTPRequest, error) {
	var cfg httpConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	body, err := readBody(r, cfg.maxBody)
	if err != nil {
		return nil, err
	}

	var query url.Values
	if r.URL != nil {
		query = r.URL.Query()
	}
	return NewRawRequest(r.Method, r.Header.Get("Content-Type"), query, body)
}

func readBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	reader := io.Reader(r.Body)
	if limit > 0 {
		reader = io.LimitReader(r.Body, limit+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		restore(r, body)
		return nil, ErrorRegistry.NewWithCause(ErrReadFailed, err)
	}
	if limit > 0 && int64(len(body)) > limit {
		restore(r, body)
		return nil, ErrorRegistry.New(ErrBodyTooLarge).WithDetail("limit", limit)
	}

	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// restore puts the consumed prefix back in front of the unread remainder
func restore(r *http.Request, consumed []byte) {
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(consumed), r.Body), r.Body}
}

// NewRawRequest builds a Request from already extracted parts. Form bodies
// are parsed according to contentType; a malformed form body is a parse error.
func NewRawRequest(method, contentType string, query url.Values, body []byte) (*HTTPRequest, error) {
	if method == "" {
		method = http.MethodGet
	}
	req := &HTTPRequest{
		method: method,
		format: FormatFromContentType(contentType),
		body:   body,
		query:  Values(query),
		form:   dtox.Mapping{},
	}

	if req.format == FormatForm && len(body) > 0 {
		form, err := parseForm(contentType, body)
		if err != nil {
			return nil, ErrorRegistry.NewWithCause(ErrParseError, err).WithDetail("content_type", contentType)
		}
		req.form = Values(form)
	}
	return req, nil
}

func parseForm(contentType string, body []byte) (url.Values, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, err
	}
	if mediaType != "multipart/form-data" {
		return url.ParseQuery(string(body))
	}

	form, err := multipart.NewReader(bytes.NewReader(body), params["boundary"]).ReadForm(multipartMemory)
	if err != nil {
		return nil, err
	}
	defer form.RemoveAll()
	return url.Values(form.Value), nil
}

// WithPathParams returns a copy whose AllParameters also carry route
// variables. Route variables win over query and form values.
func (r *HTTPRequest) WithPathParams(params map[string]string) *HTTPRequest {
	cp := *r
	cp.path = make(dtox.Mapping, len(params))
	for k, v := range params {
		cp.path[k] = v
	}
	return &cp
}

func (r *HTTPRequest) Method() string               { return r.method }
func (r *HTTPRequest) ContentFormat() ContentFormat { return r.format }
func (r *HTTPRequest) RawBody() []byte              { return slices.Clone(r.body) }

func (r *HTTPRequest) QueryParameters() dtox.Mapping { return union(r.query) }
func (r *HTTPRequest) FormParameters() dtox.Mapping  { return union(r.form) }
func (r *HTTPRequest) AllParameters() dtox.Mapping   { return union(r.query, r.form, r.path) }

// PathParameters returns the route variables attached with WithPathParams
func (r *HTTPRequest) PathParameters() dtox.Mapping { return union(r.path) }
