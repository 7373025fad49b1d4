package dtoxmongo

import (
	"context"
	"iter"
	"net/http"
	"time"

	"github.com/Conversia-AI/craftable-dto/dtox"
	"github.com/Conversia-AI/craftable-dto/errx"
	"github.com/Conversia-AI/craftable-dto/logx"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrorRegistry = errx.NewRegistry("DTOX_MONGO")

	ErrFindFailed   = ErrorRegistry.Register("FIND_FAILED", errx.TypeInternal, http.StatusInternalServerError, "MongoDB find operation failed")
	ErrDecodeFailed = ErrorRegistry.Register("DECODE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to decode MongoDB document")
	ErrCountFailed  = ErrorRegistry.Register("COUNT_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to count MongoDB records")
)

// Cursor is the part of *mongo.Cursor used to stream documents
type Cursor interface {
	Next(ctx context.Context) bool
	Decode(val any) error
	Err() error
	Close(ctx context.Context) error
}

// Collection is the part of *mongo.Collection used for pagination
type Collection interface {
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
	CountDocuments(ctx context.Context, filter any, opts ...*options.CountOptions) (int64, error)
}

// Plain converts BSON values into plain Go values: documents become
// dtox.Mapping, arrays []any, ObjectIDs hex strings and DateTimes time.Time.
func Plain(v any) any {
	switch t := v.(type) {
	case primitive.M:
		return plainMap(t)
	case map[string]any:
		return plainMap(t)
	case primitive.D:
		out := make(dtox.Mapping, len(t))
		for _, e := range t {
			out[e.Key] = Plain(e.Value)
		}
		return out
	case primitive.A:
		return plainSlice(t)
	case []any:
		return plainSlice(t)
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0).UTC()
	case primitive.Decimal128:
		return t.String()
	case primitive.Binary:
		return t.Data
	case bson.Raw:
		var doc bson.M
		if err := bson.Unmarshal(t, &doc); err != nil {
			return t
		}
		return plainMap(doc)
	}
	return v
}

func plainMap(m map[string]any) dtox.Mapping {
	out := make(dtox.Mapping, len(m))
	for k, v := range m {
		out[k] = Plain(v)
	}
	return out
}

func plainSlice(a []any) []any {
	out := make([]any, len(a))
	for i, v := range a {
		out[i] = Plain(v)
	}
	return out
}

// Normalizer handles bson.D and bson.Raw documents, which are not plain maps
func Normalizer() dtox.NormalizerFunc {
	return func(item any) (any, error) {
		switch item.(type) {
		case primitive.D, bson.Raw:
			return Plain(item), nil
		}
		return nil, dtox.ErrorRegistry.New(dtox.ErrUnsupportedInput).WithDetail("source", "dtoxmongo")
	}
}

// Documents yields each document converted with Plain
func Documents[D any](docs []D) iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, doc := range docs {
			if !yield(Plain(doc)) {
				return
			}
		}
	}
}

type decoder struct {
	ctx context.Context
	cur Cursor
	err error
}

func (d *decoder) seq() iter.Seq[any] {
	return func(yield func(any) bool) {
		for d.cur.Next(d.ctx) {
			var doc bson.M
			if err := d.cur.Decode(&doc); err != nil {
				d.err = ErrorRegistry.NewWithCause(ErrDecodeFailed, err)
				return
			}
			if !yield(Plain(doc)) {
				return
			}
		}
		if err := d.cur.Err(); err != nil {
			d.err = ErrorRegistry.NewWithCause(ErrDecodeFailed, err)
		}
	}
}

// FromCursor maps every document through m and closes the cursor
func FromCursor(ctx context.Context, m *dtox.Mapper, cur Cursor) ([]dtox.DTO, error) {
	defer cur.Close(ctx)

	d := &decoder{ctx: ctx, cur: cur}
	dtos, err := m.FromIterable(d.seq())
	if d.err != nil {
		return nil, d.err
	}
	if err != nil {
		return nil, err
	}
	return dtos, nil
}

// FindOptions translates a page request into find options
func FindOptions(req dtox.PageRequest) *options.FindOptions {
	req = req.WithDefaults()
	opts := options.Find().
		SetSkip(int64(req.Offset())).
		SetLimit(int64(req.PerPage))

	if req.OrderBy != "" {
		dir := 1
		if req.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: req.OrderBy, Value: dir}})
	}

	if len(req.Fields) > 0 {
		projection := bson.M{}
		for _, f := range req.Fields {
			projection[f] = 1
		}
		opts.SetProjection(projection)
	}
	return opts
}

// Filter converts the request's equality filters into a BSON filter
func Filter(req dtox.PageRequest) bson.M {
	filter := bson.M{}
	for k, v := range req.Filters {
		filter[k] = v
	}
	return filter
}

// Paginate fetches one page of coll and wraps it with the matching document count
func Paginate(ctx context.Context, coll Collection, m *dtox.Mapper, req dtox.PageRequest) (*dtox.Page, error) {
	req = req.WithDefaults()
	filter := Filter(req)

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, ErrorRegistry.NewWithCause(ErrCountFailed, err)
	}

	cur, err := coll.Find(ctx, filter, FindOptions(req))
	if err != nil {
		return nil, ErrorRegistry.NewWithCause(ErrFindFailed, err)
	}
	defer cur.Close(ctx)

	logx.Trace("dtoxmongo: page %d of %d documents", req.Page, total)

	d := &decoder{ctx: ctx, cur: cur}
	page, err := m.FromPaginated(d.seq(), int(total), req.PerPage, req.Page)
	if d.err != nil {
		return nil, d.err
	}
	if err != nil {
		return nil, err
	}
	return page, nil
}
