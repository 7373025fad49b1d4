package dtoxsqlx

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/Conversia-AI/craftable-dto/dtox"
	"github.com/Conversia-AI/craftable-dto/errx"
	"github.com/Conversia-AI/craftable-dto/logx"
	"github.com/jmoiron/sqlx"
)

var (
	ErrorRegistry = errx.NewRegistry("DTOX_SQL")

	ErrInvalidQuery = ErrorRegistry.Register("INVALID_QUERY", errx.TypeBadRequest, http.StatusBadRequest, "Invalid query")
	ErrQueryFailed  = ErrorRegistry.Register("QUERY_FAILED", errx.TypeInternal, http.StatusInternalServerError, "SQL query execution failed")
	ErrScanFailed   = ErrorRegistry.Register("SCAN_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to scan SQL results")
	ErrCountFailed  = ErrorRegistry.Register("COUNT_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to count SQL records")
)

// Rows is the part of *sqlx.Rows used to stream records
type Rows interface {
	Next() bool
	MapScan(dest map[string]any) error
	Err() error
	Close() error
}

// DB is satisfied by *sqlx.DB and *sqlx.Tx
type DB interface {
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	Rebind(query string) string
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// scanner turns rows into a sequence of mappings and remembers the first failure
type scanner struct {
	rows Rows
	err  error
}

func (s *scanner) seq() iter.Seq[any] {
	return func(yield func(any) bool) {
		for s.rows.Next() {
			row := make(map[string]any)
			if err := s.rows.MapScan(row); err != nil {
				s.err = ErrorRegistry.NewWithCause(ErrScanFailed, err)
				return
			}
			if !yield(plain(row)) {
				return
			}
		}
		if err := s.rows.Err(); err != nil {
			s.err = ErrorRegistry.NewWithCause(ErrScanFailed, err)
		}
	}
}

// plain converts driver byte slices into strings so they hydrate text fields
func plain(row map[string]any) dtox.Mapping {
	out := make(dtox.Mapping, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		out[k] = v
	}
	return out
}

// FromRows maps every row through m and closes rows
func FromRows(m *dtox.Mapper, rows Rows) ([]dtox.DTO, error) {
	defer rows.Close()

	s := &scanner{rows: rows}
	dtos, err := m.FromIterable(s.seq())
	if s.err != nil {
		return nil, s.err
	}
	if err != nil {
		return nil, err
	}
	return dtos, nil
}

// Query runs query (with ? placeholders) and maps the resulting rows
func Query(ctx context.Context, db DB, m *dtox.Mapper, query string, args ...any) ([]dtox.DTO, error) {
	rows, err := db.QueryxContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return nil, ErrorRegistry.NewWithCause(ErrQueryFailed, err)
	}
	return FromRows(m, rows)
}

// Paginate selects one page of table and wraps it with the total row count
func Paginate(ctx context.Context, db DB, m *dtox.Mapper, table string, req dtox.PageRequest) (*dtox.Page, error) {
	req = req.WithDefaults()
	dataQuery, countQuery, args, err := BuildPageQueries(table, req)
	if err != nil {
		return nil, err
	}

	var total int
	if err := db.GetContext(ctx, &total, db.Rebind(countQuery), args...); err != nil {
		return nil, ErrorRegistry.NewWithCause(ErrCountFailed, err)
	}

	rows, err := db.QueryxContext(ctx, db.Rebind(dataQuery), args...)
	if err != nil {
		return nil, ErrorRegistry.NewWithCause(ErrQueryFailed, err)
	}
	defer rows.Close()

	logx.Trace("dtoxsqlx: %s (page %d, total %d)", dataQuery, req.Page, total)

	s := &scanner{rows: rows}
	page, err := m.FromPaginated(s.seq(), total, req.PerPage, req.Page)
	if s.err != nil {
		return nil, s.err
	}
	if err != nil {
		return nil, err
	}
	return page, nil
}

// BuildPageQueries renders the data and count statements with ? placeholders.
// Filters are ANDed conditions applied in key order: slice values become IN
// lists (expanded with sqlx.In), everything else an equality.
func BuildPageQueries(table string, req dtox.PageRequest) (string, string, []any, error) {
	req = req.WithDefaults()
	if !identifier.MatchString(table) {
		return "", "", nil, ErrorRegistry.New(ErrInvalidQuery).WithDetail("table", table)
	}

	fields := "*"
	if len(req.Fields) > 0 {
		for _, f := range req.Fields {
			if !identifier.MatchString(f) {
				return "", "", nil, ErrorRegistry.New(ErrInvalidQuery).WithDetail("field", f)
			}
		}
		fields = strings.Join(req.Fields, ", ")
	}

	keys := make([]string, 0, len(req.Filters))
	for k := range req.Filters {
		if !identifier.MatchString(k) {
			return "", "", nil, ErrorRegistry.New(ErrInvalidQuery).WithDetail("filter", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	where := ""
	args := make([]any, 0, len(keys))
	expand := false
	if len(keys) > 0 {
		conditions := make([]string, len(keys))
		for i, k := range keys {
			v := req.Filters[k]
			if isList(v) {
				conditions[i] = k + " IN (?)"
				expand = true
			} else {
				conditions[i] = k + " = ?"
			}
			args = append(args, v)
		}
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	order := ""
	if req.OrderBy != "" {
		if !identifier.MatchString(req.OrderBy) {
			return "", "", nil, ErrorRegistry.New(ErrInvalidQuery).WithDetail("order_by", req.OrderBy)
		}
		direction := "ASC"
		if req.Desc {
			direction = "DESC"
		}
		order = fmt.Sprintf(" ORDER BY %s %s", req.OrderBy, direction)
	}

	dataQuery := fmt.Sprintf("SELECT %s FROM %s%s%s LIMIT %d OFFSET %d",
		fields, table, where, order, req.PerPage, req.Offset())
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", table, where)
	if !expand {
		return dataQuery, countQuery, args, nil
	}

	dataQuery, expanded, err := sqlx.In(dataQuery, args...)
	if err != nil {
		return "", "", nil, ErrorRegistry.NewWithCause(ErrInvalidQuery, err)
	}
	countQuery, _, err = sqlx.In(countQuery, args...)
	if err != nil {
		return "", "", nil, ErrorRegistry.NewWithCause(ErrInvalidQuery, err)
	}
	return dataQuery, countQuery, expanded, nil
}

func isList(v any) bool {
	if _, ok := v.([]byte); ok {
		return false
	}
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}
