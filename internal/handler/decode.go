package handler

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/report"
)

const maxBodySize = 1 << 20

// decodeBody reads a JSON object from the request body and calls fn for
// every field. Unknown fields must be skipped by fn.
func decodeBody(w http.ResponseWriter, r *http.Request, fn func(d *jx.Decoder, key string) error) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return malformed(err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return malformed(errors.New("request body is empty"))
	}

	err = jx.DecodeBytes(body).ObjBytes(func(d *jx.Decoder, key []byte) error {
		field := string(key)
		if err := fn(d, field); err != nil {
			var v *fault.ValidationError
			if errors.As(err, &v) {
				return v
			}
			return fault.Invalid(field, "has an invalid type or format", nil)
		}
		return nil
	})
	if err != nil {
		var v *fault.ValidationError
		if errors.As(err, &v) {
			return v
		}
		return malformed(err)
	}
	return nil
}

func malformed(err error) error {
	return &fault.ValidationError{
		Message: "malformed request body",
		Fields:  []fault.FieldError{{Field: "body", Message: err.Error()}},
	}
}

func readStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

func readInt64(d *jx.Decoder) (int64, error) {
	if d.Next() == jx.Null {
		return 0, d.Null()
	}
	return d.Int64()
}

func readInt(d *jx.Decoder) (int, error) {
	if d.Next() == jx.Null {
		return 0, d.Null()
	}
	return d.Int()
}

// readDecimal accepts numbers and numeric strings.
func readDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.Null:
		return decimal.Zero, d.Null()
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	default:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(n.String())
	}
}

func readOptDecimal(d *jx.Decoder) (*decimal.Decimal, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	v, err := readDecimal(d)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func readOptBool(d *jx.Decoder) (*bool, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	v, err := d.Bool()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fault.Invalid(name, "must be a positive integer", raw)
	}
	return id, nil
}

// query parses query parameters, collecting every invalid one.
type query struct {
	values url.Values
	v      fault.ValidationError
}

func newQuery(r *http.Request) *query {
	return &query{values: r.URL.Query()}
}

func (q *query) str(name string) string {
	return strings.TrimSpace(q.values.Get(name))
}

func (q *query) number(name string, def int) int {
	raw := q.str(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		q.v.Add(name, "must be an integer", raw)
		return def
	}
	return n
}

func (q *query) id(name string) int64 {
	raw := q.str(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		q.v.Add(name, "must be a positive integer", raw)
		return 0
	}
	return n
}

func (q *query) boolean(name string) *bool {
	raw := q.str(name)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		q.v.Add(name, "must be true or false", raw)
		return nil
	}
	return &b
}

// timestamp parses an RFC 3339 timestamp or a YYYY-MM-DD date. A date used
// as an upper bound covers the whole day.
func (q *query) timestamp(name string, upper bool) *time.Time {
	raw := q.str(name)
	t, err := report.ParseBound(raw, upper)
	if err != nil {
		q.v.Add(name, "must be an RFC 3339 timestamp or a YYYY-MM-DD date", raw)
		return nil
	}
	return t
}

func (q *query) add(name, message string, rejected any) {
	q.v.Add(name, message, rejected)
}

func (q *query) err() error {
	return q.v.Err()
}
