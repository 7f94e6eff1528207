package orm

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Reserved query parameters; every other parameter is a filter.
const (
	ParamFields = "fields"
	ParamSort   = "sort"
	ParamPage   = "page"
	ParamLimit  = "limit"
)

// Param is one key/value pair of a query string.
type Param struct {
	Key   string
	Value string
}

// Params keeps query parameters in the order the client sent them, which
// url.Values cannot do. Page links rely on that order.
type Params []Param

// ParseQuery splits a raw query string. Pairs that cannot be unescaped are
// kept verbatim.
func ParseQuery(raw string) Params {
	var params Params
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if v, err := url.QueryUnescape(value); err == nil {
			value = v
		}
		if key == "" {
			continue
		}
		params = append(params, Param{Key: key, Value: value})
	}
	return params
}

// Get returns the first value of key.
func (p Params) Get(key string) (string, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return "", false
}

func (p Params) Without(key string) Params {
	out := make(Params, 0, len(p))
	for _, param := range p {
		if param.Key != key {
			out = append(out, param)
		}
	}
	return out
}

// Encode renders the pairs in order, escaping keys and values.
func (p Params) Encode() string {
	var b strings.Builder
	for i, param := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(param.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(param.Value))
	}
	return b.String()
}

// Query is the decoration requested for one list call.
type Query struct {
	Params Params
	Fields []string
	Sort   string
	Page   int
	Limit  int
}

// NewQuery reads the reserved parameters. Invalid or missing page/limit fall
// back to page 1 and perPage; limit is capped at maxPerPage.
func NewQuery(rawQuery string, perPage, maxPerPage int) Query {
	params := ParseQuery(rawQuery)
	q := Query{Params: params, Page: 1, Limit: perPage}

	if fields, ok := params.Get(ParamFields); ok {
		for _, f := range strings.Split(fields, ",") {
			if f = strings.TrimSpace(f); f != "" {
				q.Fields = append(q.Fields, f)
			}
		}
	}
	q.Sort, _ = params.Get(ParamSort)

	if raw, ok := params.Get(ParamPage); ok {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			q.Page = page
		}
	}
	if raw, ok := params.Get(ParamLimit); ok {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			q.Limit = limit
		}
	}
	if maxPerPage > 0 && q.Limit > maxPerPage {
		q.Limit = maxPerPage
	}
	return q
}

// Offset is the number of rows before the requested page. ok is false when
// the page lies so far out that the offset does not fit in an int.
func (q Query) Offset() (offset int, ok bool) {
	if q.Limit <= 0 || q.Page <= 1 {
		return 0, true
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return 0, false
	}
	return (q.Page - 1) * q.Limit, true
}

func isReserved(key string) bool {
	switch key {
	case ParamFields, ParamSort, ParamPage, ParamLimit:
		return true
	}
	return false
}
