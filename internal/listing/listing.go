// Package listing holds the filter and pagination state of a list view and
// derives the query parameters sent to the API from it.
package listing

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names owned by the pagination state.
const (
	ParamLimit  = "limit"
	ParamOffset = "offset"
	ParamPage   = "page"
)

// Param is one query parameter. Params keep insertion order so that the
// encoded query is stable.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of query parameters.
type Params []Param

// Get returns the value for key and whether it is present.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Values converts the params into url.Values.
func (p Params) Values() url.Values {
	v := make(url.Values, len(p))
	for _, kv := range p {
		v.Add(kv.Key, kv.Value)
	}
	return v
}

// Encode renders the params as a query string in insertion order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}

// State is the filter/pagination state machine of one list view.
//
// Filters map a known key to a scalar value; the empty string means no
// constraint. Changing any filter returns the view to the first page.
type State struct {
	keys     []string
	filters  map[string]string
	page     int
	pageSize int
	total    int
}

// New creates a state with every filter key empty and the page at zero.
func New(pageSize int, keys ...string) *State {
	if pageSize <= 0 {
		pageSize = 1
	}
	s := &State{
		keys:     append([]string(nil), keys...),
		filters:  make(map[string]string, len(keys)),
		pageSize: pageSize,
	}
	for _, k := range keys {
		s.filters[k] = ""
	}
	return s
}

// Keys returns the filter keys in declaration order.
func (s *State) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Filter returns the current value of key.
func (s *State) Filter(key string) string {
	return s.filters[key]
}

// Filters returns a copy of all filter values, including empty ones.
func (s *State) Filters() map[string]string {
	out := make(map[string]string, len(s.filters))
	for k, v := range s.filters {
		out[k] = v
	}
	return out
}

// SetFilter updates one filter and resets the page to zero. Unknown keys are
// ignored. It reports whether the resulting query differs from the previous
// one.
func (s *State) SetFilter(key, value string) bool {
	if _, ok := s.filters[key]; !ok {
		return false
	}
	value = strings.TrimSpace(value)
	changed := s.filters[key] != value || s.page != 0
	s.filters[key] = value
	s.page = 0
	return changed
}

// SetPage moves to page n clamped to [0, TotalPages()-1]. It is a no-op while
// the total is zero. It reports whether the page changed.
func (s *State) SetPage(n int) bool {
	pages := s.TotalPages()
	if pages == 0 {
		return false
	}
	if n < 0 {
		n = 0
	}
	if n > pages-1 {
		n = pages - 1
	}
	if n == s.page {
		return false
	}
	s.page = n
	return true
}

// SetTotal records the total number of rows reported by the last response.
func (s *State) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	s.total = total
}

// Page returns the zero-based current page.
func (s *State) Page() int { return s.page }

// PageSize returns the number of rows per page.
func (s *State) PageSize() int { return s.pageSize }

// Total returns the last recorded total.
func (s *State) Total() int { return s.total }

// Offset returns page * pageSize.
func (s *State) Offset() int { return s.page * s.pageSize }

// TotalPages returns ceil(total / pageSize).
func (s *State) TotalPages() int {
	pages := s.total / s.pageSize
	if s.total%s.pageSize != 0 {
		pages++
	}
	return pages
}

// HasPrev reports whether "Previous" is enabled.
func (s *State) HasPrev() bool { return s.page > 0 }

// HasNext reports whether "Next" is enabled.
func (s *State) HasNext() bool { return s.page < s.TotalPages()-1 }

// OutOfRange reports whether the current page lies past the last page, which
// happens when a page is restored from a URL before the total is known.
func (s *State) OutOfRange() bool {
	return s.page > 0 && s.page > s.TotalPages()-1
}

// Range returns the one-based numbers of the first and last rows shown on the
// current page. Both are zero when there are no rows.
func (s *State) Range() (from, to int) {
	if s.total == 0 {
		return 0, 0
	}
	from = s.Offset() + 1
	to = s.Offset() + s.pageSize
	if to > s.total {
		to = s.total
	}
	return from, to
}

// Params returns the API query: non-empty filters in key order followed by
// limit and offset.
func (s *State) Params() Params {
	params := make(Params, 0, len(s.keys)+2)
	for _, k := range s.keys {
		if v := s.filters[k]; v != "" {
			params = append(params, Param{Key: k, Value: v})
		}
	}
	params = append(params,
		Param{Key: ParamLimit, Value: strconv.Itoa(s.pageSize)},
		Param{Key: ParamOffset, Value: strconv.Itoa(s.Offset())},
	)
	return params
}

// Query returns the browser-facing query for this state: non-empty filters
// and the page number when it is not the first one.
func (s *State) Query() url.Values {
	v := url.Values{}
	for _, k := range s.keys {
		if f := s.filters[k]; f != "" {
			v.Set(k, f)
		}
	}
	if s.page > 0 {
		v.Set(ParamPage, strconv.Itoa(s.page))
	}
	return v
}

// Restore rebuilds filters and page from a browser query. Unknown keys are
// ignored and an invalid or negative page becomes zero. The page is not
// clamped to the total because the total is not known yet (see ClampPage),
// only to the largest page whose rows can still be addressed by an int offset.
func (s *State) Restore(q url.Values) {
	for _, k := range s.keys {
		s.filters[k] = strings.TrimSpace(q.Get(k))
	}
	s.page = 0
	if p, err := strconv.Atoi(q.Get(ParamPage)); err == nil && p > 0 {
		s.page = min(p, s.maxPage())
	}
}

// maxPage is the largest page for which Offset()+pageSize does not overflow.
func (s *State) maxPage() int {
	return (math.MaxInt - s.pageSize) / s.pageSize
}

// ClampPage moves a page restored past the end back into range: to the last
// page, or to the first one when there are no rows. It reports whether the
// page changed.
func (s *State) ClampPage() bool {
	if !s.OutOfRange() {
		return false
	}
	if s.TotalPages() == 0 {
		s.page = 0
		return true
	}
	return s.SetPage(s.page)
}

// Clone returns an independent copy of the state.
func (s *State) Clone() *State {
	c := &State{
		keys:     append([]string(nil), s.keys...),
		filters:  s.Filters(),
		page:     s.page,
		pageSize: s.pageSize,
		total:    s.total,
	}
	return c
}
