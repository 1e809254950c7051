// Package selection tracks the respondents staged for assignment to a study.
package selection

import (
	"slices"
	"strconv"
	"strings"
)

// Set is an unordered set of respondent ids. The zero value is an empty set.
type Set struct {
	ids map[int64]struct{}
}

// New returns a set holding ids.
func New(ids ...int64) *Set {
	s := &Set{}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *Set) add(id int64) {
	if s.ids == nil {
		s.ids = make(map[int64]struct{})
	}
	s.ids[id] = struct{}{}
}

// Toggle adds id if absent and removes it if present. It reports whether id
// is selected afterwards.
func (s *Set) Toggle(id int64) bool {
	if s.Contains(id) {
		delete(s.ids, id)
		return false
	}
	s.add(id)
	return true
}

// Contains reports whether id is selected.
func (s *Set) Contains(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Set) Len() int { return len(s.ids) }

// Empty reports whether nothing is selected.
func (s *Set) Empty() bool { return len(s.ids) == 0 }

// IDs returns the selected ids in ascending order.
func (s *Set) IDs() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Strings returns the selected ids formatted for a query string.
func (s *Set) Strings() []string {
	ids := s.IDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatInt(id, 10)
	}
	return out
}

// Clear empties the set.
func (s *Set) Clear() {
	clear(s.ids)
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	return New(s.IDs()...)
}

// Restore replaces the contents with ids parsed from form values. Values may
// be comma separated; entries that are not positive integers are skipped.
func (s *Set) Restore(values []string) {
	s.Clear()
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil || id <= 0 {
				continue
			}
			s.add(id)
		}
	}
}
