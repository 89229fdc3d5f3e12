package dblist

import "sort"

// Set is an unordered collection of wiki database names.
type Set map[string]struct{}

// NewSet creates a set from the given entries.
func NewSet(entries ...string) Set {
	s := make(Set, len(entries))
	for _, e := range entries {
		s[e] = struct{}{}
	}
	return s
}

// Add inserts an entry.
func (s Set) Add(entry string) {
	s[entry] = struct{}{}
}

// Contains reports whether entry is a member.
func (s Set) Contains(entry string) bool {
	_, ok := s[entry]
	return ok
}

// Len returns the number of entries.
func (s Set) Len() int {
	return len(s)
}

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for e := range s {
		out[e] = struct{}{}
	}
	return out
}

// Union returns a new set holding the entries of both sets.
func (s Set) Union(other Set) Set {
	out := s.Clone()
	for e := range other {
		out[e] = struct{}{}
	}
	return out
}

// Difference returns a new set holding the entries of s not in other.
func (s Set) Difference(other Set) Set {
	out := make(Set, len(s))
	for e := range s {
		if _, ok := other[e]; !ok {
			out[e] = struct{}{}
		}
	}
	return out
}

// Equal reports whether both sets hold the same entries.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for e := range s {
		if _, ok := other[e]; !ok {
			return false
		}
	}
	return true
}

// Sorted returns the entries in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
