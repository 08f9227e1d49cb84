package logicaltype

import "strings"

// Set is a small bitset of logical types.
type Set uint8

// Of returns the set containing ts.
func Of(ts ...Type) Set {
	var s Set
	for _, t := range ts {
		s = s.Add(t)
	}
	return s
}

// Add returns s with t included.
func (s Set) Add(t Type) Set { return s | 1<<t }

// Has reports whether t is in s.
func (s Set) Has(t Type) bool { return s&(1<<t) != 0 }

// Types returns the members of s in table order.
func (s Set) Types() []Type {
	var out []Type
	for _, t := range All {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// String renders the set as "{numeric, integer}".
func (s Set) String() string {
	names := make([]string, 0, len(All))
	for _, t := range s.Types() {
		names = append(names, t.String())
	}
	return "{" + strings.Join(names, ", ") + "}"
}
