package menu

import (
	"encoding/json"
	"sort"
	"strings"
)

// RestrictionSet is a set of dietary-restriction tags. The zero value is
// usable but not valid for serialization; call Normalize first.
type RestrictionSet map[Restriction]struct{}

var knownRestrictions = map[Restriction]struct{}{
	RestrictionGluten:     {},
	RestrictionLactose:    {},
	RestrictionVegan:      {},
	RestrictionVegetarian: {},
	RestrictionHalal:      {},
	RestrictionKosher:     {},
	RestrictionNut:        {},
	RestrictionNone:       {},
}

// ParseRestriction maps a string onto the closed enumeration.
func ParseRestriction(s string) (Restriction, bool) {
	r := Restriction(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := knownRestrictions[r]
	return r, ok
}

// NewRestrictionSet builds a set from the given members.
func NewRestrictionSet(members ...Restriction) RestrictionSet {
	set := make(RestrictionSet, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	return set.Normalize()
}

// Has reports whether the set contains the given member.
func (s RestrictionSet) Has(r Restriction) bool {
	_, ok := s[r]
	return ok
}

// Add inserts a member and returns the receiver for chaining.
func (s RestrictionSet) Add(r Restriction) RestrictionSet {
	s[r] = struct{}{}
	return s
}

// Normalize enforces the non-empty invariant: an empty or nil set becomes
// {NONE}. A NONE co-occurring with real tags is kept as-is; that shape is a
// data-quality signal for consumers, not an error.
func (s RestrictionSet) Normalize() RestrictionSet {
	if len(s) == 0 {
		return RestrictionSet{RestrictionNone: {}}
	}
	return s
}

// Names returns the sorted member names, defaulting to ["NONE"].
func (s RestrictionSet) Names() []string {
	out := make([]string, 0, len(s))
	for r := range s.Normalize() {
		out = append(out, string(r))
	}
	sort.Strings(out)
	return out
}

// MarshalJSON serializes the set as a sorted string array.
func (s RestrictionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

// UnmarshalJSON reads a string array, dropping unknown members. An empty or
// fully-unknown array normalizes to {NONE}.
func (s *RestrictionSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set := make(RestrictionSet, len(names))
	for _, name := range names {
		if r, ok := ParseRestriction(name); ok {
			set[r] = struct{}{}
		}
	}
	*s = set.Normalize()
	return nil
}
