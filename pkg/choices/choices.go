// Package choices provides init-time enumeration tables binding machine
// values to display labels.
package choices

import "fmt"

// Choice binds a stable machine value to a human-readable label.
type Choice struct {
	Value string
	Label string
}

// C is shorthand for declaring a Choice.
func C(value, label string) Choice {
	return Choice{Value: value, Label: label}
}

// Set is an ordered, immutable enumeration of choices. Sets are built once
// at package init; declaring the same value twice in one set is a
// programming error and fails construction.
type Set struct {
	ordered []Choice
	byValue map[string]Choice
}

// New builds a Set from the given choices. It returns an error if a value
// appears more than once.
func New(items ...Choice) (*Set, error) {
	s := &Set{
		ordered: make([]Choice, 0, len(items)),
		byValue: make(map[string]Choice, len(items)),
	}
	for _, c := range items {
		if _, dup := s.byValue[c.Value]; dup {
			return nil, fmt.Errorf("choices: value %q defined repeatedly", c.Value)
		}
		s.ordered = append(s.ordered, c)
		s.byValue[c.Value] = c
	}
	return s, nil
}

// MustNew is New, panicking on duplicates. Intended for package-level set
// declarations where a duplicate must abort process start.
func MustNew(items ...Choice) *Set {
	s, err := New(items...)
	if err != nil {
		panic(err)
	}
	return s
}

// Extend builds a derived Set: own entries keep declaration order and come
// first, base entries not shadowed by value are appended after. Own entries
// within one Extend call must still be unique.
func Extend(base *Set, items ...Choice) (*Set, error) {
	s, err := New(items...)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return s, nil
	}
	for _, c := range base.ordered {
		if _, shadowed := s.byValue[c.Value]; shadowed {
			continue
		}
		s.ordered = append(s.ordered, c)
		s.byValue[c.Value] = c
	}
	return s, nil
}

// MustExtend is Extend, panicking on duplicates.
func MustExtend(base *Set, items ...Choice) *Set {
	s, err := Extend(base, items...)
	if err != nil {
		panic(err)
	}
	return s
}

// Choices returns the ordered (value, label) pairs.
func (s *Set) Choices() []Choice {
	out := make([]Choice, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Values returns the ordered machine values.
func (s *Set) Values() []string {
	out := make([]string, 0, len(s.ordered))
	for _, c := range s.ordered {
		out = append(out, c.Value)
	}
	return out
}

// Contains reports whether value belongs to the set.
func (s *Set) Contains(value string) bool {
	_, ok := s.byValue[value]
	return ok
}

// LabelOf returns the label attached to value, or "" when the value is not
// part of the set.
func (s *Set) LabelOf(value string) string {
	return s.byValue[value].Label
}

// Len returns the number of choices in the set.
func (s *Set) Len() int {
	return len(s.ordered)
}
