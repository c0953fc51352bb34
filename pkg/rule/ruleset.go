package rule

import "slices"

// RuleSet is the ordered collection of rules derived for one column.
//
// A RuleSet is populated by Add while it is being derived and is treated as
// frozen afterwards; it is then safe to share between goroutines for reading.
// Order matters for rendering only.
type RuleSet struct {
	name  string
	rules []Rule
}

// NewRuleSet creates an empty rule set for the named column.
func NewRuleSet(name string) *RuleSet {
	return &RuleSet{name: name}
}

// Name returns the originating column name.
func (s *RuleSet) Name() string { return s.name }

// Add appends a rule.
func (s *RuleSet) Add(r Rule) {
	s.rules = append(s.rules, r)
}

// Rules returns a copy of the rules in order.
func (s *RuleSet) Rules() []Rule { return slices.Clone(s.rules) }

// Len returns the number of rules.
func (s *RuleSet) Len() int { return len(s.rules) }

// At returns the i'th rule.
func (s *RuleSet) At(i int) Rule { return s.rules[i] }

// NonEmpty reports whether the set holds at least one rule.
// A set with only a BaseType rule is non-empty.
func (s *RuleSet) NonEmpty() bool { return len(s.rules) != 0 }

// Find returns the first rule of the given kind.
func (s *RuleSet) Find(kind Kind) (Rule, bool) {
	for _, r := range s.rules {
		if r.kind == kind {
			return r, true
		}
	}
	return Rule{}, false
}

// Has reports whether the set contains a rule of the given kind.
func (s *RuleSet) Has(kind Kind) bool {
	_, ok := s.Find(kind)
	return ok
}

// Equal reports whether two sets have the same name and rule sequence.
func (s *RuleSet) Equal(o *RuleSet) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.name == o.name && slices.EqualFunc(s.rules, o.rules, Rule.Equal)
}

// NonEmptySets filters out sets without rules, preserving order.
func NonEmptySets(sets []*RuleSet) []*RuleSet {
	out := make([]*RuleSet, 0, len(sets))
	for _, s := range sets {
		if s != nil && s.NonEmpty() {
			out = append(out, s)
		}
	}
	return out
}
