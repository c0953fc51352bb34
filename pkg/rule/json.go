package rule

import (
	"encoding/json"
	"fmt"
	"io"
)

// wireRule is the structured form of a Rule.
type wireRule struct {
	Name      string   `json:"name"`
	Arguments []string `json:"arguments,omitempty"`
}

// wireRuleSet is the structured form of a RuleSet.
type wireRuleSet struct {
	Name  string     `json:"name"`
	Rules []wireRule `json:"rules"`
}

// MarshalJSON encodes the rule as {"name": ..., "arguments": [...]}.
// The arguments key is omitted when there are none.
func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRule{Name: string(r.kind), Arguments: r.args})
}

// UnmarshalJSON decodes the structured form. Unknown rule names are rejected.
func (r *Rule) UnmarshalJSON(b []byte) error {
	var w wireRule
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	decoded, err := New(Kind(w.Name), w.Arguments...)
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}

// MarshalJSON encodes the set as {"name": ..., "rules": [...]}.
func (s *RuleSet) MarshalJSON() ([]byte, error) {
	w := wireRuleSet{Name: s.name, Rules: make([]wireRule, 0, len(s.rules))}
	for _, r := range s.rules {
		w.Rules = append(w.Rules, wireRule{Name: string(r.kind), Arguments: r.args})
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the structured form, preserving rule order.
func (s *RuleSet) UnmarshalJSON(b []byte) error {
	var w struct {
		Name  string `json:"name"`
		Rules []Rule `json:"rules"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	s.name = w.Name
	s.rules = w.Rules
	return nil
}

// EncodeJSON writes each non-empty set as a pretty-printed object, one after another.
func EncodeJSON(w io.Writer, sets []*RuleSet) error {
	for _, s := range NonEmptySets(sets) {
		b, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode rule set %q: %w", s.name, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}

// DecodeJSON reads a JSON array of rule sets.
func DecodeJSON(r io.Reader) ([]*RuleSet, error) {
	var sets []*RuleSet
	if err := json.NewDecoder(r).Decode(&sets); err != nil {
		return nil, fmt.Errorf("failed to decode rule sets: %w", err)
	}
	return sets, nil
}
