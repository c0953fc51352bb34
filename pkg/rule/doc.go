// Package rule provides the data-quality rule vocabulary and its container.
//
// # Vocabulary
//
// A Rule is a name drawn from a fixed set (BaseType, NullPercent, BlankPercent,
// TrimLeft, TrimRight, Unique, SemanticType, OneOf, Pattern, Min, Max, Format)
// plus zero or more string arguments. Each kind has a constructor:
//
//	rs := rule.NewRuleSet("age")
//	rs.Add(rule.BaseTypeOf(core.TypeLong))
//	rs.Add(rule.Min("1"))
//
// # Encodings
//
// A RuleSet has two renderings. The structured form is JSON and round-trips:
//
//	{"name": "age", "rules": [{"name": "BaseType", "arguments": ["Long"]}]}
//
// The expression form is a one-line rendering in a compact constraint language:
//
//	ColumnValues "age" >= 1, ColumnValues "age" <= 99,
package rule
