package dtox

// Rule is the validation metadata a DTO exposes for one field.
// Length bounds apply to strings, Min/Max to numbers.
type Rule struct {
	Required  bool
	MinLength *int
	MaxLength *int
	Min       *float64
	Max       *float64
	Pattern   string
}

// IsZero reports whether the rule carries no constraint at all
func (r Rule) IsZero() bool {
	return !r.Required && r.MinLength == nil && r.MaxLength == nil &&
		r.Min == nil && r.Max == nil && r.Pattern == ""
}

// RuleProvider is implemented by DTOs that declare their rules explicitly
type RuleProvider interface {
	ValidationRules() map[string]Rule
}

// RulesOf returns the rules declared by dto, falling back to its struct tags
func RulesOf(dto DTO) map[string]Rule {
	if rp, ok := dto.(RuleProvider); ok {
		return rp.ValidationRules()
	}
	return TagRules(dto)
}

// TagRules extracts rules from `dto` tag options and `pattern` tags, keyed by declared name
func TagRules(src any) map[string]Rule {
	fields, ok := fieldsOf(src)
	if !ok {
		return nil
	}
	rules := make(map[string]Rule)
	for _, f := range fields {
		if f.rule.IsZero() {
			continue
		}
		rules[f.name] = f.rule
	}
	return rules
}
