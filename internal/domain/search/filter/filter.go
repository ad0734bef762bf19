package filter

import (
	"fmt"
	"strings"
)

// MaxConditions is the maximum number of distinct facet conditions per expression.
const MaxConditions = 32

// Expression is a conjunction of facet conditions. Values inside one
// condition are alternatives.
type Expression struct {
	conditions []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(conditions []Condition) (Expression, error) {
	if len(conditions) > MaxConditions {
		return Expression{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	return Expression{conditions: conditions}, nil
}

// FromActiveFacets groups "name:value" facets by name, keeping first-seen
// order of names and values. Facets without a name or without a colon are skipped.
func FromActiveFacets(facets []string) (Expression, error) {
	var conditions []Condition
	index := make(map[string]int)
	for _, f := range facets {
		name, value, ok := strings.Cut(f, ":")
		if !ok || name == "" {
			continue
		}
		if i, seen := index[name]; seen {
			conditions[i].values = append(conditions[i].values, value)
			continue
		}
		c, err := NewMatch(name, value)
		if err != nil {
			return Expression{}, err
		}
		index[name] = len(conditions)
		conditions = append(conditions, c)
	}
	return NewExpression(conditions)
}

// Conditions returns the conditions in order.
func (e Expression) Conditions() []Condition { return e.conditions }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.conditions) == 0 }

// Queries renders one backend filter query per condition.
func (e Expression) Queries() []string {
	out := make([]string, 0, len(e.conditions))
	for _, c := range e.conditions {
		out = append(out, c.Query())
	}
	return out
}

// Condition matches a field against one or more values.
type Condition struct {
	key    string
	values []string
}

// NewMatch creates a condition matching any of values.
func NewMatch(key string, values ...string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("at least one value is required for key %q", key)
	}
	return Condition{key: key, values: values}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Values returns the accepted values.
func (c Condition) Values() []string { return c.values }

// Query renders the condition as key:"value" or key:("a" OR "b").
func (c Condition) Query() string {
	if len(c.values) == 1 {
		return c.key + ":" + quote(c.values[0])
	}
	quoted := make([]string, len(c.values))
	for i, v := range c.values {
		quoted[i] = quote(v)
	}
	return c.key + ":(" + strings.Join(quoted, " OR ") + ")"
}

var phraseEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
)

func quote(v string) string {
	return `"` + phraseEscaper.Replace(v) + `"`
}
