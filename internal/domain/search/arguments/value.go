package arguments

import (
	"strconv"
	"strings"
)

// Kind is the tag of a tree value.
type Kind uint8

// Value kinds. Invalid is the zero value and means "absent".
const (
	Invalid Kind = iota
	String
	Int
	Float
	Bool
	List
	Map
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case List:
		return "list"
	case Map:
		return "map"
	default:
		return "invalid"
	}
}

// Value is a single node of an argument tree: a scalar, an ordered list or a nested Tree.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	list []Value
	tree Tree
}

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: String, s: s} }

// IntValue wraps an integer.
func IntValue(n int64) Value { return Value{kind: Int, i: n} }

// FloatValue wraps a float.
func FloatValue(f float64) Value { return Value{kind: Float, f: f} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// ListValue wraps an ordered list of values.
func ListValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: List, list: items}
}

// StringsValue wraps a list of strings.
func StringsValue(items []string) Value {
	list := make([]Value, len(items))
	for i, s := range items {
		list[i] = StringValue(s)
	}
	return Value{kind: List, list: list}
}

// MapValue wraps a nested tree. A nil tree becomes an empty one.
func MapValue(t Tree) Value {
	if t == nil {
		t = Tree{}
	}
	return Value{kind: Map, tree: t}
}

// Kind returns the value tag.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether the value holds anything.
func (v Value) IsValid() bool { return v.kind != Invalid }

// AsString renders scalars as text. Lists, maps and invalid values report false.
func (v Value) AsString() (string, bool) {
	switch v.kind {
	case String:
		return v.s, true
	case Int:
		return strconv.FormatInt(v.i, 10), true
	case Float:
		return strconv.FormatFloat(v.f, 'f', -1, 64), true
	case Bool:
		return strconv.FormatBool(v.b), true
	default:
		return "", false
	}
}

// AsInt converts ints, integral floats and numeric strings.
func (v Value) AsInt() (int, bool) {
	switch v.kind {
	case Int:
		return int(v.i), true
	case Float:
		if v.f != float64(int64(v.f)) {
			return 0, false
		}
		return int(v.f), true
	case String:
		n, err := strconv.Atoi(strings.TrimSpace(v.s))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// AsList returns the list payload. The slice is shared with the tree.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != List {
		return nil, false
	}
	return v.list, true
}

// AsStrings returns the scalar elements of a list as strings, skipping nested lists and maps.
// Non-list values yield nil.
func (v Value) AsStrings() []string {
	if v.kind != List {
		return nil
	}
	out := make([]string, 0, len(v.list))
	for _, item := range v.list {
		if s, ok := item.AsString(); ok {
			out = append(out, s)
		}
	}
	return out
}

// AsTree returns the nested tree. The map is shared with the parent tree.
func (v Value) AsTree() (Tree, bool) {
	if v.kind != Map {
		return nil, false
	}
	return v.tree, true
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	switch v.kind {
	case List:
		list := make([]Value, len(v.list))
		for i, item := range v.list {
			list[i] = item.Clone()
		}
		return Value{kind: List, list: list}
	case Map:
		return Value{kind: Map, tree: v.tree.Clone()}
	default:
		return v
	}
}

// Equal reports deep equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Invalid:
		return true
	case String:
		return v.s == o.s
	case Int:
		return v.i == o.i
	case Float:
		return v.f == o.f
	case Bool:
		return v.b == o.b
	case List:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case Map:
		return v.tree.Equal(o.tree)
	}
	return false
}

func (v Value) String() string {
	if s, ok := v.AsString(); ok {
		return s
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return v.kind.String()
	}
	return string(b)
}
