package arguments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Tree is a nested mapping of argument names to values.
type Tree map[string]Value

// Clone returns a deep copy sharing no lists or maps with t.
func (t Tree) Clone() Tree {
	if t == nil {
		return Tree{}
	}
	out := make(Tree, len(t))
	for k, v := range t {
		out[k] = v.Clone()
	}
	return out
}

// Equal reports deep equality. A nil tree equals an empty one.
func (t Tree) Equal(o Tree) bool {
	if len(t) != len(o) {
		return false
	}
	for k, v := range t {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the tree as a JSON object. Invalid values are omitted.
func (t Tree) MarshalJSON() ([]byte, error) {
	plain := make(map[string]json.RawMessage, len(t))
	for k, v := range t {
		if !v.IsValid() {
			continue
		}
		b, err := v.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", k, err)
		}
		plain[k] = b
	}
	return json.Marshal(plain)
}

// UnmarshalJSON decodes a JSON object. Integral numbers become Int, other
// numbers Float; null members are dropped.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	if !v.IsValid() {
		*t = Tree{}
		return nil
	}
	tree, ok := v.AsTree()
	if !ok {
		return fmt.Errorf("arguments must be a JSON object, got %s", v.Kind())
	}
	*t = tree
	return nil
}

// MarshalJSON encodes the value as plain JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case String:
		return json.Marshal(v.s)
	case Int:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case Float:
		return json.Marshal(v.f)
	case Bool:
		return json.Marshal(v.b)
	case List:
		if len(v.list) == 0 {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case Map:
		return v.tree.MarshalJSON()
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes any JSON document into a value.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}

	val, err := fromPlain(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// FromPlain converts decoded JSON/YAML-style data (maps, slices, scalars) into a Tree.
func FromPlain(m map[string]any) (Tree, error) {
	v, err := fromPlain(m)
	if err != nil {
		return nil, err
	}
	t, _ := v.AsTree()
	return t, nil
}

func fromPlain(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Value{}, nil
	case string:
		return StringValue(x), nil
	case bool:
		return BoolValue(x), nil
	case int:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case float64:
		if x == float64(int64(x)) {
			return IntValue(int64(x)), nil
		}
		return FloatValue(x), nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return IntValue(n), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", x, err)
		}
		return FloatValue(f), nil
	case []string:
		return StringsValue(x), nil
	case []any:
		list := make([]Value, 0, len(x))
		for i, item := range x {
			iv, err := fromPlain(item)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			if iv.IsValid() {
				list = append(list, iv)
			}
		}
		return ListValue(list...), nil
	case map[string]any:
		tree := make(Tree, len(x))
		for k, item := range x {
			iv, err := fromPlain(item)
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			if iv.IsValid() {
				tree[k] = iv
			}
		}
		return MapValue(tree), nil
	default:
		return Value{}, fmt.Errorf("unsupported argument type %T", raw)
	}
}

// Plain converts t into maps, slices and scalars, the inverse of FromPlain.
// Ints become int64. Invalid values are dropped.
func (t Tree) Plain() map[string]any {
	out := make(map[string]any, len(t))
	for k, v := range t {
		if p := v.Plain(); p != nil {
			out[k] = p
		}
	}
	return out
}

// Plain converts v into a plain Go value; invalid values yield nil.
func (v Value) Plain() any {
	switch v.kind {
	case String:
		return v.s
	case Int:
		return v.i
	case Float:
		return v.f
	case Bool:
		return v.b
	case List:
		out := make([]any, 0, len(v.list))
		for _, item := range v.list {
			if p := item.Plain(); p != nil {
				out = append(out, p)
			}
		}
		return out
	case Map:
		return v.tree.Plain()
	default:
		return nil
	}
}
