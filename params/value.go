package params

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// Type tags the variant held by a Value.
type Type int

const (
	TypeNull Type = iota
	TypeBool
	TypeNumber
	TypeString
	TypeArray
	TypeMap
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeMap:
		return "map"
	default:
		return "null"
	}
}

// Value is one node of a parameter tree. The zero Value is Null.
type Value struct {
	typ Type
	b   bool
	s   string // number literal or string contents
	arr []Value
	m   *Map
}

// Pair is a key and value used to build maps.
type Pair struct {
	Key   string
	Value Value
}

// P builds a Pair.
func P(key string, v Value) Pair { return Pair{Key: key, Value: v} }

func Null() Value { return Value{} }
func Bool(b bool) Value { return Value{typ: TypeBool, b: b} }
func String(s string) Value { return Value{typ: TypeString, s: s} }
func Int(n int64) Value { return Value{typ: TypeNumber, s: strconv.FormatInt(n, 10)} }
func Uint(n uint64) Value { return Value{typ: TypeNumber, s: strconv.FormatUint(n, 10)} }
func Float(f float64) Value { return Value{typ: TypeNumber, s: strconv.FormatFloat(f, 'f', -1, 64)} }
func Array(vs ...Value) Value { return Value{typ: TypeArray, arr: append([]Value(nil), vs...)} }

// Number wraps a numeric literal verbatim. The literal is not validated
// until it is JSON encoded.
func Number(literal string) Value { return Value{typ: TypeNumber, s: literal} }

// Object builds a Map value from pairs, in order. A repeated key keeps its
// first position and takes the last value.
func Object(pairs ...Pair) Value {
	m := NewMap()
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return Value{typ: TypeMap, m: m}
}

// FromMap wraps m as a Value. A nil map yields an empty map value.
func FromMap(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{typ: TypeMap, m: m}
}

// Type returns the variant tag.
func (v Value) Type() Type { return v.typ }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.typ == TypeNull }

// IsEmpty reports whether v carries no parameters: Null or a map without keys.
func (v Value) IsEmpty() bool {
	return v.typ == TypeNull || (v.typ == TypeMap && v.m.Len() == 0)
}

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) { return v.b, v.typ == TypeBool }

// AsString returns the string payload.
func (v Value) AsString() (string, bool) { return v.s, v.typ == TypeString }

// AsNumber returns the numeric literal.
func (v Value) AsNumber() (string, bool) { return v.s, v.typ == TypeNumber }

// AsArray returns the elements. The slice must not be modified.
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.typ == TypeArray }

// AsMap returns the map payload.
func (v Value) AsMap() (*Map, bool) { return v.m, v.typ == TypeMap }

// Scalar returns the string form of a scalar value as it appears on the wire.
func (v Value) Scalar() string {
	switch v.typ {
	case TypeBool:
		if v.b {
			return "1"
		}
		return "0"
	case TypeNumber, TypeString:
		return v.s
	default:
		return ""
	}
}

// Map is an insertion ordered string keyed map of values. The zero value
// is an empty map ready to use.
type Map struct {
	keys []string
	vals map[string]Value
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{vals: make(map[string]Value)}
}

// Set stores v under key and returns m for chaining.
func (m *Map) Set(key string, v Value) *Map {
	if m.vals == nil {
		m.vals = make(map[string]Value)
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
	return m
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.vals[key]
	return v, ok
}

// Delete removes key.
func (m *Map) Delete(key string) {
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key string, v Value) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.vals[k]) {
			return
		}
	}
}

// FromAny converts an untyped tree (as produced by encoding/json or built by
// hand) into a Value. Go maps carry no order, so their keys are sorted.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case *Map:
		return FromMap(t), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(string(t)), nil
	case fmt.Stringer:
		return String(t.String()), nil
	case []any:
		out := make([]Value, 0, len(t))
		for i, e := range t {
			v, err := FromAny(e)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			out = append(out, v)
		}
		return Value{typ: TypeArray, arr: out}, nil
	case []string:
		out := make([]Value, len(t))
		for i, s := range t {
			out[i] = String(s)
		}
		return Value{typ: TypeArray, arr: out}, nil
	case map[string]any:
		m := NewMap()
		for _, k := range sortedKeys(t) {
			v, err := FromAny(t[k])
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			m.Set(k, v)
		}
		return FromMap(m), nil
	case map[string]string:
		m := NewMap()
		for _, k := range sortedKeys(t) {
			m.Set(k, String(t[k]))
		}
		return FromMap(m), nil
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Uint(rv.Uint()), nil
	case reflect.Float32:
		return Value{typ: TypeNumber, s: strconv.FormatFloat(rv.Float(), 'f', -1, 32)}, nil
	case reflect.Float64:
		return Float(rv.Float()), nil
	}
	return Value{}, fmt.Errorf("unsupported parameter type %T", x)
}

// MustFromAny is FromAny for literals known to be valid.
func MustFromAny(x any) Value {
	v, err := FromAny(x)
	if err != nil {
		panic(err)
	}
	return v
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
