package params

import (
	"encoding/json"
	"testing"
)

func TestValue_ZeroIsNull(t *testing.T) {
	var v Value
	if !v.IsNull() || !v.IsEmpty() {
		t.Error("zero value should be null and empty")
	}
}

func TestMap_SetKeepsFirstPosition(t *testing.T) {
	m := NewMap().Set("b", Int(1)).Set("a", Int(2)).Set("b", Int(3))
	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Errorf("unexpected keys %v", keys)
	}
	v, _ := m.Get("b")
	if n, _ := v.AsNumber(); n != "3" {
		t.Errorf("expected last value 3, got %s", n)
	}
	m.Delete("b")
	if m.Len() != 1 {
		t.Errorf("expected 1 key after delete, got %d", m.Len())
	}
}

func TestMap_ZeroValueIsUsable(t *testing.T) {
	var m Map
	if m.Len() != 0 {
		t.Fatalf("expected empty map, got %d keys", m.Len())
	}
	m.Delete("missing")
	m.Set("fields", String("uri,name")).Set("page", Int(2))

	if got := Query(FromMap(&m)); got != "fields=uri%2Cname&page=2" {
		t.Errorf("unexpected query %q", got)
	}
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{
		"int":   7,
		"float": 2.5,
		"bool":  true,
		"str":   "s",
		"list":  []string{"x", "y"},
		"null":  nil,
		"num":   json.Number("12"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := v.AsMap()
	if !ok {
		t.Fatal("expected map")
	}
	keys := m.Keys()
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("go map keys should be sorted, got %v", keys)
		}
	}
	if got, _ := m.Get("int"); got.Scalar() != "7" {
		t.Errorf("int: got %q", got.Scalar())
	}
	if got, _ := m.Get("float"); got.Scalar() != "2.5" {
		t.Errorf("float: got %q", got.Scalar())
	}
	if got, _ := m.Get("num"); got.Type() != TypeNumber {
		t.Errorf("json.Number should be a number, got %s", got.Type())
	}
	if got, _ := m.Get("null"); !got.IsNull() {
		t.Error("nil should be null")
	}
}

func TestFromAny_Unsupported(t *testing.T) {
	if _, err := FromAny(struct{}{}); err == nil {
		t.Error("expected error for struct")
	}
}

func TestValue_JSONRoundTripKeepsOrder(t *testing.T) {
	in := `{"z":1,"a":{"y":true,"b":null},"m":["s",2.5]}`
	var v Value
	if err := json.Unmarshal([]byte(in), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != in {
		t.Errorf("expected %s, got %s", in, out)
	}
}
