package service

import (
	"testing"

	"github.com/geoplat/tileagg/internal/mvtagg"
)

func TestDuckdbColumnKindMapsKnownTypes(t *testing.T) {
	cases := []struct {
		duckdbType string
		want       mvtagg.ColumnKind
	}{
		{"BOOLEAN", mvtagg.ColBool},
		{"TINYINT", mvtagg.ColInt16},
		{"SMALLINT", mvtagg.ColInt16},
		{"INTEGER", mvtagg.ColInt32},
		{"UINTEGER", mvtagg.ColInt32},
		{"BIGINT", mvtagg.ColInt64},
		{"HUGEINT", mvtagg.ColInt64},
		{"FLOAT", mvtagg.ColFloat32},
		{"DOUBLE", mvtagg.ColFloat64},
		{"DECIMAL", mvtagg.ColFloat64},
		{"JSON", mvtagg.ColJSON},
		{"VARCHAR", mvtagg.ColText},
		{"UUID", mvtagg.ColText},
		{"boolean", mvtagg.ColBool}, // case-insensitive
		{"BLOB", mvtagg.ColOther},   // unrecognized falls back to Other
	}
	for _, c := range cases {
		if got := duckdbColumnKind(c.duckdbType); got != c.want {
			t.Errorf("duckdbColumnKind(%q) = %v, want %v", c.duckdbType, got, c.want)
		}
	}
}

func TestSqlRowValuesIntCoercion(t *testing.T) {
	r := &sqlRowValues{vals: []interface{}{
		int64(5), int32(6), []byte("7"), "8", float64(9.9), nil,
	}}
	want := []int64{5, 6, 7, 8, 9, 0}
	for i, w := range want {
		if got := r.Int(i); got != w {
			t.Errorf("Int(%d) = %d, want %d", i, got, w)
		}
	}
	if !r.IsNull(5) {
		t.Error("IsNull(5) should be true for a nil value")
	}
}

func TestSqlRowValuesFloatCoercion(t *testing.T) {
	r := &sqlRowValues{vals: []interface{}{
		float64(1.5), float32(2.5), []byte("3.5"), "4.5",
	}}
	want := []float64{1.5, 2.5, 3.5, 4.5}
	for i, w := range want {
		if got := r.Float64(i); got != w {
			t.Errorf("Float64(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestSqlRowValuesTextAndFormat(t *testing.T) {
	r := &sqlRowValues{vals: []interface{}{"hello", []byte("world"), 42, nil}}
	if r.Text(0) != "hello" {
		t.Errorf("Text(0) = %q, want hello", r.Text(0))
	}
	if r.Text(1) != "world" {
		t.Errorf("Text(1) = %q, want world", r.Text(1))
	}
	if r.Text(2) != "42" {
		t.Errorf("Text(2) = %q, want 42 (falls through to Format)", r.Text(2))
	}
	if r.Format(3) != "" {
		t.Errorf("Format(3) = %q, want empty string for nil", r.Format(3))
	}
}

func TestSqlRowValuesGeometryInvalidBytesReturnsNil(t *testing.T) {
	r := &sqlRowValues{vals: []interface{}{[]byte("not wkb"), "also not bytes"}}
	if g := r.Geometry(0); g != nil {
		t.Errorf("Geometry(0) on malformed WKB = %v, want nil", g)
	}
	if g := r.Geometry(1); g != nil {
		t.Errorf("Geometry(1) on a non-[]byte value = %v, want nil", g)
	}
}

func TestSqlRowValuesJSONDelegatesToParseJSONObject(t *testing.T) {
	r := &sqlRowValues{vals: []interface{}{[]byte(`{"b":1,"a":2}`), "not json bytes but a string", 42}}
	keys, values := r.JSON(0)
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Errorf("JSON(0) keys = %v, want [b a] in document order", keys)
	}
	if len(values) != 2 {
		t.Fatalf("JSON(0) values = %v, want 2 entries", values)
	}

	keys2, _ := r.JSON(1)
	if keys2 != nil {
		t.Errorf("JSON(1) on a malformed-JSON string = %v, want nil", keys2)
	}

	keys3, values3 := r.JSON(2)
	if keys3 != nil || values3 != nil {
		t.Errorf("JSON(2) on a non-string/[]byte column = (%v, %v), want (nil, nil)", keys3, values3)
	}
}
