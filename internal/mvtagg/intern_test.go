package mvtagg

import "testing"

func TestInternKeyDedup(t *testing.T) {
	in := newInterner()
	a := in.internKey("name")
	b := in.internKey("name")
	c := in.internKey("other")
	if a != b {
		t.Errorf("internKey(\"name\") twice gave %d and %d, want equal", a, b)
	}
	if a == c {
		t.Errorf("internKey(\"name\") and internKey(\"other\") collided at %d", a)
	}
}

func TestInternValueDedupByVariant(t *testing.T) {
	in := newInterner()
	u1 := in.internValue(UintValue(5))
	u2 := in.internValue(UintValue(5))
	s1 := in.internValue(SintValue(5))
	if u1 != u2 {
		t.Errorf("UintValue(5) interned twice gave %d and %d, want equal", u1, u2)
	}
	if u1 == s1 {
		t.Errorf("UintValue(5) and SintValue(5) interned to the same id %d, want distinct", u1)
	}
}

func TestInternNumericTextRoutesIntegersThroughIntValue(t *testing.T) {
	in := newInterner()
	id := in.internNumericText(5, 5, true)
	want := in.internValue(IntValue(5))
	// internValue on an already-seen Value returns the same id, so compare
	// the frozen dictionary size instead of re-assigning one.
	if in.nextValueID != 1 {
		t.Fatalf("expected exactly one distinct value interned, got %d", in.nextValueID)
	}
	if id != want {
		t.Errorf("internNumericText(5,5,true) = %d, want %d (routed through IntValue)", id, want)
	}
}

func TestInternNumericTextKeepsNonIntegralAsDouble(t *testing.T) {
	in := newInterner()
	id := in.internNumericText(5.5, 5, false)
	vals := in.freezeValues()
	got := vals[id]
	if got.Kind != KindDouble || got.Double != 5.5 {
		t.Errorf("internNumericText(5.5, ..) = %+v, want DoubleValue(5.5)", got)
	}
}

func TestInternNumericTextPromotesDivergentIntToDouble(t *testing.T) {
	in := newInterner()
	// d and l diverge by more than FLT_EPSILON despite isInt=true: should
	// stay a double rather than silently truncate.
	id := in.internNumericText(5.0000005, 5, true)
	vals := in.freezeValues()
	got := vals[id]
	if got.Kind != KindDouble {
		t.Errorf("internNumericText with divergent d/l = %+v, want KindDouble", got)
	}
}

func TestFreezeKeysPreservesAssignedIDs(t *testing.T) {
	in := newInterner()
	idA := in.internKey("a")
	idB := in.internKey("b")
	idC := in.internKey("c")
	keys := in.freezeKeys()
	if keys[idA] != "a" || keys[idB] != "b" || keys[idC] != "c" {
		t.Errorf("freezeKeys() = %v, ids a=%d b=%d c=%d", keys, idA, idB, idC)
	}
	if in.keys != nil {
		t.Errorf("freezeKeys did not clear the lookup map")
	}
}

func TestFreezeValuesPreservesAssignedIDs(t *testing.T) {
	in := newInterner()
	idA := in.internValue(StringValue("x"))
	idB := in.internValue(BoolValue(true))
	vals := in.freezeValues()
	if vals[idA] != StringValue("x") {
		t.Errorf("freezeValues()[%d] = %+v, want StringValue(\"x\")", idA, vals[idA])
	}
	if vals[idB] != BoolValue(true) {
		t.Errorf("freezeValues()[%d] = %+v, want BoolValue(true)", idB, vals[idB])
	}
}
