package mvtagg

import "math"

// interner assigns dense sequential ids to unique keys and unique values.
// Keys and values are independent dictionaries, but all value variants
// share one id counter (nextValueID) so the frozen value list is a single
// flat sequence indexable by the ids handed out during interning — the Go
// equivalent of the source's six macro-expanded intern routines collapsed
// into one generic map keyed by the comparable Value struct.
type interner struct {
	keys      map[string]uint32
	nextKeyID uint32

	values      map[Value]uint32
	nextValueID uint32
}

func newInterner() *interner {
	return &interner{
		keys:   make(map[string]uint32),
		values: make(map[Value]uint32),
	}
}

// internKey returns the dense id for name, assigning a new one on first
// sighting.
func (n *interner) internKey(name string) uint32 {
	if id, ok := n.keys[name]; ok {
		return id
	}
	id := n.nextKeyID
	n.keys[name] = id
	n.nextKeyID++
	return id
}

// internValue returns the dense id for v, assigning a new one on first
// sighting. Variant and payload together form the map key, so 5u and 5i
// occupy different slots.
func (n *interner) internValue(v Value) uint32 {
	if id, ok := n.values[v]; ok {
		return id
	}
	id := n.nextValueID
	n.values[v] = id
	n.nextValueID++
	return id
}

// internNumericText applies the JSON numeric promotion rule: parse as both
// float64 and int64; if they diverge beyond float32 epsilon, keep it a
// double, otherwise route through the integer rule (IntValue).
func (n *interner) internNumericText(d float64, l int64, isInt bool) uint32 {
	if !isInt || math.Abs(d-float64(l)) > float64(epsilonF32) {
		return n.internValue(DoubleValue(d))
	}
	return n.internValue(IntValue(l))
}

const epsilonF32 = 1.1920929e-7 // FLT_EPSILON

// freezeKeys scatters the key dictionary into a slice indexed by id and
// clears the lookup map (the interner must not be used again afterward).
func (n *interner) freezeKeys() []string {
	out := make([]string, len(n.keys))
	for k, id := range n.keys {
		out[id] = k
	}
	n.keys = nil
	return out
}

// freezeValues scatters the value dictionary into a slice indexed by id.
func (n *interner) freezeValues() []Value {
	out := make([]Value, len(n.values))
	for v, id := range n.values {
		out[id] = v
	}
	n.values = nil
	return out
}
