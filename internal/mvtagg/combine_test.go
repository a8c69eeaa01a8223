package mvtagg

import "testing"

func TestCombineLayersReindexesTags(t *testing.T) {
	a := &Layer{
		Name:   "roads",
		Extent: 4096,
		Keys:   []string{"k0"},
		Values: []Value{StringValue("v0")},
		Features: []*Feature{
			{GeomType: GeomLine, Tags: []uint32{0, 0}},
		},
	}
	b := &Layer{
		Name:   "roads",
		Extent: 4096,
		Keys:   []string{"k1"},
		Values: []Value{StringValue("v1")},
		Features: []*Feature{
			{GeomType: GeomLine, Tags: []uint32{0, 0}},
		},
	}

	out := CombineLayers(a, b)

	if len(out.Keys) != 2 || out.Keys[0] != "k0" || out.Keys[1] != "k1" {
		t.Fatalf("Keys = %v, want [k0 k1]", out.Keys)
	}
	if len(out.Values) != 2 {
		t.Fatalf("Values = %v, want 2 entries", out.Values)
	}
	if len(out.Features) != 2 {
		t.Fatalf("Features = %d, want 2", len(out.Features))
	}

	// a's feature tags are untouched.
	if out.Features[0].Tags[0] != 0 || out.Features[0].Tags[1] != 0 {
		t.Errorf("a's feature tags changed: %v", out.Features[0].Tags)
	}
	// b's feature tags are offset by a's dictionary sizes (1 key, 1 value).
	if out.Features[1].Tags[0] != 1 || out.Features[1].Tags[1] != 1 {
		t.Errorf("b's feature tags = %v, want [1 1]", out.Features[1].Tags)
	}
}

func TestCombineLayersEmptySides(t *testing.T) {
	if CombineLayers(nil, nil) != nil {
		t.Errorf("CombineLayers(nil, nil) should be nil")
	}
	only := &Layer{Name: "x"}
	if got := CombineLayers(only, nil); got != only {
		t.Errorf("CombineLayers(a, nil) should return a unchanged")
	}
	if got := CombineLayers(nil, only); got != only {
		t.Errorf("CombineLayers(nil, b) should return b unchanged")
	}
}

func TestCombineTilesGroupsLayersByName(t *testing.T) {
	t1 := &Tile{Layers: []*Layer{
		{Name: "roads", Keys: []string{"a"}, Values: []Value{StringValue("1")}, Features: []*Feature{{Tags: []uint32{0, 0}}}},
		{Name: "water"},
	}}
	t2 := &Tile{Layers: []*Layer{
		{Name: "roads", Keys: []string{"b"}, Values: []Value{StringValue("2")}, Features: []*Feature{{Tags: []uint32{0, 0}}}},
		{Name: "buildings"},
	}}

	out := CombineTiles(t1, t2)
	if len(out.Layers) != 3 {
		t.Fatalf("len(Layers) = %d, want 3 (roads merged, water, buildings)", len(out.Layers))
	}

	names := make(map[string]*Layer, len(out.Layers))
	for _, l := range out.Layers {
		names[l.Name] = l
	}
	roads, ok := names["roads"]
	if !ok {
		t.Fatalf("no merged \"roads\" layer in output")
	}
	if len(roads.Keys) != 2 || len(roads.Features) != 2 {
		t.Errorf("merged roads layer = %+v, want 2 keys and 2 features", roads)
	}
	if _, ok := names["water"]; !ok {
		t.Errorf("\"water\" layer missing from combined tile")
	}
	if _, ok := names["buildings"]; !ok {
		t.Errorf("\"buildings\" layer missing from combined tile")
	}
}
