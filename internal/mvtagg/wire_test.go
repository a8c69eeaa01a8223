package mvtagg

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeTileRoundTrip(t *testing.T) {
	tile := &Tile{Layers: []*Layer{
		{
			Name:    "points",
			Extent:  4096,
			Version: layerVersion,
			Keys:    []string{"name", "count"},
			Values:  []Value{StringValue("alpha"), UintValue(3), SintValue(-7), BoolValue(true), FloatValue(1.5), DoubleValue(2.25)},
			Features: []*Feature{
				{HasID: true, ID: 42, GeomType: GeomPoint, Tags: []uint32{0, 0, 1, 1}, Geometry: []uint32{9, 10, 10}},
				{GeomType: GeomLine, Tags: []uint32{0, 2}, Geometry: []uint32{9, 4, 4, 18, 2, 2}},
			},
		},
	}}

	data := EncodeTile(tile)
	got, err := DecodeTile(data)
	if err != nil {
		t.Fatalf("DecodeTile: %v", err)
	}
	if len(got.Layers) != 1 {
		t.Fatalf("len(Layers) = %d, want 1", len(got.Layers))
	}
	l := got.Layers[0]
	want := tile.Layers[0]

	if l.Name != want.Name || l.Extent != want.Extent || l.Version != want.Version {
		t.Errorf("layer header = %+v, want name=%q extent=%d version=%d", l, want.Name, want.Extent, want.Version)
	}
	if len(l.Keys) != len(want.Keys) {
		t.Fatalf("Keys = %v, want %v", l.Keys, want.Keys)
	}
	for i := range want.Keys {
		if l.Keys[i] != want.Keys[i] {
			t.Errorf("Keys[%d] = %q, want %q", i, l.Keys[i], want.Keys[i])
		}
	}
	if len(l.Values) != len(want.Values) {
		t.Fatalf("Values = %v, want %v", l.Values, want.Values)
	}
	for i := range want.Values {
		if l.Values[i] != want.Values[i] {
			t.Errorf("Values[%d] = %+v, want %+v", i, l.Values[i], want.Values[i])
		}
	}
	if len(l.Features) != 2 {
		t.Fatalf("Features = %d, want 2", len(l.Features))
	}
	f0 := l.Features[0]
	if !f0.HasID || f0.ID != 42 || f0.GeomType != GeomPoint {
		t.Errorf("Features[0] = %+v, want HasID ID=42 GeomType=GeomPoint", f0)
	}
	for i, v := range want.Features[0].Tags {
		if f0.Tags[i] != v {
			t.Errorf("Features[0].Tags[%d] = %d, want %d", i, f0.Tags[i], v)
		}
	}
	for i, v := range want.Features[0].Geometry {
		if f0.Geometry[i] != v {
			t.Errorf("Features[0].Geometry[%d] = %d, want %d", i, f0.Geometry[i], v)
		}
	}
	f1 := l.Features[1]
	if f1.HasID {
		t.Errorf("Features[1].HasID = true, want false (no id set)")
	}
}

func TestDecodeEmptyTile(t *testing.T) {
	got, err := DecodeTile(nil)
	if err != nil {
		t.Fatalf("DecodeTile(nil): %v", err)
	}
	if len(got.Layers) != 0 {
		t.Errorf("DecodeTile(nil).Layers = %v, want empty", got.Layers)
	}
}

func TestDecodeValueAllVariants(t *testing.T) {
	cases := []Value{
		StringValue("hi"),
		FloatValue(1.25),
		DoubleValue(3.5),
		UintValue(9),
		SintValue(-9),
		BoolValue(true),
		BoolValue(false),
	}
	for _, want := range cases {
		got, err := decodeValue(encodeValue(want))
		if err != nil {
			t.Fatalf("decodeValue(encodeValue(%+v)): %v", want, err)
		}
		if got != want {
			t.Errorf("decodeValue(encodeValue(%+v)) = %+v", want, got)
		}
	}
}

func TestPackedVarintsRoundTrip(t *testing.T) {
	words := []uint32{0, 1, 127, 128, 300, 1 << 20}
	var payload bytes.Buffer
	for _, w := range words {
		putUvarint(&payload, uint64(w))
	}

	got, err := packedVarints(payload.Bytes())
	if err != nil {
		t.Fatalf("packedVarints: %v", err)
	}
	if len(got) != len(words) {
		t.Fatalf("packedVarints = %v, want %v", got, words)
	}
	for i := range words {
		if got[i] != words[i] {
			t.Errorf("packedVarints[%d] = %d, want %d", i, got[i], words[i])
		}
	}
}
