package mvtagg

import (
	"testing"

	"github.com/paulmach/orb"
)

func rowPoint(x, y float64, name string) *fakeRow {
	return &fakeRow{
		texts: map[int]string{0: name},
		geoms: map[int]orb.Geometry{1: orb.Point{x, y}},
	}
}

func pointCols() []ColumnDesc {
	return []ColumnDesc{
		{Name: "name", Kind: ColText},
		{Name: "geom", Kind: ColGeometry},
	}
}

func TestContextEndToEndSinglePoint(t *testing.T) {
	ctx, err := Init(Config{
		Name:       "places",
		Extent:     4096,
		Buffer:     64,
		ClipGeom:   true,
		Bounds:     orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{4096, 4096}},
		GeomColumn: "geom",
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	cols := pointCols()
	if err := ctx.TransFn(cols, rowPoint(1024, 1024, "alpha")); err != nil {
		t.Fatalf("TransFn: %v", err)
	}

	packed := ctx.FinalFn()
	if len(packed) == 0 {
		t.Fatal("FinalFn produced no bytes for a non-empty layer")
	}
	// Idempotent: a second call returns the same bytes.
	if again := ctx.FinalFn(); string(again) != string(packed) {
		t.Error("FinalFn is not idempotent")
	}

	tile, err := DecodeTile(packed)
	if err != nil {
		t.Fatalf("DecodeTile: %v", err)
	}
	if len(tile.Layers) != 1 {
		t.Fatalf("Layers = %d, want 1", len(tile.Layers))
	}
	l := tile.Layers[0]
	if l.Name != "places" || l.Extent != 4096 {
		t.Errorf("layer header = %+v", l)
	}
	if len(l.Features) != 1 {
		t.Fatalf("Features = %d, want 1", len(l.Features))
	}
	if len(l.Keys) != 1 || l.Keys[0] != "name" {
		t.Errorf("Keys = %v, want [name]", l.Keys)
	}
}

func TestContextFinalFnEmptyLayerYieldsEmptyBytes(t *testing.T) {
	ctx, err := Init(Config{Name: "empty", Extent: 4096})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	packed := ctx.FinalFn()
	if len(packed) != 0 {
		t.Errorf("FinalFn on an empty layer = %d bytes, want 0", len(packed))
	}
}

func TestInitRejectsZeroExtent(t *testing.T) {
	if _, err := Init(Config{Name: "x", Extent: 0}); err == nil {
		t.Error("Init with Extent=0 should fail")
	}
}

func TestCombineTwoContexts(t *testing.T) {
	bounds := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{4096, 4096}}
	cols := pointCols()

	c1, err := Init(Config{Name: "places", Extent: 4096, Buffer: 64, ClipGeom: true, Bounds: bounds, GeomColumn: "geom"})
	if err != nil {
		t.Fatalf("Init c1: %v", err)
	}
	if err := c1.TransFn(cols, rowPoint(100, 100, "a")); err != nil {
		t.Fatalf("TransFn c1: %v", err)
	}

	c2, err := Init(Config{Name: "places", Extent: 4096, Buffer: 64, ClipGeom: true, Bounds: bounds, GeomColumn: "geom"})
	if err != nil {
		t.Fatalf("Init c2: %v", err)
	}
	if err := c2.TransFn(cols, rowPoint(200, 200, "b")); err != nil {
		t.Fatalf("TransFn c2: %v", err)
	}

	merged, err := Combine(c1, c2)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	packed := Serialize(merged)
	tile, err := DecodeTile(packed)
	if err != nil {
		t.Fatalf("DecodeTile: %v", err)
	}
	if len(tile.Layers) != 1 {
		t.Fatalf("Layers = %d, want 1 (same-named layers merged)", len(tile.Layers))
	}
	if len(tile.Layers[0].Features) != 2 {
		t.Errorf("Features = %d, want 2", len(tile.Layers[0].Features))
	}
}

func TestDeserializeRoundTrip(t *testing.T) {
	bounds := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{4096, 4096}}
	c, err := Init(Config{Name: "places", Extent: 4096, Buffer: 64, ClipGeom: true, Bounds: bounds, GeomColumn: "geom"})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := c.TransFn(pointCols(), rowPoint(1024, 1024, "a")); err != nil {
		t.Fatalf("TransFn: %v", err)
	}
	packed := c.FinalFn()

	restored, err := Deserialize(packed)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if restored.layer == nil || restored.layer.Name != "places" {
		t.Errorf("Deserialize produced layer %+v, want name \"places\"", restored.layer)
	}
}
