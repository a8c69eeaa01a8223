package mvtagg

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestBasicTypeOf(t *testing.T) {
	cases := []struct {
		name string
		g    orb.Geometry
		want GeomType
	}{
		{"point", orb.Point{0, 0}, GeomPoint},
		{"multipoint", orb.MultiPoint{{0, 0}}, GeomPoint},
		{"linestring", orb.LineString{{0, 0}, {1, 1}}, GeomLine},
		{"polygon", orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, GeomPolygon},
		{"collection dominant polygon", orb.Collection{
			orb.Point{0, 0},
			orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
		}, GeomPolygon},
	}
	for _, c := range cases {
		if got := basicTypeOf(c.g); got != c.want {
			t.Errorf("%s: basicTypeOf = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestReduceToBasicTypeDropsMinorityMembers(t *testing.T) {
	coll := orb.Collection{
		orb.Point{0, 0},
		orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
		orb.Polygon{{{5, 5}, {6, 5}, {6, 6}, {5, 5}}},
	}
	g, bt, ok := reduceToBasicType(coll)
	if !ok {
		t.Fatal("reduceToBasicType returned ok=false")
	}
	if bt != GeomPolygon {
		t.Errorf("basic type = %v, want GeomPolygon", bt)
	}
	polys, ok := g.(orb.Collection)
	if !ok || len(polys) != 2 {
		t.Errorf("reduced geometry = %+v, want a 2-member collection of polygons", g)
	}
}

func TestReduceToBasicTypeUnwrapsSingleMember(t *testing.T) {
	coll := orb.Collection{
		orb.Point{1, 1},
		orb.LineString{{0, 0}, {1, 1}},
	}
	g, bt, ok := reduceToBasicType(coll)
	if !ok {
		t.Fatal("reduceToBasicType returned ok=false")
	}
	if bt != GeomLine {
		t.Errorf("basic type = %v, want GeomLine", bt)
	}
	if _, isLS := g.(orb.LineString); !isLS {
		t.Errorf("reduced geometry = %T, want orb.LineString (unwrapped)", g)
	}
}

func TestIsEmptyGeometry(t *testing.T) {
	if isEmptyGeometry(orb.Point{0, 0}) {
		t.Error("a Point should never be considered empty")
	}
	if !isEmptyGeometry(orb.MultiPoint{}) {
		t.Error("empty MultiPoint should be empty")
	}
	if !isEmptyGeometry(orb.Polygon{}) {
		t.Error("Polygon with no rings should be empty")
	}
	if isEmptyGeometry(orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}) {
		t.Error("Polygon with a ring should not be empty")
	}
	if !isEmptyGeometry(nil) {
		t.Error("nil geometry should be empty")
	}
}

func TestAffineToTileMapsBoundsToExtent(t *testing.T) {
	bound := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}
	g := affineToTile(orb.Point{0, 0}, bound, 4096)
	p := g.(orb.Point)
	if p[0] != 0 || p[1] != 4096 {
		t.Errorf("affineToTile bottom-left corner = %v, want (0, 4096) (Y flipped to top-left origin)", p)
	}

	g2 := affineToTile(orb.Point{10, 10}, bound, 4096)
	p2 := g2.(orb.Point)
	if p2[0] != 4096 || p2[1] != 0 {
		t.Errorf("affineToTile top-right corner = %v, want (4096, 0)", p2)
	}
}

func TestSnapToGridCollapsesDuplicates(t *testing.T) {
	ls := orb.LineString{{0.1, 0.1}, {0.4, 0.4}, {1, 1}}
	got := snapToGrid(ls).(orb.LineString)
	// First two points both round to (0,0), so snap+collapse should merge them.
	if len(got) != 2 {
		t.Fatalf("snapToGrid(%v) = %v, want 2 points after collapsing duplicates", ls, got)
	}
	if got[0] != (orb.Point{0, 0}) || got[1] != (orb.Point{1, 1}) {
		t.Errorf("snapToGrid(%v) = %v, want [(0,0) (1,1)]", ls, got)
	}
}

func TestDedupMultiPointRemovesNonConsecutiveDuplicates(t *testing.T) {
	mp := orb.MultiPoint{{0, 0}, {1, 1}, {0, 0}, {2, 2}, {1, 1}}
	got := dedupMultiPoint(mp)
	want := orb.MultiPoint{{0, 0}, {1, 1}, {2, 2}}
	if len(got) != len(want) {
		t.Fatalf("dedupMultiPoint(%v) = %v, want %v", mp, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dedupMultiPoint(%v)[%d] = %v, want %v", mp, i, got[i], want[i])
		}
	}
}

func TestCollapseLineStringKeepsNonConsecutiveDuplicates(t *testing.T) {
	ls := orb.LineString{{0, 0}, {0, 0}, {1, 1}, {0, 0}}
	got := collapseLineString(ls)
	want := orb.LineString{{0, 0}, {1, 1}, {0, 0}}
	if len(got) != len(want) {
		t.Fatalf("collapseLineString(%v) = %v, want %v", ls, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("collapseLineString(%v)[%d] = %v, want %v", ls, i, got[i], want[i])
		}
	}
}
