package mvtagg

import (
	"testing"

	"github.com/paulmach/orb"
)

func tileCfg() PipelineConfig {
	return PipelineConfig{
		Bounds:   orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{4096, 4096}},
		Extent:   4096,
		Buffer:   64,
		ClipGeom: true,
	}
}

func TestToTileGeometrySinglePoint(t *testing.T) {
	g, ok := ToTileGeometry(orb.Point{2048, 2048}, tileCfg())
	if !ok {
		t.Fatal("ToTileGeometry rejected a point inside the tile")
	}
	p, isPoint := g.(orb.Point)
	if !isPoint {
		t.Fatalf("ToTileGeometry returned %T, want orb.Point", g)
	}
	if p[0] != 2048 || p[1] != 2048 {
		t.Errorf("point = %v, want (2048, 2048) unchanged by a 1:1 affine map", p)
	}
}

func TestToTileGeometryPointOutsideBufferIsDropped(t *testing.T) {
	_, ok := ToTileGeometry(orb.Point{-1000, -1000}, tileCfg())
	if ok {
		t.Error("a point far outside the buffered tile rect should be dropped")
	}
}

func TestToTileGeometryLineCrossingBoundaryIsClipped(t *testing.T) {
	ls := orb.LineString{{-4096, 2048}, {8192, 2048}}
	g, ok := ToTileGeometry(ls, tileCfg())
	if !ok {
		t.Fatal("ToTileGeometry dropped a line crossing the tile")
	}
	switch got := g.(type) {
	case orb.LineString:
		for _, p := range got {
			if p[0] < -64 || p[0] > 4160 {
				t.Errorf("clipped line point %v exceeds the buffered rect", p)
			}
		}
	case orb.MultiLineString:
		for _, sub := range got {
			for _, p := range sub {
				if p[0] < -64 || p[0] > 4160 {
					t.Errorf("clipped line point %v exceeds the buffered rect", p)
				}
			}
		}
	default:
		t.Fatalf("ToTileGeometry returned %T, want a line geometry", g)
	}
}

func TestToTileGeometryPolygonWithHole(t *testing.T) {
	outer := orb.Ring{{0, 0}, {4096, 0}, {4096, 4096}, {0, 4096}, {0, 0}}
	hole := orb.Ring{{1024, 1024}, {1024, 3072}, {3072, 3072}, {3072, 1024}, {1024, 1024}}
	poly := orb.Polygon{outer, hole}

	g, ok := ToTileGeometry(poly, tileCfg())
	if !ok {
		t.Fatal("ToTileGeometry dropped a polygon with a hole")
	}
	got, isPoly := g.(orb.Polygon)
	if !isPoly {
		t.Fatalf("ToTileGeometry returned %T, want orb.Polygon", g)
	}
	if len(got) < 2 {
		t.Errorf("polygon lost its hole: %d rings, want at least 2", len(got))
	}
}

func TestToTileGeometryDedupsMultiPoint(t *testing.T) {
	mp := orb.MultiPoint{{100, 100}, {200, 200}, {100, 100}}
	g, ok := ToTileGeometry(mp, tileCfg())
	if !ok {
		t.Fatal("ToTileGeometry dropped a valid multipoint")
	}
	got, isMP := g.(orb.MultiPoint)
	if !isMP {
		t.Fatalf("ToTileGeometry returned %T, want orb.MultiPoint", g)
	}
	if len(got) != 2 {
		t.Errorf("deduped multipoint = %v, want 2 distinct points", got)
	}
}

func TestToTileGeometryEmptyInputRejected(t *testing.T) {
	if _, ok := ToTileGeometry(orb.MultiPoint{}, tileCfg()); ok {
		t.Error("an empty MultiPoint should never produce a tile geometry")
	}
	if _, ok := ToTileGeometry(nil, tileCfg()); ok {
		t.Error("nil geometry should never produce a tile geometry")
	}
}

func TestClipAndValidateNonClippingModeSkipsRectClip(t *testing.T) {
	cfg := tileCfg()
	cfg.ClipGeom = false
	ls := orb.LineString{{-4096, 2048}, {8192, 2048}}
	g, ok := clipAndValidate(ls, GeomLine, cfg)
	if !ok {
		t.Fatal("clipAndValidate with ClipGeom=false dropped a line")
	}
	got := g.(orb.LineString)
	if got[0][0] != -4096 || got[1][0] != 8192 {
		t.Errorf("line coordinates changed with ClipGeom=false: %v", got)
	}
}
