package mvtagg

import (
	"math"

	"github.com/paulmach/orb"
)

// point is a tile-space integer coordinate pair, the form the command
// codec (C1) consumes. orb has no integer geometry type, so geometries
// carry integer-valued float64 coordinates through the pipeline and are
// only narrowed to point at encode time (encode.go).
type point struct {
	x, y int32
}

func toPoint(p orb.Point) point {
	return point{int32(math.Round(p[0])), int32(math.Round(p[1]))}
}

func pointsOf(ls orb.LineString) []point {
	out := make([]point, len(ls))
	for i, p := range ls {
		out[i] = toPoint(p)
	}
	return out
}

// basicTypeOf classifies a geometry by its dominant dimension, taking the
// maximum over any nested collection (Polygon > Line > Point).
func basicTypeOf(g orb.Geometry) GeomType {
	switch t := g.(type) {
	case orb.Point, orb.MultiPoint:
		return GeomPoint
	case orb.LineString, orb.MultiLineString:
		return GeomLine
	case orb.Polygon, orb.MultiPolygon:
		return GeomPolygon
	case orb.Ring:
		return GeomPolygon
	case orb.Collection:
		best := GeomUnknown
		for _, sub := range t {
			if bt := basicTypeOf(sub); bt > best {
				best = bt
			}
		}
		return best
	default:
		return GeomUnknown
	}
}

// reduceToBasicType drops every member of g whose dimension is not the
// dominant one and unwraps single-member collections, mirroring the
// source's lwgeom_get_basic_type/lwgeom_to_basic_type pair. Returns the
// reduced geometry and its basic type; ok is false if nothing of the
// dominant type remains.
func reduceToBasicType(g orb.Geometry) (orb.Geometry, GeomType, bool) {
	bt := basicTypeOf(g)
	if bt == GeomUnknown {
		return nil, GeomUnknown, false
	}

	coll, isColl := g.(orb.Collection)
	if !isColl {
		return g, bt, true
	}

	var kept []orb.Geometry
	for _, sub := range coll {
		if basicTypeOf(sub) == bt {
			kept = append(kept, sub)
		}
	}
	switch len(kept) {
	case 0:
		return nil, bt, false
	case 1:
		return reduceToBasicType(kept[0])
	default:
		return orb.Collection(kept), bt, true
	}
}

// isEmptyGeometry reports whether g carries no coordinates at all.
func isEmptyGeometry(g orb.Geometry) bool {
	if g == nil {
		return true
	}
	switch t := g.(type) {
	case orb.Point:
		return false
	case orb.MultiPoint:
		return len(t) == 0
	case orb.LineString:
		return len(t) == 0
	case orb.MultiLineString:
		for _, ls := range t {
			if len(ls) > 0 {
				return false
			}
		}
		return true
	case orb.Ring:
		return len(t) == 0
	case orb.Polygon:
		for _, r := range t {
			if len(r) > 0 {
				return false
			}
		}
		return true
	case orb.MultiPolygon:
		for _, p := range t {
			if !isEmptyGeometry(p) {
				return false
			}
		}
		return true
	case orb.Collection:
		for _, sub := range t {
			if !isEmptyGeometry(sub) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// affineToTile maps a world-coordinate geometry into tile space given the
// tile's geographic bounding box, per SPEC_FULL.md §4.3 step 3: fx =
// extent/width, fy = -extent/height (Y inverted so the tile origin is
// top-left).
func affineToTile(g orb.Geometry, gbox orb.Bound, extent uint32) orb.Geometry {
	width := gbox.Max[0] - gbox.Min[0]
	height := gbox.Max[1] - gbox.Min[1]
	if width == 0 || height == 0 {
		return g
	}
	fx := float64(extent) / width
	fy := -float64(extent) / height

	transform := func(p orb.Point) orb.Point {
		return orb.Point{
			fx*p[0] - fx*gbox.Min[0],
			fy*p[1] - fy*gbox.Max[1],
		}
	}
	return mapPoints(g, transform)
}

// snapToGrid rounds every coordinate to the nearest integer (1,1 grid
// resolution) and collapses consecutive duplicate points produced by the
// rounding.
func snapToGrid(g orb.Geometry) orb.Geometry {
	rounded := mapPoints(g, func(p orb.Point) orb.Point {
		return orb.Point{math.Round(p[0]), math.Round(p[1])}
	})
	return collapseConsecutiveDuplicates(rounded)
}

func mapPoints(g orb.Geometry, f func(orb.Point) orb.Point) orb.Geometry {
	switch t := g.(type) {
	case orb.Point:
		return f(t)
	case orb.MultiPoint:
		out := make(orb.MultiPoint, len(t))
		for i, p := range t {
			out[i] = f(p)
		}
		return out
	case orb.LineString:
		return mapLineString(t, f)
	case orb.MultiLineString:
		out := make(orb.MultiLineString, len(t))
		for i, ls := range t {
			out[i] = mapLineString(ls, f)
		}
		return out
	case orb.Ring:
		return orb.Ring(mapLineString(orb.LineString(t), f))
	case orb.Polygon:
		out := make(orb.Polygon, len(t))
		for i, r := range t {
			out[i] = orb.Ring(mapLineString(orb.LineString(r), f))
		}
		return out
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(t))
		for i, p := range t {
			out[i] = mapPoints(p, f).(orb.Polygon)
		}
		return out
	case orb.Collection:
		out := make(orb.Collection, len(t))
		for i, sub := range t {
			out[i] = mapPoints(sub, f)
		}
		return out
	default:
		return g
	}
}

func mapLineString(ls orb.LineString, f func(orb.Point) orb.Point) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[i] = f(p)
	}
	return out
}

func collapseConsecutiveDuplicates(g orb.Geometry) orb.Geometry {
	switch t := g.(type) {
	case orb.LineString:
		return collapseLineString(t)
	case orb.MultiLineString:
		out := make(orb.MultiLineString, 0, len(t))
		for _, ls := range t {
			out = append(out, collapseLineString(ls))
		}
		return out
	case orb.Ring:
		return orb.Ring(collapseLineString(orb.LineString(t)))
	case orb.Polygon:
		out := make(orb.Polygon, 0, len(t))
		for _, r := range t {
			out = append(out, orb.Ring(collapseLineString(orb.LineString(r))))
		}
		return out
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(t))
		for i, p := range t {
			out[i] = collapseConsecutiveDuplicates(p).(orb.Polygon)
		}
		return out
	default:
		return g
	}
}

func collapseLineString(ls orb.LineString) orb.LineString {
	if len(ls) == 0 {
		return ls
	}
	out := make(orb.LineString, 0, len(ls))
	out = append(out, ls[0])
	for _, p := range ls[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

// dedupMultiPoint removes repeated points (not just consecutive ones),
// preserving first-seen order, per SPEC_FULL.md §4.3 step 6.
func dedupMultiPoint(mp orb.MultiPoint) orb.MultiPoint {
	seen := make(map[orb.Point]bool, len(mp))
	out := make(orb.MultiPoint, 0, len(mp))
	for _, p := range mp {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
