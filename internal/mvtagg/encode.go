package mvtagg

import (
	"fmt"

	"github.com/paulmach/orb"
)

// EncodeGeometry dispatches g (coordinates already in tile-integer space)
// to the command-stream codec, returning the packed words and the MVT
// geometry-type classification for the feature. Only the seven types MVT
// supports are valid input; anything else is a fatal encoding error, per
// SPEC_FULL.md §4.2.
func EncodeGeometry(g orb.Geometry) ([]uint32, GeomType, error) {
	var cur cursor

	switch t := g.(type) {
	case orb.Point:
		return encodePointRun(nil, []point{toPoint(t)}, &cur), GeomPoint, nil

	case orb.MultiPoint:
		pts := make([]point, len(t))
		for i, p := range t {
			pts[i] = toPoint(p)
		}
		return encodePointRun(nil, pts, &cur), GeomPoint, nil

	case orb.LineString:
		return encodeLineRun(nil, pointsOf(t), &cur), GeomLine, nil

	case orb.MultiLineString:
		var buf []uint32
		for _, ls := range t {
			buf = encodeLineRun(buf, pointsOf(ls), &cur)
		}
		return buf, GeomLine, nil

	case orb.Ring:
		return encodeRingRun(nil, pointsOf(orb.LineString(t)), &cur), GeomPolygon, nil

	case orb.Polygon:
		var buf []uint32
		for _, ring := range t {
			buf = encodeRingRun(buf, pointsOf(orb.LineString(ring)), &cur)
		}
		return buf, GeomPolygon, nil

	case orb.MultiPolygon:
		var buf []uint32
		for _, poly := range t {
			for _, ring := range poly {
				buf = encodeRingRun(buf, pointsOf(orb.LineString(ring)), &cur)
			}
		}
		return buf, GeomPolygon, nil

	default:
		return nil, GeomUnknown, fmt.Errorf("mvtagg: unsupported geometry type %T", g)
	}
}
