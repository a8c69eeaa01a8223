package mvtagg

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/simplify"
)

// PipelineConfig carries the per-tile parameters the geometry pipeline
// needs: the tile's geographic footprint, the output coordinate range, the
// clip overflow allowance, and whether clipping trims geometry or only
// validates it.
type PipelineConfig struct {
	Bounds   orb.Bound
	Extent   uint32
	Buffer   uint32
	ClipGeom bool
}

// ToTileGeometry runs the full C3 pipeline: basic-type reduction, affine
// projection into tile space, integer grid snap, colinear simplification,
// multipoint dedup, and clip-and-validate. ok is false if the geometry
// vanished at any stage, meaning the caller should skip this row.
func ToTileGeometry(g orb.Geometry, cfg PipelineConfig) (orb.Geometry, bool) {
	g, bt, ok := reduceToBasicType(g)
	if !ok || isEmptyGeometry(g) {
		return nil, false
	}

	g = affineToTile(g, cfg.Bounds, cfg.Extent)
	g = snapToGrid(g)
	g = simplify.DouglasPeucker(0).Simplify(g)

	if mp, isMP := g.(orb.MultiPoint); isMP {
		g = dedupMultiPoint(mp)
	}
	if isEmptyGeometry(g) {
		return nil, false
	}

	g, ok = clipAndValidate(g, bt, cfg)
	if !ok || isEmptyGeometry(g) {
		return nil, false
	}
	return g, true
}

// clipRect is the buffered tile rectangle in tile-integer space.
func clipRect(cfg PipelineConfig) orb.Bound {
	buf := float64(cfg.Buffer)
	ext := float64(cfg.Extent)
	return orb.Bound{
		Min: orb.Point{-buf, -buf},
		Max: orb.Point{ext + buf, ext + buf},
	}
}

func clipAndValidate(g orb.Geometry, bt GeomType, cfg PipelineConfig) (orb.Geometry, bool) {
	rect := clipRect(cfg)

	if bt == GeomPolygon {
		// Polygon/MultiPolygon always goes through the clipper, even when
		// clip_geom is false (then against the geometry's own bound, so
		// nothing is trimmed). orb/clip only clips: it does not check or
		// repair polygon validity.
		target := rect
		if !cfg.ClipGeom {
			target = g.Bound()
		}
		clipped := clip.Geometry(target, g)
		if clipped == nil {
			return nil, false
		}
		return clipped, true
	}

	if !cfg.ClipGeom {
		return g, true
	}

	if !g.Bound().Intersects(rect) {
		return nil, false
	}
	if rect.Contains(g.Bound().Min) && rect.Contains(g.Bound().Max) {
		return g, true
	}

	clipped := clip.Geometry(rect, g)
	if clipped == nil {
		return nil, false
	}
	return snapToGrid(clipped), true
}
