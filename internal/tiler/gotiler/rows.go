package gotiler

import (
	"encoding/json"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/geoplat/tileagg/internal/mvtagg"
)

// geojsonColumns is the fixed two-column schema gotiler presents to
// mvtagg: the geometry itself, plus the whole properties object as one
// JSON column. Treating GeoJSON properties as a JSON column (rather than
// pre-declaring one mvtagg column per property) lets features with
// different property sets share one aggregation context without a rigid
// schema, exercising the same JSON path the DuckDB host uses for jsonb
// columns.
var geojsonColumns = []mvtagg.ColumnDesc{
	{Name: "geom", Kind: mvtagg.ColGeometry},
	{Name: "properties", Kind: mvtagg.ColJSON},
}

const (
	geojsonGeomCol  = 0
	geojsonPropsCol = 1
)

// geojsonRow adapts one *geojson.Feature (its geometry cloned and
// pre-simplified, but not clipped, see createMVT) to mvtagg.RowValues.
type geojsonRow struct {
	geom  orb.Geometry
	props geojson.Properties
}

func newGeoJSONRow(geom orb.Geometry, props geojson.Properties) *geojsonRow {
	return &geojsonRow{geom: geom, props: props}
}

func (r *geojsonRow) IsNull(i int) bool {
	switch i {
	case geojsonGeomCol:
		return r.geom == nil
	case geojsonPropsCol:
		return false
	default:
		return true
	}
}

func (r *geojsonRow) Geometry(i int) orb.Geometry { return r.geom }

func (r *geojsonRow) Bool(int) bool       { return false }
func (r *geojsonRow) Int(int) int64       { return 0 }
func (r *geojsonRow) Float32(int) float32 { return 0 }
func (r *geojsonRow) Float64(int) float64 { return 0 }
func (r *geojsonRow) Text(int) string     { return "" }
func (r *geojsonRow) Format(int) string   { return "" }

// JSON walks r.props in a stable (sorted) key order: the orb/geojson
// decoder stores Properties as a plain Go map, which does not retain the
// source document's key order, so sorting is the closest stand-in for a
// deterministic walk order.
func (r *geojsonRow) JSON(i int) ([]string, []json.RawMessage) {
	if i != geojsonPropsCol || len(r.props) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(r.props))
	for k := range r.props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	raws := make([]json.RawMessage, len(keys))
	for idx, k := range keys {
		raw, err := json.Marshal(r.props[k])
		if err != nil {
			raw = json.RawMessage("null")
		}
		raws[idx] = raw
	}
	return keys, raws
}
