package gotiler

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func TestGeoJSONRowIsNullOnMissingGeometry(t *testing.T) {
	r := newGeoJSONRow(nil, nil)
	if !r.IsNull(geojsonGeomCol) {
		t.Error("a row with nil geometry should report IsNull on the geometry column")
	}
	if r.IsNull(geojsonPropsCol) {
		t.Error("the properties column is never null, even with an empty property map")
	}
}

func TestGeoJSONRowGeometryPassesThrough(t *testing.T) {
	pt := orb.Point{1, 2}
	r := newGeoJSONRow(pt, nil)
	if r.IsNull(geojsonGeomCol) {
		t.Error("a row with a real geometry should not be null")
	}
	if r.Geometry(geojsonGeomCol) != orb.Geometry(pt) {
		t.Errorf("Geometry() = %v, want %v", r.Geometry(geojsonGeomCol), pt)
	}
}

func TestGeoJSONRowJSONSortsKeys(t *testing.T) {
	props := geojson.Properties{"zebra": "z", "apple": "a", "mango": 3}
	r := newGeoJSONRow(orb.Point{0, 0}, props)

	keys, raws := r.JSON(geojsonPropsCol)
	want := []string{"apple", "mango", "zebra"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}

	var mango json.Number
	idx := 1
	if err := json.Unmarshal(raws[idx], &mango); err != nil {
		t.Fatalf("unmarshal raws[%d]: %v", idx, err)
	}
	if mango.String() != "3" {
		t.Errorf("raws[%d] = %s, want 3", idx, raws[idx])
	}
}

func TestGeoJSONRowJSONEmptyPropertiesReturnsNil(t *testing.T) {
	r := newGeoJSONRow(orb.Point{0, 0}, nil)
	keys, raws := r.JSON(geojsonPropsCol)
	if keys != nil || raws != nil {
		t.Errorf("JSON() on empty properties = (%v, %v), want (nil, nil)", keys, raws)
	}
}

func TestGeoJSONRowJSONWrongColumnReturnsNil(t *testing.T) {
	r := newGeoJSONRow(orb.Point{0, 0}, geojson.Properties{"a": 1})
	keys, raws := r.JSON(geojsonGeomCol)
	if keys != nil || raws != nil {
		t.Errorf("JSON(geomCol) = (%v, %v), want (nil, nil)", keys, raws)
	}
}
