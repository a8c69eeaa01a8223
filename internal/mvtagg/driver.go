package mvtagg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/paulmach/orb"
)

// ColumnKind classifies one column of a host row, mirroring the subset of
// OIDs the source driver switches on (parse_column_keys).
type ColumnKind int

const (
	ColBool ColumnKind = iota
	ColInt16
	ColInt32
	ColInt64
	ColFloat32
	ColFloat64
	ColText
	ColJSON
	ColGeometry
	ColOther
)

// ColumnDesc describes one column of the row schema the host hands to the
// driver on its first call.
type ColumnDesc struct {
	Name string
	Kind ColumnKind
}

// RowValues exposes one row's values by column index — the host's
// tuple-access boundary (PostgreSQL Datums, a database/sql Scan, a decoded
// GeoJSON Feature's property map). Geometry deserialization is the host's
// responsibility; the driver receives an already-decoded orb.Geometry.
type RowValues interface {
	IsNull(i int) bool
	Bool(i int) bool
	Int(i int) int64
	Float32(i int) float32
	Float64(i int) float64
	Text(i int) string
	// JSON returns the raw top-level entries of a JSON object column, in
	// document order, or (nil, nil) if the column's value is not a JSON
	// object. Values are kept as json.RawMessage so the driver can apply
	// JSON-native numeric promotion instead of a pre-parsed Go value
	// losing int-vs-float distinction.
	JSON(i int) (keys []string, values []json.RawMessage)
	Geometry(i int) orb.Geometry
	// Format renders an "other"-kind column's value as text, the host's
	// type-output fallback for columns the driver has no typed accessor
	// for.
	Format(i int) string
}

// columnCache is resolved once, on the first TransFn call, and reused for
// every subsequent row (the row schema is assumed stable for the life of
// the aggregation context).
type columnCache struct {
	geomIndex int
	idIndex   int // -1 if none configured/found

	// tagIndex lists every column other than the geometry, id and JSON
	// columns, alongside its pre-interned key id.
	tagIndex []taggedColumn
	jsonCols []int
}

type taggedColumn struct {
	index int
	keyID uint32
	kind  ColumnKind
}

func buildColumnCache(cols []ColumnDesc, geomName, idName string, in *interner) (*columnCache, error) {
	cc := &columnCache{geomIndex: -1, idIndex: -1}

	for i, c := range cols {
		if c.Kind == ColGeometry && (geomName == "" || c.Name == geomName) && cc.geomIndex == -1 {
			cc.geomIndex = i
			continue
		}
	}
	if cc.geomIndex == -1 {
		return nil, ErrNoGeometryColumn
	}

	if idName != "" {
		for i, c := range cols {
			if c.Name != idName || i == cc.geomIndex {
				continue
			}
			switch c.Kind {
			case ColInt16, ColInt32, ColInt64:
				cc.idIndex = i
			}
		}
		if cc.idIndex == -1 {
			return nil, fmt.Errorf("mvtagg: id column %q not found or not an integer type", idName)
		}
	}

	for i, c := range cols {
		if i == cc.geomIndex || i == cc.idIndex {
			continue
		}
		if c.Kind == ColJSON {
			cc.jsonCols = append(cc.jsonCols, i)
			continue
		}
		cc.tagIndex = append(cc.tagIndex, taggedColumn{
			index: i,
			keyID: in.internKey(c.Name),
			kind:  c.Kind,
		})
	}
	return cc, nil
}

// buildFeature runs one row through C5's per-row steps: geometry
// extraction/pipeline/encode, then attribute interning into tags. ok is
// false when the row produced no feature (null geometry, or geometry
// vanished during the pipeline).
func buildFeature(cc *columnCache, vals RowValues, in *interner, pcfg PipelineConfig) (*Feature, bool, error) {
	if vals.IsNull(cc.geomIndex) {
		return nil, false, nil
	}

	g := vals.Geometry(cc.geomIndex)
	g, ok := ToTileGeometry(g, pcfg)
	if !ok {
		return nil, false, nil
	}
	words, gtype, err := EncodeGeometry(g)
	if err != nil {
		return nil, false, err
	}

	f := &Feature{GeomType: gtype, Geometry: words, Tags: make([]uint32, 0, initialTagCap)}

	if cc.idIndex != -1 && !vals.IsNull(cc.idIndex) {
		if id := vals.Int(cc.idIndex); id >= 0 {
			f.HasID = true
			f.ID = uint64(id)
		}
	}

	for _, tc := range cc.tagIndex {
		if vals.IsNull(tc.index) {
			continue
		}
		vid, ok := internColumnValue(tc.kind, tc.index, vals, in)
		if !ok {
			continue
		}
		f.Tags = append(f.Tags, tc.keyID, vid)
	}

	for _, ci := range cc.jsonCols {
		keys, raws := vals.JSON(ci)
		for i, k := range keys {
			vid, ok := internJSONValue(raws[i], in)
			if !ok {
				continue
			}
			f.Tags = append(f.Tags, in.internKey(k), vid)
		}
	}

	return f, true, nil
}

func internColumnValue(kind ColumnKind, i int, vals RowValues, in *interner) (uint32, bool) {
	switch kind {
	case ColBool:
		return in.internValue(BoolValue(vals.Bool(i))), true
	case ColInt16, ColInt32, ColInt64:
		return in.internValue(IntValue(vals.Int(i))), true
	case ColFloat32:
		return in.internValue(FloatValue(vals.Float32(i))), true
	case ColFloat64:
		return in.internValue(DoubleValue(vals.Float64(i))), true
	case ColText:
		return in.internValue(StringValue(vals.Text(i))), true
	case ColOther:
		return in.internValue(StringValue(vals.Format(i))), true
	default:
		return 0, false
	}
}

func internJSONValue(raw json.RawMessage, in *interner) (uint32, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	switch t := v.(type) {
	case nil:
		return 0, false
	case bool:
		return in.internValue(BoolValue(t)), true
	case string:
		return in.internValue(StringValue(t)), true
	case json.Number:
		d, err := t.Float64()
		if err != nil {
			return 0, false
		}
		l, lerr := strconv.ParseInt(t.String(), 10, 64)
		return in.internNumericText(d, l, lerr == nil), true
	default:
		// nested array/object: ignored per SPEC_FULL.md §4.5.
		return 0, false
	}
}

// ParseJSONObject decodes a JSON object's raw bytes preserving key order,
// for hosts (such as a database JSON column) whose RowValues.JSON
// implementation only has the object's serialized text form to work from.
// Returns (nil, nil, nil) if data is not a JSON object.
func ParseJSONObject(data []byte) ([]string, []json.RawMessage, error) {
	return orderedJSONEntries(bytes.NewReader(data))
}

// orderedJSONEntries decodes a JSON object's raw bytes preserving key
// order, for hosts that only have the object's serialized form.
func orderedJSONEntries(r io.Reader) ([]string, []json.RawMessage, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return nil, nil, nil
	}

	var keys []string
	var raws []json.RawMessage
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		raws = append(raws, raw)
	}
	return keys, raws, nil
}
