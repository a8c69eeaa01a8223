package service

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/maptile"

	"github.com/geoplat/tileagg/internal/mvtagg"
)

// geomAlias is the column name the generated SQL aliases the geometry
// column to, so sqlRowValues can recognize it regardless of the table's
// own column naming.
const geomAlias = "__mvtagg_geom"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// VectorTileService builds MVT tiles on demand from a DuckDB table with a
// spatial GEOMETRY column, driving mvtagg.Context from database/sql rows —
// the same role ST_AsMVT plays in a PostGIS query, but performed in Go by
// this module's own aggregation core instead of delegated to SQL.
type VectorTileService struct {
	db *sql.DB
}

// NewVectorTileService creates a vector tile service over db.
func NewVectorTileService(db *sql.DB) *VectorTileService {
	return &VectorTileService{db: db}
}

// Tile runs one query against table, clipped to the z/x/y tile's bounds,
// and returns the gzip-compressed MVT bytes for it (nil, nil if the tile
// has no features).
func (s *VectorTileService) Tile(ctx context.Context, table string, z uint8, x, y uint32) ([]byte, error) {
	if s.db == nil {
		return nil, fmt.Errorf("vectortile: database not available")
	}
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("vectortile: invalid table name %q", table)
	}

	geomCol, err := s.geometryColumn(ctx, table)
	if err != nil {
		return nil, err
	}

	tile := maptile.New(x, y, maptile.Zoom(z))
	bound := tile.Bound()

	query := fmt.Sprintf(
		`SELECT * EXCLUDE (%[1]s), ST_AsWKB(%[1]s) AS %[2]s FROM %[3]s
		 WHERE ST_Intersects(%[1]s, ST_MakeEnvelope(?, ?, ?, ?))`,
		geomCol, geomAlias, table,
	)
	rows, err := s.db.QueryContext(ctx, query, bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1])
	if err != nil {
		return nil, fmt.Errorf("vectortile: query: %w", err)
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("vectortile: columns: %w", err)
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("vectortile: column types: %w", err)
	}
	cols := make([]mvtagg.ColumnDesc, len(colNames))
	for i, name := range colNames {
		kind := duckdbColumnKind(colTypes[i].DatabaseTypeName())
		if name == geomAlias {
			kind = mvtagg.ColGeometry
		}
		cols[i] = mvtagg.ColumnDesc{Name: name, Kind: kind}
	}

	aggCtx, err := mvtagg.Init(mvtagg.Config{
		Name:       table,
		Extent:     4096,
		Buffer:     64,
		ClipGeom:   true,
		Bounds:     bound,
		GeomColumn: geomAlias,
	})
	if err != nil {
		return nil, err
	}

	scanned := make([]interface{}, len(colNames))
	scanPtrs := make([]interface{}, len(colNames))
	for i := range scanned {
		scanPtrs[i] = &scanned[i]
	}

	any := false
	for rows.Next() {
		if err := rows.Scan(scanPtrs...); err != nil {
			return nil, fmt.Errorf("vectortile: scan: %w", err)
		}
		row := &sqlRowValues{cols: cols, vals: scanned}
		if err := aggCtx.TransFn(cols, row); err != nil {
			return nil, fmt.Errorf("vectortile: %w", err)
		}
		any = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vectortile: row iteration: %w", err)
	}
	if !any {
		return nil, nil
	}

	return gzipMVT(aggCtx.FinalFn())
}

// geometryColumn finds table's GEOMETRY-typed column via DuckDB's DESCRIBE.
func (s *VectorTileService) geometryColumn(ctx context.Context, table string) (string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("DESCRIBE %s", table))
	if err != nil {
		return "", fmt.Errorf("vectortile: describe %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", err
	}
	scanned := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range scanned {
		ptrs[i] = &scanned[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			continue
		}
		var name, typ string
		for i, c := range cols {
			switch strings.ToLower(c) {
			case "column_name":
				name, _ = scanned[i].(string)
			case "column_type":
				typ, _ = scanned[i].(string)
			}
		}
		if strings.EqualFold(typ, "GEOMETRY") {
			return name, nil
		}
	}
	return "", fmt.Errorf("vectortile: table %s has no GEOMETRY column", table)
}

func gzipMVT(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sqlRowValues adapts one scanned database/sql row (generic []interface{}
// values, as in internal/api/db.go's Query handler) to mvtagg.RowValues.
type sqlRowValues struct {
	cols []mvtagg.ColumnDesc
	vals []interface{}
}

func (r *sqlRowValues) IsNull(i int) bool { return r.vals[i] == nil }

func (r *sqlRowValues) Bool(i int) bool {
	b, _ := r.vals[i].(bool)
	return b
}

func (r *sqlRowValues) Int(i int) int64 {
	switch v := r.vals[i].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int16:
		return int64(v)
	case int8:
		return int64(v)
	case int:
		return int64(v)
	case uint64:
		return int64(v)
	case uint32:
		return int64(v)
	case float64:
		return int64(v)
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

func (r *sqlRowValues) Float32(i int) float32 {
	return float32(r.Float64(i))
}

func (r *sqlRowValues) Float64(i int) float64 {
	switch v := r.vals[i].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case []byte:
		f, _ := strconv.ParseFloat(string(v), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

func (r *sqlRowValues) Text(i int) string {
	switch v := r.vals[i].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return r.Format(i)
	}
}

func (r *sqlRowValues) Format(i int) string {
	if r.vals[i] == nil {
		return ""
	}
	return fmt.Sprintf("%v", r.vals[i])
}

func (r *sqlRowValues) Geometry(i int) orb.Geometry {
	raw, ok := r.vals[i].([]byte)
	if !ok {
		return nil
	}
	g, err := wkb.Unmarshal(raw)
	if err != nil {
		return nil
	}
	return g
}

func (r *sqlRowValues) JSON(i int) ([]string, []json.RawMessage) {
	var raw []byte
	switch v := r.vals[i].(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return nil, nil
	}
	keys, values, err := mvtagg.ParseJSONObject(raw)
	if err != nil {
		return nil, nil
	}
	return keys, values
}

// duckdbColumnKind maps a DuckDB DatabaseTypeName to the closest
// mvtagg.ColumnKind.
func duckdbColumnKind(duckdbType string) mvtagg.ColumnKind {
	switch strings.ToUpper(duckdbType) {
	case "BOOLEAN":
		return mvtagg.ColBool
	case "TINYINT", "SMALLINT", "UTINYINT", "USMALLINT":
		return mvtagg.ColInt16
	case "INTEGER", "UINTEGER":
		return mvtagg.ColInt32
	case "BIGINT", "UBIGINT", "HUGEINT":
		return mvtagg.ColInt64
	case "FLOAT", "REAL":
		return mvtagg.ColFloat32
	case "DOUBLE", "DECIMAL":
		return mvtagg.ColFloat64
	case "JSON":
		return mvtagg.ColJSON
	case "VARCHAR", "TEXT", "UUID", "DATE", "TIMESTAMP", "TIME":
		return mvtagg.ColText
	default:
		return mvtagg.ColOther
	}
}
