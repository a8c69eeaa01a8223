package mvtagg

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Config carries the fixed parameters an aggregation is initialized with:
// layer identity/extent, the tile's geographic footprint, and the optional
// named geometry/id columns (empty string selects the driver's default
// resolution rule — see driver.go).
type Config struct {
	Name       string
	Extent     uint32
	Buffer     uint32
	ClipGeom   bool
	Bounds     orb.Bound
	GeomColumn string
	IDColumn   string
}

// Context is one in-progress tile aggregation: a layer under construction,
// its interner, and the lazily-resolved column cache. It is not safe for
// concurrent use — callers create one Context per tile/query, matching the
// source's one-aggregation-context-per-query model (SPEC_FULL.md §5).
type Context struct {
	cfg   Config
	pcfg  PipelineConfig
	in    *interner
	layer *Layer
	cache *columnCache

	packed []byte // cached FinalFn output, for idempotent re-calls
	tile   *Tile  // set by FinalFn, Deserialize and Combine
}

// Init starts a new aggregation context. extent must be positive.
func Init(cfg Config) (*Context, error) {
	if cfg.Extent == 0 {
		return nil, fmt.Errorf("mvtagg: extent must be positive")
	}
	return &Context{
		cfg: cfg,
		pcfg: PipelineConfig{
			Bounds:   cfg.Bounds,
			Extent:   cfg.Extent,
			Buffer:   cfg.Buffer,
			ClipGeom: cfg.ClipGeom,
		},
		in: newInterner(),
		layer: &Layer{
			Name:     cfg.Name,
			Extent:   cfg.Extent,
			Version:  layerVersion,
			Features: make([]*Feature, 0, initialFeatureCap),
		},
	}, nil
}

// TransFn processes one row. cols is used only on the first call to
// resolve the column cache; subsequent calls assume the same schema.
func (c *Context) TransFn(cols []ColumnDesc, vals RowValues) error {
	if c.cache == nil {
		cache, err := buildColumnCache(cols, c.cfg.GeomColumn, c.cfg.IDColumn, c.in)
		if err != nil {
			return err
		}
		c.cache = cache
	}

	f, ok, err := buildFeature(c.cache, vals, c.in, c.pcfg)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	c.layer.Features = append(c.layer.Features, f)
	return nil
}

// FinalFn freezes the interner's dictionaries onto the layer and packs the
// tile to MVT wire bytes. Idempotent: later calls return the same bytes
// without re-freezing.
func (c *Context) FinalFn() []byte {
	if c.packed != nil {
		return c.packed
	}
	if len(c.layer.Features) == 0 {
		c.packed = []byte{}
		return c.packed
	}
	if c.in != nil {
		c.layer.Keys = c.in.freezeKeys()
		c.layer.Values = c.in.freezeValues()
	}
	c.tile = &Tile{Layers: []*Layer{c.layer}}
	c.packed = EncodeTile(c.tile)
	return c.packed
}

// Serialize returns the packed tile bytes, calling FinalFn if needed.
func Serialize(c *Context) []byte {
	if c == nil {
		return nil
	}
	return c.FinalFn()
}

// Deserialize parses a packed tile into a read-only Context suitable for
// Combine. Its dictionaries are already frozen; TransFn must not be called
// on the result.
func Deserialize(data []byte) (*Context, error) {
	tile, err := DecodeTile(data)
	if err != nil {
		return nil, err
	}
	c := &Context{packed: data, tile: tile}
	if len(tile.Layers) > 0 {
		c.layer = tile.Layers[0]
	}
	return c, nil
}

// Combine merges two finalized contexts' tiles per SPEC_FULL.md §4.6. The
// inputs must not be used afterward. Either may be nil, in which case the
// other is returned unchanged.
func Combine(c1, c2 *Context) (*Context, error) {
	if c1 == nil {
		return c2, nil
	}
	if c2 == nil {
		return c1, nil
	}
	t1, err := tileOf(c1)
	if err != nil {
		return nil, err
	}
	t2, err := tileOf(c2)
	if err != nil {
		return nil, err
	}
	merged := CombineTiles(t1, t2)
	return &Context{tile: merged, packed: EncodeTile(merged)}, nil
}

func tileOf(c *Context) (*Tile, error) {
	if c.tile != nil {
		return c.tile, nil
	}
	if c.layer == nil {
		return nil, fmt.Errorf("mvtagg: combine: context has no tile")
	}
	c.FinalFn()
	if c.tile == nil {
		return &Tile{}, nil
	}
	return c.tile, nil
}
