package mvtagg

// CombineLayers merges b into a, concatenating dictionaries and features
// and rewriting b's tag indices by the offsets a already occupies. When
// either side is nil or has no features the other is returned (a itself,
// b itself, or a copy of b under a's name); otherwise a new Layer is built.
// Either way a and b must not be used afterward (their backing arrays
// may be aliased by the result), matching SPEC_FULL.md §4.6's transfer-of-
// ownership semantics.
func CombineLayers(a, b *Layer) *Layer {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if len(a.Features) == 0 {
		out := *b
		out.Name = a.Name
		return &out
	}
	if len(b.Features) == 0 {
		return a
	}

	keyOffset := uint32(len(a.Keys))
	valueOffset := uint32(len(a.Values))

	out := &Layer{
		Name:     a.Name,
		Extent:   a.Extent,
		Version:  a.Version,
		Keys:     append(append([]string{}, a.Keys...), b.Keys...),
		Values:   append(append([]Value{}, a.Values...), b.Values...),
		Features: make([]*Feature, 0, len(a.Features)+len(b.Features)),
	}
	out.Features = append(out.Features, a.Features...)
	for _, f := range b.Features {
		tags := make([]uint32, len(f.Tags))
		for i, t := range f.Tags {
			if i%2 == 0 {
				tags[i] = t + keyOffset
			} else {
				tags[i] = t + valueOffset
			}
		}
		out.Features = append(out.Features, &Feature{
			HasID: f.HasID, ID: f.ID, GeomType: f.GeomType,
			Tags: tags, Geometry: f.Geometry,
		})
	}
	return out
}

// CombineTiles groups layers of the two tiles by name and merges each
// matching pair; layers present in only one tile pass through unchanged.
func CombineTiles(a, b *Tile) *Tile {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	byName := make(map[string]*Layer, len(a.Layers))
	order := make([]string, 0, len(a.Layers)+len(b.Layers))
	for _, l := range a.Layers {
		byName[l.Name] = l
		order = append(order, l.Name)
	}
	for _, l := range b.Layers {
		if existing, ok := byName[l.Name]; ok {
			byName[l.Name] = CombineLayers(existing, l)
		} else {
			byName[l.Name] = l
			order = append(order, l.Name)
		}
	}

	out := &Tile{Layers: make([]*Layer, 0, len(order))}
	for _, name := range order {
		out.Layers = append(out.Layers, byName[name])
	}
	return out
}
