package mvtagg

import (
	"encoding/binary"
	"fmt"
	"math"
)

// reader is a minimal protobuf wire-format cursor tailored to the fixed
// MVT schema — not a general protobuf library, just enough to walk tags,
// varints, and length-delimited submessages (see DESIGN.md for why no
// generated bindings are used).
type reader struct {
	buf []byte
	pos int
}

func (r *reader) done() bool { return r.pos >= len(r.buf) }

func (r *reader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.pos:])
	if n <= 0 {
		return 0, fmt.Errorf("mvtagg: malformed varint")
	}
	r.pos += n
	return v, nil
}

func (r *reader) tag() (field int, wireType int, err error) {
	v, err := r.uvarint()
	if err != nil {
		return 0, 0, err
	}
	return int(v >> 3), int(v & 0x7), nil
}

func (r *reader) skip(wireType int) error {
	switch wireType {
	case wireVarint:
		_, err := r.uvarint()
		return err
	case wireI64:
		if r.pos+8 > len(r.buf) {
			return fmt.Errorf("mvtagg: truncated fixed64")
		}
		r.pos += 8
		return nil
	case wireI32:
		if r.pos+4 > len(r.buf) {
			return fmt.Errorf("mvtagg: truncated fixed32")
		}
		r.pos += 4
		return nil
	case wireLen:
		_, err := r.bytesField()
		return err
	default:
		return fmt.Errorf("mvtagg: unknown wire type %d", wireType)
	}
}

func (r *reader) bytesField() ([]byte, error) {
	n, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	if r.pos+int(n) > len(r.buf) {
		return nil, fmt.Errorf("mvtagg: truncated length-delimited field")
	}
	out := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return out, nil
}

func (r *reader) fixed32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, fmt.Errorf("mvtagg: truncated fixed32")
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) fixed64() (uint64, error) {
	if r.pos+8 > len(r.buf) {
		return 0, fmt.Errorf("mvtagg: truncated fixed64")
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

func packedVarints(data []byte) ([]uint32, error) {
	rd := &reader{buf: data}
	var out []uint32
	for !rd.done() {
		v, err := rd.uvarint()
		if err != nil {
			return nil, err
		}
		out = append(out, uint32(v))
	}
	return out, nil
}

// DecodeTile parses MVT protobuf wire bytes into a Tile.
func DecodeTile(data []byte) (*Tile, error) {
	if len(data) == 0 {
		return &Tile{}, nil
	}
	r := &reader{buf: data}
	t := &Tile{}
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return nil, err
		}
		if field == tileFieldLayers && wt == wireLen {
			raw, err := r.bytesField()
			if err != nil {
				return nil, err
			}
			layer, err := decodeLayer(raw)
			if err != nil {
				return nil, err
			}
			t.Layers = append(t.Layers, layer)
			continue
		}
		if err := r.skip(wt); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func decodeLayer(data []byte) (*Layer, error) {
	r := &reader{buf: data}
	l := &Layer{}
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return nil, err
		}
		switch {
		case field == layerFieldVersion && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return nil, err
			}
			l.Version = uint32(v)
		case field == layerFieldName && wt == wireLen:
			raw, err := r.bytesField()
			if err != nil {
				return nil, err
			}
			l.Name = string(raw)
		case field == layerFieldExtent && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return nil, err
			}
			l.Extent = uint32(v)
		case field == layerFieldKeys && wt == wireLen:
			raw, err := r.bytesField()
			if err != nil {
				return nil, err
			}
			l.Keys = append(l.Keys, string(raw))
		case field == layerFieldValues && wt == wireLen:
			raw, err := r.bytesField()
			if err != nil {
				return nil, err
			}
			v, err := decodeValue(raw)
			if err != nil {
				return nil, err
			}
			l.Values = append(l.Values, v)
		case field == layerFieldFeature && wt == wireLen:
			raw, err := r.bytesField()
			if err != nil {
				return nil, err
			}
			f, err := decodeFeature(raw)
			if err != nil {
				return nil, err
			}
			l.Features = append(l.Features, f)
		default:
			if err := r.skip(wt); err != nil {
				return nil, err
			}
		}
	}
	return l, nil
}

func decodeFeature(data []byte) (*Feature, error) {
	r := &reader{buf: data}
	f := &Feature{}
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return nil, err
		}
		switch {
		case field == featureFieldID && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return nil, err
			}
			f.ID = v
			f.HasID = true
		case field == featureFieldType && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return nil, err
			}
			f.GeomType = GeomType(v)
		case field == featureFieldTags && wt == wireLen:
			raw, err := r.bytesField()
			if err != nil {
				return nil, err
			}
			tags, err := packedVarints(raw)
			if err != nil {
				return nil, err
			}
			f.Tags = tags
		case field == featureFieldGeometry && wt == wireLen:
			raw, err := r.bytesField()
			if err != nil {
				return nil, err
			}
			geom, err := packedVarints(raw)
			if err != nil {
				return nil, err
			}
			f.Geometry = geom
		default:
			if err := r.skip(wt); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

func decodeValue(data []byte) (Value, error) {
	r := &reader{buf: data}
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return Value{}, err
		}
		switch {
		case field == valueFieldString && wt == wireLen:
			raw, err := r.bytesField()
			if err != nil {
				return Value{}, err
			}
			return StringValue(string(raw)), nil
		case field == valueFieldFloat && wt == wireI32:
			v, err := r.fixed32()
			if err != nil {
				return Value{}, err
			}
			return FloatValue(math.Float32frombits(v)), nil
		case field == valueFieldDouble && wt == wireI64:
			v, err := r.fixed64()
			if err != nil {
				return Value{}, err
			}
			return DoubleValue(math.Float64frombits(v)), nil
		case field == valueFieldUint && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return Value{}, err
			}
			return UintValue(v), nil
		case field == valueFieldSint && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return Value{}, err
			}
			return SintValue(unzigzag64(v)), nil
		case field == valueFieldBool && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return Value{}, err
			}
			return BoolValue(v != 0), nil
		default:
			if err := r.skip(wt); err != nil {
				return Value{}, err
			}
		}
	}
	return Value{}, fmt.Errorf("mvtagg: empty Value message")
}
