package mvtagg

import (
	"bytes"
	"encoding/binary"
	"math"
)

func float32bits(f float32) uint32 { return math.Float32bits(f) }
func float64bits(f float64) uint64 { return math.Float64bits(f) }

// zigzag64 is the 64-bit counterpart of zigzag, used for the sint_value
// wire field.
func zigzag64(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func unzigzag64(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// Protobuf wire types.
const (
	wireVarint = 0
	wireI64    = 1
	wireLen    = 2
	wireI32    = 5
)

// Field numbers for the MVT schema (Vector Tile Spec v2).
const (
	tileFieldLayers = 3

	layerFieldName    = 1
	layerFieldFeature = 2
	layerFieldKeys    = 3
	layerFieldValues  = 4
	layerFieldExtent  = 5
	layerFieldVersion = 15

	featureFieldID       = 1
	featureFieldTags     = 2
	featureFieldType     = 3
	featureFieldGeometry = 4

	valueFieldString = 1
	valueFieldFloat  = 2
	valueFieldDouble = 3
	valueFieldInt    = 4
	valueFieldUint   = 5
	valueFieldSint   = 6
	valueFieldBool   = 7
)

func putTag(buf *bytes.Buffer, field int, wireType int) {
	putUvarint(buf, uint64(field)<<3|uint64(wireType))
}

func putUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func putString(buf *bytes.Buffer, field int, s string) {
	putTag(buf, field, wireLen)
	putUvarint(buf, uint64(len(s)))
	buf.WriteString(s)
}

func putVarintField(buf *bytes.Buffer, field int, v uint64) {
	putTag(buf, field, wireVarint)
	putUvarint(buf, v)
}

func putFixed32(buf *bytes.Buffer, field int, v uint32) {
	putTag(buf, field, wireI32)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func putFixed64(buf *bytes.Buffer, field int, v uint64) {
	putTag(buf, field, wireI64)
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	buf.Write(tmp[:])
}

func putPackedVarints(buf *bytes.Buffer, field int, vals []uint32) {
	if len(vals) == 0 {
		return
	}
	var payload bytes.Buffer
	for _, v := range vals {
		putUvarint(&payload, uint64(v))
	}
	putTag(buf, field, wireLen)
	putUvarint(buf, uint64(payload.Len()))
	buf.Write(payload.Bytes())
}

func putMessage(buf *bytes.Buffer, field int, msg []byte) {
	putTag(buf, field, wireLen)
	putUvarint(buf, uint64(len(msg)))
	buf.Write(msg)
}

// EncodeTile packs a Tile to MVT protobuf wire bytes.
func EncodeTile(t *Tile) []byte {
	var out bytes.Buffer
	for _, l := range t.Layers {
		putMessage(&out, tileFieldLayers, encodeLayer(l))
	}
	return out.Bytes()
}

func encodeLayer(l *Layer) []byte {
	var buf bytes.Buffer
	putVarintField(&buf, layerFieldVersion, uint64(l.Version))
	putString(&buf, layerFieldName, l.Name)
	for _, f := range l.Features {
		putMessage(&buf, layerFieldFeature, encodeFeature(f))
	}
	for _, k := range l.Keys {
		putString(&buf, layerFieldKeys, k)
	}
	for _, v := range l.Values {
		putMessage(&buf, layerFieldValues, encodeValue(v))
	}
	putVarintField(&buf, layerFieldExtent, uint64(l.Extent))
	return buf.Bytes()
}

func encodeFeature(f *Feature) []byte {
	var buf bytes.Buffer
	if f.HasID {
		putVarintField(&buf, featureFieldID, f.ID)
	}
	putPackedVarints(&buf, featureFieldTags, f.Tags)
	putVarintField(&buf, featureFieldType, uint64(f.GeomType))
	putPackedVarints(&buf, featureFieldGeometry, f.Geometry)
	return buf.Bytes()
}

func encodeValue(v Value) []byte {
	var buf bytes.Buffer
	switch v.Kind {
	case KindString:
		putString(&buf, valueFieldString, v.Str)
	case KindFloat:
		putFixed32(&buf, valueFieldFloat, float32bits(v.Float))
	case KindDouble:
		putFixed64(&buf, valueFieldDouble, float64bits(v.Double))
	case KindUint:
		putVarintField(&buf, valueFieldUint, v.Uint)
	case KindSint:
		putTag(&buf, valueFieldSint, wireVarint)
		putUvarint(&buf, uint64(zigzag64(v.Sint)))
	case KindBool:
		b := uint64(0)
		if v.Bool {
			b = 1
		}
		putVarintField(&buf, valueFieldBool, b)
	}
	return buf.Bytes()
}
