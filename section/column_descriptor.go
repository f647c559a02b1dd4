package section

import (
	"fmt"

	"github.com/arloliu/treepack/endian"
	"github.com/arloliu/treepack/errs"
	"github.com/arloliu/treepack/format"
)

// ColumnDescriptor is the per-column metadata record that follows the
// block header. Descriptors appear in column order; payloads follow the
// last descriptor, concatenated in the same order and sliced by the
// declared byte lengths.
//
// Layout (variable size):
//
//	0        NameLen   uint8
//	1..      Name      NameLen bytes
//	+0       DType     dtype id of the packed payload
//	+1       Transform transform id applied before packing
//	+2..+9   Bias      int64 subtracted from tokens before packing
//	+10..+13 Count     element count
//	+14..+17 ByteLen   payload length in bytes
type ColumnDescriptor struct {
	Name      string
	DType     format.DType
	Transform format.TransformType
	Bias      int64
	Count     uint32
	ByteLen   uint32
}

const columnDescriptorFixedSize = 18

// EncodedSize returns the serialized size of the descriptor in bytes.
func (d ColumnDescriptor) EncodedSize() int {
	return 1 + len(d.Name) + columnDescriptorFixedSize
}

// AppendTo serializes the descriptor, appending to dst.
func (d ColumnDescriptor) AppendTo(dst []byte, engine endian.EndianEngine) ([]byte, error) {
	if len(d.Name) == 0 || len(d.Name) > MaxColumnNameLength {
		return nil, fmt.Errorf("%w: column name length %d", errs.ErrInvalidSchema, len(d.Name))
	}

	dst = append(dst, uint8(len(d.Name)))
	dst = append(dst, d.Name...)
	dst = append(dst, uint8(d.DType), uint8(d.Transform))
	dst = engine.AppendUint64(dst, uint64(d.Bias)) //nolint:gosec
	dst = engine.AppendUint32(dst, d.Count)
	dst = engine.AppendUint32(dst, d.ByteLen)

	return dst, nil
}

// ParseColumnDescriptor parses one descriptor from the front of data,
// returning the descriptor and the number of bytes consumed. Truncated
// input yields ErrCorruptFormat.
func ParseColumnDescriptor(data []byte, engine endian.EndianEngine) (ColumnDescriptor, int, error) {
	var d ColumnDescriptor

	if len(data) < 1 {
		return d, 0, fmt.Errorf("%w: truncated column descriptor", errs.ErrCorruptFormat)
	}
	nameLen := int(data[0])
	if nameLen == 0 {
		return d, 0, fmt.Errorf("%w: empty column name", errs.ErrCorruptFormat)
	}

	need := 1 + nameLen + columnDescriptorFixedSize
	if len(data) < need {
		return d, 0, fmt.Errorf("%w: truncated column descriptor", errs.ErrCorruptFormat)
	}

	d.Name = string(data[1 : 1+nameLen])
	p := 1 + nameLen
	d.DType = format.DType(data[p])
	d.Transform = format.TransformType(data[p+1])
	d.Bias = int64(engine.Uint64(data[p+2 : p+10])) //nolint:gosec
	d.Count = engine.Uint32(data[p+10 : p+14])
	d.ByteLen = engine.Uint32(data[p+14 : p+18])

	if d.DType.Size() == 0 {
		return d, 0, fmt.Errorf("%w: column %q: unknown dtype id 0x%02x", errs.ErrCorruptFormat, d.Name, uint8(d.DType))
	}
	switch d.Transform {
	case format.TransformRaw, format.TransformDelta, format.TransformDeltaZigZag:
	default:
		return d, 0, fmt.Errorf("%w: column %q: unknown transform id 0x%02x", errs.ErrCorruptFormat, d.Name, uint8(d.Transform))
	}

	return d, need, nil
}
