package encoding

import (
	"fmt"
	"math"

	"github.com/arloliu/treepack/endian"
	"github.com/arloliu/treepack/errs"
	"github.com/arloliu/treepack/format"
)

// AppendInts packs tokens at the given dtype width, appending to dst.
// Each stored value is token - bias; the caller must have proven the
// shifted tokens fit the dtype via ChooseIntDType.
func AppendInts(dst []byte, tokens []int64, bias int64, dt format.DType, engine endian.EndianEngine) ([]byte, error) {
	switch dt {
	case format.DTypeInt8, format.DTypeUint8:
		for _, tok := range tokens {
			dst = append(dst, byte(uint8(tok-bias))) //nolint:gosec
		}
	case format.DTypeInt16, format.DTypeUint16:
		for _, tok := range tokens {
			dst = engine.AppendUint16(dst, uint16(tok-bias)) //nolint:gosec
		}
	case format.DTypeInt32, format.DTypeUint32:
		for _, tok := range tokens {
			dst = engine.AppendUint32(dst, uint32(tok-bias)) //nolint:gosec
		}
	case format.DTypeInt64, format.DTypeUint64:
		for _, tok := range tokens {
			dst = engine.AppendUint64(dst, uint64(tok-bias)) //nolint:gosec
		}
	default:
		return nil, fmt.Errorf("%w: cannot pack integers as %s", errs.ErrInvalidDType, dt)
	}

	return dst, nil
}

// UnpackInts reads count values of the given dtype from data, widening
// them back to int64 and adding the bias recorded at encode time. The
// payload length must match count exactly; a short or oversized payload
// is corruption, never silently tolerated.
func UnpackInts(data []byte, count int, bias int64, dt format.DType, engine endian.EndianEngine) ([]int64, error) {
	size := dt.Size()
	if size == 0 || !dt.IsInteger() {
		return nil, fmt.Errorf("%w: cannot unpack integers as %s", errs.ErrInvalidDType, dt)
	}
	if len(data) != count*size {
		return nil, fmt.Errorf("%w: %s payload is %d bytes, want %d", errs.ErrCorruptFormat, dt, len(data), count*size)
	}

	out := make([]int64, count)
	for i := 0; i < count; i++ {
		off := i * size
		var v int64
		switch dt {
		case format.DTypeInt8:
			v = int64(int8(data[off]))
		case format.DTypeUint8:
			v = int64(data[off])
		case format.DTypeInt16:
			v = int64(int16(engine.Uint16(data[off : off+2]))) //nolint:gosec
		case format.DTypeUint16:
			v = int64(engine.Uint16(data[off : off+2]))
		case format.DTypeInt32:
			v = int64(int32(engine.Uint32(data[off : off+4]))) //nolint:gosec
		case format.DTypeUint32:
			v = int64(engine.Uint32(data[off : off+4]))
		case format.DTypeInt64, format.DTypeUint64:
			v = int64(engine.Uint64(data[off : off+8])) //nolint:gosec
		}
		out[i] = v + bias
	}

	return out, nil
}

// AppendFloats packs values at the given float dtype, appending to dst.
// Narrowing to float32 is only legal when ChooseFloatDType proved every
// value round-trips exactly.
func AppendFloats(dst []byte, values []float64, dt format.DType, engine endian.EndianEngine) ([]byte, error) {
	switch dt {
	case format.DTypeFloat32:
		for _, v := range values {
			dst = engine.AppendUint32(dst, math.Float32bits(float32(v)))
		}
	case format.DTypeFloat64:
		for _, v := range values {
			dst = engine.AppendUint64(dst, math.Float64bits(v))
		}
	default:
		return nil, fmt.Errorf("%w: cannot pack floats as %s", errs.ErrInvalidDType, dt)
	}

	return dst, nil
}

// UnpackFloats reads count values of the given float dtype from data,
// widening them back to float64.
func UnpackFloats(data []byte, count int, dt format.DType, engine endian.EndianEngine) ([]float64, error) {
	size := dt.Size()
	if !dt.IsFloat() {
		return nil, fmt.Errorf("%w: cannot unpack floats as %s", errs.ErrInvalidDType, dt)
	}
	if len(data) != count*size {
		return nil, fmt.Errorf("%w: %s payload is %d bytes, want %d", errs.ErrCorruptFormat, dt, len(data), count*size)
	}

	out := make([]float64, count)
	for i := 0; i < count; i++ {
		off := i * size
		if dt == format.DTypeFloat32 {
			out[i] = float64(math.Float32frombits(engine.Uint32(data[off : off+4])))
		} else {
			out[i] = math.Float64frombits(engine.Uint64(data[off : off+8]))
		}
	}

	return out, nil
}
