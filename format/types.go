package format

import "math"

type (
	DType           uint8
	TransformType   uint8
	CompressionType uint8
)

const (
	DTypeInvalid DType = 0x0
	DTypeInt8    DType = 0x1
	DTypeInt16   DType = 0x2
	DTypeInt32   DType = 0x3
	DTypeInt64   DType = 0x4
	DTypeUint8   DType = 0x5
	DTypeUint16  DType = 0x6
	DTypeUint32  DType = 0x7
	DTypeUint64  DType = 0x8
	DTypeFloat32 DType = 0x9
	DTypeFloat64 DType = 0xA

	TransformRaw         TransformType = 0x1 // TransformRaw stores values verbatim at fixed width.
	TransformDelta       TransformType = 0x2 // TransformDelta stores consecutive differences.
	TransformDeltaZigZag TransformType = 0x3 // TransformDeltaZigZag stores zigzag-mapped deltas with a reserved sentinel token.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// Size returns the encoded width of the dtype in bytes, or 0 for an
// invalid dtype.
func (d DType) Size() int {
	switch d {
	case DTypeInt8, DTypeUint8:
		return 1
	case DTypeInt16, DTypeUint16:
		return 2
	case DTypeInt32, DTypeUint32, DTypeFloat32:
		return 4
	case DTypeInt64, DTypeUint64, DTypeFloat64:
		return 8
	default:
		return 0
	}
}

// IsFloat reports whether the dtype is a floating-point type.
func (d DType) IsFloat() bool {
	return d == DTypeFloat32 || d == DTypeFloat64
}

// IsInteger reports whether the dtype is a fixed-width integer type.
func (d DType) IsInteger() bool {
	return d >= DTypeInt8 && d <= DTypeUint64
}

// Signed reports whether the dtype is a signed integer type.
func (d DType) Signed() bool {
	return d >= DTypeInt8 && d <= DTypeInt64
}

// MinValue returns the smallest value representable by an integer dtype.
// Float and invalid dtypes return 0.
func (d DType) MinValue() int64 {
	switch d {
	case DTypeInt8:
		return math.MinInt8
	case DTypeInt16:
		return math.MinInt16
	case DTypeInt32:
		return math.MinInt32
	case DTypeInt64:
		return math.MinInt64
	default:
		return 0
	}
}

// MaxValue returns the largest value representable by an integer dtype.
// Float and invalid dtypes return 0.
//
// Uint64 is capped at MaxInt64 because column values travel through the
// codec as int64. The tree schema never produces tokens above that.
func (d DType) MaxValue() int64 {
	switch d {
	case DTypeInt8:
		return math.MaxInt8
	case DTypeInt16:
		return math.MaxInt16
	case DTypeInt32:
		return math.MaxInt32
	case DTypeInt64:
		return math.MaxInt64
	case DTypeUint8:
		return math.MaxUint8
	case DTypeUint16:
		return math.MaxUint16
	case DTypeUint32:
		return math.MaxUint32
	case DTypeUint64:
		return math.MaxInt64
	default:
		return 0
	}
}

func (d DType) String() string {
	switch d {
	case DTypeInt8:
		return "int8"
	case DTypeInt16:
		return "int16"
	case DTypeInt32:
		return "int32"
	case DTypeInt64:
		return "int64"
	case DTypeUint8:
		return "uint8"
	case DTypeUint16:
		return "uint16"
	case DTypeUint32:
		return "uint32"
	case DTypeUint64:
		return "uint64"
	case DTypeFloat32:
		return "float32"
	case DTypeFloat64:
		return "float64"
	default:
		return "Unknown"
	}
}

func (t TransformType) String() string {
	switch t {
	case TransformRaw:
		return "Raw"
	case TransformDelta:
		return "Delta"
	case TransformDeltaZigZag:
		return "DeltaZigZag"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
