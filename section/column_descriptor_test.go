package section

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/treepack/endian"
	"github.com/arloliu/treepack/errs"
	"github.com/arloliu/treepack/format"
)

func TestColumnDescriptor_RoundTrip(t *testing.T) {
	engines := map[string]endian.EndianEngine{
		"little-endian": endian.GetLittleEndianEngine(),
		"big-endian":    endian.GetBigEndianEngine(),
	}

	original := ColumnDescriptor{
		Name:      "left_child",
		DType:     format.DTypeUint8,
		Transform: format.TransformDeltaZigZag,
		Bias:      -2,
		Count:     31,
		ByteLen:   31,
	}

	for name, engine := range engines {
		t.Run(name, func(t *testing.T) {
			data, err := original.AppendTo(nil, engine)
			require.NoError(t, err)
			require.Len(t, data, original.EncodedSize())

			parsed, consumed, err := ParseColumnDescriptor(data, engine)
			require.NoError(t, err)
			require.Equal(t, original, parsed)
			require.Equal(t, len(data), consumed)
		})
	}
}

func TestColumnDescriptor_AppendTo_InvalidName(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	t.Run("empty name", func(t *testing.T) {
		d := ColumnDescriptor{DType: format.DTypeUint8, Transform: format.TransformRaw}
		_, err := d.AppendTo(nil, engine)

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrInvalidSchema)
	})

	t.Run("overlong name", func(t *testing.T) {
		d := ColumnDescriptor{
			Name:      strings.Repeat("x", MaxColumnNameLength+1),
			DType:     format.DTypeUint8,
			Transform: format.TransformRaw,
		}
		_, err := d.AppendTo(nil, engine)

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrInvalidSchema)
	})
}

func TestParseColumnDescriptor_Corrupt(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	valid, err := ColumnDescriptor{
		Name:      "feature",
		DType:     format.DTypeUint16,
		Transform: format.TransformRaw,
		Count:     10,
		ByteLen:   20,
	}.AppendTo(nil, engine)
	require.NoError(t, err)

	t.Run("truncated", func(t *testing.T) {
		for _, n := range []int{0, 1, 5, len(valid) - 1} {
			_, _, err := ParseColumnDescriptor(valid[:n], engine)
			require.Error(t, err)
			require.ErrorIs(t, err, errs.ErrCorruptFormat)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		data := append([]byte{0}, valid[1:]...)
		_, _, err := ParseColumnDescriptor(data, engine)

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrCorruptFormat)
	})

	t.Run("unknown dtype", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		data[1+len("feature")] = 0xFF
		_, _, err := ParseColumnDescriptor(data, engine)

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrCorruptFormat)
	})

	t.Run("unknown transform", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		data[1+len("feature")+1] = 0xFF
		_, _, err := ParseColumnDescriptor(data, engine)

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrCorruptFormat)
	})
}
