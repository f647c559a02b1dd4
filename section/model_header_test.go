package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/treepack/endian"
	"github.com/arloliu/treepack/errs"
)

func TestNewModelHeader(t *testing.T) {
	header := NewModelHeader(50, 3)

	require.Equal(t, uint8(FormatVersion), header.Version)
	require.Equal(t, uint32(50), header.TreeCount)
	require.Equal(t, uint32(3), header.LeafValueWidth)
	require.False(t, header.IsBigEndian())
	require.True(t, header.HasDigest())
}

func TestModelHeader_DigestFlag(t *testing.T) {
	header := NewModelHeader(1, 1)

	header.SetDigestEnabled(false)
	require.False(t, header.HasDigest())

	header.SetDigestEnabled(true)
	require.True(t, header.HasDigest())
}

func TestModelHeader_Parse(t *testing.T) {
	valid := func() ModelHeader {
		h := NewModelHeader(10, 2)
		h.IndexOffset = ModelHeaderSize + 11
		h.BlockOffset = h.IndexOffset + 10*TreeIndexEntrySize
		h.PayloadDigest = 0xDEADBEEFCAFEF00D
		return h
	}

	t.Run("round-trip", func(t *testing.T) {
		original := valid()
		data := original.AppendTo(nil)
		require.Len(t, data, ModelHeaderSize)

		var parsed ModelHeader
		err := parsed.Parse(data)

		require.NoError(t, err)
		require.Equal(t, original, parsed)
	})

	t.Run("round-trip big-endian", func(t *testing.T) {
		original := valid()
		original.WithBigEndian()
		data := original.AppendTo(nil)

		var parsed ModelHeader
		err := parsed.Parse(data)

		require.NoError(t, err)
		require.True(t, parsed.IsBigEndian())
		require.Equal(t, original.PayloadDigest, parsed.PayloadDigest)
		require.Equal(t, original.IndexOffset, parsed.IndexOffset)
	})

	t.Run("truncated input", func(t *testing.T) {
		var parsed ModelHeader
		err := parsed.Parse(make([]byte, ModelHeaderSize-1))

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrCorruptFormat)
	})

	t.Run("bad magic", func(t *testing.T) {
		data := valid().AppendTo(nil)
		data[1] = 0x00

		var parsed ModelHeader
		err := parsed.Parse(data)

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrCorruptFormat)
	})

	t.Run("unsupported version", func(t *testing.T) {
		data := valid().AppendTo(nil)
		data[2] = FormatVersion + 1

		var parsed ModelHeader
		err := parsed.Parse(data)

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrCorruptFormat)
	})

	t.Run("index offset inside fixed header", func(t *testing.T) {
		h := valid()
		h.IndexOffset = ModelHeaderSize - 1
		data := h.AppendTo(nil)

		var parsed ModelHeader
		err := parsed.Parse(data)

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrCorruptFormat)
	})

	t.Run("block offset before index", func(t *testing.T) {
		h := valid()
		h.BlockOffset = h.IndexOffset - 1
		data := h.AppendTo(nil)

		var parsed ModelHeader
		err := parsed.Parse(data)

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrCorruptFormat)
	})
}

func TestTreeIndexEntry(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	entry := TreeIndexEntry{NodeCount: 31, BlockLen: 844}
	data := entry.AppendTo(nil, engine)
	require.Len(t, data, TreeIndexEntrySize)

	parsed, err := ParseTreeIndexEntry(data, engine)
	require.NoError(t, err)
	require.Equal(t, entry, parsed)

	_, err = ParseTreeIndexEntry(data[:4], engine)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrCorruptFormat)
}
