package blob

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/treepack/encoding"
	"github.com/arloliu/treepack/endian"
	"github.com/arloliu/treepack/errs"
	"github.com/arloliu/treepack/format"
	"github.com/arloliu/treepack/schema"
	"github.com/arloliu/treepack/section"
)

// stumpState builds a three-node tree: one split, two leaves.
func stumpState() *TreeState {
	state := NewTreeState(3, 1, 1)
	state.SetInts(schema.ColLeftChild, []int64{1, -1, -1})
	state.SetInts(schema.ColRightChild, []int64{2, -1, -1})
	state.SetInts(schema.ColFeature, []int64{0, -2, -2})
	state.SetFloats(schema.ColThreshold, []float64{0.5, 0, 0})
	state.SetFloats(schema.ColImpurity, []float64{0.5, 0, 0})
	state.SetInts(schema.ColNodeSamples, []int64{10, 6, 4})
	state.SetFloats(schema.ColWeightedNodeSamples, []float64{10, 6, 4})
	state.SetFloats(schema.ColValue, []float64{0.25, 0, 1})

	return state
}

// wideState builds a deeper tree with value ranges that need wider
// dtypes and multi-output leaves.
func wideState(valueWidth int) *TreeState {
	n := 1001
	state := NewTreeState(n, 12, valueWidth)

	left := make([]int64, n)
	right := make([]int64, n)
	feature := make([]int64, n)
	threshold := make([]float64, n)
	impurity := make([]float64, n)
	samples := make([]int64, n)
	weighted := make([]float64, n)
	value := make([]float64, n*valueWidth)

	for i := 0; i < n; i++ {
		if 2*i+2 < n {
			left[i] = int64(2*i + 1)
			right[i] = int64(2*i + 2)
			feature[i] = int64(i % 700)
			threshold[i] = float64(i) + 0.1
		} else {
			left[i] = schema.LeafSentinel
			right[i] = schema.LeafSentinel
			feature[i] = schema.UndefinedSentinel
		}
		impurity[i] = 1.0 / float64(i+1)
		samples[i] = int64(100000 - i)
		weighted[i] = float64(samples[i])
		for j := 0; j < valueWidth; j++ {
			value[i*valueWidth+j] = float64(i*valueWidth + j)
		}
	}

	state.SetInts(schema.ColLeftChild, left)
	state.SetInts(schema.ColRightChild, right)
	state.SetInts(schema.ColFeature, feature)
	state.SetFloats(schema.ColThreshold, threshold)
	state.SetFloats(schema.ColImpurity, impurity)
	state.SetInts(schema.ColNodeSamples, samples)
	state.SetFloats(schema.ColWeightedNodeSamples, weighted)
	state.SetFloats(schema.ColValue, value)

	return state
}

func requireStatesEqual(t *testing.T, want, got *TreeState) {
	t.Helper()
	require.Equal(t, want.NodeCount, got.NodeCount)
	require.Equal(t, want.MaxDepth, got.MaxDepth)
	require.Equal(t, want.ValueWidth, got.ValueWidth)
	for _, spec := range schema.Tree().Columns() {
		if spec.Kind == schema.KindInt {
			require.Equal(t, want.Ints(spec.Name), got.Ints(spec.Name), "column %q", spec.Name)
		} else {
			require.Equal(t, want.Floats(spec.Name), got.Floats(spec.Name), "column %q", spec.Name)
		}
	}
}

func TestTreeCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		state *TreeState
	}{
		{"stump", stumpState()},
		{"wide tree single output", wideState(1)},
		{"wide tree multi output", wideState(3)},
	}

	for _, engine := range []endian.EndianEngine{
		endian.GetLittleEndianEngine(), endian.GetBigEndianEngine(),
	} {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				enc := NewTreeEncoder(schema.Tree(), engine)
				block, err := enc.Encode(tt.state)
				require.NoError(t, err)

				dec := NewTreeDecoder(schema.Tree())
				decoded, err := dec.Decode(block)
				require.NoError(t, err)

				requireStatesEqual(t, tt.state, decoded)
			})
		}
	}
}

func TestTreeCodec_Deterministic(t *testing.T) {
	enc := NewTreeEncoder(schema.Tree(), endian.GetLittleEndianEngine())

	first, err := enc.Encode(wideState(2))
	require.NoError(t, err)
	second, err := enc.Encode(wideState(2))
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestTreeCodec_SmallerThanNaive(t *testing.T) {
	state := wideState(1)

	enc := NewTreeEncoder(schema.Tree(), endian.GetLittleEndianEngine())
	block, err := enc.Encode(state)
	require.NoError(t, err)

	// Native width is 8 bytes per element across 8 columns.
	naive := 8 * 8 * state.NodeCount
	require.Less(t, len(block), naive)
}

func TestTreeCodec_ColumnDTypes(t *testing.T) {
	// The stump's child columns should pack at one byte per node and the
	// exactly representable floats should narrow to float32.
	enc := NewTreeEncoder(schema.Tree(), endian.GetLittleEndianEngine())
	block, err := enc.Encode(stumpState())
	require.NoError(t, err)

	var hdr section.BlockHeader
	require.NoError(t, hdr.Parse(block))
	engine := hdr.Engine()

	dtypes := make(map[string]format.DType, hdr.ColumnCount)
	p := section.BlockHeaderSize
	for c := 0; c < int(hdr.ColumnCount); c++ {
		desc, n, err := section.ParseColumnDescriptor(block[p:], engine)
		require.NoError(t, err)
		dtypes[desc.Name] = desc.DType
		p += n
	}

	require.Equal(t, format.DTypeUint8, dtypes[schema.ColLeftChild])
	require.Equal(t, format.DTypeUint8, dtypes[schema.ColRightChild])
	require.Equal(t, format.DTypeUint8, dtypes[schema.ColFeature])
	require.Equal(t, format.DTypeUint8, dtypes[schema.ColNodeSamples])
	require.Equal(t, format.DTypeFloat32, dtypes[schema.ColThreshold])
	require.Equal(t, format.DTypeFloat32, dtypes[schema.ColValue])
}

func TestTreeEncoder_Errors(t *testing.T) {
	enc := NewTreeEncoder(schema.Tree(), endian.GetLittleEndianEngine())

	t.Run("missing column", func(t *testing.T) {
		state := stumpState()
		delete(state.Columns, schema.ColImpurity)

		_, err := enc.Encode(state)
		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrMissingColumn)
	})

	t.Run("length mismatch", func(t *testing.T) {
		state := stumpState()
		state.SetInts(schema.ColFeature, []int64{0, -2})

		_, err := enc.Encode(state)
		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrColumnLengthMismatch)
	})

	t.Run("unrepresentable column names the column", func(t *testing.T) {
		narrow, err := schema.New([]schema.ColumnSpec{{
			Name:       "tiny",
			Kind:       schema.KindInt,
			Transform:  format.TransformRaw,
			Candidates: []format.DType{format.DTypeUint8},
		}})
		require.NoError(t, err)

		state := NewTreeState(2, 1, 1)
		state.SetInts("tiny", []int64{0, 1000})

		_, err = NewTreeEncoder(narrow, endian.GetLittleEndianEngine()).Encode(state)
		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrUnrepresentableRange)
		require.Contains(t, err.Error(), "tiny")
	})
}

func TestTreeDecoder_Corrupt(t *testing.T) {
	enc := NewTreeEncoder(schema.Tree(), endian.GetLittleEndianEngine())
	block, err := enc.Encode(stumpState())
	require.NoError(t, err)

	dec := NewTreeDecoder(schema.Tree())

	t.Run("truncated block", func(t *testing.T) {
		_, err := dec.Decode(block[:len(block)-1])
		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrCorruptFormat)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := dec.Decode(append(append([]byte(nil), block...), 0x00))
		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrCorruptFormat)
	})

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte(nil), block...)
		bad[1] = 0x00
		_, err := dec.Decode(bad)
		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrCorruptFormat)
	})
}

func TestTreeCodec_SingleNodeFallsBackToRaw(t *testing.T) {
	// One-element columns cannot be delta coded; the descriptors must
	// record the raw transform so decoding stays self-describing.
	state := NewTreeState(1, 0, 1)
	state.SetInts(schema.ColLeftChild, []int64{-1})
	state.SetInts(schema.ColRightChild, []int64{-1})
	state.SetInts(schema.ColFeature, []int64{-2})
	state.SetFloats(schema.ColThreshold, []float64{0})
	state.SetFloats(schema.ColImpurity, []float64{0})
	state.SetInts(schema.ColNodeSamples, []int64{7})
	state.SetFloats(schema.ColWeightedNodeSamples, []float64{7})
	state.SetFloats(schema.ColValue, []float64{1.5})

	engine := endian.GetLittleEndianEngine()
	block, err := NewTreeEncoder(schema.Tree(), engine).Encode(state)
	require.NoError(t, err)

	var hdr section.BlockHeader
	require.NoError(t, hdr.Parse(block))

	p := section.BlockHeaderSize
	for c := 0; c < int(hdr.ColumnCount); c++ {
		desc, n, err := section.ParseColumnDescriptor(block[p:], engine)
		require.NoError(t, err)
		require.Equal(t, format.TransformRaw, desc.Transform, "column %q", desc.Name)
		if desc.Name == schema.ColLeftChild || desc.Name == schema.ColRightChild {
			// The raw sentinel still packs narrow via the recorded bias.
			require.Equal(t, format.DTypeUint8, desc.DType, "column %q", desc.Name)
			require.Equal(t, schema.LeafSentinel, desc.Bias, "column %q", desc.Name)
		}
		p += n
	}

	decoded, err := NewTreeDecoder(schema.Tree()).Decode(block)
	require.NoError(t, err)
	requireStatesEqual(t, state, decoded)
}

func TestTreeCodec_ZeroNodeTree(t *testing.T) {
	state := NewTreeState(0, 0, 1)
	state.SetInts(schema.ColLeftChild, nil)
	state.SetInts(schema.ColRightChild, nil)
	state.SetInts(schema.ColFeature, nil)
	state.SetFloats(schema.ColThreshold, nil)
	state.SetFloats(schema.ColImpurity, nil)
	state.SetInts(schema.ColNodeSamples, nil)
	state.SetFloats(schema.ColWeightedNodeSamples, nil)
	state.SetFloats(schema.ColValue, nil)

	block, err := NewTreeEncoder(schema.Tree(), endian.GetLittleEndianEngine()).Encode(state)
	require.NoError(t, err)

	decoded, err := NewTreeDecoder(schema.Tree()).Decode(block)
	require.NoError(t, err)
	require.Equal(t, 0, decoded.NodeCount)
	for _, spec := range schema.Tree().Columns() {
		if spec.Kind == schema.KindInt {
			require.Empty(t, decoded.Ints(spec.Name))
		} else {
			require.Empty(t, decoded.Floats(spec.Name))
		}
	}
}

func TestRestoreMatchesTransform(t *testing.T) {
	// Cross-check the schema's declared transforms against the encoding
	// primitives for the child columns of a real-shaped tree.
	left := wideState(1).Ints(schema.ColLeftChild)
	sentinel := schema.LeafSentinel

	tokens, err := encoding.TransformInts(left, format.TransformDeltaZigZag, &sentinel)
	require.NoError(t, err)
	restored, err := encoding.RestoreInts(tokens, format.TransformDeltaZigZag, &sentinel)
	require.NoError(t, err)
	require.Equal(t, left, restored)
}
