package encoding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/treepack/errs"
	"github.com/arloliu/treepack/format"
)

func TestTransformInts_Delta(t *testing.T) {
	values := []int64{10, 12, 12, 7, 100}

	tokens, err := TransformInts(values, format.TransformDelta, nil)
	require.NoError(t, err)
	require.Equal(t, []int64{10, 2, 0, -5, 93}, tokens)

	restored, err := RestoreInts(tokens, format.TransformDelta, nil)
	require.NoError(t, err)
	require.Equal(t, values, restored)
}

func TestTransformInts_DeltaZigZag(t *testing.T) {
	sentinel := int64(-1)

	t.Run("sentinel reserves token zero", func(t *testing.T) {
		// A delta of -1 must never collide with the sentinel itself.
		values := []int64{-1, 2, -1, -1, 1}

		tokens, err := TransformInts(values, format.TransformDeltaZigZag, &sentinel)
		require.NoError(t, err)
		// Sentinels map to 0; real values map to zigzag(delta)+1 against
		// the previous non-sentinel value.
		require.Equal(t, []int64{0, 5, 0, 0, 2}, tokens)

		restored, err := RestoreInts(tokens, format.TransformDeltaZigZag, &sentinel)
		require.NoError(t, err)
		require.Equal(t, values, restored)
	})

	t.Run("without sentinel tokens are plain zigzag deltas", func(t *testing.T) {
		values := []int64{5, 3, 3, 10}

		tokens, err := TransformInts(values, format.TransformDeltaZigZag, nil)
		require.NoError(t, err)
		// deltas 5, -2, 0, 7 zigzag to 10, 3, 0, 14.
		require.Equal(t, []int64{10, 3, 0, 14}, tokens)

		restored, err := RestoreInts(tokens, format.TransformDeltaZigZag, nil)
		require.NoError(t, err)
		require.Equal(t, values, restored)
	})

	t.Run("sorted child column yields small tokens", func(t *testing.T) {
		// Breadth-first child indices grow monotonically, so tokens stay
		// tiny regardless of tree size.
		values := []int64{1, 3, 5, -1, -1, 7, -1, -1, -1}

		tokens, err := TransformInts(values, format.TransformDeltaZigZag, &sentinel)
		require.NoError(t, err)
		for _, tok := range tokens {
			require.GreaterOrEqual(t, tok, int64(0))
			require.LessOrEqual(t, tok, int64(5))
		}

		restored, err := RestoreInts(tokens, format.TransformDeltaZigZag, &sentinel)
		require.NoError(t, err)
		require.Equal(t, values, restored)
	})
}

func TestTransformInts_RoundTrip(t *testing.T) {
	sentinel := int64(-1)

	inputs := [][]int64{
		nil,
		{},
		{42},
		{-1},
		{0, 0, 0},
		{math.MinInt32, math.MaxInt32, 0, -7},
		{-1, -1, -1},
		{1, 2, -1, 4, -1, 6, -1, -1},
	}

	for _, transform := range []format.TransformType{
		format.TransformRaw, format.TransformDelta, format.TransformDeltaZigZag,
	} {
		for _, sent := range []*int64{nil, &sentinel} {
			for _, values := range inputs {
				tokens, err := TransformInts(values, transform, sent)
				require.NoError(t, err)
				require.Len(t, tokens, len(values))

				restored, err := RestoreInts(tokens, transform, sent)
				require.NoError(t, err)
				if len(values) == 0 {
					require.Empty(t, restored)
				} else {
					require.Equal(t, values, restored, "transform %s", transform)
				}
			}
		}
	}
}

func TestTransformInts_InvalidTransform(t *testing.T) {
	_, err := TransformInts([]int64{1}, format.TransformType(0xFF), nil)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrInvalidTransform)

	_, err = RestoreInts([]int64{1}, format.TransformType(0xFF), nil)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrInvalidTransform)
}

func TestZigZag(t *testing.T) {
	cases := map[int64]int64{
		0:             0,
		-1:            1,
		1:             2,
		-2:            3,
		2:             4,
		math.MaxInt64: -2, // wraps through the unsigned domain and back
	}
	for v, want := range cases {
		require.Equal(t, want, zigzag(v), "zigzag(%d)", v)
		require.Equal(t, v, unzigzag(zigzag(v)), "unzigzag(zigzag(%d))", v)
	}
}
