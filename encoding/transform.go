package encoding

import (
	"fmt"

	"github.com/arloliu/treepack/errs"
	"github.com/arloliu/treepack/format"
)

// TransformInts applies the structural transform to a raw integer
// column, producing the token stream that gets dtype-minimized and
// packed. RestoreInts is its exact inverse for every input.
//
// Transforms:
//   - Raw: tokens are the values themselves.
//   - Delta: token 0 is the first value verbatim; token i is
//     values[i] - values[i-1]. The inverse is a prefix sum, so the
//     transform is exact for any input, sentinels included.
//   - DeltaZigZag: deltas are taken against the previous non-sentinel
//     value (starting from zero) and zigzag-mapped to unsigned tokens.
//     When the column reserves a sentinel, token 0 is reserved for it
//     and non-sentinel tokens are shifted up by one, so a delta that
//     happens to equal the sentinel can never be mistaken for it.
//
// Callers are responsible for falling back to Raw when the column has
// fewer than two elements; delta encoding is undefined there.
func TransformInts(values []int64, t format.TransformType, sentinel *int64) ([]int64, error) {
	tokens := make([]int64, len(values))

	switch t {
	case format.TransformRaw:
		copy(tokens, values)
	case format.TransformDelta:
		var prev int64
		for i, v := range values {
			if i == 0 {
				tokens[i] = v
			} else {
				tokens[i] = v - prev
			}
			prev = v
		}
	case format.TransformDeltaZigZag:
		var prev int64
		for i, v := range values {
			if sentinel != nil && v == *sentinel {
				tokens[i] = 0
				continue
			}
			zz := zigzag(v - prev)
			if sentinel != nil {
				zz++
			}
			tokens[i] = zz
			prev = v
		}
	default:
		return nil, fmt.Errorf("%w: 0x%02x", errs.ErrInvalidTransform, uint8(t))
	}

	return tokens, nil
}

// RestoreInts reverses TransformInts, reproducing the original column
// exactly.
func RestoreInts(tokens []int64, t format.TransformType, sentinel *int64) ([]int64, error) {
	values := make([]int64, len(tokens))

	switch t {
	case format.TransformRaw:
		copy(values, tokens)
	case format.TransformDelta:
		var prev int64
		for i, d := range tokens {
			if i == 0 {
				prev = d
			} else {
				prev += d
			}
			values[i] = prev
		}
	case format.TransformDeltaZigZag:
		var prev int64
		for i, tok := range tokens {
			if sentinel != nil {
				if tok == 0 {
					values[i] = *sentinel
					continue
				}
				tok--
			}
			prev += unzigzag(tok)
			values[i] = prev
		}
	default:
		return nil, fmt.Errorf("%w: 0x%02x", errs.ErrInvalidTransform, uint8(t))
	}

	return values, nil
}

// zigzag maps a signed value to an unsigned-shaped int64:
// 0, -1, 1, -2, 2 ... become 0, 1, 2, 3, 4 ...
func zigzag(v int64) int64 {
	return (v << 1) ^ (v >> 63)
}

func unzigzag(z int64) int64 {
	return int64(uint64(z)>>1) ^ -(z & 1)
}
