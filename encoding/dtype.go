package encoding

import (
	"fmt"
	"math"

	"github.com/arloliu/treepack/errs"
	"github.com/arloliu/treepack/format"
)

// ChooseIntDType selects the narrowest candidate dtype that represents
// every token exactly, together with the bias subtracted before packing.
//
// Candidates are evaluated in declaration order, so the caller lists
// them narrowest first; the first safe candidate wins and the codec
// never picks a wider dtype than necessary.
//
// The sentinel value, when present, is excluded from the range
// computation but folded back in for the containment check, so the
// chosen dtype is always able to carry it. When allowBias is set and the
// effective minimum is negative, that minimum becomes the bias: tokens
// are shifted to start at zero, which lets columns with small negative
// sentinels use narrow unsigned dtypes. The bias is recorded in the
// column descriptor and added back verbatim on decode.
//
// Returns ErrUnrepresentableRange if no candidate covers the biased
// range; the caller must treat this as fatal for the enclosing tree.
func ChooseIntDType(tokens []int64, candidates []format.DType, allowBias bool, sentinel *int64) (format.DType, int64, error) {
	lo, hi, seen := int64(0), int64(0), false
	for _, v := range tokens {
		if sentinel != nil && v == *sentinel {
			continue
		}
		if !seen {
			lo, hi, seen = v, v, true
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if sentinel != nil && len(tokens) > 0 {
		if !seen {
			lo, hi, seen = *sentinel, *sentinel, true
		} else {
			lo = min(lo, *sentinel)
			hi = max(hi, *sentinel)
		}
	}

	var bias int64
	if allowBias && lo < 0 {
		bias = lo
	}

	for _, dt := range candidates {
		if !dt.IsInteger() {
			return format.DTypeInvalid, 0, fmt.Errorf("%w: %s is not an integer dtype", errs.ErrInvalidDType, dt)
		}
		if intFits(dt, lo, hi, bias) {
			return dt, bias, nil
		}
	}

	return format.DTypeInvalid, 0, fmt.Errorf("%w: range [%d, %d]", errs.ErrUnrepresentableRange, lo, hi)
}

// ChooseFloatDType selects the narrowest candidate float dtype through
// which every value survives an exact round-trip. Values that do not
// round-trip (including NaN) keep the column at the wider candidate, so
// narrowing never loses precision.
func ChooseFloatDType(values []float64, candidates []format.DType) (format.DType, error) {
	for _, dt := range candidates {
		if !dt.IsFloat() {
			return format.DTypeInvalid, fmt.Errorf("%w: %s is not a float dtype", errs.ErrInvalidDType, dt)
		}
		if dt == format.DTypeFloat64 || floatsExactIn32(values) {
			return dt, nil
		}
	}

	return format.DTypeInvalid, fmt.Errorf("%w: no float candidate round-trips", errs.ErrUnrepresentableRange)
}

func floatsExactIn32(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return false
		}
		if float64(float32(v)) != v {
			return false
		}
	}

	return true
}

// intFits reports whether every value in [lo, hi], shifted by bias, is
// representable by dt. The shifted bounds are computed with overflow
// checks so a huge span can never wrap around into a false fit.
func intFits(dt format.DType, lo, hi, bias int64) bool {
	slo, ok := sub64(lo, bias)
	if !ok {
		return false
	}
	shi, ok := sub64(hi, bias)
	if !ok {
		return false
	}

	return dt.MinValue() <= slo && shi <= dt.MaxValue()
}

// sub64 computes a-b, reporting false on int64 overflow.
func sub64(a, b int64) (int64, bool) {
	r := a - b
	if (b < 0 && r < a) || (b > 0 && r > a) {
		return 0, false
	}

	return r, true
}
