// Package schema defines the static per-column encoding policy for tree
// state columns.
//
// A Schema is an ordered, immutable catalogue of ColumnSpecs: for every
// column it declares the value kind, the structural transform applied
// before packing, the candidate dtypes the minimizer may shrink to, and
// the reserved sentinel value, if any. The same Schema instance is
// shared read-only across all trees and across concurrent workers.
package schema

import (
	"fmt"

	"github.com/arloliu/treepack/errs"
	"github.com/arloliu/treepack/format"
)

// Kind classifies the native value type of a column.
type Kind uint8

const (
	KindInt   Kind = 0x1 // KindInt columns carry int64 values.
	KindFloat Kind = 0x2 // KindFloat columns carry float64 values.
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	default:
		return "Unknown"
	}
}

// ColumnSpec is the per-column static policy. Candidates are evaluated
// in declaration order; the first dtype that safely represents the
// (transformed, biased) values is chosen, so they must be listed
// narrowest first with the native width last.
type ColumnSpec struct {
	// Name identifies the column inside a tree block.
	Name string

	// Kind is the native value kind of the column.
	Kind Kind

	// Transform is the structural transform applied before packing.
	// Columns with fewer than two elements fall back to TransformRaw.
	Transform format.TransformType

	// Candidates are the dtypes the minimizer may choose from, narrowest
	// first. The last entry must cover the native width.
	Candidates []format.DType

	// Sentinel is the reserved "no child / leaf" value for index
	// columns, nil when the column has none. The sentinel is preserved
	// exactly through every transform.
	Sentinel *int64

	// AllowBias permits the minimizer to subtract the minimum value
	// before packing, recording the bias in the column descriptor. This
	// lets columns with small negative minima (such as sentinels) use
	// narrow unsigned dtypes.
	AllowBias bool

	// ScalesWithOutput marks columns whose element count is
	// NodeCount × leaf value width rather than NodeCount (the per-leaf
	// value matrix).
	ScalesWithOutput bool
}

// HasSentinel reports whether the column reserves a sentinel value.
func (c ColumnSpec) HasSentinel() bool {
	return c.Sentinel != nil
}

// Schema is an ordered set of column specs, immutable after New.
type Schema struct {
	cols   []ColumnSpec
	byName map[string]int
}

// New creates a Schema from the given column specs.
//
// It validates that names are unique and non-empty, candidate lists are
// non-empty, and every candidate's kind agrees with the column kind.
func New(cols []ColumnSpec) (*Schema, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: no columns", errs.ErrInvalidSchema)
	}

	byName := make(map[string]int, len(cols))
	for i, col := range cols {
		if col.Name == "" {
			return nil, fmt.Errorf("%w: empty column name at index %d", errs.ErrInvalidSchema, i)
		}
		if len(col.Name) > 255 {
			return nil, fmt.Errorf("%w: column name %q exceeds 255 bytes", errs.ErrInvalidSchema, col.Name)
		}
		if _, ok := byName[col.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate column %q", errs.ErrInvalidSchema, col.Name)
		}
		if col.Kind != KindInt && col.Kind != KindFloat {
			return nil, fmt.Errorf("%w: column %q has unknown kind", errs.ErrInvalidSchema, col.Name)
		}
		if len(col.Candidates) == 0 {
			return nil, fmt.Errorf("%w: column %q has no candidate dtypes", errs.ErrInvalidSchema, col.Name)
		}
		for _, dt := range col.Candidates {
			if col.Kind == KindFloat && !dt.IsFloat() {
				return nil, fmt.Errorf("%w: column %q declares non-float candidate %s", errs.ErrInvalidSchema, col.Name, dt)
			}
			if col.Kind == KindInt && !dt.IsInteger() {
				return nil, fmt.Errorf("%w: column %q declares non-integer candidate %s", errs.ErrInvalidSchema, col.Name, dt)
			}
		}
		switch col.Transform {
		case format.TransformRaw, format.TransformDelta, format.TransformDeltaZigZag:
		default:
			return nil, fmt.Errorf("%w: column %q declares unknown transform", errs.ErrInvalidSchema, col.Name)
		}
		if col.Kind == KindFloat && col.Transform != format.TransformRaw {
			return nil, fmt.Errorf("%w: column %q: float columns only support the raw transform", errs.ErrInvalidSchema, col.Name)
		}
		byName[col.Name] = i
	}

	s := &Schema{
		cols:   make([]ColumnSpec, len(cols)),
		byName: byName,
	}
	copy(s.cols, cols)

	return s, nil
}

// Columns returns the column specs in declaration order. The returned
// slice is cloned to prevent external modification.
func (s *Schema) Columns() []ColumnSpec {
	out := make([]ColumnSpec, len(s.cols))
	copy(out, s.cols)

	return out
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.cols)
}

// Lookup returns the ColumnSpec for the named column.
func (s *Schema) Lookup(name string) (ColumnSpec, bool) {
	i, ok := s.byName[name]
	if !ok {
		return ColumnSpec{}, false
	}

	return s.cols[i], true
}

// Column names of the built-in decision tree schema. They follow the
// node array names used by scikit-learn style tree arenas.
const (
	ColLeftChild           = "left_child"
	ColRightChild          = "right_child"
	ColFeature             = "feature"
	ColThreshold           = "threshold"
	ColImpurity            = "impurity"
	ColNodeSamples         = "n_node_samples"
	ColWeightedNodeSamples = "weighted_n_node_samples"
	ColValue               = "value"
)

const (
	// LeafSentinel marks "no child" in the child index columns.
	LeafSentinel int64 = -1
	// UndefinedSentinel marks the feature of leaf nodes.
	UndefinedSentinel int64 = -2
)

var treeSchema = mustNew([]ColumnSpec{
	// Child columns allow a bias so the raw fallback of trees with fewer
	// than two nodes can still carry the leaf sentinel in an unsigned
	// dtype.
	{
		Name:      ColLeftChild,
		Kind:      KindInt,
		Transform: format.TransformDeltaZigZag,
		Candidates: []format.DType{
			format.DTypeUint8, format.DTypeUint16, format.DTypeUint32, format.DTypeUint64,
		},
		Sentinel:  ptr(LeafSentinel),
		AllowBias: true,
	},
	{
		Name:      ColRightChild,
		Kind:      KindInt,
		Transform: format.TransformDeltaZigZag,
		Candidates: []format.DType{
			format.DTypeUint8, format.DTypeUint16, format.DTypeUint32, format.DTypeUint64,
		},
		Sentinel:  ptr(LeafSentinel),
		AllowBias: true,
	},
	{
		Name:      ColFeature,
		Kind:      KindInt,
		Transform: format.TransformRaw,
		Candidates: []format.DType{
			format.DTypeUint8, format.DTypeUint16, format.DTypeUint32, format.DTypeInt64,
		},
		Sentinel:  ptr(UndefinedSentinel),
		AllowBias: true,
	},
	{
		Name:      ColThreshold,
		Kind:      KindFloat,
		Transform: format.TransformRaw,
		Candidates: []format.DType{
			format.DTypeFloat32, format.DTypeFloat64,
		},
	},
	{
		Name:      ColImpurity,
		Kind:      KindFloat,
		Transform: format.TransformRaw,
		Candidates: []format.DType{
			format.DTypeFloat32, format.DTypeFloat64,
		},
	},
	{
		Name:      ColNodeSamples,
		Kind:      KindInt,
		Transform: format.TransformDelta,
		Candidates: []format.DType{
			format.DTypeUint8, format.DTypeUint16, format.DTypeUint32, format.DTypeInt64,
		},
		AllowBias: true,
	},
	{
		Name:      ColWeightedNodeSamples,
		Kind:      KindFloat,
		Transform: format.TransformRaw,
		Candidates: []format.DType{
			format.DTypeFloat32, format.DTypeFloat64,
		},
	},
	{
		Name:      ColValue,
		Kind:      KindFloat,
		Transform: format.TransformRaw,
		Candidates: []format.DType{
			format.DTypeFloat32, format.DTypeFloat64,
		},
		ScalesWithOutput: true,
	},
})

// Tree returns the built-in decision tree schema covering the full node
// array set: child indices, split feature and threshold, impurity,
// sample statistics and the per-leaf value matrix.
//
// The returned Schema is shared and immutable; callers must not assume
// ownership.
func Tree() *Schema {
	return treeSchema
}

func mustNew(cols []ColumnSpec) *Schema {
	s, err := New(cols)
	if err != nil {
		panic(err)
	}

	return s
}

func ptr(v int64) *int64 {
	return &v
}
