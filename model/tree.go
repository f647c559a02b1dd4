// Package model provides the built-in model types treepack can persist
// out of the box, together with their extraction/reconstruction glue.
//
// Trees are arenas: node relationships are index arrays, not pointer
// graphs, mirroring the flat representation the codec stores. Predict
// walks the arena so callers (and tests) can verify that a reloaded
// model behaves identically to the original.
package model

import (
	"fmt"

	"github.com/arloliu/treepack/schema"
)

// Tree is a single trained decision tree in arena form.
//
// All node arrays have NodeCount elements; Value has
// NodeCount × ValueWidth elements, row i holding node i's output
// values. Child columns use schema.LeafSentinel (-1) for leaves and
// Feature uses schema.UndefinedSentinel (-2).
type Tree struct {
	NodeCount  int
	MaxDepth   int
	ValueWidth int

	LeftChild  []int64
	RightChild []int64
	Feature    []int64
	Threshold  []float64
	Impurity   []float64

	NodeSamples         []int64
	WeightedNodeSamples []float64

	Value []float64
}

// Predict returns the output values of the leaf reached by features.
func (t *Tree) Predict(features []float64) []float64 {
	node := 0
	for t.LeftChild[node] != schema.LeafSentinel {
		if features[t.Feature[node]] <= t.Threshold[node] {
			node = int(t.LeftChild[node])
		} else {
			node = int(t.RightChild[node])
		}
	}

	out := make([]float64, t.ValueWidth)
	copy(out, t.Value[node*t.ValueWidth:(node+1)*t.ValueWidth])

	return out
}

// Validate checks the arena for consistent array lengths and in-range
// child indices.
func (t *Tree) Validate() error {
	n := t.NodeCount
	if t.ValueWidth < 1 {
		return fmt.Errorf("tree value width %d", t.ValueWidth)
	}
	if len(t.LeftChild) != n || len(t.RightChild) != n || len(t.Feature) != n ||
		len(t.Threshold) != n || len(t.Impurity) != n ||
		len(t.NodeSamples) != n || len(t.WeightedNodeSamples) != n {
		return fmt.Errorf("tree node arrays disagree with node count %d", n)
	}
	if len(t.Value) != n*t.ValueWidth {
		return fmt.Errorf("tree value array has %d elements, want %d", len(t.Value), n*t.ValueWidth)
	}
	for i := 0; i < n; i++ {
		left, right := t.LeftChild[i], t.RightChild[i]
		if (left == schema.LeafSentinel) != (right == schema.LeafSentinel) {
			return fmt.Errorf("node %d has mismatched leaf markers", i)
		}
		if left != schema.LeafSentinel && (left <= int64(i) || left >= int64(n) || right <= int64(i) || right >= int64(n)) {
			return fmt.Errorf("node %d has out-of-range children", i)
		}
	}

	return nil
}

// Forest is an ordered ensemble of trees sharing one output shape.
// Predict averages the member predictions, which covers both bagged
// forests and probability ensembles.
type Forest struct {
	Trees      []*Tree
	ValueWidth int
}

// Predict returns the member-averaged output values for features.
func (f *Forest) Predict(features []float64) []float64 {
	out := make([]float64, f.ValueWidth)
	if len(f.Trees) == 0 {
		return out
	}

	for _, tree := range f.Trees {
		for i, v := range tree.Predict(features) {
			out[i] += v
		}
	}
	for i := range out {
		out[i] /= float64(len(f.Trees))
	}

	return out
}

// Validate checks every member tree and the shared output shape.
func (f *Forest) Validate() error {
	for i, tree := range f.Trees {
		if tree == nil {
			return fmt.Errorf("tree %d is nil", i)
		}
		if tree.ValueWidth != f.ValueWidth {
			return fmt.Errorf("tree %d value width %d, forest declares %d", i, tree.ValueWidth, f.ValueWidth)
		}
		if err := tree.Validate(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}

	return nil
}
