package model

import (
	"fmt"
	"reflect"

	"github.com/arloliu/treepack/blob"
	"github.com/arloliu/treepack/errs"
	"github.com/arloliu/treepack/registry"
	"github.com/arloliu/treepack/schema"
)

// Wire kinds of the built-in model codecs.
const (
	KindTree   = "tree/v1"
	KindForest = "forest/v1"
)

// TreeCodec returns the serialization hook for *Tree.
func TreeCodec() registry.Codec {
	return registry.Codec{
		Kind: KindTree,
		Type: reflect.TypeOf((*Tree)(nil)),
		Extract: func(m any) (*blob.ModelState, error) {
			tree := m.(*Tree)
			if err := tree.Validate(); err != nil {
				return nil, err
			}

			return &blob.ModelState{
				LeafValueWidth: tree.ValueWidth,
				Trees:          []*blob.TreeState{extractTree(tree)},
			}, nil
		},
		Build: func(state *blob.ModelState) (any, error) {
			if len(state.Trees) != 1 {
				return nil, fmt.Errorf("tree model encodes exactly one tree, got %d", len(state.Trees))
			}

			tree := buildTree(state.Trees[0])
			if err := tree.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %s", errs.ErrCorruptFormat, err)
			}

			return tree, nil
		},
	}
}

// ForestCodec returns the serialization hook for *Forest.
func ForestCodec() registry.Codec {
	return registry.Codec{
		Kind: KindForest,
		Type: reflect.TypeOf((*Forest)(nil)),
		Extract: func(m any) (*blob.ModelState, error) {
			forest := m.(*Forest)
			if err := forest.Validate(); err != nil {
				return nil, err
			}

			states := make([]*blob.TreeState, len(forest.Trees))
			for i, tree := range forest.Trees {
				states[i] = extractTree(tree)
			}

			return &blob.ModelState{
				LeafValueWidth: forest.ValueWidth,
				Trees:          states,
			}, nil
		},
		Build: func(state *blob.ModelState) (any, error) {
			trees := make([]*Tree, len(state.Trees))
			for i, ts := range state.Trees {
				trees[i] = buildTree(ts)
			}

			forest := &Forest{Trees: trees, ValueWidth: state.LeafValueWidth}
			if err := forest.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %s", errs.ErrCorruptFormat, err)
			}

			return forest, nil
		},
	}
}

// extractTree converts an arena tree into the codec's column form.
func extractTree(t *Tree) *blob.TreeState {
	state := blob.NewTreeState(t.NodeCount, t.MaxDepth, t.ValueWidth)
	state.SetInts(schema.ColLeftChild, t.LeftChild)
	state.SetInts(schema.ColRightChild, t.RightChild)
	state.SetInts(schema.ColFeature, t.Feature)
	state.SetFloats(schema.ColThreshold, t.Threshold)
	state.SetFloats(schema.ColImpurity, t.Impurity)
	state.SetInts(schema.ColNodeSamples, t.NodeSamples)
	state.SetFloats(schema.ColWeightedNodeSamples, t.WeightedNodeSamples)
	state.SetFloats(schema.ColValue, t.Value)

	return state
}

// buildTree converts decoded columns back into an arena tree.
func buildTree(state *blob.TreeState) *Tree {
	return &Tree{
		NodeCount:           state.NodeCount,
		MaxDepth:            state.MaxDepth,
		ValueWidth:          state.ValueWidth,
		LeftChild:           state.Ints(schema.ColLeftChild),
		RightChild:          state.Ints(schema.ColRightChild),
		Feature:             state.Ints(schema.ColFeature),
		Threshold:           state.Floats(schema.ColThreshold),
		Impurity:            state.Floats(schema.ColImpurity),
		NodeSamples:         state.Ints(schema.ColNodeSamples),
		WeightedNodeSamples: state.Floats(schema.ColWeightedNodeSamples),
		Value:               state.Floats(schema.ColValue),
	}
}
