package blob

import (
	"fmt"

	"github.com/arloliu/treepack/errs"
	"github.com/arloliu/treepack/schema"
)

// Column holds the native-width values of one tree state column.
// Exactly one of Ints and Floats is set, matching the column kind the
// schema declares.
type Column struct {
	Ints   []int64
	Floats []float64
}

// TreeState is the raw extracted array set of one decision tree: an
// ordered mapping (order defined by the schema) from column names to
// equal-length numeric sequences. Index columns use the schema's
// sentinel value to mark "no child / leaf".
//
// TreeState is a transient carrier between a model's extraction
// collaborator and the codec; it is created fresh per encode or decode
// call and not retained afterwards.
type TreeState struct {
	// NodeCount is the number of nodes; every column has this many
	// elements (times ValueWidth for the value matrix).
	NodeCount int

	// MaxDepth is the maximal depth of the tree.
	MaxDepth int

	// ValueWidth is the number of values stored per node in columns
	// that scale with the model output shape.
	ValueWidth int

	// Columns maps schema column names to their values.
	Columns map[string]Column
}

// NewTreeState creates an empty TreeState with the given shape.
func NewTreeState(nodeCount, maxDepth, valueWidth int) *TreeState {
	return &TreeState{
		NodeCount:  nodeCount,
		MaxDepth:   maxDepth,
		ValueWidth: valueWidth,
		Columns:    make(map[string]Column),
	}
}

// SetInts sets an integer column.
func (s *TreeState) SetInts(name string, values []int64) {
	s.Columns[name] = Column{Ints: values}
}

// SetFloats sets a float column.
func (s *TreeState) SetFloats(name string, values []float64) {
	s.Columns[name] = Column{Floats: values}
}

// Ints returns the named integer column, or nil if absent.
func (s *TreeState) Ints(name string) []int64 {
	return s.Columns[name].Ints
}

// Floats returns the named float column, or nil if absent.
func (s *TreeState) Floats(name string) []float64 {
	return s.Columns[name].Floats
}

// Validate checks the state against the schema: every declared column
// must be present, of the declared kind, and consistent in length with
// the node count.
func (s *TreeState) Validate(sch *schema.Schema) error {
	if s.NodeCount < 0 || s.MaxDepth < 0 {
		return fmt.Errorf("%w: negative node count or depth", errs.ErrColumnLengthMismatch)
	}
	if s.ValueWidth < 1 {
		return fmt.Errorf("%w: value width %d", errs.ErrColumnLengthMismatch, s.ValueWidth)
	}

	for _, spec := range sch.Columns() {
		col, ok := s.Columns[spec.Name]
		if !ok {
			return fmt.Errorf("%w: %q", errs.ErrMissingColumn, spec.Name)
		}

		want := s.NodeCount
		if spec.ScalesWithOutput {
			want *= s.ValueWidth
		}

		switch spec.Kind {
		case schema.KindInt:
			if col.Ints == nil && want > 0 {
				return fmt.Errorf("%w: %q", errs.ErrMissingColumn, spec.Name)
			}
			if len(col.Ints) != want {
				return fmt.Errorf("%w: column %q has %d elements, want %d", errs.ErrColumnLengthMismatch, spec.Name, len(col.Ints), want)
			}
		case schema.KindFloat:
			if col.Floats == nil && want > 0 {
				return fmt.Errorf("%w: %q", errs.ErrMissingColumn, spec.Name)
			}
			if len(col.Floats) != want {
				return fmt.Errorf("%w: column %q has %d elements, want %d", errs.ErrColumnLengthMismatch, spec.Name, len(col.Floats), want)
			}
		}
	}

	return nil
}
