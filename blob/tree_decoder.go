package blob

import (
	"fmt"

	"github.com/arloliu/treepack/encoding"
	"github.com/arloliu/treepack/endian"
	"github.com/arloliu/treepack/errs"
	"github.com/arloliu/treepack/schema"
	"github.com/arloliu/treepack/section"
)

// TreeDecoder decodes one packed block back into a TreeState.
//
// Decoding is the exact mirror of TreeEncoder: unpack at the stored
// dtype, widen back to native width (int64 / float64), add the recorded
// bias, then reverse the structural transform. The on-disk dtype is a
// storage detail and never visible in the returned state.
type TreeDecoder struct {
	schema *schema.Schema
}

// NewTreeDecoder creates a tree decoder for the given schema.
func NewTreeDecoder(sch *schema.Schema) *TreeDecoder {
	return &TreeDecoder{schema: sch}
}

// Decode parses and decodes one packed block.
//
// The block header's magic and version are validated before anything
// else, and payloads are sliced strictly by the lengths the descriptors
// declare; truncated or oversized input yields ErrCorruptFormat.
func (d *TreeDecoder) Decode(data []byte) (*TreeState, error) {
	var hdr section.BlockHeader
	if err := hdr.Parse(data); err != nil {
		return nil, err
	}
	engine := hdr.Engine()

	descs := make([]section.ColumnDescriptor, 0, hdr.ColumnCount)
	p := section.BlockHeaderSize
	for i := 0; i < int(hdr.ColumnCount); i++ {
		desc, n, err := section.ParseColumnDescriptor(data[p:], engine)
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
		p += n
	}

	state := NewTreeState(int(hdr.NodeCount), int(hdr.MaxDepth), 1)
	for _, desc := range descs {
		end := p + int(desc.ByteLen)
		if end > len(data) {
			return nil, fmt.Errorf("%w: column %q payload truncated", errs.ErrCorruptFormat, desc.Name)
		}
		payload := data[p:end]
		p = end

		spec, ok := d.schema.Lookup(desc.Name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown column %q", errs.ErrCorruptFormat, desc.Name)
		}

		if err := d.decodeColumn(state, spec, desc, payload, engine); err != nil {
			return nil, fmt.Errorf("column %q: %w", desc.Name, err)
		}

		if spec.ScalesWithOutput && state.NodeCount > 0 {
			if int(desc.Count)%state.NodeCount != 0 {
				return nil, fmt.Errorf("%w: column %q count %d not divisible by node count %d",
					errs.ErrCorruptFormat, desc.Name, desc.Count, state.NodeCount)
			}
			state.ValueWidth = int(desc.Count) / state.NodeCount
		}
	}
	if p != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes after block payload", errs.ErrCorruptFormat, len(data)-p)
	}

	if err := state.Validate(d.schema); err != nil {
		return nil, err
	}

	return state, nil
}

func (d *TreeDecoder) decodeColumn(state *TreeState, spec schema.ColumnSpec, desc section.ColumnDescriptor, payload []byte, engine endian.EndianEngine) error {
	switch spec.Kind {
	case schema.KindInt:
		if !desc.DType.IsInteger() {
			return fmt.Errorf("%w: stored dtype %s for integer column", errs.ErrCorruptFormat, desc.DType)
		}
		tokens, err := encoding.UnpackInts(payload, int(desc.Count), desc.Bias, desc.DType, engine)
		if err != nil {
			return err
		}
		values, err := encoding.RestoreInts(tokens, desc.Transform, spec.Sentinel)
		if err != nil {
			return err
		}
		state.SetInts(spec.Name, values)
	case schema.KindFloat:
		if !desc.DType.IsFloat() {
			return fmt.Errorf("%w: stored dtype %s for float column", errs.ErrCorruptFormat, desc.DType)
		}
		values, err := encoding.UnpackFloats(payload, int(desc.Count), desc.DType, engine)
		if err != nil {
			return err
		}
		state.SetFloats(spec.Name, values)
	}

	return nil
}
