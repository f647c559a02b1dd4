package blob

import (
	"fmt"

	"github.com/arloliu/treepack/encoding"
	"github.com/arloliu/treepack/endian"
	"github.com/arloliu/treepack/errs"
	"github.com/arloliu/treepack/format"
	"github.com/arloliu/treepack/internal/pool"
	"github.com/arloliu/treepack/schema"
	"github.com/arloliu/treepack/section"
)

// encodedColumn is one column after transform, minimization and packing,
// ready for assembly into a packed block.
type encodedColumn struct {
	desc    section.ColumnDescriptor
	payload []byte
}

// TreeEncoder encodes one TreeState into a self-describing packed block.
//
// For every schema column the encoder applies the structural transform,
// picks the narrowest safe dtype and packs the tokens at that width,
// then assembles the block header, column descriptors and payloads.
// Encoding is deterministic and side-effect free; the same state always
// produces the same bytes.
type TreeEncoder struct {
	schema    *schema.Schema
	engine    endian.EndianEngine
	bigEndian bool
}

// NewTreeEncoder creates a tree encoder for the given schema and byte
// order.
func NewTreeEncoder(sch *schema.Schema, engine endian.EndianEngine) *TreeEncoder {
	return &TreeEncoder{
		schema:    sch,
		engine:    engine,
		bigEndian: engine == endian.GetBigEndianEngine(),
	}
}

// Encode encodes the tree state into one packed block.
//
// A column whose values exceed every candidate dtype fails the whole
// call with ErrUnrepresentableRange; the error names the column. The
// encoder never widens beyond the declared candidates and never
// truncates a value.
func (e *TreeEncoder) Encode(state *TreeState) ([]byte, error) {
	if err := state.Validate(e.schema); err != nil {
		return nil, err
	}
	if e.schema.Len() > section.MaxColumnCount {
		return nil, fmt.Errorf("%w: %d columns exceed the block limit", errs.ErrInvalidSchema, e.schema.Len())
	}

	cols := e.schema.Columns()
	encoded := make([]encodedColumn, 0, len(cols))
	for _, spec := range cols {
		ec, err := e.encodeColumn(spec, state.Columns[spec.Name])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", spec.Name, err)
		}
		encoded = append(encoded, ec)
	}

	hdr := section.NewBlockHeader(uint32(state.NodeCount), uint32(state.MaxDepth), uint8(len(cols))) //nolint:gosec
	if e.bigEndian {
		hdr.WithBigEndian()
	}

	buf := pool.GetBlockBuffer()
	defer pool.PutBlockBuffer(buf)

	buf.B = hdr.AppendTo(buf.B)
	for _, ec := range encoded {
		var err error
		buf.B, err = ec.desc.AppendTo(buf.B, e.engine)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", ec.desc.Name, err)
		}
	}
	for _, ec := range encoded {
		buf.MustWrite(ec.payload)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

func (e *TreeEncoder) encodeColumn(spec schema.ColumnSpec, col Column) (encodedColumn, error) {
	var ec encodedColumn

	switch spec.Kind {
	case schema.KindInt:
		transform := spec.Transform
		if len(col.Ints) < 2 {
			// Delta encoding is undefined below two elements.
			transform = format.TransformRaw
		}

		tokens, err := encoding.TransformInts(col.Ints, transform, spec.Sentinel)
		if err != nil {
			return ec, err
		}

		// After a sentinel-aware transform the sentinel no longer
		// appears in the token stream; only raw tokens still carry it.
		rangeSentinel := spec.Sentinel
		if transform != format.TransformRaw {
			rangeSentinel = nil
		}

		dt, bias, err := encoding.ChooseIntDType(tokens, spec.Candidates, spec.AllowBias, rangeSentinel)
		if err != nil {
			return ec, err
		}

		payload, err := encoding.AppendInts(nil, tokens, bias, dt, e.engine)
		if err != nil {
			return ec, err
		}

		ec.desc = section.ColumnDescriptor{
			Name:      spec.Name,
			DType:     dt,
			Transform: transform,
			Bias:      bias,
			Count:     uint32(len(tokens)),   //nolint:gosec
			ByteLen:   uint32(len(payload)),  //nolint:gosec
		}
		ec.payload = payload

	case schema.KindFloat:
		dt, err := encoding.ChooseFloatDType(col.Floats, spec.Candidates)
		if err != nil {
			return ec, err
		}

		payload, err := encoding.AppendFloats(nil, col.Floats, dt, e.engine)
		if err != nil {
			return ec, err
		}

		ec.desc = section.ColumnDescriptor{
			Name:      spec.Name,
			DType:     dt,
			Transform: format.TransformRaw,
			Count:     uint32(len(col.Floats)), //nolint:gosec
			ByteLen:   uint32(len(payload)),    //nolint:gosec
		}
		ec.payload = payload

	default:
		return ec, fmt.Errorf("%w: unknown column kind", errs.ErrInvalidSchema)
	}

	return ec, nil
}
