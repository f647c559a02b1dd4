package blob

import (
	"context"
	"fmt"
	"runtime"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/treepack/endian"
	"github.com/arloliu/treepack/errs"
	"github.com/arloliu/treepack/internal/pool"
	"github.com/arloliu/treepack/schema"
	"github.com/arloliu/treepack/section"
)

// DefaultLibraryTag is the library tag written into model headers by
// default.
const DefaultLibraryTag = "treepack/1"

// ModelEncoderOption configures a ModelEncoder.
type ModelEncoderOption func(*ModelEncoder) error

// ModelEncoder encodes a ModelState into the treepack model layout:
// model header, library tag, tree index, then one packed block per tree
// in original order.
//
// Tree blocks are independent, so they are encoded on a bounded worker
// pool; completion order is irrelevant because each result lands at its
// tree index. The first per-tree failure cancels the remaining work and
// fails the whole call; a partially encoded ensemble is never returned.
type ModelEncoder struct {
	schema    *schema.Schema
	engine    endian.EndianEngine
	bigEndian bool
	workers   int
	digest    bool
	library   string
}

// NewModelEncoder creates a model encoder. Defaults: the built-in tree
// schema, little-endian byte order, one worker per CPU, payload digest
// enabled, DefaultLibraryTag.
func NewModelEncoder(opts ...ModelEncoderOption) (*ModelEncoder, error) {
	e := &ModelEncoder{
		schema:  schema.Tree(),
		engine:  endian.GetLittleEndianEngine(),
		workers: runtime.GOMAXPROCS(0),
		digest:  true,
		library: DefaultLibraryTag,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// WithSchema sets the column schema used for every tree.
func WithSchema(sch *schema.Schema) ModelEncoderOption {
	return func(e *ModelEncoder) error {
		if sch == nil {
			return fmt.Errorf("%w: nil schema", errs.ErrInvalidSchema)
		}
		e.schema = sch

		return nil
	}
}

// WithWorkers bounds the number of trees encoded concurrently.
func WithWorkers(n int) ModelEncoderOption {
	return func(e *ModelEncoder) error {
		if n < 1 {
			return fmt.Errorf("encoder workers must be positive, got %d", n)
		}
		e.workers = n

		return nil
	}
}

// WithBigEndian selects big-endian byte order for the encoded model.
func WithBigEndian() ModelEncoderOption {
	return func(e *ModelEncoder) error {
		e.engine = endian.GetBigEndianEngine()
		e.bigEndian = true

		return nil
	}
}

// WithLittleEndian selects little-endian byte order (the default).
func WithLittleEndian() ModelEncoderOption {
	return func(e *ModelEncoder) error {
		e.engine = endian.GetLittleEndianEngine()
		e.bigEndian = false

		return nil
	}
}

// WithPayloadDigest enables or disables the xxhash64 digest of the
// block payload region. Enabled by default.
func WithPayloadDigest(enabled bool) ModelEncoderOption {
	return func(e *ModelEncoder) error {
		e.digest = enabled

		return nil
	}
}

// WithLibraryTag sets the library tag recorded in the model header.
func WithLibraryTag(tag string) ModelEncoderOption {
	return func(e *ModelEncoder) error {
		if len(tag) > section.MaxColumnNameLength {
			return fmt.Errorf("library tag exceeds %d bytes", section.MaxColumnNameLength)
		}
		e.library = tag

		return nil
	}
}

// Encode encodes the model state into a complete encoded model.
func (e *ModelEncoder) Encode(model *ModelState) ([]byte, error) {
	if model == nil {
		return nil, fmt.Errorf("nil model state")
	}
	if model.LeafValueWidth < 1 {
		return nil, fmt.Errorf("%w: leaf value width %d", errs.ErrColumnLengthMismatch, model.LeafValueWidth)
	}
	for i, tree := range model.Trees {
		if tree == nil {
			return nil, fmt.Errorf("tree %d: nil tree state", i)
		}
		if tree.ValueWidth != model.LeafValueWidth {
			return nil, fmt.Errorf("%w: tree %d value width %d, model declares %d",
				errs.ErrColumnLengthMismatch, i, tree.ValueWidth, model.LeafValueWidth)
		}
	}

	blocks, err := e.encodeBlocks(model.Trees)
	if err != nil {
		return nil, err
	}

	return e.assemble(model, blocks)
}

// encodeBlocks encodes every tree on the bounded worker pool, keeping
// results in tree index order.
func (e *ModelEncoder) encodeBlocks(trees []*TreeState) ([][]byte, error) {
	blocks := make([][]byte, len(trees))

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(e.workers)
	for i, tree := range trees {
		i, tree := i, tree
		g.Go(func() error {
			// Abandon queued work once a sibling has failed.
			if err := ctx.Err(); err != nil {
				return err
			}

			enc := NewTreeEncoder(e.schema, e.engine)
			block, err := enc.Encode(tree)
			if err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
			blocks[i] = block

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return blocks, nil
}

func (e *ModelEncoder) assemble(model *ModelState, blocks [][]byte) ([]byte, error) {
	hdr := section.NewModelHeader(uint32(len(model.Trees)), uint32(model.LeafValueWidth)) //nolint:gosec
	if e.bigEndian {
		hdr.WithBigEndian()
	}
	hdr.SetDigestEnabled(e.digest)
	hdr.IndexOffset = uint32(section.ModelHeaderSize + 1 + len(e.library))                       //nolint:gosec
	hdr.BlockOffset = hdr.IndexOffset + uint32(len(model.Trees)*section.TreeIndexEntrySize)      //nolint:gosec

	if e.digest {
		d := xxhash.New()
		for _, block := range blocks {
			_, _ = d.Write(block)
		}
		hdr.PayloadDigest = d.Sum64()
	}

	buf := pool.GetModelBuffer()
	defer pool.PutModelBuffer(buf)

	buf.B = hdr.AppendTo(buf.B)
	buf.B = append(buf.B, uint8(len(e.library)))
	buf.B = append(buf.B, e.library...)
	for i, tree := range model.Trees {
		entry := section.TreeIndexEntry{
			NodeCount: uint32(tree.NodeCount),     //nolint:gosec
			BlockLen:  uint32(len(blocks[i])),     //nolint:gosec
		}
		buf.B = entry.AppendTo(buf.B, e.engine)
	}
	for _, block := range blocks {
		buf.MustWrite(block)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}
