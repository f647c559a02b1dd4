package blob

import (
	"context"
	"fmt"
	"runtime"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/treepack/errs"
	"github.com/arloliu/treepack/schema"
	"github.com/arloliu/treepack/section"
)

// ModelDecoderOption configures a ModelDecoder.
type ModelDecoderOption func(*ModelDecoder) error

// ModelDecoder decodes an encoded model back into a ModelState.
//
// Validation happens outside-in: header magic and version first, then
// section offsets and the payload digest, and only then are individual
// tree blocks parsed, in parallel, reassembled into original tree
// order. Any failure aborts the whole decode; there is no partial
// recovery.
type ModelDecoder struct {
	schema  *schema.Schema
	workers int
}

// NewModelDecoder creates a model decoder. Defaults: the built-in tree
// schema and one worker per CPU.
func NewModelDecoder(opts ...ModelDecoderOption) (*ModelDecoder, error) {
	d := &ModelDecoder{
		schema:  schema.Tree(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// WithDecoderSchema sets the column schema used for every tree.
func WithDecoderSchema(sch *schema.Schema) ModelDecoderOption {
	return func(d *ModelDecoder) error {
		if sch == nil {
			return fmt.Errorf("%w: nil schema", errs.ErrInvalidSchema)
		}
		d.schema = sch

		return nil
	}
}

// WithDecoderWorkers bounds the number of trees decoded concurrently.
func WithDecoderWorkers(n int) ModelDecoderOption {
	return func(d *ModelDecoder) error {
		if n < 1 {
			return fmt.Errorf("decoder workers must be positive, got %d", n)
		}
		d.workers = n

		return nil
	}
}

// Decode parses and decodes a complete encoded model.
func (d *ModelDecoder) Decode(data []byte) (*ModelState, error) {
	var hdr section.ModelHeader
	if err := hdr.Parse(data); err != nil {
		return nil, err
	}
	engine := hdr.Engine()

	if int64(hdr.BlockOffset) > int64(len(data)) {
		return nil, fmt.Errorf("%w: block offset beyond input", errs.ErrCorruptFormat)
	}

	library, err := parseLibraryTag(data[section.ModelHeaderSize:hdr.IndexOffset])
	if err != nil {
		return nil, err
	}

	treeCount := int(hdr.TreeCount)
	indexSize := treeCount * section.TreeIndexEntrySize
	if int(hdr.BlockOffset)-int(hdr.IndexOffset) != indexSize {
		return nil, fmt.Errorf("%w: index section size mismatch", errs.ErrCorruptFormat)
	}

	entries := make([]section.TreeIndexEntry, 0, treeCount)
	p := int(hdr.IndexOffset)
	for i := 0; i < treeCount; i++ {
		entry, err := section.ParseTreeIndexEntry(data[p:], engine)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		p += section.TreeIndexEntrySize
	}

	payload := data[hdr.BlockOffset:]
	var total int
	for _, entry := range entries {
		total += int(entry.BlockLen)
	}
	if total != len(payload) {
		return nil, fmt.Errorf("%w: block payload is %d bytes, index declares %d", errs.ErrCorruptFormat, len(payload), total)
	}

	if hdr.HasDigest() {
		if digest := xxhash.Sum64(payload); digest != hdr.PayloadDigest {
			return nil, fmt.Errorf("%w: payload digest mismatch", errs.ErrCorruptFormat)
		}
	}

	trees, err := d.decodeBlocks(payload, entries)
	if err != nil {
		return nil, err
	}

	model := &ModelState{
		LeafValueWidth: int(hdr.LeafValueWidth),
		Library:        library,
		Trees:          trees,
	}
	for i, tree := range trees {
		if tree.NodeCount > 0 && tree.ValueWidth != model.LeafValueWidth {
			return nil, fmt.Errorf("%w: tree %d value width %d, model declares %d",
				errs.ErrCorruptFormat, i, tree.ValueWidth, model.LeafValueWidth)
		}
	}

	return model, nil
}

// decodeBlocks decodes every tree block on the bounded worker pool,
// reassembling results into original tree order. Worker completion
// order is irrelevant; slot order is not.
func (d *ModelDecoder) decodeBlocks(payload []byte, entries []section.TreeIndexEntry) ([]*TreeState, error) {
	trees := make([]*TreeState, len(entries))

	offsets := make([]int, len(entries))
	var off int
	for i, entry := range entries {
		offsets[i] = off
		off += int(entry.BlockLen)
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(d.workers)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			dec := NewTreeDecoder(d.schema)
			tree, err := dec.Decode(payload[offsets[i] : offsets[i]+int(entry.BlockLen)])
			if err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
			if tree.NodeCount != int(entry.NodeCount) {
				return fmt.Errorf("%w: tree %d has %d nodes, index declares %d",
					errs.ErrCorruptFormat, i, tree.NodeCount, entry.NodeCount)
			}
			trees[i] = tree

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return trees, nil
}

func parseLibraryTag(region []byte) (string, error) {
	if len(region) < 1 || 1+int(region[0]) != len(region) {
		return "", fmt.Errorf("%w: malformed library tag", errs.ErrCorruptFormat)
	}

	return string(region[1:]), nil
}
