package section

import (
	"fmt"

	"github.com/arloliu/treepack/endian"
	"github.com/arloliu/treepack/errs"
)

// TreeIndexEntry is one record of the model's tree index. The index has
// one entry per tree in original tree order; entry i describes block i,
// so blocks can be sliced and decoded independently (and in parallel)
// while reassembly order stays fixed.
//
// Layout (TreeIndexEntrySize bytes):
//
//	0-3 NodeCount uint32
//	4-7 BlockLen  uint32, length of the tree's packed block in bytes
type TreeIndexEntry struct {
	NodeCount uint32
	BlockLen  uint32
}

// AppendTo serializes the entry, appending to dst.
func (e TreeIndexEntry) AppendTo(dst []byte, engine endian.EndianEngine) []byte {
	dst = engine.AppendUint32(dst, e.NodeCount)
	dst = engine.AppendUint32(dst, e.BlockLen)

	return dst
}

// ParseTreeIndexEntry parses one entry from the front of data.
func ParseTreeIndexEntry(data []byte, engine endian.EndianEngine) (TreeIndexEntry, error) {
	if len(data) < TreeIndexEntrySize {
		return TreeIndexEntry{}, fmt.Errorf("%w: truncated tree index entry", errs.ErrCorruptFormat)
	}

	return TreeIndexEntry{
		NodeCount: engine.Uint32(data[0:4]),
		BlockLen:  engine.Uint32(data[4:8]),
	}, nil
}
