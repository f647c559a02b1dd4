package section

import (
	"fmt"

	"github.com/arloliu/treepack/endian"
	"github.com/arloliu/treepack/errs"
)

// BlockHeader is the fixed-size header at the start of every tree
// packed block.
//
// Layout (BlockHeaderSize bytes):
//
//	0-1   Options     magic 0xEC10 | endianness flag (always little-endian itself)
//	2     Version     format version, currently 1
//	3     ColumnCount number of column descriptors that follow
//	4-7   NodeCount   nodes in the tree
//	8-11  MaxDepth    maximal depth of the tree
type BlockHeader struct {
	Options     uint16
	Version     uint8
	ColumnCount uint8
	NodeCount   uint32
	MaxDepth    uint32
}

// NewBlockHeader creates a little-endian block header for a tree with
// the given shape.
func NewBlockHeader(nodeCount, maxDepth uint32, columnCount uint8) BlockHeader {
	return BlockHeader{
		Options:     MagicTreeBlockV1,
		Version:     FormatVersion,
		ColumnCount: columnCount,
		NodeCount:   nodeCount,
		MaxDepth:    maxDepth,
	}
}

// IsBigEndian returns whether the block payload uses big-endian byte order.
func (h BlockHeader) IsBigEndian() bool {
	return h.Options&EndiannessMask != 0
}

// WithBigEndian marks the block payload as big-endian.
func (h *BlockHeader) WithBigEndian() {
	h.Options |= EndiannessMask
}

// Engine returns the endian engine matching the header's endianness flag.
func (h BlockHeader) Engine() endian.EndianEngine {
	if h.IsBigEndian() {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// AppendTo serializes the header, appending to dst.
func (h BlockHeader) AppendTo(dst []byte) []byte {
	engine := h.Engine()

	// The Options word is always little-endian so the endianness flag
	// can be read before the byte order is known.
	dst = append(dst, byte(h.Options), byte(h.Options>>8))
	dst = append(dst, h.Version, h.ColumnCount)
	dst = engine.AppendUint32(dst, h.NodeCount)
	dst = engine.AppendUint32(dst, h.MaxDepth)

	return dst
}

// Parse parses and validates a block header from data.
//
// Magic and version are checked before anything else; a mismatch or a
// short buffer yields ErrCorruptFormat.
func (h *BlockHeader) Parse(data []byte) error {
	if len(data) < BlockHeaderSize {
		return fmt.Errorf("%w: block header is %d bytes, want %d", errs.ErrCorruptFormat, len(data), BlockHeaderSize)
	}

	h.Options = uint16(data[0]) | uint16(data[1])<<8
	if h.Options&MagicMask != MagicTreeBlockV1 {
		return fmt.Errorf("%w: bad block magic 0x%04x", errs.ErrCorruptFormat, h.Options&MagicMask)
	}
	if h.Options&ReservedMask != 0 {
		return fmt.Errorf("%w: reserved block flags set", errs.ErrCorruptFormat)
	}

	h.Version = data[2]
	if h.Version != FormatVersion {
		return fmt.Errorf("%w: unsupported block format version %d", errs.ErrCorruptFormat, h.Version)
	}

	h.ColumnCount = data[3]

	engine := h.Engine()
	h.NodeCount = engine.Uint32(data[4:8])
	h.MaxDepth = engine.Uint32(data[8:12])

	return nil
}
