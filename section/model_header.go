package section

import (
	"fmt"

	"github.com/arloliu/treepack/endian"
	"github.com/arloliu/treepack/errs"
)

// ModelHeader is the fixed-size header at the start of an encoded
// model. It is followed by the library tag (uint8 length prefix plus
// bytes), the tree index and the concatenated tree blocks.
//
// Layout (ModelHeaderSize bytes):
//
//	0-1   Options        magic 0xED10 | endianness | digest flag
//	2     Version        format version, currently 1
//	3     reserved       must be zero
//	4-7   TreeCount      number of trees in the ensemble
//	8-11  LeafValueWidth values per node in the value column
//	12-15 IndexOffset    byte offset of the tree index section
//	16-19 BlockOffset    byte offset of the first tree block
//	20-27 PayloadDigest  xxhash64 of the block region, 0 when disabled
//	28-31 reserved       must be zero
type ModelHeader struct {
	Options        uint16
	Version        uint8
	TreeCount      uint32
	LeafValueWidth uint32
	IndexOffset    uint32
	BlockOffset    uint32
	PayloadDigest  uint64
}

// NewModelHeader creates a little-endian model header with the digest
// flag set. Offsets are filled in by the model encoder once the library
// tag and index sizes are known.
func NewModelHeader(treeCount, leafValueWidth uint32) ModelHeader {
	return ModelHeader{
		Options:        MagicModelV1 | DigestMask,
		Version:        FormatVersion,
		TreeCount:      treeCount,
		LeafValueWidth: leafValueWidth,
	}
}

// IsBigEndian returns whether the model payload uses big-endian byte order.
func (h ModelHeader) IsBigEndian() bool {
	return h.Options&EndiannessMask != 0
}

// WithBigEndian marks the model payload as big-endian.
func (h *ModelHeader) WithBigEndian() {
	h.Options |= EndiannessMask
}

// HasDigest returns whether the header carries a payload digest.
func (h ModelHeader) HasDigest() bool {
	return h.Options&DigestMask != 0
}

// SetDigestEnabled sets or clears the payload digest flag.
func (h *ModelHeader) SetDigestEnabled(enabled bool) {
	if enabled {
		h.Options |= DigestMask
	} else {
		h.Options &^= DigestMask
	}
}

// Engine returns the endian engine matching the header's endianness flag.
func (h ModelHeader) Engine() endian.EndianEngine {
	if h.IsBigEndian() {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// AppendTo serializes the header, appending to dst.
func (h ModelHeader) AppendTo(dst []byte) []byte {
	engine := h.Engine()

	dst = append(dst, byte(h.Options), byte(h.Options>>8))
	dst = append(dst, h.Version, 0)
	dst = engine.AppendUint32(dst, h.TreeCount)
	dst = engine.AppendUint32(dst, h.LeafValueWidth)
	dst = engine.AppendUint32(dst, h.IndexOffset)
	dst = engine.AppendUint32(dst, h.BlockOffset)
	dst = engine.AppendUint64(dst, h.PayloadDigest)
	dst = engine.AppendUint32(dst, 0)

	return dst
}

// Parse parses and validates a model header from data. Magic and
// version are checked first; any mismatch yields ErrCorruptFormat.
func (h *ModelHeader) Parse(data []byte) error {
	if len(data) < ModelHeaderSize {
		return fmt.Errorf("%w: model header is %d bytes, want %d", errs.ErrCorruptFormat, len(data), ModelHeaderSize)
	}

	h.Options = uint16(data[0]) | uint16(data[1])<<8
	if h.Options&MagicMask != MagicModelV1 {
		return fmt.Errorf("%w: bad model magic 0x%04x", errs.ErrCorruptFormat, h.Options&MagicMask)
	}
	if h.Options&ReservedMask != 0 {
		return fmt.Errorf("%w: reserved model flags set", errs.ErrCorruptFormat)
	}

	h.Version = data[2]
	if h.Version != FormatVersion {
		return fmt.Errorf("%w: unsupported model format version %d", errs.ErrCorruptFormat, h.Version)
	}

	engine := h.Engine()
	h.TreeCount = engine.Uint32(data[4:8])
	h.LeafValueWidth = engine.Uint32(data[8:12])
	h.IndexOffset = engine.Uint32(data[12:16])
	h.BlockOffset = engine.Uint32(data[16:20])
	h.PayloadDigest = engine.Uint64(data[20:28])

	if h.IndexOffset < ModelHeaderSize || h.BlockOffset < h.IndexOffset {
		return fmt.Errorf("%w: invalid model section offsets", errs.ErrCorruptFormat)
	}

	return nil
}
