package section

const (
	// Bit masks for the Options word shared by all headers.
	EndiannessMask = 0x0001 // bit 0: 0=little-endian, 1=big-endian
	DigestMask     = 0x0002 // bit 1: model payload digest present (model header only)
	ReservedMask   = 0x000C // bits 2-3: reserved, must be zero
	MagicMask      = 0xFFF0 // bits 4-15: magic number

	// Magic numbers (bits 4-15 of the Options word).
	MagicTreeBlockV1 = 0xEC10 // tree packed block
	MagicModelV1     = 0xED10 // encoded model (ensemble)
	MagicEnvelopeV1  = 0xEE10 // top-level dump envelope

	// FormatVersion is the current format version written by this
	// package. Decoders reject any other version explicitly.
	FormatVersion = 1
)

// Fixed section sizes in bytes.
const (
	BlockHeaderSize    = 12 // fixed part of a tree block header
	ModelHeaderSize    = 32 // fixed model header
	TreeIndexEntrySize = 8  // per-tree index entry in the model index

	// MaxColumnCount bounds the columns of one block; the column count
	// is stored as a single byte.
	MaxColumnCount = 255

	// MaxColumnNameLength bounds column names; names are stored with a
	// uint8 length prefix.
	MaxColumnNameLength = 255
)
