// Package endian provides byte order utilities for the treepack binary
// format.
//
// It combines the ByteOrder and AppendByteOrder interfaces from
// encoding/binary into a single EndianEngine interface, so format code
// can both read fixed offsets and append to growing buffers through one
// value. binary.LittleEndian and binary.BigEndian satisfy the interface
// as-is.
//
// Treepack blocks are little-endian by default; big-endian is supported
// for interoperability and recorded in the header flags.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from
// encoding/binary. The returned engines are immutable and stateless,
// safe for concurrent use.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
