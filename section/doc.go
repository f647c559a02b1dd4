// Package section defines the fixed binary layouts of the treepack
// format: the per-tree block header and column descriptors, the model
// header, and the per-tree index entries.
//
// Every layout is self-describing. Headers start with a 16-bit Options
// word whose upper 12 bits are a magic number and whose low bits carry
// flags (the Options word itself is always little-endian, so the
// endianness flag can be read before the byte order is known), followed
// by an explicit format version byte. Parsers validate magic, version
// and declared lengths before touching any payload; nothing is ever
// inferred from content.
package section
