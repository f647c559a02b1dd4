// Package compress provides the byte-stream compressor collaborators
// that treepack hands its encoded model bytes to.
//
// The tree codec itself performs structural compression (transforms and
// dtype minimization); this package implements the general-purpose
// second stage applied to the whole encoded model. The core is agnostic
// to which codec runs; the envelope records the choice, and
// CompressionNone is a valid choice.
//
// Supported algorithms:
//   - None: no compression (fastest, largest)
//   - Zstd: best ratio, moderate speed (pure Go by default, cgo via the
//     cgozstd build tag)
//   - S2: balanced ratio and speed
//   - LZ4: fast decompression, moderate ratio
package compress
