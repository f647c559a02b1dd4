// Package blob implements the treepack codecs: the tree codec that
// turns one tree's node arrays into a self-describing packed block, and
// the model codec that assembles per-tree blocks plus ensemble metadata
// into a complete encoded model.
//
// All state is transient: encoders and decoders are created per call
// site, hold no data between calls, and share only the immutable column
// schema. Trees of an ensemble are encoded and decoded on a bounded
// worker pool; reassembly always restores original tree order.
package blob
