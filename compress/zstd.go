package compress

// ZstdCompressor provides Zstandard compression for encoded models.
//
// Zstd offers the best compression ratio of the built-in codecs and is
// the recommended choice for model artifacts written to storage. Two
// implementations exist behind build tags: the default pure-Go
// klauspost/compress encoder, and a cgo binding to libzstd enabled with
// the cgozstd tag for workloads where encode throughput dominates.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
