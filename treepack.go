// Package treepack persists trained decision-tree ensembles in a
// compact, lossless binary format.
//
// Tree state is stored column by column: child indices, split features,
// thresholds, impurities, sample statistics and leaf values each get a
// structural transform (delta, delta+zigzag or raw) and are packed at
// the narrowest dtype that provably preserves every value. The packed
// blocks are self-describing, so loading reconstructs arrays bit-
// identical to the originals: a reloaded model predicts exactly what
// the source model predicted.
//
// # Basic Usage
//
// Dumping and loading a forest:
//
//	forest := &model.Forest{Trees: trees, ValueWidth: 1}
//
//	var buf bytes.Buffer
//	if err := treepack.Dump(forest, &buf); err != nil {
//	    log.Fatal(err)
//	}
//
//	loaded, err := treepack.Load(&buf)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reloaded := loaded.(*model.Forest)
//
// File helpers pick the byte-stream compressor from the extension:
//
//	treepack.DumpFile(forest, "model.tp.zst") // zstd-compressed
//	treepack.DumpFile(forest, "model.tp")     // uncompressed
//
// Custom model types plug in through a registry of extract/build hooks;
// see the registry package.
package treepack

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/arloliu/treepack/blob"
	"github.com/arloliu/treepack/compress"
	"github.com/arloliu/treepack/errs"
	"github.com/arloliu/treepack/format"
	"github.com/arloliu/treepack/model"
	"github.com/arloliu/treepack/registry"
	"github.com/arloliu/treepack/section"
)

// Option configures Dump, Load and the Marshal/Unmarshal helpers.
type Option func(*config) error

type config struct {
	registry    *registry.Registry
	compression format.CompressionType
	workers     int
	bigEndian   bool
	digest      bool
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{
		compression: format.CompressionNone,
		digest:      true,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.registry == nil {
		cfg.registry = DefaultRegistry()
	}

	return cfg, nil
}

// WithRegistry uses a custom hook registry instead of the default one.
func WithRegistry(r *registry.Registry) Option {
	return func(cfg *config) error {
		if r == nil {
			return fmt.Errorf("%w: nil registry", errs.ErrInvalidCodec)
		}
		cfg.registry = r

		return nil
	}
}

// WithCompression selects the byte-stream compressor applied to the
// encoded model. The choice is recorded in the envelope, so Load needs
// no matching option.
func WithCompression(c format.CompressionType) Option {
	return func(cfg *config) error {
		if _, err := compress.GetCodec(c); err != nil {
			return err
		}
		cfg.compression = c

		return nil
	}
}

// WithWorkers bounds the number of trees encoded or decoded
// concurrently. Defaults to one worker per CPU.
func WithWorkers(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("workers must be positive, got %d", n)
		}
		cfg.workers = n

		return nil
	}
}

// WithBigEndian writes the encoded model in big-endian byte order.
func WithBigEndian() Option {
	return func(cfg *config) error {
		cfg.bigEndian = true

		return nil
	}
}

// WithPayloadDigest enables or disables the integrity digest over the
// encoded tree blocks. Enabled by default.
func WithPayloadDigest(enabled bool) Option {
	return func(cfg *config) error {
		cfg.digest = enabled

		return nil
	}
}

// DefaultRegistry returns a fresh registry with the built-in model
// codecs (single tree and forest) registered.
func DefaultRegistry() *registry.Registry {
	r := registry.NewRegistry()
	r.MustRegister(model.TreeCodec())
	r.MustRegister(model.ForestCodec())

	return r
}

// Dump encodes a registered model instance and writes the treepack
// envelope to w.
func Dump(m any, w io.Writer, opts ...Option) error {
	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}

	codec, err := cfg.registry.LookupModel(m)
	if err != nil {
		return err
	}
	if len(codec.Kind) > 255 {
		return fmt.Errorf("%w: kind %q exceeds 255 bytes", errs.ErrInvalidCodec, codec.Kind)
	}

	state, err := codec.Extract(m)
	if err != nil {
		return fmt.Errorf("extract %q: %w", codec.Kind, err)
	}

	encOpts := []blob.ModelEncoderOption{blob.WithPayloadDigest(cfg.digest)}
	if cfg.workers > 0 {
		encOpts = append(encOpts, blob.WithWorkers(cfg.workers))
	}
	if cfg.bigEndian {
		encOpts = append(encOpts, blob.WithBigEndian())
	}
	enc, err := blob.NewModelEncoder(encOpts...)
	if err != nil {
		return err
	}

	encoded, err := enc.Encode(state)
	if err != nil {
		return err
	}

	cc, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return err
	}
	payload, err := cc.Compress(encoded)
	if err != nil {
		return fmt.Errorf("compress model payload: %w", err)
	}

	options := uint16(section.MagicEnvelopeV1)
	if cfg.bigEndian {
		options |= section.EndiannessMask
	}

	header := make([]byte, 0, 5+len(codec.Kind))
	header = append(header, byte(options), byte(options>>8))
	header = append(header, section.FormatVersion, uint8(cfg.compression))
	header = append(header, uint8(len(codec.Kind)))
	header = append(header, codec.Kind...)

	if _, err := w.Write(header); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}

	return nil
}

// Load reads a treepack envelope from r and reconstructs the model
// instance through its registered hook.
func Load(r io.Reader, opts ...Option) (any, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < 5 {
		return nil, fmt.Errorf("%w: envelope is %d bytes", errs.ErrCorruptFormat, len(data))
	}

	options := uint16(data[0]) | uint16(data[1])<<8
	if options&section.MagicMask != section.MagicEnvelopeV1 {
		return nil, fmt.Errorf("%w: bad envelope magic 0x%04x", errs.ErrCorruptFormat, options&section.MagicMask)
	}
	if data[2] != section.FormatVersion {
		return nil, fmt.Errorf("%w: unsupported envelope version %d", errs.ErrCorruptFormat, data[2])
	}

	compression := format.CompressionType(data[3])
	kindLen := int(data[4])
	if len(data) < 5+kindLen {
		return nil, fmt.Errorf("%w: truncated envelope kind", errs.ErrCorruptFormat)
	}
	kind := string(data[5 : 5+kindLen])

	codec, err := cfg.registry.LookupKind(kind)
	if err != nil {
		return nil, err
	}

	cc, err := compress.GetCodec(compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCorruptFormat, err)
	}
	encoded, err := cc.Decompress(data[5+kindLen:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCorruptFormat, err)
	}

	decOpts := []blob.ModelDecoderOption{}
	if cfg.workers > 0 {
		decOpts = append(decOpts, blob.WithDecoderWorkers(cfg.workers))
	}
	dec, err := blob.NewModelDecoder(decOpts...)
	if err != nil {
		return nil, err
	}

	state, err := dec.Decode(encoded)
	if err != nil {
		return nil, err
	}

	built, err := codec.Build(state)
	if err != nil {
		return nil, fmt.Errorf("build %q: %w", kind, err)
	}

	return built, nil
}

// Marshal encodes a registered model instance into a byte slice.
func Marshal(m any, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := Dump(m, &buf, opts...); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Unmarshal reconstructs a model instance from Marshal output.
func Unmarshal(data []byte, opts ...Option) (any, error) {
	return Load(bytes.NewReader(data), opts...)
}

// CompressionByExtension maps a file extension to the compressor
// DumpFile uses: ".zst" to Zstd, ".lz4" to LZ4, ".s2" to S2, anything
// else to none.
func CompressionByExtension(path string) format.CompressionType {
	switch filepath.Ext(path) {
	case ".zst":
		return format.CompressionZstd
	case ".lz4":
		return format.CompressionLZ4
	case ".s2":
		return format.CompressionS2
	default:
		return format.CompressionNone
	}
}

// DumpFile writes a model to path, choosing the byte-stream compressor
// from the file extension.
func DumpFile(m any, path string, opts ...Option) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	opts = append(opts, WithCompression(CompressionByExtension(path)))
	if err := Dump(m, f, opts...); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}

// LoadFile reads a model from path. The compressor is recorded in the
// envelope, so any extension loads correctly.
func LoadFile(path string, opts ...Option) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f, opts...)
}
