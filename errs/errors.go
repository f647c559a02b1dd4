// Package errs defines the sentinel errors shared across treepack packages.
//
// Callers are expected to match with errors.Is and add context at the
// failure site, e.g.:
//
//	return fmt.Errorf("%w: column %q", errs.ErrUnrepresentableRange, name)
package errs

import "errors"

var (
	// ErrUnrepresentableRange indicates that a column's values exceed the
	// range of every candidate dtype declared for it. This is fatal for
	// the enclosing tree and model encode; the codec never widens beyond
	// the declared candidates and never truncates.
	ErrUnrepresentableRange = errors.New("column values exceed every candidate dtype")

	// ErrCorruptFormat indicates malformed input on decode: bad magic,
	// unsupported format version, truncated payload, or a digest
	// mismatch. Decoding never attempts partial recovery.
	ErrCorruptFormat = errors.New("corrupt treepack format")

	// ErrUnsupportedModelType indicates an encode or decode request for a
	// model type with no registered serialization hook.
	ErrUnsupportedModelType = errors.New("unsupported model type")

	// ErrMissingColumn indicates a TreeState lacking a column the schema
	// declares.
	ErrMissingColumn = errors.New("missing tree state column")

	// ErrColumnLengthMismatch indicates a TreeState column whose length
	// disagrees with the node count.
	ErrColumnLengthMismatch = errors.New("column length mismatch")

	// ErrInvalidSchema indicates a schema definition that cannot be used:
	// duplicate or empty column names, empty candidate lists, or a
	// candidate whose kind disagrees with the column kind.
	ErrInvalidSchema = errors.New("invalid column schema")

	// ErrInvalidDType indicates a dtype id that is unknown or illegal in
	// its position (e.g. a float dtype for an integer column).
	ErrInvalidDType = errors.New("invalid dtype")

	// ErrInvalidTransform indicates an unknown transform id.
	ErrInvalidTransform = errors.New("invalid transform")

	// ErrCodecRegistered indicates a duplicate hook registration for a
	// model type or kind.
	ErrCodecRegistered = errors.New("model codec already registered")

	// ErrInvalidCodec indicates an incomplete hook registration (missing
	// type, kind, extract or build function).
	ErrInvalidCodec = errors.New("invalid model codec")
)
