// Package encoding implements the per-column value pipeline of the
// treepack format: structural transforms (raw, delta, delta+zigzag),
// dtype minimization, and fixed-width packing.
//
// The pipeline for an integer column is
//
//	tokens := TransformInts(values, transform, sentinel)
//	dtype, bias, err := ChooseIntDType(tokens, candidates, allowBias, sentinel)
//	payload, err := AppendInts(nil, tokens, bias, dtype, engine)
//
// and the decode side is the exact mirror. Every step is lossless: for
// any representable input, restoring the transformed, packed bytes
// reproduces the original values bit for bit. Dtype minimization is a
// storage-time optimization only; decoded columns always come back at
// native width (int64 / float64).
package encoding
