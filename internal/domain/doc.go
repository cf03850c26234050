// Package domain contains the core entities and value objects for seqbatch.
//
// This package is the innermost layer. It has no dependencies on storage,
// logging or configuration and holds only data types and their invariants.
//
// # Entities
//
//   - [Sample]: one immutable multi-rate training record keyed by index
//   - [Schema]: the versioned field set a Sample is validated against
//   - [Bucket]: the sample indices that make up one batch
//   - [Batch]: the padded, masked tensors produced from one bucket
//
// Matrices and tensors are row-major float32 slices with explicit shapes.
package domain
