// Package ports defines the interfaces that connect the core packages to
// storage and logging adapters.
//
// # Port Interfaces
//
//   - [SampleStore]: read-only indexed access to samples
//   - [SizeCache]: persisted per-split size arrays
//   - [StatsRepository]: persisted normalization statistics
//   - [Logger]: structured logging abstraction
//
// The size index, scheduler, collator and pipeline driver depend only on
// these interfaces. Adapters under internal/adapters implement them with
// goleveldb, afero and in-memory maps, so tests can substitute in-memory
// implementations and assert caching behaviour.
package ports
