// Package local implements the ai interfaces without any external service.
//
// Vectors come from a deterministic hashed bag-of-words projection. They are
// much weaker than learned embeddings but keep similarity search working
// offline, and their determinism makes them useful in tests.
package local
