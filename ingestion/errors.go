package ingestion

import "errors"

var (
	// ErrFileStoreRequired is returned when a file store is not provided.
	ErrFileStoreRequired = errors.New("file store required")

	// ErrNotRegularFile is returned when an index target is not a regular file.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrQueueFull is returned when the background queue cannot accept more work.
	ErrQueueFull = errors.New("ingestion queue full")
)
