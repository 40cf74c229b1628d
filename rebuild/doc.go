// Package rebuild recomputes derived indexes from the metadata store.
//
// The vector rebuilder re-embeds every live file in batches with retry
// and backoff, reporting progress as it goes. The graph rebuilder
// recomputes relationship edges from tags, projects, and access history.
// Both run under a Coordinator: starting a new rebuild supersedes the
// one in flight, and superseded results are discarded.
package rebuild
