// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage provides the storage abstraction layer for shelf.
//
// This package defines store interfaces that decouple storage implementation
// from business logic. Each persisted concern gets its own store so that
// loss or corruption of one store degrades only that retrieval modality:
//
//   - FileStore: file metadata plus the keyword inverted index
//   - EventStore: the append-only lifecycle event log
//   - VectorStore: embeddings and their generation metadata
//   - GraphStore: relationship nodes and edges
//   - PatternStore: learned behavioral patterns
//   - FolderStore: smart folder specifications
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return interface types to
// enforce abstraction:
//
//	files, err := badger.NewFileStore(backend, events)  // returns storage.FileStore
//
// # Thread Safety
//
// All store implementations must be thread-safe. Writes within one store
// are serialized by the implementation; reads may run concurrently with
// committed writes.
//
// # Context Support
//
// All store methods accept context.Context for cancellation and timeout
// support. Pass context.Background() for operations without specific
// timeout requirements.
package storage
