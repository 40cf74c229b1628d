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


package badger

import "github.com/poiesic/shelf/storage"

// Stores bundles every store sharing one backend.
type Stores struct {
	Files    storage.FileStore
	Events   storage.EventStore
	Vectors  storage.VectorStore
	Graph    storage.GraphStore
	Patterns storage.PatternStore
	Folders  storage.FolderStore

	backend *Backend
}

// Close closes every store and the shared backend.
func (s *Stores) Close() error {
	for _, store := range []storage.Store{
		s.Files, s.Events, s.Vectors, s.Graph, s.Patterns, s.Folders,
	} {
		if store != nil {
			store.Close()
		}
	}
	return s.backend.Close()
}

// OpenStores opens every store over one backend at filePath.
// Caller must close the result when done.
func OpenStores(filePath string, inMemory bool) (*Stores, error) {
	backend, err := OpenBackend(filePath, inMemory)
	if err != nil {
		return nil, err
	}

	events, err := NewEventStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	files, err := NewFileStore(backend, events)
	if err != nil {
		events.Close()
		backend.Close()
		return nil, err
	}

	graph, err := NewGraphStore(backend)
	if err != nil {
		files.Close()
		events.Close()
		backend.Close()
		return nil, err
	}

	return &Stores{
		Files:    files,
		Events:   events,
		Vectors:  NewVectorStore(backend),
		Graph:    graph,
		Patterns: NewPatternStore(backend),
		Folders:  NewFolderStore(backend),
		backend:  backend,
	}, nil
}
