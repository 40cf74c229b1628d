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


// Package ai provides abstractions for the embedding services used in Shelf.
//
// The package defines the Embedder and Provider interfaces so the indexing
// and search layers depend on abstractions rather than a concrete embedding
// backend.
//
// # Implementation Packages
//
// Three implementation sub-packages exist:
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/local: deterministic hash-based embedder needing no network service
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewProvider, local.NewProvider) return interface
// types to enforce abstraction. Test utility constructors (mock.NewMockEmbedder)
// return concrete types to enable assertions and behavior injection.
//
// The Provider's Backend identifier is persisted with stored vectors; vectors
// from different backends are never compared, and a backend change marks the
// whole vector store stale until a rebuild.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithEmbeddingModel("embeddinggemma"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    // fall back to the local embedder
//	    provider = local.NewProvider(config)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "quarterly invoice")
package ai
