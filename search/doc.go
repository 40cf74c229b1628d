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


// Package search provides fused multi-modality search over the file index.
//
// The Searcher type implements a multi-stage search algorithm that combines:
//   - Keyword matching over indexed file metadata
//   - Semantic search using vector embeddings
//   - Graph proximity through tag and project relationships
//
// Modalities run concurrently and fail independently; a degraded result
// set beats a failed query. Results are scored, ranked, and optionally
// memoized through CachedSearcher.
package search
