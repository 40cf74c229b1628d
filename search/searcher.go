package search

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/graph"
	"github.com/poiesic/shelf/storage"
	"github.com/poiesic/shelf/vector"
)

// Modality score weights. Keyword matches are exact and carry full weight;
// semantic similarity is fuzzier and slightly discounted; graph proximity
// boosts results found by another modality rather than ranking on its own.
const (
	keywordWeight   = 1.0
	semanticWeight  = 0.8
	graphBoost      = 0.3
	verbatimBoost   = 0.3
	minSemanticSim  = 0.3
	graphWalkDepth  = 2
)

// Searcher fuses keyword, semantic, and graph search over the file index.
// Each modality runs concurrently; a failed modality degrades the result
// set instead of failing the query, and only total failure is an error.
type Searcher struct {
	files  storage.FileStore
	index  *vector.Index
	graph  *graph.Graph
	logger *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithVectorIndex enables the semantic modality.
func WithVectorIndex(index *vector.Index) Option {
	return func(s *Searcher) error {
		s.index = index
		return nil
	}
}

// WithGraph enables the graph-boost modality.
func WithGraph(g *graph.Graph) Option {
	return func(s *Searcher) error {
		s.graph = g
		return nil
	}
}

// NewSearcher creates a new searcher. Only the file store is mandatory;
// search works keyword-only when the other modalities are absent.
func NewSearcher(files storage.FileStore, opts ...Option) (*Searcher, error) {
	if files == nil {
		return nil, ErrFileStoreRequired
	}

	s := &Searcher{
		files:  files,
		logger: slog.Default().With("component", "search"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Search runs a fused query and returns up to maxHits ranked results.
func (s *Searcher) Search(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, query, maxHits, nil)
}

// SearchWithMonitor runs a fused query with stage callbacks.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, maxHits int, monitor Monitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	var (
		wg             sync.WaitGroup
		keywordHits    []storage.TermHit
		semanticHits   []storage.VectorHit
		keywordErr     error
		semanticErr    error
		modalitiesUsed int
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		keywordHits, keywordErr = s.files.Search(ctx, query, maxHits)
	}()

	if s.index != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			semanticHits, semanticErr = s.index.Search(ctx, query, minSemanticSim, maxHits)
		}()
	}
	wg.Wait()

	keywordScores := make(map[core.ID]float32)
	if keywordErr != nil {
		s.logger.Warn("keyword modality failed", "err", keywordErr)
		monitor.ModalityFailed("keyword", keywordErr)
	} else {
		modalitiesUsed++
		ids := make([]core.ID, 0, len(keywordHits))
		for _, hit := range keywordHits {
			keywordScores[hit.FileId] = hit.Score
			ids = append(ids, hit.FileId)
		}
		monitor.AfterKeywordSearch(ids)
	}

	semanticScores := make(map[core.ID]float32)
	if s.index != nil {
		if semanticErr != nil {
			s.logger.Warn("semantic modality failed", "err", semanticErr)
			monitor.ModalityFailed("semantic", semanticErr)
		} else {
			modalitiesUsed++
			ids := make([]core.ID, 0, len(semanticHits))
			for _, hit := range semanticHits {
				semanticScores[hit.FileId] = hit.Score
				ids = append(ids, hit.FileId)
			}
			monitor.AfterSemanticSearch(ids)
		}
	}

	if modalitiesUsed == 0 {
		return nil, ErrAllModalitiesFailed
	}

	allIds := make([]core.ID, 0, len(keywordScores)+len(semanticScores))
	seen := make(map[core.ID]bool)
	for id := range keywordScores {
		seen[id] = true
		allIds = append(allIds, id)
	}
	for id := range semanticScores {
		if !seen[id] {
			seen[id] = true
			allIds = append(allIds, id)
		}
	}
	if len(allIds) == 0 {
		return []*core.SearchResult{}, nil
	}

	// Graph proximity boosts existing hits: files connected to the query
	// terms through tags or projects score higher.
	graphSet := s.graphRelated(ctx, query, monitor)

	records, err := s.files.GetMany(ctx, allIds...)
	if err != nil {
		return nil, err
	}

	results := make([]*core.SearchResult, 0, len(records))
	for _, record := range records {
		if record.Status != core.FileStatusLive {
			continue
		}

		var score float32
		var modalities []string
		if kw, ok := keywordScores[record.Id]; ok {
			score += keywordWeight * kw
			modalities = append(modalities, "keyword")
		}
		if sim, ok := semanticScores[record.Id]; ok {
			score += semanticWeight * sim
			modalities = append(modalities, "semantic")
		}
		if graphSet[record.Id] {
			score += graphBoost
			modalities = append(modalities, "graph")
		}
		if core.ContainsAllWords(record.SearchText(), query) {
			score += verbatimBoost
		}

		results = append(results, &core.SearchResult{
			Record:     record,
			Score:      score,
			Modalities: modalities,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Record.Id < results[j].Record.Id
	})
	if maxHits > 0 && len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)
	return results, nil
}

// graphRelated collects file IDs connected to query terms through tag or
// project nodes. Graph failures only disable the boost.
func (s *Searcher) graphRelated(ctx context.Context, query string, monitor Monitor) map[core.ID]bool {
	if s.graph == nil {
		return nil
	}

	related := make(map[core.ID]bool)
	for _, term := range strings.Fields(strings.ToLower(query)) {
		for _, kind := range []core.NodeKind{core.NodeTag, core.NodeProject} {
			neighbors, err := s.graph.Neighbors(ctx, core.NodeID(kind, term), graphWalkDepth)
			if err != nil {
				if !errors.Is(err, storage.ErrNotFound) {
					s.logger.Warn("graph modality failed", "term", term, "err", err)
					monitor.ModalityFailed("graph", err)
				}
				continue
			}
			for _, neighbor := range neighbors {
				if neighbor.Node.Kind == core.NodeFile && neighbor.Node.FileId != 0 {
					related[neighbor.Node.FileId] = true
				}
			}
		}
	}

	if len(related) > 0 {
		ids := make([]core.ID, 0, len(related))
		for id := range related {
			ids = append(ids, id)
		}
		monitor.AfterGraphSearch(ids)
	}
	return related
}
