package search

import "github.com/poiesic/shelf/core"

// Monitor provides hooks to observe the fused search process.
// Implement this interface to track intermediate steps during search.
type Monitor interface {
	Start(query string)
	AfterKeywordSearch(ids []core.ID)
	AfterSemanticSearch(ids []core.ID)
	AfterGraphSearch(ids []core.ID)
	ModalityFailed(modality string, err error)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                   {}
func (n *noopMonitor) AfterKeywordSearch(_ []core.ID)   {}
func (n *noopMonitor) AfterSemanticSearch(_ []core.ID)  {}
func (n *noopMonitor) AfterGraphSearch(_ []core.ID)     {}
func (n *noopMonitor) ModalityFailed(_ string, _ error) {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)    {}
