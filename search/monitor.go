package search

import "github.com/poiesic/askit/core"

// SearchMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(analysis *core.QueryAnalysis)
	StrategyFinished(source core.StrategySource, results []*core.SearchResult)
	StrategyFailed(source core.StrategySource, err error)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *core.QueryAnalysis)                                   {}
func (n *noopMonitor) StrategyFinished(_ core.StrategySource, _ []*core.SearchResult) {}
func (n *noopMonitor) StrategyFailed(_ core.StrategySource, _ error)                 {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)                                 {}
