package search

import (
	"context"

	"github.com/poiesic/askit/core"
)

// Strategy is one retrieval path over the corpus. Implementations take
// the triaged query analysis and return scored hits; RawScore must be in
// [0,1] and WeightedScore is left for ranking to fill in.
type Strategy interface {
	// Source identifies the strategy in results and logs.
	Source() core.StrategySource

	// Search runs the strategy. A nil, nil return means the strategy ran
	// and found nothing.
	Search(ctx context.Context, analysis *core.QueryAnalysis) ([]*core.SearchResult, error)
}
