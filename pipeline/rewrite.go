package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/askit/ai"
)

// Rewriter reformulates a query for better retrieval. A failed or empty
// rewrite falls back to the original query; rewriting never blocks a
// request.
type Rewriter struct {
	generator ai.Generator
	logger    *slog.Logger
}

// NewRewriter creates a rewrite stage.
func NewRewriter(generator ai.Generator, logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rewriter{generator: generator, logger: logger}
}

// Rewrite returns a reformulated query, or the original when the
// generator fails or returns nothing usable.
func (r *Rewriter) Rewrite(ctx context.Context, query string) string {
	rewritten, err := r.generator.GenerateText(ctx, rewriteSystemPrompt, query)
	if err != nil {
		r.logger.Warn("query rewrite failed, using original", "query", query, "err", err)
		return query
	}

	rewritten = strings.TrimSpace(strings.Trim(strings.TrimSpace(rewritten), `"`))
	if rewritten == "" {
		return query
	}
	return rewritten
}
