package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/settlement/internal/domain/settlement"
)

// StatusAggregator recomputes a document's status from its installments.
// It only reads installments and writes the parent document, is safely
// re-runnable, and is called at the end of every settlement within the
// same transaction as the triggering mutation.
type StatusAggregator struct{}

// NewStatusAggregator creates a new StatusAggregator
func NewStatusAggregator() *StatusAggregator {
	return &StatusAggregator{}
}

// Recompute counts the document's installments by status, applies the
// reduced status to the document, and persists it. The settledAt
// argument is the triggering settlement's date; it is only recorded when
// the recomputation transitions the document to settled.
func (a *StatusAggregator) Recompute(
	ctx context.Context,
	repos Repositories,
	doc *settlement.Document,
	settledAt time.Time,
) (settlement.StatusCounts, error) {
	counts, err := repos.Installments().CountByStatus(ctx, doc.TenantID, doc.ID)
	if err != nil {
		return settlement.StatusCounts{}, fmt.Errorf("failed to count installments: %w", err)
	}

	if err := doc.ApplyStatusCounts(counts, settledAt); err != nil {
		return settlement.StatusCounts{}, err
	}

	if err := repos.Documents().Save(ctx, doc); err != nil {
		return settlement.StatusCounts{}, fmt.Errorf("failed to save document status: %w", err)
	}

	return counts, nil
}
