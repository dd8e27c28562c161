package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/equity/internal/auditlog"
	"github.com/cleared-dev/equity/internal/distribution"
	"github.com/cleared-dev/equity/internal/id"
	"github.com/cleared-dev/equity/internal/model"
)

const kindDistribution = "distribution"

// PlanDistribution splits pool among the investors of projectID. A nil pool
// uses the project's available-to-distribute figure.
func (e *Engine) PlanDistribution(ctx context.Context, projectID string, pool *decimal.Decimal) ([]model.DistributionPlan, error) {
	amount := decimal.Zero
	if pool != nil {
		amount = *pool
	} else {
		f, err := e.ProjectFinancials(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("project financials: %w", err)
		}
		amount = f.Available
	}

	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return distribution.Plan(projectID, amount, snap.Transactions, snap.Accounts)
}

// DistributionRequest is a reviewed plan to commit.
type DistributionRequest struct {
	ProjectID string
	CycleName string
	Plans     []model.DistributionPlan
	Date      time.Time
	// RetryKey makes the commit safe to repeat: the same key always maps to
	// the same batch, which is written at most once.
	RetryKey string
}

// CommitDistribution writes the plan as one batch of expense and credit legs.
func (e *Engine) CommitDistribution(ctx context.Context, req DistributionRequest) ([]model.Transaction, error) {
	if len(req.Plans) == 0 {
		return nil, model.Invalid("plan", "no investors to distribute to")
	}
	if req.Date.IsZero() {
		req.Date = e.today()
	}

	clearing, err := e.clearingAccount(ctx)
	if err != nil {
		return nil, err
	}
	batchID := id.NewBatchID(req.RetryKey)
	legs, err := distribution.Legs(req.Plans, distribution.Commit{
		CycleName:  req.CycleName,
		ProjectID:  req.ProjectID,
		ClearingID: clearing.ID,
		CategoryID: e.opts.DistributionCategoryID,
		Date:       req.Date,
		BatchID:    batchID,
	})
	if err != nil {
		return nil, err
	}

	return e.commit(ctx, kindDistribution, legs, auditlog.Entry{
		Action:  auditlog.ActionDistribute,
		BatchID: batchID,
		Details: fmt.Sprintf("%s%s, project %s, %d investors, %s",
			distribution.DescriptionPrefix, req.CycleName, req.ProjectID, len(legs)/2, distribution.Total(req.Plans).StringFixed(2)),
	})
}

func (e *Engine) today() time.Time {
	now := e.opts.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
