package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/cleared-dev/equity/internal/auditlog"
	"github.com/cleared-dev/equity/internal/id"
	"github.com/cleared-dev/equity/internal/model"
	"github.com/cleared-dev/equity/internal/transfer"
)

// PlanTransfer lists the transferable equity in sourceProjectID.
func (e *Engine) PlanTransfer(ctx context.Context, sourceProjectID string) ([]model.TransferRow, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return transfer.Plan(sourceProjectID, snap.Transactions, snap.Accounts)
}

// TransferRequest is a reviewed transfer to commit.
type TransferRequest struct {
	Kind            transfer.Kind
	SourceProjectID string
	DestProjectID   string
	Rows            []model.TransferRow
	Date            time.Time
	RetryKey        string
}

// CommitTransfer writes the selected rows in one append. PROJECT rows
// become a divest/invest batch each; PAYOUT rows one transfer each.
func (e *Engine) CommitTransfer(ctx context.Context, req TransferRequest) ([]model.Transaction, error) {
	if req.Date.IsZero() {
		req.Date = e.today()
	}
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	c := transfer.Commit{
		Kind:            req.Kind,
		SourceProjectID: req.SourceProjectID,
		SourceName:      snap.ProjectName(req.SourceProjectID),
		DestProjectID:   req.DestProjectID,
		DestName:        snap.ProjectName(req.DestProjectID),
		PayoutAccountID: e.opts.PayoutAccountID,
		Date:            req.Date,
	}
	if req.RetryKey != "" {
		c.NewID = func(investorID string) string {
			return id.NewBatchID(req.RetryKey + "/" + investorID)
		}
	}
	action := auditlog.ActionPayout
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if req.Kind == transfer.KindProject {
		clearing, err := e.clearingAccount(ctx)
		if err != nil {
			return nil, err
		}
		c.ClearingID = clearing.ID
		action = auditlog.ActionTransfer
	}

	batches, err := transfer.Legs(req.Rows, c)
	if err != nil {
		return nil, err
	}
	var legs []model.Transaction
	for _, b := range batches {
		legs = append(legs, b...)
	}

	batchID := legs[0].BatchID
	if len(batches) > 1 {
		batchID = ""
	}
	return e.commit(ctx, string(req.Kind), legs, auditlog.Entry{
		Action:  action,
		BatchID: batchID,
		Details: fmt.Sprintf("%s %s -> %s, %d investors", req.Kind, req.SourceProjectID, req.DestProjectID, len(batches)),
	})
}
