package model

import "github.com/shopspring/decimal"

// DistributionPlan is one investor's line of an uncommitted profit distribution.
type DistributionPlan struct {
	InvestorID       string
	Principal        decimal.Decimal
	SharePercentage  decimal.Decimal // fraction of total capital, 0..1
	ProfitShare      decimal.Decimal
	NewEquityBalance decimal.Decimal
}

// TransferRow is one investor's line of an uncommitted equity transfer.
type TransferRow struct {
	InvestorID     string
	CurrentEquity  decimal.Decimal
	TransferAmount decimal.Decimal
	Selected       bool
}

// ProjectFinancials summarizes what a project can pay out.
type ProjectFinancials struct {
	ProjectID          string
	Income             decimal.Decimal
	Expenses           decimal.Decimal
	PriorDistributions decimal.Decimal
	Available          decimal.Decimal
}
