package model

import "strings"

// Keyword heuristics for rows that carry no explicit Purpose or LegRole.
// Everything that reads free text lives here.

const (
	keywordProfit  = "profit"
	keywordPMFee   = "pm fee"
	keywordMove    = "move"
	keywordMoveOut = "equity move out"
	idTagDivest    = "divest"
	idTagInvest    = "invest"
)

func containsFold(s, token string) bool {
	return strings.Contains(strings.ToLower(s), token)
}

// IsProfitTagged reports whether the transaction is a profit share.
func (t Transaction) IsProfitTagged() bool {
	switch t.Purpose {
	case PurposeProfitShare, PurposeDistribution:
		return true
	case PurposeNone:
		return containsFold(t.Description, keywordProfit)
	}
	return false
}

// IsPMFeeTagged reports whether the transaction is a project-management fee.
func (t Transaction) IsPMFeeTagged() bool {
	switch t.Purpose {
	case PurposePMFee:
		return true
	case PurposeNone:
		return containsFold(t.Description, keywordPMFee)
	}
	return false
}

// IsMoveTagged reports whether the transaction belongs to an equity move.
func (t Transaction) IsMoveTagged() bool {
	switch t.Purpose {
	case PurposeEquityMove:
		return true
	case PurposeNone:
		return containsFold(t.Description, keywordMove)
	}
	return false
}

// IsMoveOut reports whether the transaction is the outflow leg of a prior
// equity move.
func (t Transaction) IsMoveOut() bool {
	if t.LegRole != LegRoleNone {
		return t.LegRole == LegRoleDivest
	}
	return containsFold(t.Description, keywordMoveOut)
}

// Role returns the leg role, falling back to the id tag convention used by
// older batches ("divest" is checked first because it contains "invest").
func (t Transaction) Role() LegRole {
	if t.LegRole != LegRoleNone {
		return t.LegRole
	}
	id := strings.ToLower(t.ID)
	switch {
	case strings.Contains(id, idTagDivest):
		return LegRoleDivest
	case strings.Contains(id, idTagInvest):
		return LegRoleInvest
	}
	return LegRoleNone
}
