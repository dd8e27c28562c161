package ledgerview

import "fmt"

// RootID is the synthetic tree node that stands for "all investors". An
// investor drilled into from the root is not restricted to a project.
const RootID = "all-investors"

// ScopeKind selects which slice of the log a ledger shows.
type ScopeKind int

const (
	AllInvestors ScopeKind = iota
	ProjectScope
	InvestorScope
)

func (k ScopeKind) String() string {
	switch k {
	case AllInvestors:
		return "all-investors"
	case ProjectScope:
		return "project"
	case InvestorScope:
		return "investor"
	}
	return fmt.Sprintf("ScopeKind(%d)", int(k))
}

// Scope is a ledger selection.
type Scope struct {
	Kind       ScopeKind
	ProjectID  string
	InvestorID string
	// ParentProjectID restricts an investor ledger to one project. Empty or
	// RootID means every project.
	ParentProjectID string
}

// All selects every equity transaction.
func All() Scope { return Scope{Kind: AllInvestors} }

// ForProject selects the transactions of one project.
func ForProject(projectID string) Scope {
	return Scope{Kind: ProjectScope, ProjectID: projectID}
}

// ForInvestor selects one investor's transactions, optionally within the
// project the investor was reached from.
func ForInvestor(investorID, parentProjectID string) Scope {
	return Scope{Kind: InvestorScope, InvestorID: investorID, ParentProjectID: parentProjectID}
}

func (s Scope) restrictedProject() string {
	if s.ParentProjectID == RootID {
		return ""
	}
	return s.ParentProjectID
}

func (s Scope) String() string {
	switch s.Kind {
	case ProjectScope:
		return "project " + s.ProjectID
	case InvestorScope:
		if p := s.restrictedProject(); p != "" {
			return "investor " + s.InvestorID + " in " + p
		}
		return "investor " + s.InvestorID
	}
	return s.Kind.String()
}
