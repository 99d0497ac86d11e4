package routegate

import "slices"

// AccountType classifies a tenant account.
type AccountType string

const (
	AccountTypeIndividual AccountType = "individual"
	AccountTypeCompany    AccountType = "company"
	AccountTypeBusiness   AccountType = "business"
	AccountTypeAdmin      AccountType = "admin"
)

// Segment is a top-level application area guarded by the gate.
type Segment string

const (
	SegmentDashboard Segment = "dashboard"
	SegmentInvoices  Segment = "invoices"
	SegmentExpenses  Segment = "expenses"
	SegmentFilings   Segment = "filings"
	SegmentReferrals Segment = "referrals"
	SegmentAdmin     Segment = "admin"
)

// defaultTable is the authoritative account-type permission table.
// Individuals file PIT and track expenses but do not invoice; company and
// business accounts get the full self-service surface; admin gets everything.
var defaultTable = map[AccountType][]Segment{
	AccountTypeIndividual: {SegmentDashboard, SegmentExpenses, SegmentFilings, SegmentReferrals},
	AccountTypeCompany:    {SegmentDashboard, SegmentInvoices, SegmentExpenses, SegmentFilings, SegmentReferrals},
	AccountTypeBusiness:   {SegmentDashboard, SegmentInvoices, SegmentExpenses, SegmentFilings, SegmentReferrals},
	AccountTypeAdmin:      {SegmentDashboard, SegmentInvoices, SegmentExpenses, SegmentFilings, SegmentReferrals, SegmentAdmin},
}

// Gate answers "may this account type enter this segment". Lookup maps are
// built once at construction and never mutated afterwards.
type Gate struct {
	perms    map[AccountType]map[Segment]struct{}
	segments map[AccountType][]Segment
}

// New creates a Gate with the default permission table.
func New() *Gate {
	return NewWithTable(defaultTable)
}

// NewWithTable creates a Gate from an explicit table, for tests and
// non-standard deployments.
func NewWithTable(table map[AccountType][]Segment) *Gate {
	g := &Gate{
		perms:    make(map[AccountType]map[Segment]struct{}, len(table)),
		segments: make(map[AccountType][]Segment, len(table)),
	}
	for at, segs := range table {
		set := make(map[Segment]struct{}, len(segs))
		sorted := make([]Segment, 0, len(segs))
		for _, s := range segs {
			if _, dup := set[s]; dup {
				continue
			}
			set[s] = struct{}{}
			sorted = append(sorted, s)
		}
		slices.Sort(sorted)
		g.perms[at] = set
		g.segments[at] = sorted
	}
	return g
}

// Allowed reports whether accountType may enter segment.
func (g *Gate) Allowed(accountType AccountType, segment Segment) error {
	set, ok := g.perms[accountType]
	if !ok {
		return ErrUnknownAccountType
	}
	if _, ok := set[segment]; !ok {
		return ErrSegmentDenied
	}
	return nil
}

// Segments returns the sorted segments accountType may enter. The returned
// slice is shared; callers must not modify it.
func (g *Gate) Segments(accountType AccountType) []Segment {
	return g.segments[accountType]
}
