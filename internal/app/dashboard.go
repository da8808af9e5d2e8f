package app

import (
	"strings"

	"eduquery/internal/domain/query"
)

// Filter narrows the dashboard list. A zero Filter matches everything.
type Filter struct {
	Status query.Status // empty means all statuses
	Search string       // case-insensitive match on title or subject
}

// FilterQueries keeps the input order.
func FilterQueries(qs []query.Query, f Filter) []query.Query {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]query.Query, 0, len(qs))
	for _, q := range qs {
		if f.Status != "" && q.Status != f.Status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(q.Title), needle) &&
			!strings.Contains(strings.ToLower(q.Subject), needle) {
			continue
		}
		out = append(out, q)
	}
	return out
}

// Stats are the dashboard counters.
type Stats struct {
	Total      int
	Pending    int
	InProgress int
	Resolved   int
	Rejected   int
}

func ComputeStats(qs []query.Query) Stats {
	st := Stats{Total: len(qs)}
	for _, q := range qs {
		switch q.Status {
		case query.StatusPending:
			st.Pending++
		case query.StatusInProgress:
			st.InProgress++
		case query.StatusResolved:
			st.Resolved++
		case query.StatusRejected:
			st.Rejected++
		}
	}
	return st
}
