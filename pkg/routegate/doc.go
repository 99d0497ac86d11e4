// Package routegate decides which application areas each account type may
// enter. The permission table is authoritative: route handlers mount behind
// Require middleware and never re-derive access rules themselves.
//
// The table is precomputed into immutable lookup maps at construction, so
// checks are allocation-free map hits and a Gate is safe for concurrent use.
//
//	gate := routegate.New()
//
//	r.Route("/invoices", func(r chi.Router) {
//	    r.Use(gate.Require(routegate.SegmentInvoices))
//	    ...
//	})
package routegate
