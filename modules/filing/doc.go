// Package filing manages periodic tax returns (VAT, WHT, PIT): drafting a
// return priced from the period's invoices and expenses, submitting it, and
// recording the authority's decision. Status changes follow an explicit
// transition table and notify the account by email.
package filing
