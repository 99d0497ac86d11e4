// Package invoice manages customer invoices for company and business
// accounts: line items, VAT, per-account sequential numbering, QR payment
// codes, and full-text lookup.
package invoice
