// Package account implements sign-up, sign-in and referral tracking for the
// three self-service account types. Post-signup redirects are honored only
// through a validated return-URL token; an invalid or absent token simply
// means no redirect.
package account
