// Package referral computes referral commissions. A Plan maps a referrer's
// conversion count to a commission rate in basis points, with a minimum
// accrued balance before payout. All amounts are integer minor units (kobo).
//
// The package is pure computation; persistence of referral records lives with
// the account module.
package referral
