// Package taxrate holds the VAT, withholding-tax and personal-income-tax
// schedule and the arithmetic applied to it.
//
// All monetary amounts are integer minor units (kobo) so computations stay
// exact; rates are expressed in basis points. The schedule ships with the
// current statutory defaults and can be overridden from a YAML document, which
// lets rate changes deploy as configuration instead of code.
//
//	sched := taxrate.Default()
//	vat := sched.VAT(1_000_00)                   // 7.5% of 1,000.00
//	wht, err := sched.WHT(taxrate.CategoryRent, 500_000_00)
//	pit := sched.PIT(4_200_000_00)               // progressive bands
package taxrate
