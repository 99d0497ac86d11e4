// Package expense tracks deductible business expenses: amount, withholding
// tax category, and an optional receipt stored in object storage.
package expense
