// Package ratecard ingests carrier agreement workbooks.
//
// Rate card workbooks arrive in the carrier's raw layout; Load rebuilds
// them into a RateTable with one synthetic header per price column, such
// as "Price Flat MIN" or "Price per unit >200 <=500", and extracts the
// cost condition entries. Accessorial cost workbooks are simpler tabular
// files loaded on demand.
package ratecard
