// Package store persists reconciliation run history.
//
// Each batch run gets a RunRecord with a generated UUID and a set of
// RowRecord entries, one per reconciled mismatch row. The history makes it
// possible to compare runs after rate cards change.
package store
