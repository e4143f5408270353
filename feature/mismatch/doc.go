// Package mismatch reads the flagged cost discrepancy workbook and
// writes the reconciled results back out, one tab per agreement.
package mismatch
