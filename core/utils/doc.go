// Package utils provides small conversion helpers shared across the
// ingestion and reconciliation packages.
package utils
