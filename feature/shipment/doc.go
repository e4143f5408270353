// Package shipment loads the joined LC/ETOF shipment workbook that
// condition evaluation and price derivation read from.
package shipment
