// Package reconcile derives the expected price for flagged freight cost
// mismatches.
//
// Each mismatch row names a cost type, an ETOF shipment number and an
// agreement. The engine matches the cost against the agreement's cost
// condition entries, verifies the "Applies If" clause against the joined
// shipment data, extracts the rate lane from the reviewer comment and
// resolves the price from the agreement's rate table, including weight
// tiers and MIN/MAX bounds. Costs absent from the rate card fall back to
// the agreement's accessorial table, loaded lazily through
// AccessorialCache.
//
// Every outcome, successful or not, is reported as a human-readable
// Reason string so reviewers can audit the derivation.
package reconcile
