// Package database manages the connection to the run-history store.
//
// The default backend is a local SQLite file so batch runs can be tracked
// without any infrastructure. A MySQL backend can be selected through
// configuration for shared deployments.
package database
