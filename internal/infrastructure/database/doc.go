// Package database provides the SQLite persistence layer for Nimbus Core.
//
// It wraps database/sql with connection configuration tuned for SQLite
// (WAL mode, busy timeout, foreign keys, single writer) and an embedded
// migration runner. All domain repositories (devices, device types,
// scenarios, status changes, users) build on this package.
//
// Migrations are embedded at build time by the top-level migrations
// package and applied on startup via DB.Migrate.
package database
