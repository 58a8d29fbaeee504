// Package auth provides authentication and authorisation for Nimbus Core.
//
// It covers JWT access tokens (HS256, short-lived, signature-validated),
// Argon2id password hashing in PHC string format, credential verification,
// the SQLite-backed user repository, and first-boot admin seeding.
//
// Two roles exist: "user" (read access plus manual device status changes)
// and "admin" (full management plus triggering evaluation runs).
package auth
