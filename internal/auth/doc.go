// Package auth provides authentication and authorisation for Sensornet Core.
//
// It implements a 3-tier role model (viewer → operator → admin) with:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - Signed HS256 access tokens carrying the username and role
//   - Anti-enumeration login: unknown usernames, inactive accounts, and
//     wrong passwords are indistinguishable to the client
//   - A seeded admin account on first boot
//
// Token validation is signature-only with no database hit: a validated
// token resolves directly to an Identity the API layer uses for role
// gating. Revocation before expiry is out of scope; lifetimes are kept
// short instead.
package auth
