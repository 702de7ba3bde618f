// Package staffdeck is the authentication and authorization core of an
// employee dashboard: accounts, bearer sessions, token revocation,
// password resets, and the protected CRUD surfaces for employees, leave
// applications, and devices.
//
// Sessions:
//   - TokenService mints and verifies HS256 JWTs. Auther resolves a raw
//     bearer token to a *User in a fixed order: presence, revocation,
//     signature and expiry, user lookup. Logout writes the token into a
//     RevocationStore (in-memory or Redis backed).
//
// Authorization:
//   - Accounts are either admin or regular. Policy answers admin and
//     ownership questions; ownership is resolved by matching the
//     account's email to an employee row.
//
// Password resets:
//   - A reset token is 32 random bytes, hex encoded. Only its SHA-256
//     digest is stored, with a 30 minute expiry. Finalizing a reset
//     updates the password and clears the token in a single statement.
//
// HTTP:
//   - Controllers in this package plus middleware/authware and
//     middleware/ratelimit compose the full fiber app; see MountRoutes
//     and cmd/server.
package staffdeck
