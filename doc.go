// Package bookly implements a book review service with token based
// authentication.
//
// Authentication:
//   - TokenService issues and validates signed JWTs. Access and refresh
//     tokens share one codec; the refresh claim and the token's jti are
//     embedded at issue time so guards can tell the kinds apart and revoke
//     individual tokens.
//   - Auther drives the credential flows: login, refresh, and revocation.
//     Revoked token identifiers land in a TokenBlocklist (in-memory or
//     Redis backed) until the token would have expired on its own.
//   - ActionTokenService covers the single-purpose email tokens used for
//     account verification and password resets. Each purpose signs with
//     its own derived key so tokens cannot be replayed across flows.
//
// Request guarding:
//   - middleware/tokenware validates bearer tokens on every guarded route,
//     checks expiry and revocation, and enforces the expected token kind.
//   - Policy makes the authorization decision on top of validated claims:
//     the user must still exist, be verified, and hold an allowed role.
//
// Domain:
//   - Users submit Books and attach Reviews to them. Mutations require
//     ownership or the admin role. Repositories are backed by Bun with
//     PostgreSQL.
package bookly
