// Package memberhub is the client SDK for the MemberHub member management
// backend: session lifecycle, token expiry checks, role-based gating, and
// a REST client whose requests pass through a shared middleware chain.
//
// Session lifecycle:
//   - Store is the single source of truth for the authenticated identity.
//     Login and logout replace or clear the session wholesale, persist it
//     through a pluggable Storage backend, and push every change to
//     Observe subscribers with replay-1 semantics. IsLoggedIn purges an
//     expired session on the spot, so stale state heals on first check.
//
// Request middleware:
//   - middleware/httpware chains a bearer-attaching stage with a
//     centralized error interceptor. The interceptor translates transport
//     failures and non-2xx responses into rich errors and exactly one
//     user-facing notification per failed request, and fires an
//     OnUnauthorized callback on 401 so the session can be torn down.
//
// Controllers:
//   - RosterController owns the locally held member roster and its fixed
//     pagination window, reconciling create/update/delete against local
//     state without a refetch.
//   - PasswordFlow drives the forced password change required after an
//     admin hands out a temporary password; it cannot be dismissed and a
//     successful change always ends in a sign-out.
package memberhub
