// Package gate decides whether a requested admin view is reachable from
// the current session state. Evaluate is pure and is re-run on every
// navigation.
package gate

// Redirect targets.
const (
	LoginPath                   = "/login"
	UnauthorizedPath            = "/unauthorized"
	InsufficientPermissionsPath = "/insufficient-permissions"
)

// LoadingMessage is shown while the session is still initializing.
const LoadingMessage = "Checking admin privileges..."

// State is the read-only session view the gate needs. Both
// *session.Store and session.Snapshot satisfy it.
type State interface {
	Loading() bool
	IsAuthenticated() bool
	IsAdmin() bool
	HasPermission(capability string) bool
}

type Kind int

const (
	Loading Kind = iota
	Redirect
	Allow
)

func (k Kind) String() string {
	switch k {
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	case Allow:
		return "allow"
	}
	return "unknown"
}

// Decision is the outcome of Evaluate. Target is set for redirects; From
// carries the requested location on the login redirect only.
type Decision struct {
	Kind   Kind
	Target string
	From   string
}

// Evaluate runs the checks in order; the first match wins. An empty
// required capability skips the capability check.
func Evaluate(state State, required string, requested string) Decision {
	switch {
	case state.Loading():
		return Decision{Kind: Loading}
	case !state.IsAuthenticated():
		return Decision{Kind: Redirect, Target: LoginPath, From: requested}
	case !state.IsAdmin():
		return Decision{Kind: Redirect, Target: UnauthorizedPath}
	case required != "" && !state.HasPermission(required):
		return Decision{Kind: Redirect, Target: InsufficientPermissionsPath}
	}
	return Decision{Kind: Allow}
}
