package memberhub

// Routes the guards decide between.
const (
	RouteLogin     = "/login"
	RouteDashboard = "/dashboard"
)

// GuardDecision is the outcome of evaluating a route guard before a
// navigation commits: either the navigation proceeds, or it is replaced
// by a redirect.
type GuardDecision struct {
	Allow    bool
	Redirect string
}

// RequireAuthenticated guards surfaces that need a live session; without
// one the navigation is redirected to the login surface. Evaluating the
// guard runs the usual expiry self-healing.
func (s *Store) RequireAuthenticated() GuardDecision {
	if s.IsLoggedIn() {
		return GuardDecision{Allow: true}
	}
	return GuardDecision{Redirect: RouteLogin}
}

// RequireGuest guards the login surface; a logged-in user is sent back
// to the dashboard instead.
func (s *Store) RequireGuest() GuardDecision {
	if s.IsLoggedIn() {
		return GuardDecision{Redirect: RouteDashboard}
	}
	return GuardDecision{Allow: true}
}

// ResolveRoute applies the guards to a requested route and returns the
// route the navigation should actually commit to. Unknown routes fall
// through to the dashboard.
func (s *Store) ResolveRoute(route string) string {
	switch route {
	case RouteLogin:
		if d := s.RequireGuest(); !d.Allow {
			return d.Redirect
		}
		return RouteLogin
	case RouteDashboard:
		if d := s.RequireAuthenticated(); !d.Allow {
			return d.Redirect
		}
		return RouteDashboard
	default:
		return s.ResolveRoute(RouteDashboard)
	}
}
