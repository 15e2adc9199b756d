// Package guard makes render-or-redirect decisions for dashboard routes
// from a session snapshot. Guards are pure: they never mutate the
// session and never touch the network, so a page can evaluate them on
// every render.
package guard

import (
	"github.com/apufleet/fleetauth/pkg/session"
)

// Well-known dashboard paths.
const (
	PathSignIn             = "/signin"
	PathDashboard          = "/dashboard"
	PathDashboardInspector = "/dashboard/inspector"
	PathDashboardCompany   = "/dashboard/company"
)

// Verdict is the kind of decision a guard reaches.
type Verdict int

const (
	// Wait means the session is still resolving; render nothing yet.
	Wait Verdict = iota

	// Allow means the current user may see the route.
	Allow

	// Redirect means the caller must navigate to Decision.Target.
	Redirect
)

// Decision is the outcome of evaluating a guard against a session
// state. Target is set only for Redirect.
type Decision struct {
	Verdict Verdict
	Target  string
}

func allow() Decision { return Decision{Verdict: Allow} }

func wait() Decision { return Decision{Verdict: Wait} }

func redirect(to string) Decision { return Decision{Verdict: Redirect, Target: to} }

// Guard evaluates a session state into a Decision.
type Guard interface {
	Evaluate(state session.State) Decision
}

// GuardFunc adapts a function to the Guard interface.
type GuardFunc func(state session.State) Decision

func (f GuardFunc) Evaluate(state session.State) Decision { return f(state) }

// LandingPath returns where a freshly signed-in user lands, based on
// the normalized role: inspectors get their own dashboard, everyone
// else lands on the company view.
func LandingPath(normalizedRole string) string {
	if normalizedRole == "inspector" {
		return PathDashboardInspector
	}
	return PathDashboardCompany
}

// RequireAuth admits any signed-in user and sends everyone else to the
// sign-in page. While a sign-in attempt is loading it waits rather than
// bouncing the user mid-attempt.
func RequireAuth() Guard {
	return GuardFunc(func(state session.State) Decision {
		if state.Loading {
			return wait()
		}
		if !state.Authenticated() {
			return redirect(PathSignIn)
		}
		return allow()
	})
}

// RequireAdmin admits only users whose stored role is "admin". Anyone
// else, signed in or not, is sent to the dashboard root.
func RequireAdmin() Guard {
	return RequireRoles([]string{"admin"}, PathDashboard)
}

// RequireRoles admits signed-in users whose stored role is in allowed.
// Every other outcome, including no user at all, redirects to
// denyTarget (the dashboard root when empty); each guard has exactly
// one redirect destination.
//
// The check runs on the stored role, never the normalized one. A
// stored "user" role is admitted by neither an inspector area nor an
// admin area, so two such guards with redirect targets pointing at
// each other bounce a "user" account in a loop; see the package tests.
func RequireRoles(allowed []string, denyTarget string) Guard {
	if denyTarget == "" {
		denyTarget = PathDashboard
	}
	set := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		set[r] = struct{}{}
	}

	return GuardFunc(func(state session.State) Decision {
		if state.Loading {
			return wait()
		}
		if !state.Authenticated() {
			return redirect(denyTarget)
		}
		if _, ok := set[state.Principal.Role]; !ok {
			return redirect(denyTarget)
		}
		return allow()
	})
}
