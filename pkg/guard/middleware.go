package guard

import (
	"net/http"

	"github.com/apufleet/fleetauth/pkg/httpx"
	"github.com/apufleet/fleetauth/pkg/session"
)

// StateSource yields the current session snapshot. *session.Manager
// satisfies it.
type StateSource interface {
	State() session.State
}

// Middleware adapts a Guard for HTTP routing. Allowed requests pass
// through; redirects become 303 responses; while a sign-in attempt is
// still resolving the request gets a neutral 200 so the page can retry.
func Middleware(g Guard, source StateSource) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch d := g.Evaluate(source.State()); d.Verdict {
			case Allow:
				next.ServeHTTP(w, r)
			case Redirect:
				http.Redirect(w, r, d.Target, http.StatusSeeOther)
			default:
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusOK)
			}
		})
	}
}
