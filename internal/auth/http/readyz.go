package http

import (
	"net/http"
	"time"

	"github.com/apufleet/fleetauth/internal/auth/store"
	"github.com/apufleet/fleetauth/pkg/authsdk"
	"github.com/apufleet/fleetauth/pkg/httpx"
	"github.com/apufleet/fleetauth/pkg/jwtx"
)

// ReadyzHandler is the readiness probe: it checks the credential store
// and the token signer and reports 503 when either is degraded.
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	signer *jwtx.Signer,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Database: "ok",
			Signer:   "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if !signer.Ready() {
			checks.Signer = "error: no signing key loaded"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
