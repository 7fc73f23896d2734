package routes

import (
	"net/http"
	"time"

	"github.com/sydney-cole/oscars-ballot/internal/deps"

	pkghttpx "github.com/sydney-cole/oscars-ballot/pkg/httpx"
)

// Health returns a handler that responds with service status.
func Health(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(d.StartedAt).Seconds())
		resp := map[string]any{
			"status":         "ok",
			"service":        d.Name,
			"uptime_seconds": uptime,
		}
		if d.Live != nil {
			resp["live_subscribers"] = d.Live.Sessions()
		}
		pkghttpx.WriteJSON(w, http.StatusOK, resp)
	}
}
