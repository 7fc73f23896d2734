package routes

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sydney-cole/oscars-ballot/internal/deps"
	"github.com/sydney-cole/oscars-ballot/internal/live"

	pkghttpx "github.com/sydney-cole/oscars-ballot/pkg/httpx"
	pkgrequestctx "github.com/sydney-cole/oscars-ballot/pkg/requestctx"
)

// LiveLeaderboard handles GET /ws/leaderboard[?group=id]. Group feeds are members only.
func LiveLeaderboard(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if d.Live == nil {
			pkghttpx.WriteError(w, r, pkghttpx.NotFound("live updates disabled", nil))
			return
		}
		scope := live.ScopeGlobal
		if groupID := r.URL.Query().Get("group"); groupID != "" {
			member, err := d.Service.IsMember(ctx, pkgrequestctx.Identity(ctx), groupID)
			if err != nil {
				pkghttpx.WriteError(w, r, serviceError(err, "failed to check membership"))
				return
			}
			if !member {
				pkghttpx.WriteError(w, r, notMember())
				return
			}
			scope = groupID
		}
		if err := d.Live.Subscribe(w, r, scope); err != nil {
			log.Warn().Err(err).Str("correlation_id", pkgrequestctx.CorrelationID(ctx)).Msg("websocket upgrade failed")
		}
	}
}
