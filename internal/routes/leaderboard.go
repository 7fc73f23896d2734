package routes

import (
	"net/http"
	"strconv"

	"github.com/sydney-cole/oscars-ballot/internal/deps"
	"github.com/sydney-cole/oscars-ballot/internal/leaderboard"
	"github.com/sydney-cole/oscars-ballot/internal/live"
	"github.com/sydney-cole/oscars-ballot/internal/model"

	pkghttpx "github.com/sydney-cole/oscars-ballot/pkg/httpx"
	pkgrequestctx "github.com/sydney-cole/oscars-ballot/pkg/requestctx"
)

const maxPageSize = 100

type leaderboardPage struct {
	model.Leaderboard
	Count      int    `json:"count"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// paginate slices lb when limit is given. total always counts the whole board.
func paginate(d deps.ServerDeps, r *http.Request, scope string, lb model.Leaderboard) (leaderboardPage, *pkghttpx.HTTPError) {
	q := r.URL.Query()
	limitStr, cursor := q.Get("limit"), q.Get("cursor")
	if limitStr == "" && cursor == "" {
		return leaderboardPage{Leaderboard: lb, Count: len(lb.Ranked)}, nil
	}
	limit := 20
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n <= 0 || n > maxPageSize {
			return leaderboardPage{}, pkghttpx.BadRequest("invalid limit", err)
		}
		limit = n
	}
	offset := 0
	if cursor != "" {
		if d.Signer == nil {
			return leaderboardPage{}, pkghttpx.Internal("cursor signer not configured", nil)
		}
		s, off, err := d.Signer.DecodeLeaderboardCursor(cursor)
		if err != nil || s != scope {
			return leaderboardPage{}, pkghttpx.BadRequest("invalid cursor", err)
		}
		offset = off
	}

	ranked := lb.Ranked
	if offset > len(ranked) {
		offset = len(ranked)
	}
	end := offset + limit
	if end > len(ranked) {
		end = len(ranked)
	}
	page := leaderboardPage{Leaderboard: lb}
	page.Ranked = ranked[offset:end]
	page.Count = len(page.Ranked)
	if end < len(ranked) && d.Signer != nil {
		page.NextCursor = d.Signer.EncodeLeaderboardCursor(scope, end)
	}
	return page, nil
}

// Leaderboard handles GET /leaderboard
func Leaderboard(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb, err := d.Boards.Global(r.Context())
		if err != nil {
			pkghttpx.WriteError(w, r, serviceError(err, "failed to load leaderboard"))
			return
		}
		page, he := paginate(d, r, live.ScopeGlobal, lb)
		if he != nil {
			pkghttpx.WriteError(w, r, he)
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, page)
	}
}

// GroupLeaderboard handles GET /groups/{id}/leaderboard
func GroupLeaderboard(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		groupID := r.PathValue("id")
		lb, member, err := d.Boards.Group(ctx, pkgrequestctx.Identity(ctx), groupID)
		if err != nil {
			pkghttpx.WriteError(w, r, serviceError(err, "failed to load group leaderboard"))
			return
		}
		if !member {
			pkghttpx.WriteError(w, r, notMember())
			return
		}
		page, he := paginate(d, r, leaderboard.GroupKey(groupID), lb)
		if he != nil {
			pkghttpx.WriteError(w, r, he)
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, page)
	}
}
