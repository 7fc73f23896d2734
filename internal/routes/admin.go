package routes

import (
	"net/http"

	"github.com/sydney-cole/oscars-ballot/internal/deps"
	"github.com/sydney-cole/oscars-ballot/internal/model"

	pkghttpx "github.com/sydney-cole/oscars-ballot/pkg/httpx"
	pkgrequestctx "github.com/sydney-cole/oscars-ballot/pkg/requestctx"
)

type winnersResp struct {
	Winners model.Winners `json:"winners"`
}

// Winners handles GET /winners
func Winners(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		win, err := d.Service.Winners(r.Context())
		if err != nil {
			pkghttpx.WriteError(w, r, serviceError(err, "failed to load winners"))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, winnersResp{Winners: win})
	}
}

// ReplaceWinners handles PUT /admin/winners
func ReplaceWinners(d deps.ServerDeps) http.HandlerFunc {
	type replaceReq struct {
		Picks model.Winners `json:"picks"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req replaceReq
		if he := decodeJSON(w, r, &req); he != nil {
			pkghttpx.WriteError(w, r, he)
			return
		}
		win, err := d.Service.SetWinners(ctx, pkgrequestctx.Identity(ctx), req.Picks)
		if err != nil {
			pkghttpx.WriteError(w, r, serviceError(err, "failed to save winners"))
			return
		}
		d.Boards.BallotsChanged(ctx)
		pkghttpx.WriteJSON(w, http.StatusOK, winnersResp{Winners: win})
	}
}

// SetWinner handles POST /admin/winners. An empty pick_key withdraws the category.
func SetWinner(d deps.ServerDeps) http.HandlerFunc {
	type winnerReq struct {
		Category string `json:"category"`
		PickKey  string `json:"pick_key"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req winnerReq
		if he := decodeJSON(w, r, &req); he != nil {
			pkghttpx.WriteError(w, r, he)
			return
		}
		win, err := d.Service.SetWinner(ctx, pkgrequestctx.Identity(ctx), req.Category, req.PickKey)
		if err != nil {
			pkghttpx.WriteError(w, r, serviceError(err, "failed to save winner"))
			return
		}
		d.Boards.BallotsChanged(ctx)
		pkghttpx.WriteJSON(w, http.StatusOK, winnersResp{Winners: win})
	}
}

// Settings handles GET /settings
func Settings(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := d.Service.Settings(r.Context())
		if err != nil {
			pkghttpx.WriteError(w, r, serviceError(err, "failed to load settings"))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, s)
	}
}

// UpdateSettings handles PUT /admin/settings
func UpdateSettings(d deps.ServerDeps) http.HandlerFunc {
	type settingsReq struct {
		BallotsLocked *bool `json:"ballots_locked"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req settingsReq
		if he := decodeJSON(w, r, &req); he != nil {
			pkghttpx.WriteError(w, r, he)
			return
		}
		if req.BallotsLocked == nil {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("ballots_locked is required", model.ErrInvalidInput))
			return
		}
		s, err := d.Service.SetBallotsLocked(ctx, pkgrequestctx.Identity(ctx), *req.BallotsLocked)
		if err != nil {
			pkghttpx.WriteError(w, r, serviceError(err, "failed to update settings"))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, s)
	}
}
