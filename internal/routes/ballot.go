package routes

import (
	"net/http"

	"github.com/sydney-cole/oscars-ballot/internal/deps"
	"github.com/sydney-cole/oscars-ballot/internal/model"

	pkghttpx "github.com/sydney-cole/oscars-ballot/pkg/httpx"
	pkgrequestctx "github.com/sydney-cole/oscars-ballot/pkg/requestctx"
)

type ballotResp struct {
	Ballot          *model.Ballot `json:"ballot"`
	TotalPicked     int           `json:"total_picked"`
	TotalCategories int           `json:"total_categories"`
	Submitted       bool          `json:"submitted"`
}

func newBallotResp(d deps.ServerDeps, b *model.Ballot) ballotResp {
	resp := ballotResp{Ballot: b, TotalCategories: d.Service.Catalog().Len()}
	if b != nil {
		resp.TotalPicked = b.Picks.Filled()
		resp.Submitted = b.Submitted()
	}
	return resp
}

// MyBallot handles GET /ballot. Anonymous callers get a null ballot.
func MyBallot(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		b, err := d.Service.MyBallot(ctx, pkgrequestctx.Identity(ctx))
		if err != nil {
			pkghttpx.WriteError(w, r, serviceError(err, "failed to load ballot"))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, newBallotResp(d, b))
	}
}

// SavePick handles PUT /ballot/picks
func SavePick(d deps.ServerDeps) http.HandlerFunc {
	type pickReq struct {
		Category string `json:"category"`
		PickKey  string `json:"pick_key"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req pickReq
		if he := decodeJSON(w, r, &req); he != nil {
			pkghttpx.WriteError(w, r, he)
			return
		}
		if req.Category == "" || req.PickKey == "" {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("category and pick_key are required", model.ErrInvalidInput))
			return
		}
		b, err := d.Service.SavePick(ctx, pkgrequestctx.Identity(ctx), req.Category, req.PickKey)
		if err != nil {
			pkghttpx.WriteError(w, r, serviceError(err, "failed to save pick"))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, newBallotResp(d, &b))
	}
}

// SubmitBallot handles POST /ballot/submit
func SubmitBallot(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		b, changed, err := d.Service.SubmitBallot(ctx, pkgrequestctx.Identity(ctx))
		if err != nil {
			pkghttpx.WriteError(w, r, serviceError(err, "failed to submit ballot"))
			return
		}
		if changed {
			d.Boards.BallotsChanged(ctx)
		}
		pkghttpx.WriteJSON(w, http.StatusOK, newBallotResp(d, &b))
	}
}
