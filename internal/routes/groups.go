package routes

import (
	"net/http"

	"github.com/sydney-cole/oscars-ballot/internal/deps"
	"github.com/sydney-cole/oscars-ballot/internal/model"

	pkghttpx "github.com/sydney-cole/oscars-ballot/pkg/httpx"
	pkgrequestctx "github.com/sydney-cole/oscars-ballot/pkg/requestctx"
)

type groupsResp struct {
	Groups []model.GroupSummary `json:"groups"`
}

// CreateGroup handles POST /groups
func CreateGroup(d deps.ServerDeps) http.HandlerFunc {
	type createReq struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req createReq
		if he := decodeJSON(w, r, &req); he != nil {
			pkghttpx.WriteError(w, r, he)
			return
		}
		g, err := d.Service.CreateGroup(ctx, pkgrequestctx.Identity(ctx), req.Name, req.Password)
		if err != nil {
			pkghttpx.WriteError(w, r, serviceError(err, "failed to create group"))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusCreated, g)
	}
}

// SearchGroups handles GET /groups/search?q=
func SearchGroups(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gs, err := d.Service.SearchGroups(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			pkghttpx.WriteError(w, r, serviceError(err, "failed to search groups"))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, groupsResp{Groups: gs})
	}
}

// MyGroups handles GET /groups/mine
func MyGroups(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		gs, err := d.Service.MyGroups(ctx, pkgrequestctx.Identity(ctx))
		if err != nil {
			pkghttpx.WriteError(w, r, serviceError(err, "failed to list groups"))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, groupsResp{Groups: gs})
	}
}

// JoinGroup handles POST /groups/{id}/join
func JoinGroup(d deps.ServerDeps) http.HandlerFunc {
	type joinReq struct {
		Password string `json:"password"`
	}
	type joinResp struct {
		GroupID string `json:"group_id"`
		Joined  bool   `json:"joined"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		groupID := r.PathValue("id")
		var req joinReq
		if he := decodeJSON(w, r, &req); he != nil {
			pkghttpx.WriteError(w, r, he)
			return
		}
		joined, err := d.Service.JoinGroup(ctx, pkgrequestctx.Identity(ctx), groupID, req.Password)
		if err != nil {
			pkghttpx.WriteError(w, r, serviceError(err, "failed to join group"))
			return
		}
		if joined {
			d.Boards.MembersChanged(ctx, groupID)
		}
		pkghttpx.WriteJSON(w, http.StatusOK, joinResp{GroupID: groupID, Joined: joined})
	}
}

// GroupBallots handles GET /groups/{id}/ballots
func GroupBallots(d deps.ServerDeps) http.HandlerFunc {
	type ballotsResp struct {
		Ballots []model.Ballot `json:"ballots"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ballots, member, err := d.Service.GroupBallots(ctx, pkgrequestctx.Identity(ctx), r.PathValue("id"))
		if err != nil {
			pkghttpx.WriteError(w, r, serviceError(err, "failed to load group ballots"))
			return
		}
		if !member {
			pkghttpx.WriteError(w, r, notMember())
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, ballotsResp{Ballots: ballots})
	}
}
