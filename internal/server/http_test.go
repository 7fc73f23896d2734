package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sydney-cole/oscars-ballot/internal/catalog"
	"github.com/sydney-cole/oscars-ballot/internal/deps"
	"github.com/sydney-cole/oscars-ballot/internal/leaderboard"
	"github.com/sydney-cole/oscars-ballot/internal/live"
	"github.com/sydney-cole/oscars-ballot/internal/repos/memory"
	"github.com/sydney-cole/oscars-ballot/internal/server"
	"github.com/sydney-cole/oscars-ballot/internal/service"
	"github.com/sydney-cole/oscars-ballot/pkg/ballotapi"
	"github.com/sydney-cole/oscars-ballot/pkg/cache"
	"github.com/sydney-cole/oscars-ballot/pkg/identity"
	"github.com/sydney-cole/oscars-ballot/pkg/signer"
)

type env struct {
	h        http.Handler
	hub      *live.Hub
	verifier *identity.Verifier
}

func newEnv(t *testing.T) *env {
	t.Helper()
	svc := service.New(memory.New(), catalog.Default(), []string{"admin"}, service.WithPasswordCost(bcrypt.MinCost))
	hub := live.NewHub()
	t.Cleanup(func() { _ = hub.Close() })
	v := identity.NewVerifier("test-secret", "")
	s := server.New(deps.ServerDeps{
		Service:   svc,
		Boards:    leaderboard.New(svc, cache.NewInMemory(), hub, time.Minute),
		Live:      hub,
		Signer:    signer.NewHMAC([]byte("test-secret")),
		Verifier:  v,
		Name:      "oscars-ballot",
		StartedAt: time.Now(),
	})
	return &env{h: s.Router(), hub: hub, verifier: v}
}

func (e *env) token(t *testing.T, sub, name string) string {
	t.Helper()
	tok, err := e.verifier.Issue(identity.Identity{Subject: sub, Name: name}, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %s", ct)
	}
	assert.NotEmpty(t, w.Header().Get("X-Correlation-Id"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestCatalog(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/catalog", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body ballotapi.Catalog
	decode(t, w, &body)
	assert.Equal(t, 23, body.TotalCategories)
	assert.Equal(t, 2024, body.Ceremony.Year)

	var song *ballotapi.Nominee
	for _, c := range body.Categories {
		if c.Name != "Best Original Song" {
			continue
		}
		for i := range c.Nominees {
			if c.Nominees[i].PickKey == "What Was I Made For?" {
				song = &c.Nominees[i]
			}
		}
	}
	require.NotNil(t, song)
	assert.Equal(t, `"What Was I Made For?"`, song.PrimaryLine)
	assert.Equal(t, "Barbie", song.SecondaryLine)
}

func TestInvalidTokenRejected(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/ballot", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBallotFlow(t *testing.T) {
	e := newEnv(t)
	ann := e.token(t, "ann", "Ann")

	w := e.do(t, http.MethodGet, "/ballot", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ballot":null`)

	w = e.do(t, http.MethodPut, "/ballot/picks", "", map[string]string{"category": "Best Picture", "pick_key": "Barbie"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, "/ballot/submit", ann, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodPut, "/ballot/picks", ann, map[string]string{"category": "Best Picture", "pick_key": "Nolan"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPut, "/ballot/picks", ann, map[string]string{"category": "Best Picture", "pick_key": "Oppenheimer"})
	require.Equal(t, http.StatusOK, w.Code)
	var b struct {
		TotalPicked     int  `json:"total_picked"`
		TotalCategories int  `json:"total_categories"`
		Submitted       bool `json:"submitted"`
	}
	decode(t, w, &b)
	assert.Equal(t, 1, b.TotalPicked)
	assert.Equal(t, 23, b.TotalCategories)
	assert.False(t, b.Submitted)

	w = e.do(t, http.MethodPost, "/ballot/submit", ann, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &b)
	assert.True(t, b.Submitted)

	w = e.do(t, http.MethodPost, "/ballot/submit", ann, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPut, "/ballot/picks", ann, map[string]string{"category": "Best Picture", "pick_key": "Barbie"})
	assert.Equal(t, http.StatusLocked, w.Code)
}

func TestLeaderboardAndWinners(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, "admin", "Admin")
	users := []string{"u1", "u2", "u3"}
	for _, u := range users {
		tok := e.token(t, u, u)
		pick := "Barbie"
		if u == "u3" {
			pick = "Oppenheimer"
		}
		require.Equal(t, http.StatusOK, e.do(t, http.MethodPut, "/ballot/picks", tok, map[string]string{"category": "Best Picture", "pick_key": pick}).Code)
		require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/ballot/submit", tok, nil).Code)
	}

	w := e.do(t, http.MethodGet, "/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"winners_known":false`)
	assert.Contains(t, w.Body.String(), `"score":null`)

	w = e.do(t, http.MethodPost, "/admin/winners", e.token(t, "u1", "u1"), map[string]string{"category": "Best Picture", "pick_key": "Oppenheimer"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodPost, "/admin/winners", admin, map[string]string{"category": "Best Picture", "pick_key": "Oppenheimer"})
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Ranked []struct {
			UserID string `json:"user_id"`
			Score  *int   `json:"score"`
			Rank   int    `json:"rank"`
		} `json:"ranked"`
		Total        int    `json:"total"`
		Count        int    `json:"count"`
		WinnersKnown bool   `json:"winners_known"`
		NextCursor   string `json:"next_cursor"`
	}
	w = e.do(t, http.MethodGet, "/leaderboard?limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	assert.True(t, page.WinnersKnown)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Count)
	require.Len(t, page.Ranked, 2)
	assert.Equal(t, "u3", page.Ranked[0].UserID)
	require.NotNil(t, page.Ranked[0].Score)
	assert.Equal(t, 1, *page.Ranked[0].Score)
	require.NotEmpty(t, page.NextCursor)

	next := page.NextCursor
	page.NextCursor = ""
	w = e.do(t, http.MethodGet, "/leaderboard?limit=2&cursor="+next, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	require.Len(t, page.Ranked, 1)
	assert.Equal(t, 3, page.Ranked[0].Rank)
	assert.Empty(t, page.NextCursor)

	w = e.do(t, http.MethodGet, "/leaderboard?cursor=forged", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = e.do(t, http.MethodGet, "/leaderboard?limit=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodGet, "/winners", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"winners":{"Best Picture":"Oppenheimer"}}`, w.Body.String())

	w = e.do(t, http.MethodPut, "/admin/winners", admin, map[string]any{"picks": map[string]string{}})
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodGet, "/leaderboard", "", nil)
	assert.Contains(t, w.Body.String(), `"winners_known":false`)
}

func TestSettingsLock(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, "admin", "Admin")
	ann := e.token(t, "ann", "Ann")

	w := e.do(t, http.MethodPut, "/admin/settings", ann, map[string]bool{"ballots_locked": true})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = e.do(t, http.MethodPut, "/admin/settings", admin, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = e.do(t, http.MethodPut, "/admin/settings", admin, map[string]bool{"ballots_locked": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/settings", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ballots_locked":true`)

	w = e.do(t, http.MethodPut, "/ballot/picks", ann, map[string]string{"category": "Best Picture", "pick_key": "Barbie"})
	assert.Equal(t, http.StatusLocked, w.Code)
}

func TestGroups(t *testing.T) {
	e := newEnv(t)
	ann := e.token(t, "ann", "Ann")
	bo := e.token(t, "bo", "Bo")

	w := e.do(t, http.MethodPost, "/groups", ann, map[string]string{"name": "Oscar Fam", "password": "popcorn"})
	require.Equal(t, http.StatusCreated, w.Code)
	var g struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	decode(t, w, &g)
	assert.NotContains(t, w.Body.String(), "password")

	w = e.do(t, http.MethodPost, "/groups", bo, map[string]string{"name": "Oscar Fam", "password": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = e.do(t, http.MethodPost, "/groups", bo, map[string]string{"name": strings.Repeat("n", 51), "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodGet, "/groups/search?q=FAM", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"groups":[{"id":"`+g.ID+`","name":"Oscar Fam"}]}`, w.Body.String())
	w = e.do(t, http.MethodGet, "/groups/search?q=", "", nil)
	assert.JSONEq(t, `{"groups":[]}`, w.Body.String())

	w = e.do(t, http.MethodGet, "/groups/"+g.ID+"/ballots", bo, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = e.do(t, http.MethodGet, "/groups/"+g.ID+"/leaderboard", bo, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodPost, "/groups/"+g.ID+"/join", bo, map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = e.do(t, http.MethodPost, "/groups/missing/join", bo, map[string]string{"password": "popcorn"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = e.do(t, http.MethodPost, "/groups/"+g.ID+"/join", bo, map[string]string{"password": "popcorn"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"joined":true`)
	w = e.do(t, http.MethodPost, "/groups/"+g.ID+"/join", bo, map[string]string{"password": "popcorn"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"joined":false`)

	w = e.do(t, http.MethodGet, "/groups/mine", bo, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Oscar Fam")

	w = e.do(t, http.MethodGet, "/groups/"+g.ID+"/ballots", bo, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ballots":[]}`, w.Body.String())

	require.Equal(t, http.StatusOK, e.do(t, http.MethodPut, "/ballot/picks", ann, map[string]string{"category": "Best Picture", "pick_key": "Barbie"}).Code)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/ballot/submit", ann, nil).Code)

	w = e.do(t, http.MethodGet, "/groups/"+g.ID+"/leaderboard", bo, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestClientAgainstServer(t *testing.T) {
	e := newEnv(t)
	srv := httptest.NewServer(e.h)
	t.Cleanup(srv.Close)

	c := ballotapi.New(srv.URL, e.token(t, "ann", "Ann"))
	ctx := t.Context()
	require.NoError(t, c.Save(ctx, "Best Director", "Christopher Nolan"))
	picks, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Christopher Nolan", picks["Best Director"])

	b, err := c.Submit(ctx)
	require.NoError(t, err)
	assert.True(t, b.Submitted())

	lb, err := c.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, lb.Total)
}

func TestLiveFeedAnnouncesSubmissions(t *testing.T) {
	e := newEnv(t)
	srv := httptest.NewServer(e.h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/leaderboard"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(t, func() bool { return e.hub.Sessions() > 0 }, 3*time.Second, 10*time.Millisecond)

	ann := e.token(t, "ann", "Ann")
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPut, "/ballot/picks", ann, map[string]string{"category": "Best Picture", "pick_key": "Barbie"}).Code)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/ballot/submit", ann, nil).Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev live.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, live.EventLeaderboardUpdated, ev.Type)
	assert.Equal(t, live.ScopeGlobal, ev.Scope)
}
