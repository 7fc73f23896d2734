package server

import (
	"net/http"

	"github.com/sydney-cole/oscars-ballot/internal/deps"
	"github.com/sydney-cole/oscars-ballot/internal/routes"
)

type Server struct {
	deps.ServerDeps
}

func New(d deps.ServerDeps) *Server {
	return &Server{ServerDeps: d}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	sd := s.ServerDeps

	// Endpoints declared here for easy scanning
	mux.HandleFunc("GET /health", routes.Health(sd))
	mux.HandleFunc("GET /catalog", routes.Catalog(sd))

	mux.HandleFunc("GET /ballot", routes.MyBallot(sd))
	mux.HandleFunc("PUT /ballot/picks", routes.SavePick(sd))
	mux.HandleFunc("POST /ballot/submit", routes.SubmitBallot(sd))

	mux.HandleFunc("GET /leaderboard", routes.Leaderboard(sd))
	mux.HandleFunc("GET /ws/leaderboard", routes.LiveLeaderboard(sd))

	mux.HandleFunc("GET /winners", routes.Winners(sd))
	mux.HandleFunc("PUT /admin/winners", routes.ReplaceWinners(sd))
	mux.HandleFunc("POST /admin/winners", routes.SetWinner(sd))
	mux.HandleFunc("GET /settings", routes.Settings(sd))
	mux.HandleFunc("PUT /admin/settings", routes.UpdateSettings(sd))

	mux.HandleFunc("POST /groups", routes.CreateGroup(sd))
	mux.HandleFunc("GET /groups/search", routes.SearchGroups(sd))
	mux.HandleFunc("GET /groups/mine", routes.MyGroups(sd))
	mux.HandleFunc("POST /groups/{id}/join", routes.JoinGroup(sd))
	mux.HandleFunc("GET /groups/{id}/ballots", routes.GroupBallots(sd))
	mux.HandleFunc("GET /groups/{id}/leaderboard", routes.GroupLeaderboard(sd))

	var h http.Handler = mux
	h = withLogging(h)
	h = withIdentity(sd.Verifier)(h)
	h = withCORS(sd.AllowedOrigins)(h)
	h = withSecurityHeaders(h)
	return withCorrelationID(h)
}
