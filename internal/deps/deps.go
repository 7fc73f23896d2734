package deps

import (
	"time"

	"github.com/sydney-cole/oscars-ballot/internal/leaderboard"
	"github.com/sydney-cole/oscars-ballot/internal/live"
	"github.com/sydney-cole/oscars-ballot/internal/service"

	pkgidentity "github.com/sydney-cole/oscars-ballot/pkg/identity"
	pkgsigner "github.com/sydney-cole/oscars-ballot/pkg/signer"
)

// ServerDeps holds the dependencies required by handlers and server.
type ServerDeps struct {
	Service        *service.Service
	Boards         *leaderboard.Boards
	Live           *live.Hub
	Signer         pkgsigner.Codec
	Verifier       *pkgidentity.Verifier
	AllowedOrigins []string
	Name           string
	StartedAt      time.Time
}
