package testhelpers

import (
	"time"

	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-middleware"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/stretchr/testify/require"
)

// CreateJWT signs a one-hour access token for actor with the helper's key.
func (h *TestHelper) CreateJWT(actor models.Actor) string {
	tok, err := middleware.IssueToken(h.PrivateKey, actor, time.Hour)
	require.NoError(h.T, err, "sign access token")
	return tok
}

// CreateExpiredJWT signs a token that expired a minute ago.
func (h *TestHelper) CreateExpiredJWT(actor models.Actor) string {
	tok, err := middleware.IssueToken(h.PrivateKey, actor, -time.Minute)
	require.NoError(h.T, err, "sign expired token")
	return tok
}
