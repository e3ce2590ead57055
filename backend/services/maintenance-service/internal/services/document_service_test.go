package services

import (
	"errors"
	"strings"
	"testing"

	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContingencyDocuments(t *testing.T) {
	t.Run("Should show a manager's upload to its admin but not to a peer", func(t *testing.T) {
		// ARRANGE
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Hazel")
		peer := env.CreateTestUser(models.RolePropertyManager, "peer", &env.Admin)

		// ACT
		doc, err := env.Docs.Upload(env.Ctx, env.Manager, &b.ID, "Fire plan", "fire plan.pdf", strings.NewReader("%PDF"))
		require.NoError(t, err)
		adminList, _ := env.Docs.List(env.Ctx, env.Admin)
		peerList, _ := env.Docs.List(env.Ctx, peer)

		// ASSERT
		assert.Equal(t, env.Manager.DisplayName, doc.UploadedBy)
		assert.Len(t, adminList, 1)
		assert.Empty(t, peerList)
	})

	t.Run("Should report another manager's document as not found", func(t *testing.T) {
		env := newTestEnv(t)
		peer := env.CreateTestUser(models.RolePropertyManager, "peer", &env.Admin)
		doc, err := env.Docs.Upload(env.Ctx, env.Manager, nil, "Flood plan", "flood.pdf", strings.NewReader("%PDF"))
		require.NoError(t, err)

		err = env.Docs.Delete(env.Ctx, peer, doc.ID)
		var nf *internal_utils.NotFoundError
		assert.True(t, errors.As(err, &nf))

		require.NoError(t, env.Docs.Delete(env.Ctx, env.Admin, doc.ID))
	})
}
