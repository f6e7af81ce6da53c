package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tazhibayda/identity-service/internal/domain"
	"github.com/tazhibayda/identity-service/internal/repo"
)

func TestMemoryStoreUniqueEmail(t *testing.T) {
	ctx := context.Background()
	s := repo.NewMemoryStore()

	err := s.CreateUser(ctx, &domain.User{ExternalID: "u1", Email: "a@x.com", TrustSource: domain.TrustLocal})
	require.NoError(t, err)

	err = s.CreateUser(ctx, &domain.User{ExternalID: "u2", Email: "a@x.com", TrustSource: domain.TrustLocal})
	require.ErrorIs(t, err, repo.ErrEmailTaken)
}

func TestMemoryStoreUpdateReindexesEmail(t *testing.T) {
	ctx := context.Background()
	s := repo.NewMemoryStore()

	u := &domain.User{ExternalID: "u1", Email: "old@x.com", TrustSource: domain.TrustLocal}
	require.NoError(t, s.CreateUser(ctx, u))

	u.Email = "new@x.com"
	require.NoError(t, s.UpdateUser(ctx, "u1", u))

	old, err := s.FindUserByEmail(ctx, "old@x.com")
	require.NoError(t, err)
	require.Nil(t, old)

	got, err := s.FindUserByEmail(ctx, "new@x.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "u1", got.ExternalID)

	emails, err := s.AllEmails(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"new@x.com"}, emails)
}
