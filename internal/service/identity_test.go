package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tazhibayda/identity-service/internal/apperror"
	"github.com/tazhibayda/identity-service/internal/domain"
	"github.com/tazhibayda/identity-service/internal/images"
	"github.com/tazhibayda/identity-service/internal/oauth"
	"github.com/tazhibayda/identity-service/internal/repo"
	"github.com/tazhibayda/identity-service/internal/security"
	"github.com/tazhibayda/identity-service/internal/service"
)

const testSecret = "test-secret"

type fakeBridge struct {
	profile     *oauth.Profile
	exchangeErr error
	fetchErr    error
}

func (f *fakeBridge) ExchangeCode(ctx context.Context, code string) (string, error) {
	if f.exchangeErr != nil {
		return "", f.exchangeErr
	}
	return "gh-token", nil
}

func (f *fakeBridge) FetchProfile(ctx context.Context, token string) (*oauth.Profile, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.profile, nil
}

// noDeleteImages refuses deletions, simulating a store that cannot confirm
// removal of the previous image.
type noDeleteImages struct{ images.Store }

func (noDeleteImages) Delete(ctx context.Context, publicID string) bool { return false }

func newIdentity(store service.UserStore, imgs images.Store, bridge service.GitHubBridge) *service.Identity {
	return service.NewIdentity(store, imgs, bridge, zap.NewNop(),
		testSecret, time.Hour, "https://cdn.example.com/default.jpg")
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryStore()
	idn := newIdentity(store, images.NewMemory(), nil)

	res, err := idn.Register(ctx, service.Credentials{Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	claims, err := security.ParseAccess(testSecret, res.Token)
	require.NoError(t, err)
	require.Equal(t, res.User.ExternalID, claims.Subject)
	require.Equal(t, "a@x.com", claims.Email)
	require.Equal(t, domain.TrustLocal, claims.TrustSource)

	u, err := store.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, domain.TrustLocal, u.TrustSource)
	require.NotEmpty(t, u.PasswordHash)
	require.NotEqual(t, "password1", u.PasswordHash)
	require.Equal(t, 9, u.PasswordLength)
	require.NotEmpty(t, u.Picture.SecureURL)

	// second registration with the same email fails BadRequest
	_, err = idn.Register(ctx, service.Credentials{Email: "a@x.com", Password: "password2"})
	require.True(t, errors.Is(err, apperror.ErrBadRequest))
	require.Equal(t, "'a@x.com' is already used", err.Error())
}

func TestRegisterValidation(t *testing.T) {
	idn := newIdentity(repo.NewMemoryStore(), images.NewMemory(), nil)

	_, err := idn.Register(context.Background(), service.Credentials{Email: "a@x.com", Password: "short"})
	require.True(t, errors.Is(err, apperror.ErrBadRequest))
	require.Equal(t, "must be at least 8 characters", err.Error())

	_, err = idn.Register(context.Background(), service.Credentials{Password: "password1"})
	require.True(t, errors.Is(err, apperror.ErrBadRequest))
	require.Equal(t, "Email can't be blank", err.Error())
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryStore()
	idn := newIdentity(store, images.NewMemory(), nil)

	reg, err := idn.Register(ctx, service.Credentials{Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)

	res, err := idn.Login(ctx, service.Credentials{Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)
	claims, err := security.ParseAccess(testSecret, res.Token)
	require.NoError(t, err)
	require.Equal(t, reg.User.ExternalID, claims.Subject)

	_, err = idn.Login(ctx, service.Credentials{Email: "a@x.com", Password: "wrong-password"})
	require.True(t, errors.Is(err, apperror.ErrBadRequest))
	require.Equal(t, "Password not match", err.Error())

	_, err = idn.Login(ctx, service.Credentials{Email: "nobody@x.com", Password: "password1"})
	require.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestLoginOAuthOnlyAccount(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryStore()
	idn := newIdentity(store, images.NewMemory(), nil)

	_, err := idn.AuthenticateOAuth(ctx, domain.TrustGoogle, service.OAuthProfile{
		Email: "g@x.com", Name: "G", ImageURL: "https://img/g.png",
	})
	require.NoError(t, err)

	// no local credential exists: explicit rejection, never an internal error
	_, err = idn.Login(ctx, service.Credentials{Email: "g@x.com", Password: "whatever1"})
	require.True(t, errors.Is(err, apperror.ErrBadRequest))
	require.Equal(t, "Password not match", err.Error())
}

func TestAuthenticateOAuthIdempotentMerge(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryStore()
	idn := newIdentity(store, images.NewMemory(), nil)

	first, err := idn.AuthenticateOAuth(ctx, domain.TrustGoogle, service.OAuthProfile{
		Email: "g@x.com", Name: "G", ImageURL: "https://img/g.png",
	})
	require.NoError(t, err)
	require.Equal(t, domain.TrustGoogle, first.User.TrustSource)
	require.Zero(t, first.User.PasswordLength)

	second, err := idn.AuthenticateOAuth(ctx, domain.TrustFacebook, service.OAuthProfile{
		Email: "g@x.com", Name: "Same Person",
	})
	require.NoError(t, err)
	require.Equal(t, first.User.ExternalID, second.User.ExternalID)
	// trust source is set once at creation and never changed
	require.Equal(t, domain.TrustGoogle, second.User.TrustSource)
}

func TestAuthenticateOAuthMergesWithLocalAccount(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryStore()
	idn := newIdentity(store, images.NewMemory(), nil)

	reg, err := idn.Register(ctx, service.Credentials{Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)

	res, err := idn.AuthenticateOAuth(ctx, domain.TrustGoogle, service.OAuthProfile{Email: "a@x.com"})
	require.NoError(t, err)
	require.Equal(t, reg.User.ExternalID, res.User.ExternalID)
}

func TestAuthenticateGitHub(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryStore()
	bridge := &fakeBridge{profile: &oauth.Profile{
		Email: "gh@x.com", Name: "GH", AvatarURL: "https://img/gh.png", Bio: "builds things",
	}}
	idn := newIdentity(store, images.NewMemory(), bridge)

	first, err := idn.AuthenticateGitHub(ctx, "code-1")
	require.NoError(t, err)
	require.Equal(t, domain.TrustGithub, first.User.TrustSource)
	require.Equal(t, "builds things", first.User.Bio)
	require.Zero(t, first.User.PasswordLength)

	second, err := idn.AuthenticateGitHub(ctx, "code-2")
	require.NoError(t, err)
	require.Equal(t, first.User.ExternalID, second.User.ExternalID)
}

func TestAuthenticateGitHubUpstreamFailure(t *testing.T) {
	idn := newIdentity(repo.NewMemoryStore(), images.NewMemory(),
		&fakeBridge{exchangeErr: apperror.Upstream("no access token in github response")})

	_, err := idn.AuthenticateGitHub(context.Background(), "bad-code")
	require.True(t, errors.Is(err, apperror.ErrUpstreamAuth), "upstream failure stays typed")
}

func TestGetProfileMasksCredential(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryStore()
	idn := newIdentity(store, images.NewMemory(), nil)

	reg, err := idn.Register(ctx, service.Credentials{Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)

	p, err := idn.GetProfile(ctx, reg.User.ExternalID)
	require.NoError(t, err)
	require.Equal(t, "*********", p.Password, "mask length equals credential length")
	require.False(t, strings.Contains(p.Password, "$2a$"), "hash never leaves the store")

	oa, err := idn.AuthenticateOAuth(ctx, domain.TrustGoogle, service.OAuthProfile{Email: "g@x.com"})
	require.NoError(t, err)
	op, err := idn.GetProfile(ctx, oa.User.ExternalID)
	require.NoError(t, err)
	require.Empty(t, op.Password, "zero-length mask for OAuth accounts")

	_, err = idn.GetProfile(ctx, "missing-id")
	require.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	setup := func(imgs images.Store) (*service.Identity, *domain.User, service.UserStore) {
		store := repo.NewMemoryStore()
		idn := newIdentity(store, imgs, nil)
		reg, err := idn.Register(ctx, service.Credentials{Email: "a@x.com", Password: "password1"})
		require.NoError(t, err)
		return idn, reg.User, store
	}

	t.Run("url picture keeps stored reference", func(t *testing.T) {
		idn, u, store := setup(images.NewMemory())
		err := idn.UpdateProfile(ctx, u.ExternalID, service.ProfilePatch{
			Name: "New Name", Email: "a@x.com", Picture: "https://cdn.example.com/existing.jpg",
		})
		require.NoError(t, err)

		got, err := store.FindUserByExternalID(ctx, u.ExternalID)
		require.NoError(t, err)
		require.Equal(t, u.Picture, got.Picture)
		require.Equal(t, "New Name", got.Name)
	})

	t.Run("raw content replaces picture", func(t *testing.T) {
		idn, u, store := setup(images.NewMemory())
		err := idn.UpdateProfile(ctx, u.ExternalID, service.ProfilePatch{
			Email: "a@x.com", Picture: "data:image/png;base64,AAAA",
		})
		require.NoError(t, err)

		got, err := store.FindUserByExternalID(ctx, u.ExternalID)
		require.NoError(t, err)
		require.NotEqual(t, u.Picture.PublicID, got.Picture.PublicID)
	})

	t.Run("failed delete retains old picture", func(t *testing.T) {
		idn, u, store := setup(noDeleteImages{images.NewMemory()})
		err := idn.UpdateProfile(ctx, u.ExternalID, service.ProfilePatch{
			Email: "a@x.com", Picture: "data:image/png;base64,AAAA",
		})
		require.NoError(t, err)

		got, err := store.FindUserByExternalID(ctx, u.ExternalID)
		require.NoError(t, err)
		require.Equal(t, u.Picture, got.Picture)
	})

	t.Run("password rehash", func(t *testing.T) {
		idn, u, store := setup(images.NewMemory())
		err := idn.UpdateProfile(ctx, u.ExternalID, service.ProfilePatch{
			Email: "a@x.com", Password: "brand-new-pass",
		})
		require.NoError(t, err)

		got, err := store.FindUserByExternalID(ctx, u.ExternalID)
		require.NoError(t, err)
		require.Equal(t, len("brand-new-pass"), got.PasswordLength)
		require.True(t, security.CheckPassword(got.PasswordHash, "brand-new-pass"))

		_, err = idn.Login(ctx, service.Credentials{Email: "a@x.com", Password: "brand-new-pass"})
		require.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		idn, _, _ := setup(images.NewMemory())
		err := idn.UpdateProfile(ctx, "missing-id", service.ProfilePatch{Email: "x@y.z"})
		require.True(t, errors.Is(err, apperror.ErrNotFound))
	})
}
