// Package service holds the identity resolution pipeline: turning an
// inbound credential (password pair, OAuth authorization code or verified
// OAuth profile) into a canonical user record and a signed session token.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tazhibayda/identity-service/internal/apperror"
	"github.com/tazhibayda/identity-service/internal/domain"
	"github.com/tazhibayda/identity-service/internal/images"
	"github.com/tazhibayda/identity-service/internal/oauth"
	"github.com/tazhibayda/identity-service/internal/repo"
	"github.com/tazhibayda/identity-service/internal/security"
	"github.com/tazhibayda/identity-service/internal/validate"
)

// UserStore is the identity record repository. The Mongo store is the
// production implementation; tests use repo.MemoryStore.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByExternalID(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) error
	UpdateUser(ctx context.Context, externalID string, u *domain.User) error
	AllEmails(ctx context.Context) ([]string, error)
}

// GitHubBridge exchanges an authorization code for a provider token and
// fetches the provider's profile. Only the GitHub flow needs this hop.
type GitHubBridge interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, token string) (*oauth.Profile, error)
}

type Identity struct {
	store         UserStore
	images        images.Store
	bridge        GitHubBridge
	logger        *zap.Logger
	jwtSecret     string
	accessTTL     time.Duration
	defaultAvatar string
}

func NewIdentity(store UserStore, imgs images.Store, bridge GitHubBridge, logger *zap.Logger,
	jwtSecret string, accessTTL time.Duration, defaultAvatar string) *Identity {
	return &Identity{
		store:         store,
		images:        imgs,
		bridge:        bridge,
		logger:        logger,
		jwtSecret:     jwtSecret,
		accessTTL:     accessTTL,
		defaultAvatar: defaultAvatar,
	}
}

type Credentials struct {
	Email    string
	Password string
}

// OAuthProfile is the already-verified payload Google/Facebook callers
// submit; the provider's own code exchange happened upstream.
type OAuthProfile struct {
	Email    string
	Name     string
	ImageURL string
}

// AuthResult is the single success outcome of every authentication entry:
// at most one token per invocation.
type AuthResult struct {
	User  *domain.User
	Token string
}

type ProfilePatch struct {
	Name        string
	Email       string
	Password    string
	Picture     string
	Bio         string
	PhoneNumber string
}

// Profile is the public projection of a user record. It never carries the
// credential hash; Password is a mask whose length equals the stored
// credential length.
type Profile struct {
	ExternalID  string `json:"userId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Bio         string `json:"bio"`
	Picture     string `json:"picture"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
}

// Register creates a local account: ruleset validation against the email
// snapshot, bcrypt hash, default avatar, then a signed token.
func (s *Identity) Register(ctx context.Context, in Credentials) (*AuthResult, error) {
	emails, err := s.store.AllEmails(ctx)
	if err != nil {
		return nil, apperror.Internal("Internal server error")
	}
	if v := validate.RegisterRules(emails).Evaluate(map[string]string{
		"email": in.Email, "password": in.Password,
	}); v != nil {
		return nil, apperror.BadRequest(v.Field, v.Message)
	}

	pic, err := s.images.Upload(ctx, s.defaultAvatar)
	if err != nil {
		return nil, apperror.Internal("Internal server error")
	}
	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal("Internal server error")
	}

	u := &domain.User{
		ExternalID:     uuid.NewString(),
		Email:          in.Email,
		PasswordHash:   hash,
		PasswordLength: len(in.Password),
		Picture:        pic,
		TrustSource:    domain.TrustLocal,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			// lost the race against a concurrent registration; the unique
			// index is the source of truth, the snapshot was only a hint
			return nil, apperror.BadRequest("email", fmt.Sprintf("'%s' is already used", in.Email))
		}
		return nil, apperror.Internal("Internal server error")
	}

	s.logger.Info("user registered",
		zap.String("external_id", u.ExternalID), zap.String("trust_source", u.TrustSource))
	return s.issue(u)
}

// Login authenticates a local credential pair. An OAuth-only account has no
// local credential (PasswordLength == 0) and is rejected explicitly before
// any hash comparison.
func (s *Identity) Login(ctx context.Context, in Credentials) (*AuthResult, error) {
	if v := validate.LoginRules().Evaluate(map[string]string{
		"email": in.Email, "password": in.Password,
	}); v != nil {
		return nil, apperror.BadRequest(v.Field, v.Message)
	}

	u, err := s.store.FindUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperror.Internal("Internal server error")
	}
	if u == nil {
		return nil, apperror.NotFound("User not exist")
	}
	if u.PasswordLength == 0 {
		return nil, apperror.BadRequest("password", "Password not match")
	}
	if !security.CheckPassword(u.PasswordHash, in.Password) {
		return nil, apperror.BadRequest("password", "Password not match")
	}
	return s.issue(u)
}

// AuthenticateOAuth resolves a verified Google/Facebook profile. A matching
// email reuses the existing record regardless of its original trust source;
// otherwise a credential-less record is created for the provider.
func (s *Identity) AuthenticateOAuth(ctx context.Context, provider string, p OAuthProfile) (*AuthResult, error) {
	u, err := s.store.FindUserByEmail(ctx, p.Email)
	if err != nil {
		return nil, apperror.Internal("Internal server error")
	}
	if u != nil {
		return s.issue(u)
	}

	pic, err := s.images.Upload(ctx, p.ImageURL)
	if err != nil {
		return nil, apperror.Internal("Internal server error")
	}
	u = &domain.User{
		ExternalID:  uuid.NewString(),
		Email:       p.Email,
		Name:        p.Name,
		Picture:     pic,
		TrustSource: provider,
	}
	return s.createAndIssue(ctx, u)
}

// AuthenticateGitHub runs the full bridge hop: code exchange, profile
// fetch, then the same find-or-create resolution as the other providers.
// Bridge failures stay typed as upstream errors all the way out.
func (s *Identity) AuthenticateGitHub(ctx context.Context, code string) (*AuthResult, error) {
	ghToken, err := s.bridge.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	p, err := s.bridge.FetchProfile(ctx, ghToken)
	if err != nil {
		return nil, err
	}

	u, err := s.store.FindUserByEmail(ctx, p.Email)
	if err != nil {
		return nil, apperror.Internal("Internal server error")
	}
	if u != nil {
		return s.issue(u)
	}

	pic, err := s.images.Upload(ctx, p.AvatarURL)
	if err != nil {
		return nil, apperror.Internal("Internal server error")
	}
	u = &domain.User{
		ExternalID:  uuid.NewString(),
		Email:       p.Email,
		Name:        p.Name,
		Bio:         p.Bio,
		Picture:     pic,
		TrustSource: domain.TrustGithub,
	}
	return s.createAndIssue(ctx, u)
}

// GetProfile projects the record to its public view. The mask is cosmetic:
// its length equals the stored credential length, nothing more.
func (s *Identity) GetProfile(ctx context.Context, externalID string) (*Profile, error) {
	u, err := s.store.FindUserByExternalID(ctx, externalID)
	if err != nil {
		return nil, apperror.Internal("Internal server error")
	}
	if u == nil {
		return nil, apperror.NotFound("User not found")
	}
	return &Profile{
		ExternalID:  u.ExternalID,
		Name:        u.Name,
		Email:       u.Email,
		Bio:         u.Bio,
		Picture:     u.Picture.SecureURL,
		Password:    strings.Repeat("*", u.PasswordLength),
		PhoneNumber: u.PhoneNumber,
	}, nil
}

// UpdateProfile mutates the record's profile fields. A picture patch that is
// a syntactically valid URL means "no new upload" and keeps the stored
// reference; raw content replaces the old image, unless deleting the old one
// fails, in which case the old reference is retained to avoid orphans.
func (s *Identity) UpdateProfile(ctx context.Context, externalID string, patch ProfilePatch) error {
	u, err := s.store.FindUserByExternalID(ctx, externalID)
	if err != nil {
		return apperror.Internal("Internal server error")
	}
	if u == nil {
		return apperror.NotFound("Users not found")
	}

	if patch.Password != "" {
		hash, err := security.HashPassword(patch.Password)
		if err != nil {
			return apperror.Internal("Internal server error")
		}
		u.PasswordHash = hash
		u.PasswordLength = len(patch.Password)
	}

	if patch.Picture != "" && !validURL(patch.Picture) {
		if s.images.Delete(ctx, u.Picture.PublicID) {
			pic, err := s.images.Upload(ctx, patch.Picture)
			if err != nil {
				return apperror.Internal("Internal server error")
			}
			u.Picture = pic
		}
	}

	u.Name = patch.Name
	u.Email = patch.Email
	u.Bio = patch.Bio
	u.PhoneNumber = patch.PhoneNumber

	if err := s.store.UpdateUser(ctx, externalID, u); err != nil {
		return apperror.Internal("Internal server error")
	}
	return nil
}

func (s *Identity) issue(u *domain.User) (*AuthResult, error) {
	tok, err := security.MakeAccess(s.jwtSecret, u.ExternalID, u.Email, u.TrustSource, s.accessTTL)
	if err != nil {
		return nil, apperror.Internal("Internal server error")
	}
	return &AuthResult{User: u, Token: tok}, nil
}

func (s *Identity) createAndIssue(ctx context.Context, u *domain.User) (*AuthResult, error) {
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			// concurrent first login with the same email; resolve to the
			// record that won
			existing, ferr := s.store.FindUserByEmail(ctx, u.Email)
			if ferr != nil || existing == nil {
				return nil, apperror.Internal("Internal server error")
			}
			return s.issue(existing)
		}
		return nil, apperror.Internal("Internal server error")
	}
	s.logger.Info("user created",
		zap.String("external_id", u.ExternalID), zap.String("trust_source", u.TrustSource))
	return s.issue(u)
}

// validURL matches the permissive shape used by the profile update flow:
// optional scheme, domain or IPv4, optional port/path/query/fragment.
var urlRe = regexp.MustCompile(`(?i)^(https?://)?((([a-z\d]([a-z\d-]*[a-z\d])*)\.)+[a-z]{2,}|((\d{1,3}\.){3}\d{1,3}))(:\d+)?(/[-a-z\d%_.~+]*)*(\?[;&a-z\d%_.~+=-]*)?(#[-a-z\d_]*)?$`)

func validURL(s string) bool { return urlRe.MatchString(s) }
