package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	pkgauth "github.com/Aryangurung1/HellooBuddy/pkg/auth"
	"github.com/Aryangurung1/HellooBuddy/pkg/auth/session"
	"github.com/Aryangurung1/HellooBuddy/pkg/config"
	"github.com/Aryangurung1/HellooBuddy/pkg/db/models"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/kinde"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"

	"github.com/Aryangurung1/HellooBuddy/internal/users"
)

// CallbackResult is the provisioning outcome after a Kinde sign-in.
type CallbackResult struct {
	Token     string `json:"token"`
	IsAdmin   bool   `json:"is_admin"`
	IsNewUser bool   `json:"is_new_user"`
}

type sessionManager interface {
	Create(ctx context.Context, accessID, userID string) error
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams groups dependencies for the auth service.
type ServiceParams struct {
	Users      users.Repository
	Identity   kinde.ManagementClient
	Sessions   sessionManager
	JWT        config.JWTConfig
	AdminEmail string
	Logger     *logger.Logger
	Now        func() time.Time
}

// Service provisions local accounts from Kinde identities and manages
// session lifetimes.
type Service struct {
	users      users.Repository
	identity   kinde.ManagementClient
	sessions   sessionManager
	jwt        config.JWTConfig
	adminEmail string
	logg       *logger.Logger
	now        func() time.Time
}

// NewService builds an auth service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Users == nil {
		return nil, errors.New("users repo is required")
	}
	if params.Identity == nil {
		return nil, errors.New("identity client is required")
	}
	if params.Sessions == nil {
		return nil, errors.New("session manager is required")
	}
	if params.JWT.Secret == "" {
		return nil, errors.New("jwt config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		users:      params.Users,
		identity:   params.Identity,
		sessions:   params.Sessions,
		jwt:        params.JWT,
		adminEmail: strings.ToLower(strings.TrimSpace(params.AdminEmail)),
		logg:       params.Logger,
		now:        now,
	}, nil
}

// Callback provisions the local account for a Kinde identity and opens a
// session. First-time sign-ins create the user; the configured admin email
// is promoted on sight. IsNewUser reports whether the terms prompt is due,
// not whether the row was just created.
func (s *Service) Callback(ctx context.Context, kindeUserID string) (CallbackResult, error) {
	if strings.TrimSpace(kindeUserID) == "" {
		return CallbackResult{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be logged in to access this resource")
	}

	identity, err := s.identity.GetUser(ctx, kindeUserID)
	if err != nil {
		if pkgerrors.As(err).Code() == pkgerrors.CodeNotFound {
			return CallbackResult{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity could not be verified")
		}
		return CallbackResult{}, err
	}
	if identity.ID == "" || identity.Email == "" {
		return CallbackResult{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity could not be verified")
	}

	user, err := s.users.FindByID(ctx, identity.ID)
	if err != nil {
		return CallbackResult{}, err
	}

	isAdminEmail := s.adminEmail != "" && strings.EqualFold(identity.Email, s.adminEmail)
	if user == nil {
		user = &models.User{
			ID:      identity.ID,
			Email:   identity.Email,
			IsAdmin: isAdminEmail,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return CallbackResult{}, err
		}
		s.logg.Info(s.logg.WithUserID(ctx, user.ID), "user provisioned")
	} else if isAdminEmail && !user.IsAdmin {
		user.IsAdmin = true
		if err := s.users.Save(ctx, user); err != nil {
			return CallbackResult{}, err
		}
		s.logg.Info(s.logg.WithUserID(ctx, user.ID), "user promoted to admin")
	}

	if user.IsSuspended {
		return CallbackResult{}, pkgerrors.New(pkgerrors.CodeForbidden, "your account has been suspended")
	}

	accessID := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		JTI:     accessID,
	})
	if err != nil {
		return CallbackResult{}, err
	}
	if err := s.sessions.Create(ctx, accessID, user.ID); err != nil {
		return CallbackResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "opening session")
	}

	return CallbackResult{
		Token:     token,
		IsAdmin:   user.IsAdmin,
		IsNewUser: !user.HasAcceptedTerms,
	}, nil
}

// Logout revokes the session tied to the token's jti.
func (s *Service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be logged in to access this resource")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	return nil
}
