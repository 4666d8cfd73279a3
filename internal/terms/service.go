package terms

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Aryangurung1/HellooBuddy/internal/users"
	"github.com/Aryangurung1/HellooBuddy/pkg/db"
	"github.com/Aryangurung1/HellooBuddy/pkg/db/models"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
)

// ServiceParams groups dependencies for the terms service.
type ServiceParams struct {
	Repo   Repository
	Users  users.Repository
	DB     *db.Client
	Logger *logger.Logger
}

// Service manages the versioned terms-and-conditions document and each
// user's acceptance state.
type Service struct {
	repo  Repository
	users users.Repository
	db    *db.Client
	logg  *logger.Logger
}

// NewService builds a terms service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Users == nil {
		return nil, errors.New("users repo is required")
	}
	if params.DB == nil {
		return nil, errors.New("db client is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{
		repo:  params.Repo,
		users: params.Users,
		db:    params.DB,
		logg:  params.Logger,
	}, nil
}

// Active returns the current terms document, seeding the default version
// when the table is empty.
func (s *Service) Active(ctx context.Context) (*models.TermsAndConditions, error) {
	active, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return active, nil
	}

	seed := &models.TermsAndConditions{
		Version:  defaultVersion,
		Content:  defaultTerms,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, seed); err != nil {
		return nil, err
	}
	s.logg.Info(ctx, "default terms and conditions seeded")
	return seed, nil
}

// Latest is the admin view of the active document.
func (s *Service) Latest(ctx context.Context, requesterID string) (*models.TermsAndConditions, error) {
	if err := s.requireAdmin(ctx, requesterID); err != nil {
		return nil, err
	}
	return s.Active(ctx)
}

// Publish replaces the active document with a new version. Every user's
// acceptance flag is reset so the next sign-in re-prompts them.
func (s *Service) Publish(ctx context.Context, requesterID, content, version string) (*models.TermsAndConditions, error) {
	if err := s.requireAdmin(ctx, requesterID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	}
	if strings.TrimSpace(version) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "version is required")
	}

	published := &models.TermsAndConditions{
		Version:  version,
		Content:  content,
		IsActive: true,
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).DeactivateAll(ctx); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Create(ctx, published); err != nil {
			return err
		}
		return s.users.WithTx(tx).ResetTermsAcceptance(ctx)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "version", version), "terms and conditions published")
	return published, nil
}

// Accept records the user's agreement with the active document.
func (s *Service) Accept(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be logged in to access this resource")
	}
	if err := s.users.SetTermsAccepted(ctx, userID, true); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return err
	}
	return nil
}

// Reject acknowledges a declined prompt without touching the account. The
// client signs the user out; their data stays until they delete it.
func (s *Service) Reject(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be logged in to access this resource")
	}
	return nil
}

// Status reports whether the user has accepted the active document.
func (s *Service) Status(ctx context.Context, userID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be logged in to access this resource")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user.HasAcceptedTerms, nil
}

func (s *Service) requireAdmin(ctx context.Context, requesterID string) error {
	if strings.TrimSpace(requesterID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be logged in to access this resource")
	}
	user, err := s.users.FindByID(ctx, requesterID)
	if err != nil {
		return err
	}
	if user == nil || !user.IsAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not authorized")
	}
	return nil
}
