package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Aryangurung1/HellooBuddy/pkg/db"
	"github.com/Aryangurung1/HellooBuddy/pkg/db/models"
	"github.com/Aryangurung1/HellooBuddy/pkg/enums"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/kinde"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
	"github.com/Aryangurung1/HellooBuddy/pkg/mailer"
)

const growthWindowMonths = 6

const fallbackDisplayName = "No Name"

// ServiceParams groups dependencies for the user service.
type ServiceParams struct {
	Repo     Repository
	DB       *db.Client
	Identity kinde.ManagementClient
	Mailer   mailer.Mailer
	Logger   *logger.Logger
	Now      func() time.Time
}

// Service orchestrates user lifecycle operations. Identity provider writes
// always happen before local writes so a rejected upstream call leaves the
// local record untouched.
type Service struct {
	repo     Repository
	db       *db.Client
	identity kinde.ManagementClient
	mailer   mailer.Mailer
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds a user service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.DB == nil {
		return nil, errors.New("db client is required")
	}
	if params.Identity == nil {
		return nil, errors.New("identity client is required")
	}
	if params.Mailer == nil {
		return nil, errors.New("mailer is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:     params.Repo,
		db:       params.DB,
		identity: params.Identity,
		mailer:   params.Mailer,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// EditName updates the user's display name on the identity provider.
// The name is split on the first space into given and family parts.
func (s *Service) EditName(ctx context.Context, userID, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	user, err := s.mustFindUser(ctx, userID)
	if err != nil {
		return err
	}

	given, family := splitName(trimmed)
	if err := s.identity.UpdateUserName(ctx, user.ID, given, family); err != nil {
		return err
	}
	return nil
}

// Suspend flags the account on the identity provider first, then locally,
// and notifies the user by email. A failed email never fails the operation.
func (s *Service) Suspend(ctx context.Context, userID string) (*models.User, error) {
	return s.setSuspension(ctx, userID, true)
}

// Unsuspend reactivates the account upstream and locally.
func (s *Service) Unsuspend(ctx context.Context, userID string) (*models.User, error) {
	return s.setSuspension(ctx, userID, false)
}

func (s *Service) setSuspension(ctx context.Context, userID string, suspended bool) (*models.User, error) {
	user, err := s.mustFindUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.identity.SetSuspended(ctx, user.ID, suspended); err != nil {
		return nil, err
	}
	if err := s.repo.SetSuspended(ctx, user.ID, suspended); err != nil {
		return nil, err
	}
	user.IsSuspended = suspended

	var mailErr error
	if suspended {
		mailErr = s.mailer.SendSuspensionNotice(user.Email)
	} else {
		mailErr = s.mailer.SendReactivationNotice(user.Email)
	}
	if mailErr != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID), "failed to send suspension notice: "+mailErr.Error())
	}

	return user, nil
}

// Delete removes the account from the identity provider, then purges the
// local record and its dependents in one transaction.
func (s *Service) Delete(ctx context.Context, userID string) error {
	user, err := s.mustFindUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.identity.DeleteUser(ctx, user.ID); err != nil {
		return err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).PurgeUserData(ctx, user.ID)
	})
	if err != nil {
		return err
	}

	if mailErr := s.mailer.SendAccountDeletionNotice(user.Email); mailErr != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID), "failed to send deletion notice: "+mailErr.Error())
	}
	return nil
}

// Counts returns the public dashboard totals.
func (s *Service) Counts(ctx context.Context) (CountsResult, error) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return CountsResult{}, err
	}
	return CountsResult{
		TotalUsers:     counts.Total,
		ActiveUsers:    counts.Active,
		SuspendedUsers: counts.Suspended,
	}, nil
}

// Growth buckets non-admin signups into the trailing six calendar months,
// oldest month first.
func (s *Service) Growth(ctx context.Context) ([]GrowthPoint, error) {
	now := s.now().UTC()

	points := make([]GrowthPoint, 0, growthWindowMonths)
	for i := growthWindowMonths - 1; i >= 0; i-- {
		start, end := monthBounds(now, -i)
		count, err := s.repo.CountCreatedBetween(ctx, start, end)
		if err != nil {
			return nil, err
		}
		points = append(points, GrowthPoint{
			Month: start.Month().String()[:3],
			Users: count,
		})
	}
	return points, nil
}

// Paginated returns one page of non-admin users enriched with identity
// provider names, filtered by the optional search term.
func (s *Service) Paginated(ctx context.Context, page, limit int, search string) (PaginatedUsers, error) {
	if page <= 0 {
		return PaginatedUsers{}, pkgerrors.New(pkgerrors.CodeValidation, "page must be positive")
	}
	if limit <= 0 {
		return PaginatedUsers{}, pkgerrors.New(pkgerrors.CodeValidation, "limit must be positive")
	}

	summaries, err := s.listWithNames(ctx)
	if err != nil {
		return PaginatedUsers{}, err
	}

	filtered := filterSummaries(summaries, search)

	skip := (page - 1) * limit
	if skip > len(filtered) {
		skip = len(filtered)
	}
	end := skip + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	return PaginatedUsers{
		Users: filtered[skip:end],
		Total: len(filtered),
	}, nil
}

// All returns every non-admin user with identity provider names attached.
func (s *Service) All(ctx context.Context) ([]UserSummary, error) {
	return s.listWithNames(ctx)
}

// GrantReward gives the user a wallet-tracked subscription window and sends
// the admin-authored announcement. A failed email never fails the grant.
func (s *Service) GrantReward(ctx context.Context, input GrantRewardInput) (*models.User, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.EndDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date is required")
	}

	user, err := s.mustFindUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	method := enums.PaymentMethodEsewa
	end := input.EndDate
	if err := s.repo.SetRewardPeriod(ctx, user.ID, &end, &method); err != nil {
		return nil, err
	}
	user.EsewaCurrentPeriodEnd = &end
	user.PaymentMethod = &method

	if mailErr := s.mailer.SendRewardNotice(user.Email, input.Title, input.Description); mailErr != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID), "failed to send reward notice: "+mailErr.Error())
	}
	return user, nil
}

// RevokeReward clears the wallet subscription window and notifies the user.
func (s *Service) RevokeReward(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.mustFindUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetRewardPeriod(ctx, user.ID, nil, nil); err != nil {
		return nil, err
	}
	user.EsewaCurrentPeriodEnd = nil

	if mailErr := s.mailer.SendRewardRevokedNotice(user.Email); mailErr != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID), "failed to send reward revocation notice: "+mailErr.Error())
	}
	return user, nil
}

// Get returns the local record for the given user id.
func (s *Service) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.mustFindUser(ctx, userID)
}

// KindeProfile proxies the identity provider's view of the user.
func (s *Service) KindeProfile(ctx context.Context, userID string) (KindeProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return KindeProfile{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	identity, err := s.identity.GetUser(ctx, userID)
	if err != nil {
		return KindeProfile{}, err
	}
	if identity == nil {
		return KindeProfile{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found in kinde")
	}
	return KindeProfile{
		GivenName:  identity.GivenName,
		FamilyName: identity.FamilyName,
		Email:      identity.Email,
		Picture:    identity.Picture,
	}, nil
}

// UpdateImage stores the assembled avatar data URL on the user record.
func (s *Service) UpdateImage(ctx context.Context, userID, dataURL string) error {
	if strings.TrimSpace(dataURL) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "image data is required")
	}
	if _, err := s.mustFindUser(ctx, userID); err != nil {
		return err
	}
	return s.repo.SetImage(ctx, userID, dataURL)
}

func (s *Service) mustFindUser(ctx context.Context, userID string) (*models.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}

func (s *Service) listWithNames(ctx context.Context) ([]UserSummary, error) {
	list, err := s.repo.ListNonAdmins(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]UserSummary, 0, len(list))
	for _, user := range list {
		name := fallbackDisplayName
		if identity, err := s.identity.GetUser(ctx, user.ID); err == nil && identity != nil {
			if full := identity.FullName(); full != "" {
				name = full
			}
		}
		summaries = append(summaries, UserSummary{
			ID:                     user.ID,
			Email:                  user.Email,
			Name:                   name,
			IsSuspended:            user.IsSuspended,
			StripeCustomerID:       user.StripeCustomerID,
			StripeSubscriptionID:   user.StripeSubscriptionID,
			StripePriceID:          user.StripePriceID,
			StripeCurrentPeriodEnd: user.StripeCurrentPeriodEnd,
			EsewaCurrentPeriodEnd:  user.EsewaCurrentPeriodEnd,
			CreatedAt:              user.CreatedAt,
		})
	}
	return summaries, nil
}

func filterSummaries(summaries []UserSummary, search string) []UserSummary {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return summaries
	}

	filtered := make([]UserSummary, 0, len(summaries))
	for _, s := range summaries {
		status := "active"
		if s.IsSuspended {
			status = "suspended"
		}
		if strings.Contains(strings.ToLower(s.Name), term) ||
			strings.Contains(strings.ToLower(s.Email), term) ||
			strings.Contains(status, term) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func splitName(full string) (given, family string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func monthBounds(now time.Time, offsetMonths int) (time.Time, time.Time) {
	anchor := now.AddDate(0, offsetMonths, 0)
	start := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end
}
