package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Aryangurung1/HellooBuddy/api/responses"
	"github.com/Aryangurung1/HellooBuddy/api/validators"
	"github.com/Aryangurung1/HellooBuddy/internal/users"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
)

// AdminUserAll returns every non-admin user, unpaginated, for exports.
func AdminUserAll(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		list, err := svc.All(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminUserSuspend locks the account upstream and locally.
func AdminUserSuspend(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		user, err := svc.Suspend(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": user.ID, "is_suspended": user.IsSuspended})
	}
}

// AdminUserUnsuspend reactivates the account upstream and locally.
func AdminUserUnsuspend(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		user, err := svc.Unsuspend(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": user.ID, "is_suspended": user.IsSuspended})
	}
}

// AdminUserDelete removes the account upstream and purges local data.
func AdminUserDelete(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "userId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminUserEditName updates any user's display name on the identity provider.
func AdminUserEditName(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		var req editNameRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.EditName(r.Context(), chi.URLParam(r, "userId"), req.Name); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

type grantRewardRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	EndDate     time.Time `json:"end_date" validate:"required"`
}

// AdminGrantReward opens a wallet-tracked subscription window for the user.
func AdminGrantReward(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		var req grantRewardRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.GrantReward(r.Context(), users.GrantRewardInput{
			UserID:      chi.URLParam(r, "userId"),
			Title:       req.Title,
			Description: req.Description,
			EndDate:     req.EndDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": user.ID, "esewa_current_period_end": user.EsewaCurrentPeriodEnd})
	}
}

// AdminRevokeReward clears the wallet subscription window.
func AdminRevokeReward(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		user, err := svc.RevokeReward(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": user.ID, "esewa_current_period_end": user.EsewaCurrentPeriodEnd})
	}
}
