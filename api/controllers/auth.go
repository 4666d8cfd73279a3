package controllers

import (
	"net/http"

	"github.com/Aryangurung1/HellooBuddy/api/middleware"
	"github.com/Aryangurung1/HellooBuddy/api/responses"
	"github.com/Aryangurung1/HellooBuddy/api/validators"
	"github.com/Aryangurung1/HellooBuddy/internal/auth"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
)

type authCallbackRequest struct {
	KindeUserID string `json:"kinde_user_id" validate:"required"`
}

// AuthCallback exchanges a Kinde identity for a local session token.
func AuthCallback(svc *auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var req authCallbackRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Callback(r.Context(), req.KindeUserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the session behind the presented token.
func AuthLogout(svc *auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		accessID := middleware.AccessIDFromContext(r.Context())
		if err := svc.Logout(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
