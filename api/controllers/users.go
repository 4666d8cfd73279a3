package controllers

import (
	"net/http"
	"time"

	"github.com/Aryangurung1/HellooBuddy/api/middleware"
	"github.com/Aryangurung1/HellooBuddy/api/responses"
	"github.com/Aryangurung1/HellooBuddy/api/validators"
	"github.com/Aryangurung1/HellooBuddy/internal/uploads"
	"github.com/Aryangurung1/HellooBuddy/internal/users"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
)

type userProfile struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	IsAdmin          bool      `json:"is_admin"`
	HasAcceptedTerms bool      `json:"has_accepted_terms"`
	Image            *string   `json:"image"`
	CreatedAt        time.Time `json:"created_at"`
}

// CurrentUser returns the caller's local profile.
func CurrentUser(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		user, err := svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, userProfile{
			ID:               user.ID,
			Email:            user.Email,
			IsAdmin:          user.IsAdmin,
			HasAcceptedTerms: user.HasAcceptedTerms,
			Image:            user.Image,
			CreatedAt:        user.CreatedAt,
		})
	}
}

// CurrentUserKinde proxies the identity provider's record for the caller.
func CurrentUserKinde(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		profile, err := svc.KindeProfile(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

type editNameRequest struct {
	Name string `json:"name" validate:"required"`
}

// EditName updates the caller's display name on the identity provider.
func EditName(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.EditName(r.Context(), middleware.UserIDFromContext(r.Context()), req.Name); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

type uploadChunkRequest struct {
	SessionID   string `json:"session_id" validate:"required"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks" validate:"required,min=1"`
	IsLastChunk bool   `json:"is_last_chunk"`
	FileType    string `json:"file_type" validate:"required"`
	Data        string `json:"data" validate:"required"`
}

// UploadImageChunk accepts one slice of a chunked avatar upload.
func UploadImageChunk(svc *uploads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upload service unavailable"))
			return
		}

		var req uploadChunkRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.StoreChunk(r.Context(), middleware.UserIDFromContext(r.Context()), uploads.ChunkInput{
			SessionID:   req.SessionID,
			ChunkIndex:  req.ChunkIndex,
			TotalChunks: req.TotalChunks,
			IsLastChunk: req.IsLastChunk,
			FileType:    req.FileType,
			Data:        req.Data,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
