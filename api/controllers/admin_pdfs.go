package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Aryangurung1/HellooBuddy/api/middleware"
	"github.com/Aryangurung1/HellooBuddy/api/responses"
	"github.com/Aryangurung1/HellooBuddy/internal/files"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
)

// AdminUserPDFs lists any user's uploads for moderation.
func AdminUserPDFs(svc *files.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "file service unavailable"))
			return
		}

		list, err := svc.AdminListPDFs(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "userId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminDeletePDF removes any user's file for moderation.
func AdminDeletePDF(svc *files.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "file service unavailable"))
			return
		}

		fileID, err := uuid.Parse(chi.URLParam(r, "fileId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file id"))
			return
		}

		file, err := svc.AdminDeletePDF(r.Context(), middleware.UserIDFromContext(r.Context()), fileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toFileSummary(file))
	}
}
