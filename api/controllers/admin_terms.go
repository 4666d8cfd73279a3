package controllers

import (
	"net/http"

	"github.com/Aryangurung1/HellooBuddy/api/middleware"
	"github.com/Aryangurung1/HellooBuddy/api/responses"
	"github.com/Aryangurung1/HellooBuddy/api/validators"
	"github.com/Aryangurung1/HellooBuddy/internal/terms"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
)

// AdminTermsLatest is the admin view of the active terms document.
func AdminTermsLatest(svc *terms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "terms service unavailable"))
			return
		}

		doc, err := svc.Latest(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, termsDocument{
			ID:        doc.ID,
			Version:   doc.Version,
			Content:   doc.Content,
			CreatedAt: doc.CreatedAt,
		})
	}
}

type publishTermsRequest struct {
	Content string `json:"content" validate:"required"`
	Version string `json:"version" validate:"required"`
}

// AdminTermsPublish replaces the active document and re-prompts every user.
func AdminTermsPublish(svc *terms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "terms service unavailable"))
			return
		}

		var req publishTermsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := svc.Publish(r.Context(), middleware.UserIDFromContext(r.Context()), req.Content, req.Version)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, termsDocument{
			ID:        doc.ID,
			Version:   doc.Version,
			Content:   doc.Content,
			CreatedAt: doc.CreatedAt,
		})
	}
}
