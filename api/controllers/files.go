package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Aryangurung1/HellooBuddy/api/middleware"
	"github.com/Aryangurung1/HellooBuddy/api/responses"
	"github.com/Aryangurung1/HellooBuddy/api/validators"
	"github.com/Aryangurung1/HellooBuddy/internal/files"
	"github.com/Aryangurung1/HellooBuddy/pkg/db/models"
	"github.com/Aryangurung1/HellooBuddy/pkg/enums"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
)

type fileSummary struct {
	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name"`
	Key          string             `json:"key"`
	URL          string             `json:"url"`
	UploadStatus enums.UploadStatus `json:"upload_status"`
	CreatedAt    time.Time          `json:"created_at"`
}

func toFileSummary(file *models.File) fileSummary {
	return fileSummary{
		ID:           file.ID,
		Name:         file.Name,
		Key:          file.Key,
		URL:          file.URL,
		UploadStatus: file.UploadStatus,
		CreatedAt:    file.CreatedAt,
	}
}

// FileList returns the caller's uploaded files, newest first.
func FileList(svc *files.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "file service unavailable"))
			return
		}

		rows, err := svc.ListForUser(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list := make([]fileSummary, 0, len(rows))
		for i := range rows {
			list = append(list, toFileSummary(&rows[i]))
		}
		responses.WriteSuccess(w, list)
	}
}

// FileUploadStatus reports a file's processing state for polling clients.
func FileUploadStatus(svc *files.Service, logg *logger.Logger) http.HandlerFunc {
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

		status, err := svc.UploadStatus(r.Context(), middleware.UserIDFromContext(r.Context()), fileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]enums.UploadStatus{"status": status})
	}
}

type fileByKeyRequest struct {
	Key string `json:"key" validate:"required"`
}

// FileByKey resolves a file by its storage key after the upload callback.
func FileByKey(svc *files.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "file service unavailable"))
			return
		}

		var req fileByKeyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, err := svc.GetByKey(r.Context(), middleware.UserIDFromContext(r.Context()), req.Key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toFileSummary(file))
	}
}

// FileDelete removes the caller's file along with its chat history.
func FileDelete(svc *files.Service, logg *logger.Logger) http.HandlerFunc {
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

		file, err := svc.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), fileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toFileSummary(file))
	}
}

// FileMessages pages through a file's chat history, newest first.
func FileMessages(svc *files.Service, logg *logger.Logger) http.HandlerFunc {
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

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cursor := ""
		if value := validators.ParseQueryString(r, "cursor"); value != nil {
			cursor = *value
		}

		result, err := svc.Messages(r.Context(), middleware.UserIDFromContext(r.Context()), fileID, limit, cursor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
