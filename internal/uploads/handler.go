package uploads

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/radif/uploads/internal/middleware"
	"github.com/radif/uploads/internal/response"
)

// Handler holds HTTP handlers for upload records.
type Handler struct {
	svc *Service
	log zerolog.Logger
}

// NewHandler creates a new uploads Handler.
func NewHandler(svc *Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type saveUploadDetailsRequest struct {
	UserID     string `json:"user_id"     example:"alice"`
	FileName   string `json:"file_name"   example:"report.pdf"`
	UploadTime string `json:"upload_time" example:"2026-10-18T09:30:00.000Z"`
}

// SaveUploadDetails godoc
//
//	@Summary		Record an upload
//	@Description	Persist the metadata of an object the client has already stored under {user_id}/{file_name}. user_id must match the token's username.
//	@Tags			uploads
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		saveUploadDetailsRequest	true	"Upload details"
//	@Success		201		{object}	response.Envelope{data=Record}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		403		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/saveUploadDetails [post]
func (h *Handler) SaveUploadDetails(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.Username(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req saveUploadDetailsRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.UserID == "" || req.FileName == "" || req.UploadTime == "" {
		response.BadRequest(w, "user_id, file_name and upload_time are required")
		return
	}
	if req.UserID != username {
		response.Forbidden(w, "user_id does not match the authenticated user")
		return
	}

	uploadTime, err := time.Parse(time.RFC3339, req.UploadTime)
	if err != nil {
		response.BadRequest(w, "upload_time must be an ISO-8601 timestamp")
		return
	}

	rec, err := h.svc.Save(r.Context(), req.UserID, req.FileName, uploadTime)
	if errors.Is(err, ErrInvalidRecord) {
		response.BadRequest(w, err.Error())
		return
	}
	if err != nil {
		h.log.Error().Err(err).
			Str("user_id", req.UserID).
			Str("file_name", req.FileName).
			Msg("save upload record failed")
		response.InternalError(w)
		return
	}

	h.log.Info().
		Str("user_id", rec.UserID).
		Str("object_key", rec.ObjectKey).
		Time("upload_time", rec.UploadTime).
		Msg("upload recorded")
	response.Created(w, rec)
}

// List godoc
//
//	@Summary		List my uploads
//	@Description	Returns the caller's recorded uploads, newest first.
//	@Tags			uploads
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit	query		int	false	"Maximum number of records (default 50, max 500)"
//	@Success		200		{object}	response.Envelope{data=[]Record}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/api/v1/uploads [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.Username(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := h.svc.List(r.Context(), username, limit)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", username).Msg("list upload records failed")
		response.InternalError(w)
		return
	}
	response.OK(w, records)
}
