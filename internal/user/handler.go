package user

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/radif/uploads/internal/middleware"
	"github.com/radif/uploads/internal/response"
)

// Handler serves the caller's own account.
type Handler struct {
	svc *Service
	log zerolog.Logger
}

// NewHandler creates a user Handler.
func NewHandler(svc *Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// GetMe godoc
//
//	@Summary		Get my account
//	@Description	Returns the account behind the bearer token. Its username is the prefix of every object key the uploader writes.
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=User}
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/api/v1/users/me [get]
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	account, err := h.svc.GetByID(r.Context(), accountID)
	switch {
	case h.svc.IsNotFound(err):
		// Token is valid but its account is gone.
		response.Error(w, http.StatusNotFound, "account not found")
	case err != nil:
		h.log.Error().Err(err).Str("account_id", accountID).Msg("load account failed")
		response.InternalError(w)
	default:
		response.OK(w, account)
	}
}
