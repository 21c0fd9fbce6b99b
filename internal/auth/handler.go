package auth

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/radif/uploads/internal/response"
	"github.com/radif/uploads/internal/user"
)

// usernameRegex matches usernames that are safe as object key prefixes.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,32}$`)

const minPasswordLen = 8

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc *Service
	log zerolog.Logger
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type credentialsRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"correct horse battery"`
}

type tokenData struct {
	Token string     `json:"token" example:"eyJhbGci..."`
	User  *user.User `json:"user"`
}

// Register godoc
//
//	@Summary		Register new user
//	@Description	Create an account and issue a JWT token for it.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		credentialsRequest	true	"Credentials"
//	@Success		201		{object}	response.Envelope{data=tokenData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/api/v1/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if !usernameRegex.MatchString(req.Username) {
		response.BadRequest(w, "username must be 3-32 characters of letters, digits, '.', '_' or '-'")
		return
	}
	if len(req.Password) < minPasswordLen {
		response.BadRequest(w, "password must be at least 8 characters")
		return
	}
	if len(req.Password) > MaxPasswordLen {
		response.BadRequest(w, ErrPasswordTooLong.Error())
		return
	}

	token, u, err := h.svc.Register(r.Context(), req.Username, req.Password)
	if errors.Is(err, user.ErrAlreadyExists) {
		response.Conflict(w, "username already taken")
		return
	}
	if errors.Is(err, ErrPasswordTooLong) {
		response.BadRequest(w, err.Error())
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("username", req.Username).Msg("register failed")
		response.InternalError(w)
		return
	}

	response.Created(w, tokenData{Token: token, User: u})
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Exchange username and password for a JWT token.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		credentialsRequest	true	"Credentials"
//	@Success		200		{object}	response.Envelope{data=tokenData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/api/v1/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		response.BadRequest(w, "username and password are required")
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		response.Unauthorized(w, ErrInvalidCredentials.Error())
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("username", req.Username).Msg("login failed")
		response.InternalError(w)
		return
	}

	response.OK(w, tokenData{Token: token, User: u})
}
