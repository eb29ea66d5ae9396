package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	authrepo "github.com/vector-portal/backend/internal/auth/repository"
	"github.com/vector-portal/backend/internal/auth/service"
	commonhttp "github.com/vector-portal/backend/internal/common/http"
	"github.com/vector-portal/backend/internal/common/logger"
	"github.com/vector-portal/backend/internal/session"
)

const (
	sessionCookieName = "session_token"
	loginPath         = "/login"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,max=20"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerResponse struct {
	UserID string `json:"user_id"`
}

type sessionResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type Handler struct {
	auth     *service.AuthService
	sessions *session.Manager
	validate *validator.Validate
	errors   *commonhttp.ErrorHandler
	timeout  time.Duration
	log      *logger.Logger
}

func NewHandler(auth *service.AuthService, sessions *session.Manager, requestTimeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{
		auth:     auth,
		sessions: sessions,
		validate: validator.New(),
		errors:   commonhttp.NewErrorHandler(log),
		timeout:  requestTimeout,
		log:      log,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register", h.register)
	mux.HandleFunc("/api/auth/login", h.login)
	mux.HandleFunc("/api/auth/logout", h.logout)
	mux.HandleFunc("/api/auth/session", h.authorize)
	return mux
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	var req registerRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("register failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "registration failed: "+dtoErrorMessage(err), nil, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, err := h.auth.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	// No session is established here; the client is expected to log in
	// explicitly.
	commonhttp.WriteJSON(w, http.StatusCreated, registerResponse{UserID: string(userID)})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	// A client that already holds a live session gets an idempotent success
	// without any credential check.
	if sess, err := h.sessions.Authorize(ctx, sessionToken(r)); err == nil {
		h.log.WithFields(ctx, logger.Fields{
			"user_id": sess.UserID,
			"action":  "login_already_authenticated",
		}).Info("login skipped: already authenticated")
		commonhttp.WriteJSON(w, http.StatusOK, sessionResponse{UserID: sess.UserID, Username: sess.Username})
		return
	}

	var req loginRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("login failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "login failed: "+dtoErrorMessage(err), nil, "")
		return
	}

	user, err := h.auth.Login(ctx, service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.log.WithFields(ctx, logger.Fields{
			"client_ip": commonhttp.GetClientIP(r),
			"action":    "login_rejected",
		}).Warn("login rejected")
		h.errors.HandleError(w, r, err)
		return
	}

	sess, err := h.sessions.Establish(ctx, string(user.ID), user.Username)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	setSessionCookie(w, r, sess)
	commonhttp.WriteJSON(w, http.StatusOK, sessionResponse{UserID: sess.UserID, Username: sess.Username})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	token := sessionToken(r)
	if _, err := h.sessions.Authorize(ctx, token); err != nil {
		http.Redirect(w, r, loginPath, http.StatusFound)
		return
	}

	if err := h.sessions.Clear(ctx, token); err != nil {
		h.log.Errorf("logout failed: %v", err)
		commonhttp.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	clearSessionCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// authorize is the protected-resource gate: an anonymous context is
// redirected to the login entry point, an authenticated one gets back the
// subject it is bound to. The subject is re-resolved through the user
// repository on every check.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	token := sessionToken(r)
	sess, err := h.sessions.Authorize(ctx, token)
	if err != nil {
		http.Redirect(w, r, loginPath, http.StatusFound)
		return
	}

	user, err := h.auth.ResolveSubject(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, authrepo.ErrUserNotFound) {
			// Subject disappeared from the store; the session is orphaned.
			_ = h.sessions.Clear(ctx, token)
			clearSessionCookie(w, r)
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, sessionResponse{UserID: string(user.ID), Username: user.Username})
}

func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, sess session.Session) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	}

	http.SetCookie(w, cookie)
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	}

	http.SetCookie(w, cookie)
}

func dtoErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return field + " is required"
		case "max":
			return field + " must be at most " + fe.Param() + " characters"
		}
	}
	return "invalid request"
}
