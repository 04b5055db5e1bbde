package auth

import (
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"comicgallery/internal/httpx"
)

// CookieName is the cookie carrying the session token.
const CookieName = "session"

type HTTPHandler struct {
	service      *Service
	cookieSecure bool
}

func NewHTTPHandler(service *Service, cookieSecure bool) *HTTPHandler {
	return &HTTPHandler{service: service, cookieSecure: cookieSecure}
}

type LoginReq struct {
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// Login handles POST /auth
// @Summary Admin login
// @Description Exchange the admin password for a session token and cookie
// @Tags auth
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Param request body LoginReq true "Login request"
// @Success 200 {object} Session
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 429 {object} httpx.ErrorResponse
// @Router /auth [post]
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	if isForm(r) {
		h.loginForm(w, r)
		return
	}

	var req LoginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	sess, err := h.service.Authenticate(req.Password)
	if err != nil {
		h.loginError(w, r, err)
		return
	}

	h.setCookie(w, sess)
	httpx.JSON(w, http.StatusOK, sess)
}

// loginForm serves the login page's plain form post and answers with redirects.
func (h *HTTPHandler) loginForm(w http.ResponseWriter, r *http.Request) {
	next := safeRedirect(r.FormValue("next"))

	sess, err := h.service.Authenticate(r.FormValue("password"))
	if err != nil {
		if !errors.Is(err, ErrUnauthorized) {
			httpx.InternalError(w, r, err, "issue session")
			return
		}
		http.Redirect(w, r, "/login?error=1", http.StatusSeeOther)
		return
	}

	h.setCookie(w, sess)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *HTTPHandler) loginError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrUnauthorized) {
		httpx.JSONErrorWithRequest(r, w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid password", nil)
		return
	}
	httpx.InternalError(w, r, err, "issue session")
}

// Logout handles POST /auth/logout
// @Summary Clear the session cookie
// @Tags auth
// @Success 204 "No Content"
// @Router /auth/logout [post]
func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	httpx.JSONSuccessNoContent(w)
}

// Session handles GET /auth/session
// @Summary Report whether the caller holds a valid session
// @Tags auth
// @Produce json
// @Success 200 {object} sessionResponse
// @Router /auth/session [get]
func (h *HTTPHandler) Session(w http.ResponseWriter, r *http.Request) {
	expiresAt, err := h.service.ExpiresAt(httpx.SessionToken(r, CookieName))
	if err != nil {
		httpx.JSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{Authenticated: true, ExpiresAt: &expiresAt})
}

func (h *HTTPHandler) setCookie(w http.ResponseWriter, sess Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func isForm(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

// safeRedirect only allows local absolute paths.
func safeRedirect(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/admin"
	}
	return next
}
