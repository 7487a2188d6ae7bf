package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/propconsole/internal/auth"
	"github.com/iliyamo/propconsole/internal/middleware"
	"github.com/iliyamo/propconsole/internal/model"
)

// requestTimeout bounds the remote calls made for one request.
const requestTimeout = 5 * time.Second

// Authenticator is the part of auth.Service the handlers call.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	SignUp(ctx context.Context, email, password string) (*model.Session, error)
	Refresh(ctx context.Context, sessionID, rawRefresh string) (*model.Session, error)
	SignOut(ctx context.Context, sess *model.Session) error
	SignOutAll(ctx context.Context, sess *model.Session) error
}

// AuthHandler serves the token API under /v1/auth.
type AuthHandler struct {
	Auth Authenticator
}

func NewAuthHandler(a Authenticator) *AuthHandler {
	return &AuthHandler{Auth: a}
}

// ----- DTOs -----

type credentialsReq struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
	SessionID    string `json:"session_id"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	SessionID string            `json:"session_id"`
	User      model.SessionUser `json:"user"`
	Access    tokenPart         `json:"access"`
	Refresh   tokenPart         `json:"refresh"`
}

func sessionResp(s *model.Session) authResp {
	return authResp{
		SessionID: s.ID,
		User:      s.User,
		Access:    tokenPart{Token: s.AccessToken, Expires: s.AccessExpiresAt},
		Refresh:   tokenPart{Token: s.RefreshToken, Expires: s.RefreshExpiresAt}, // raw back to client
	}
}

// authStatus maps auth errors to a status and message.
func authStatus(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		return http.StatusBadRequest, "email/password required"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict, "email already exists"
	case errors.Is(err, auth.ErrInvalidRefresh):
		return http.StatusUnauthorized, "invalid refresh"
	}
	return http.StatusInternalServerError, "authentication failed"
}

// Register: create user and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	sess, err := h.Auth.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		status, msg := authStatus(err)
		return c.JSON(status, echo.Map{"error": msg})
	}
	return c.JSON(http.StatusCreated, sessionResp(sess))
}

// Login: verify and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	sess, err := h.Auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		status, msg := authStatus(err)
		return c.JSON(status, echo.Map{"error": msg})
	}
	return c.JSON(http.StatusOK, sessionResp(sess))
}

// Refresh: rotate the refresh token and issue a new access token for the
// same session id.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	sess, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.SessionID), req.RefreshToken)
	if err != nil {
		status, msg := authStatus(err)
		return c.JSON(status, echo.Map{"error": msg})
	}
	return c.JSON(http.StatusOK, sessionResp(sess))
}

// Logout revokes a single refresh token when one is posted, or every
// token of the bearer's user when only an access token is presented.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	uid := middleware.UserID(c)
	_, sid := middleware.BearerClaims(c)
	switch {
	case raw != "":
		sess := &model.Session{ID: firstNonEmpty(req.SessionID, sid), User: model.SessionUser{ID: uid}, RefreshToken: raw}
		if err := h.Auth.SignOut(ctx, sess); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
	case uid != "":
		if err := h.Auth.SignOutAll(ctx, &model.Session{ID: sid, User: model.SessionUser{ID: uid}}); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me: simple protected endpoint.
func (h *AuthHandler) Me(c echo.Context) error {
	email, sid := middleware.BearerClaims(c)
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":    middleware.UserID(c),
		"email":      email,
		"session_id": sid,
	})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
