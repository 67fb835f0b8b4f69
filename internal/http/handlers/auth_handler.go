// Account and session HTTP handlers.
//
// This file exposes REST endpoints for the registration and session flows:
//   - POST /users/register
//   - POST /users/login
//   - POST /users/refresh
//   - POST /users/logout
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/grammar-azi/user-service/internal/auth"
	"github.com/grammar-azi/user-service/internal/domain"
	"github.com/grammar-azi/user-service/internal/services"
)

//
// Service contracts (context-aware)
//

// AccountService defines registration and profile operations consumed by
// HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AccountService interface {
	// SendRegistrationCode issues a verification code to an unregistered email.
	SendRegistrationCode(ctx context.Context, email string) error
	// Register creates a verified account after redeeming the code.
	Register(ctx context.Context, in services.RegisterInput) (*domain.User, error)
	// Profile returns the public profile behind a slug.
	Profile(ctx context.Context, slug string) (*domain.User, error)
	// UpdateProfile applies a partial profile update for the given user.
	UpdateProfile(ctx context.Context, id string, upd services.ProfileUpdate) (*domain.User, error)
}

// PasswordService defines the password reset and change flows.
type PasswordService interface {
	// SendResetCode issues a verification code to an existing account.
	SendResetCode(ctx context.Context, email string) error
	// ResetPassword sets a new password after redeeming the code.
	ResetPassword(ctx context.Context, email, code, newPassword, confirmPassword string) error
	// ChangePassword replaces an authenticated user's password.
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword, confirmPassword string) error
}

// SessionService defines login and token lifecycle operations.
type SessionService interface {
	// Login verifies credentials and returns a token pair.
	Login(ctx context.Context, email, password string) (*auth.TokenPair, error)
	// Logout denylists the presented refresh token.
	Logout(ctx context.Context, refreshToken string) error
	// Refresh rotates a refresh token into a new pair.
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
}

//
// Handler wiring
//

// IdempotencyRecorder persists a completed (email, scope, key) operation so
// the idempotency middleware can detect replays of it. A nil recorder
// disables recording.
type IdempotencyRecorder func(ctx context.Context, email, scope, key string, status int) error

// Handlers groups the HTTP endpoints for accounts, sessions, verification
// codes, and passwords. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	accountSvc  AccountService
	passwordSvc PasswordService
	sessionSvc  SessionService
	idemRecord  IdempotencyRecorder
}

// New constructs and returns a Handlers instance bound to the given services.
func New(accountSvc AccountService, passwordSvc PasswordService, sessionSvc SessionService, rec IdempotencyRecorder) *Handlers {
	return &Handlers{accountSvc: accountSvc, passwordSvc: passwordSvc, sessionSvc: sessionSvc, idemRecord: rec}
}

// userID extracts the authenticated user id from Gin context (set by the JWT
// guard middleware). An empty result means the guard did not run.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

//
// DTOs
//

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password        string `json:"password" binding:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FirstName       string `json:"first_name" binding:"max=150" example:"Jane"`
	LastName        string `json:"last_name" binding:"max=150" example:"Doe"`
	Bio             string `json:"bio" binding:"omitempty,max=2000" example:"Backend engineer."`
	// Code is the 6-digit verification code previously sent to Email.
	Code string `json:"code" binding:"required,len=6" example:"482913"`
}

// LoginRequest is the JSON payload for logging in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token for logout and token rotation.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

//
// Handlers
//

// Register godoc
// @ID          register
// @Summary     Register a new account
// @Description Creates a verified account. Requires the verification code previously sent to the email.
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true  "Registration payload"
//
// @Success     201  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request or invalid code"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u, err := h.accountSvc.Register(c.Request.Context(), services.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Bio:             strings.TrimSpace(req.Bio),
		Code:            req.Code,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, u)
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies credentials and returns an access/refresh token pair.
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Login payload"
//
// @Success     200  {object}  auth.TokenPair
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	pair, err := h.sessionSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, pair)
}

// Refresh godoc
// @ID          refreshToken
// @Summary     Rotate a refresh token
// @Description Exchanges a live refresh token for a new token pair. The old refresh token is revoked.
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RefreshRequest  true  "Refresh payload"
//
// @Success     200  {object}  auth.TokenPair
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid or revoked token"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/refresh [post]
func (h *Handlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	pair, err := h.sessionSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, pair)
}

// Logout godoc
// @ID          logout
// @Summary     Log out
// @Description Revokes the presented refresh token. Repeating the call is harmless.
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RefreshRequest  true  "Logout payload"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid token"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	if err := h.sessionSvc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
