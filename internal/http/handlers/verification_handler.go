// Verification-code HTTP handlers.
//
// This file exposes the two endpoints that dispatch verification codes:
//   - POST /users/send-verification-code   (registration: email must be free)
//   - POST /users/reset-password-send-code (recovery: email must exist)
//
// Both share the same throttle; 429 responses carry the limiter's retry
// message verbatim and a Retry-After header.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grammar-azi/user-service/internal/http/middleware"
	"github.com/grammar-azi/user-service/internal/services"
)

// SendCodeRequest is the JSON payload for both code-dispatch endpoints.
type SendCodeRequest struct {
	Email string `json:"email" binding:"required,email" example:"jane@example.com"`
}

// SendCodeResponse acknowledges that a code was queued for delivery. The
// code itself is never returned over HTTP.
type SendCodeResponse struct {
	Message string `json:"message" example:"verification code sent"`
}

// SendVerificationCode godoc
// @ID          sendVerificationCode
// @Summary     Send a registration verification code
// @Description Emails a 6-digit code to an address that is not yet registered. Subject to per-recipient rate limits.
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SendCodeRequest  true  "Recipient email"
//
// @Success     200  {object}  handlers.SendCodeResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     429  {object}  handlers.ErrorResponse  "Send limit reached"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/send-verification-code [post]
func (h *Handlers) SendVerificationCode(c *gin.Context) {
	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	// A detected replay acknowledges without dispatching a second message.
	if middleware.IsReplay(c) {
		ok(c, http.StatusOK, SendCodeResponse{Message: "verification code sent"})
		return
	}

	if err := h.accountSvc.SendRegistrationCode(c.Request.Context(), req.Email); err != nil {
		failErr(c, err)
		return
	}
	h.recordIdempotency(c, req.Email)
	ok(c, http.StatusOK, SendCodeResponse{Message: "verification code sent"})
}

// recordIdempotency persists the completed send when the client supplied an
// Idempotency-Key. Failures are logged only; the send already happened.
func (h *Handlers) recordIdempotency(c *gin.Context, email string) {
	key, present := middleware.GetIdempotencyKey(c)
	if !present || h.idemRecord == nil {
		return
	}
	err := h.idemRecord(c.Request.Context(),
		services.NormalizeEmail(email), c.FullPath(), key, http.StatusOK)
	if err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record failed")
	}
}

// SendResetCode godoc
// @ID          sendResetCode
// @Summary     Send a password-reset verification code
// @Description Emails a 6-digit code to an existing account. Subject to per-recipient rate limits.
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SendCodeRequest  true  "Recipient email"
//
// @Success     200  {object}  handlers.SendCodeResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "No account for this email"
// @Failure     429  {object}  handlers.ErrorResponse  "Send limit reached"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/reset-password-send-code [post]
func (h *Handlers) SendResetCode(c *gin.Context) {
	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	if middleware.IsReplay(c) {
		ok(c, http.StatusOK, SendCodeResponse{Message: "verification code sent"})
		return
	}

	if err := h.passwordSvc.SendResetCode(c.Request.Context(), req.Email); err != nil {
		failErr(c, err)
		return
	}
	h.recordIdempotency(c, req.Email)
	ok(c, http.StatusOK, SendCodeResponse{Message: "verification code sent"})
}
