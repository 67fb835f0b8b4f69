// Password HTTP handlers.
//
// This file exposes the password flows:
//   - POST /users/reset-password   (code-gated, unauthenticated)
//   - POST /users/change-password  (JWT-guarded)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResetPasswordRequest is the JSON payload for the code-gated reset.
type ResetPasswordRequest struct {
	Email           string `json:"email" binding:"required,email" example:"jane@example.com"`
	Code            string `json:"code" binding:"required,len=6" example:"482913"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// ChangePasswordRequest is the JSON payload for the authenticated change.
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// ResetPassword godoc
// @ID          resetPassword
// @Summary     Reset a forgotten password
// @Description Sets a new password after redeeming the verification code sent to the email.
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.ResetPasswordRequest  true  "Reset payload"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request or invalid code"
// @Failure     404  {object}  handlers.ErrorResponse  "No account for this email"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/reset-password [post]
func (h *Handlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	err := h.passwordSvc.ResetPassword(c.Request.Context(),
		req.Email, req.Code, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// ChangePassword godoc
// @ID          changePassword
// @Summary     Change the current user's password
// @Description Replaces the password after checking the current one. Requires a valid access token.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.ChangePasswordRequest  true  "Change payload"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request or wrong old password"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/change-password [post]
func (h *Handlers) ChangePassword(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	err := h.passwordSvc.ChangePassword(c.Request.Context(),
		uid, req.OldPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
