// Profile HTTP handlers.
//
// This file exposes the profile endpoints:
//   - GET /users/{slug}    (public profile lookup)
//   - PUT /users/profile   (JWT-guarded partial update)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grammar-azi/user-service/internal/services"
)

// UpdateProfileRequest is the JSON payload for the partial profile update.
// Absent fields are left unchanged.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=150" example:"Jane"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150" example:"Doe"`
	Bio       *string `json:"bio" binding:"omitempty,max=2000"`
}

// Profile godoc
// @ID          profileBySlug
// @Summary     Get a public profile
// @Description Returns the profile behind a slug.
// @Tags        Users
// @Produce     json
//
// @Param       slug  path  string  true  "Profile slug"  example(jane-doe)
//
// @Success     200  {object}  domain.User
// @Failure     404  {object}  handlers.ErrorResponse  "Profile not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/{slug} [get]
func (h *Handlers) Profile(c *gin.Context) {
	u, err := h.accountSvc.Profile(c.Request.Context(), c.Param("slug"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// UpdateProfile godoc
// @ID          updateProfile
// @Summary     Update the current user's profile
// @Description Applies a partial update to the authenticated user's profile fields. The slug never changes.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.UpdateProfileRequest  true  "Profile fields"
//
// @Success     200  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/profile [put]
func (h *Handlers) UpdateProfile(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u, err := h.accountSvc.UpdateProfile(c.Request.Context(), uid, services.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}
