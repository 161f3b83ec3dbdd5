package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-order-backend/internal/auth"
	"hostel-order-backend/internal/model"
	"hostel-order-backend/internal/mw"
	"hostel-order-backend/internal/store"
)

// Profile handles GET /api/profile: the user document matching the
// session's mobile number, or a minimal profile synthesized from the
// session when no document matches.
func (h *Handler) Profile(c *gin.Context) {
	claims := mw.SessionClaims(c)
	mobile := auth.NormalizeMobile(claims.Mobile, h.countryCode)

	user, err := h.store.GetUserByMobile(c.Request.Context(), mobile)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve profile"})
			return
		}
		user = &model.User{
			ID:     claims.UserID,
			Name:   claims.Name,
			Mobile: mobile,
		}
	}

	c.JSON(http.StatusOK, user)
}

// GetUser handles GET /api/users/:user_id, the creator-details lookup used
// by the board and order detail modals.
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.store.GetUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "creator details not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve user"})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}
