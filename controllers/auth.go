package controllers

import (
	"net/http"
	"strings"

	"cabinet-backend/utils"

	"github.com/gin-gonic/gin"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	result, err := h.store.Login(c.Request.Context(), strings.TrimSpace(input.Email), input.Password)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	if !result.Success {
		utils.RespondWithError(c, http.StatusUnauthorized, result.Error)
		return
	}

	token, err := utils.GenerateToken(h.jwtSecret, result.User.ID, string(result.User.Role), h.jwtExpiry)
	if err != nil {
		h.logger.Error().Err(err).Msg("token generation failed")
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.SetCookie("token", token, int(h.jwtExpiry.Seconds()), "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  result.User,
	})
}

// Logout drops the token cookie. The store session is ended only when it
// belongs to the caller, so one client cannot sign out another.
func (h *Handler) Logout(c *gin.Context) {
	if cur, ok := h.store.CurrentUser(); ok && cur.ID == c.GetString(utils.ContextUserID) {
		if err := h.store.Logout(c.Request.Context()); err != nil {
			h.respondStoreError(c, err)
			return
		}
	}
	c.SetCookie("token", "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// ActiveUser runs after token validation and checks the subject against the
// store: removed or deactivated accounts lose access immediately, and the
// role comes from the stored account rather than the token claim.
func (h *Handler) ActiveUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := h.store.UserByID(c.GetString(utils.ContextUserID))
		if !ok || !user.IsActive {
			utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
			return
		}
		c.Set(utils.ContextRole, string(user.Role))
		c.Next()
	}
}

// Me returns the authenticated user from the token subject.
func (h *Handler) Me(c *gin.Context) {
	user, ok := h.store.UserByID(c.GetString(utils.ContextUserID))
	if !ok || !user.IsActive {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
