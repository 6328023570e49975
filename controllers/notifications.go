package controllers

import (
	"io"
	"net/http"

	"cabinet-backend/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, list(h.store.Notifications().List()))
}

func (h *Handler) DismissNotification(c *gin.Context) {
	if !h.store.Notifications().Dismiss(c.Param("id")) {
		utils.RespondWithError(c, http.StatusNotFound, "Notification not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// StreamNotifications pushes notification events as server-sent events
// until the client disconnects.
func (h *Handler) StreamNotifications(c *gin.Context) {
	events, cancel := h.store.Notifications().Subscribe(16)
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Kind), ev.Notification)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
