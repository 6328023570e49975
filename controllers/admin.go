package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ResetDemo(c *gin.Context) {
	if err := h.store.ResetToDemo(c.Request.Context()); err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Demo data restored"})
}

func (h *Handler) Reconcile(c *gin.Context) {
	removed, err := h.store.Reconcile(c.Request.Context())
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// RunReminders triggers a reminder pass immediately.
func (h *Handler) RunReminders(c *gin.Context) {
	if h.reminders == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Reminder scheduler disabled"})
		return
	}
	sent := h.reminders.SendDueReminders(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"sent": sent})
}
