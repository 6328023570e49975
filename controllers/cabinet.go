package controllers

import (
	"net/http"

	"cabinet-backend/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetCabinet(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.CabinetConfig())
}

func (h *Handler) UpdateCabinet(c *gin.Context) {
	var input models.CabinetConfigUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	cfg, err := h.store.UpdateCabinetConfig(actorContext(c), input)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
