package controllers

import (
	"net/http"

	"cabinet-backend/models"
	"cabinet-backend/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateUser(c *gin.Context) {
	var input models.UserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.store.AddUser(actorContext(c), input)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) GetUsers(c *gin.Context) {
	c.JSON(http.StatusOK, list(h.store.Users()))
}

func (h *Handler) GetUser(c *gin.Context) {
	user, ok := h.store.UserByID(c.Param("id"))
	if !ok {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var input models.UserUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	id := c.Param("id")
	if err := h.store.UpdateUser(actorContext(c), id, input); err != nil {
		h.respondStoreError(c, err)
		return
	}
	user, _ := h.store.UserByID(id)
	c.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == c.GetString(utils.ContextUserID) {
		utils.RespondWithError(c, http.StatusBadRequest, "Cannot delete your own account")
		return
	}
	if err := h.store.DeleteUser(actorContext(c), id); err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func (h *Handler) GetPractitioners(c *gin.Context) {
	c.JSON(http.StatusOK, list(h.store.Practitioners()))
}
