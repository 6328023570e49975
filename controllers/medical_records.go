package controllers

import (
	"net/http"

	"cabinet-backend/models"
	"cabinet-backend/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateMedicalRecord(c *gin.Context) {
	var input models.MedicalRecordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	record, err := h.store.AddMedicalRecord(actorContext(c), input)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) GetMedicalRecords(c *gin.Context) {
	if patientID := c.Query("patientId"); patientID != "" {
		c.JSON(http.StatusOK, list(h.store.MedicalRecordsByPatient(patientID)))
		return
	}
	c.JSON(http.StatusOK, list(h.store.MedicalRecords()))
}

func (h *Handler) GetMedicalRecord(c *gin.Context) {
	record, ok := h.store.MedicalRecordByID(c.Param("id"))
	if !ok {
		utils.RespondWithError(c, http.StatusNotFound, "Medical record not found")
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) UpdateMedicalRecord(c *gin.Context) {
	var input models.MedicalRecordUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	id := c.Param("id")
	if err := h.store.UpdateMedicalRecord(actorContext(c), id, input); err != nil {
		h.respondStoreError(c, err)
		return
	}
	record, _ := h.store.MedicalRecordByID(id)
	c.JSON(http.StatusOK, record)
}

func (h *Handler) DeleteMedicalRecord(c *gin.Context) {
	if err := h.store.DeleteMedicalRecord(actorContext(c), c.Param("id")); err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Medical record deleted"})
}
