package controllers

import (
	"net/http"

	"cabinet-backend/models"
	"cabinet-backend/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreatePatient(c *gin.Context) {
	var input models.PatientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	patient, err := h.store.AddPatient(actorContext(c), input)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, patient)
}

// GetPatients lists patients, filtered by the optional q search term.
func (h *Handler) GetPatients(c *gin.Context) {
	if q := c.Query("q"); q != "" {
		c.JSON(http.StatusOK, list(h.store.SearchPatients(q)))
		return
	}
	c.JSON(http.StatusOK, list(h.store.Patients()))
}

// GetPatient returns the patient with their appointments, records and
// invoices.
func (h *Handler) GetPatient(c *gin.Context) {
	id := c.Param("id")
	patient, ok := h.store.PatientByID(id)
	if !ok {
		utils.RespondWithError(c, http.StatusNotFound, "Patient not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"patient":        patient,
		"appointments":   list(h.store.AppointmentsByPatient(id)),
		"medicalRecords": list(h.store.MedicalRecordsByPatient(id)),
		"invoices":       list(h.store.InvoicesByPatient(id)),
	})
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	var input models.PatientUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	id := c.Param("id")
	if err := h.store.UpdatePatient(actorContext(c), id, input); err != nil {
		h.respondStoreError(c, err)
		return
	}
	patient, _ := h.store.PatientByID(id)
	c.JSON(http.StatusOK, patient)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	if err := h.store.DeletePatient(actorContext(c), c.Param("id")); err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Patient deleted"})
}
