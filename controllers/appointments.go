package controllers

import (
	"net/http"

	"cabinet-backend/models"
	"cabinet-backend/utils"

	"github.com/gin-gonic/gin"
)

type ReminderInput struct {
	Type models.ReminderType `json:"type"`
}

type PaymentInput struct {
	PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"required"`
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var input models.AppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	appt, err := h.store.AddAppointment(actorContext(c), input)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// GetAppointments lists appointments, optionally for one patient or one
// practitioner.
func (h *Handler) GetAppointments(c *gin.Context) {
	switch {
	case c.Query("patientId") != "":
		c.JSON(http.StatusOK, list(h.store.AppointmentsByPatient(c.Query("patientId"))))
	case c.Query("practitionerId") != "":
		c.JSON(http.StatusOK, list(h.store.AppointmentsByPractitioner(c.Query("practitionerId"))))
	default:
		c.JSON(http.StatusOK, list(h.store.Appointments()))
	}
}

func (h *Handler) GetAppointmentsByDate(c *gin.Context) {
	date := c.Param("date")
	if !utils.LooksLikeDate(date) {
		utils.RespondWithError(c, http.StatusBadRequest, "Date must be YYYY-MM-DD")
		return
	}
	c.JSON(http.StatusOK, list(h.store.AppointmentsByDate(date)))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	appt, ok := h.store.AppointmentByID(c.Param("id"))
	if !ok {
		utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	var input models.AppointmentUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	id := c.Param("id")
	if err := h.store.UpdateAppointment(actorContext(c), id, input); err != nil {
		h.respondStoreError(c, err)
		return
	}
	appt, _ := h.store.AppointmentByID(id)
	c.JSON(http.StatusOK, appt)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	if err := h.store.DeleteAppointment(actorContext(c), c.Param("id")); err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted"})
}

// SendReminder sends a reminder on the requested channel, or on the
// appointment's own channel when none is given.
func (h *Handler) SendReminder(c *gin.Context) {
	var input ReminderInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
	}
	id := c.Param("id")
	if input.Type == "" {
		appt, ok := h.store.AppointmentByID(id)
		if !ok {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
			return
		}
		input.Type = appt.ReminderType
	}
	outcome, err := h.store.SendReminder(actorContext(c), id, input.Type)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// RecordPayment marks the appointment paid and returns the invoice issued
// for it.
func (h *Handler) RecordPayment(c *gin.Context) {
	var input PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	invoice, err := h.store.RecordAppointmentPayment(actorContext(c), c.Param("id"), input.PaymentMethod)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}
