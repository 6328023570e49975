package controllers

import (
	"net/http"
	"time"

	"cabinet-backend/models"
	"cabinet-backend/services"

	"github.com/gin-gonic/gin"
)

type DashboardOverview struct {
	Stats             services.Stats          `json:"stats"`
	TodayAppointments []models.Appointment    `json:"todayAppointments"`
	DueReminders      []models.Appointment    `json:"dueReminders"`
	Payments          services.PaymentSummary `json:"payments"`
}

func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Stats())
}

// GetDashboard gathers the figures and lists of the home screen.
func (h *Handler) GetDashboard(c *gin.Context) {
	now := time.Now()
	overview := DashboardOverview{
		Stats:             h.store.Stats(),
		TodayAppointments: list(h.store.AppointmentsByDate(models.FormatDate(now))),
		DueReminders:      list(h.store.DueReminders(now)),
		Payments:          h.store.PaymentSummary(),
	}
	c.JSON(http.StatusOK, overview)
}

// GetPayments lists attended appointments by payment state with totals.
func (h *Handler) GetPayments(c *gin.Context) {
	filter := services.PaymentFilter(c.DefaultQuery("status", string(services.PaymentsAll)))
	c.JSON(http.StatusOK, gin.H{
		"appointments": list(h.store.BillableAppointments(filter)),
		"summary":      h.store.PaymentSummary(),
	})
}
