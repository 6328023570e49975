package controllers

import (
	"net/http"

	"cabinet-backend/models"
	"cabinet-backend/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateInvoice(c *gin.Context) {
	var input models.InvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	invoice, err := h.store.AddInvoice(actorContext(c), input)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// GetInvoices lists invoices, optionally for one patient and one status.
func (h *Handler) GetInvoices(c *gin.Context) {
	var invoices []models.Invoice
	if patientID := c.Query("patientId"); patientID != "" {
		invoices = h.store.InvoicesByPatient(patientID)
	} else {
		invoices = h.store.Invoices()
	}
	if status := models.InvoiceStatus(c.Query("status")); status != "" {
		if !status.Valid() {
			utils.RespondWithError(c, http.StatusBadRequest, "Unknown invoice status")
			return
		}
		filtered := invoices[:0]
		for _, inv := range invoices {
			if inv.Status == status {
				filtered = append(filtered, inv)
			}
		}
		invoices = filtered
	}
	c.JSON(http.StatusOK, list(invoices))
}

func (h *Handler) GetInvoice(c *gin.Context) {
	invoice, ok := h.store.InvoiceByID(c.Param("id"))
	if !ok {
		utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *Handler) UpdateInvoice(c *gin.Context) {
	var input models.InvoiceUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	id := c.Param("id")
	if err := h.store.UpdateInvoice(actorContext(c), id, input); err != nil {
		h.respondStoreError(c, err)
		return
	}
	invoice, _ := h.store.InvoiceByID(id)
	c.JSON(http.StatusOK, invoice)
}

// PayInvoice marks a pending invoice paid. Paying twice returns the invoice
// unchanged.
func (h *Handler) PayInvoice(c *gin.Context) {
	var input PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	id := c.Param("id")
	if err := h.store.MarkInvoicePaid(actorContext(c), id, input.PaymentMethod); err != nil {
		h.respondStoreError(c, err)
		return
	}
	invoice, _ := h.store.InvoiceByID(id)
	c.JSON(http.StatusOK, invoice)
}
