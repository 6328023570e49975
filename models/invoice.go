package models

import (
	"math"
	"time"
)

type Invoice struct {
	ID            string `json:"id"`
	PatientID     string `json:"patientId"`
	AppointmentID string `json:"appointmentId,omitempty"`

	// Number is assigned once at creation and never rewritten.
	Number string `json:"number"`
	Date   string `json:"date"`

	Items    []InvoiceItem `json:"items"`
	Subtotal float64       `json:"subtotal"`
	Tax      float64       `json:"tax"`
	Total    float64       `json:"total"`

	Status        InvoiceStatus `json:"status"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	PaidAt        *time.Time    `json:"paidAt,omitempty"`
	Notes         string        `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy,omitempty"`
}

type InvoiceItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
}

// InvoiceItemInput defines the structure for an invoice line
type InvoiceItemInput struct {
	Description string  `json:"description" binding:"required"`
	Quantity    int     `json:"quantity" binding:"min=0"`
	UnitPrice   float64 `json:"unitPrice" binding:"gt=0"`
}

// InvoiceInput defines the expected structure for creating an invoice
type InvoiceInput struct {
	PatientID     string             `json:"patientId" binding:"required"`
	AppointmentID string             `json:"appointmentId"`
	Date          string             `json:"date"`
	Items         []InvoiceItemInput `json:"items" binding:"required,min=1,dive"`
	Status        InvoiceStatus      `json:"status"`
	PaymentMethod PaymentMethod      `json:"paymentMethod"`
	Notes         string             `json:"notes"`
}

// InvoiceUpdate holds editable fields. Number and status are not editable
// here; payment goes through MarkInvoicePaid.
type InvoiceUpdate struct {
	Date          *string        `json:"date"`
	Notes         *string        `json:"notes"`
	PaymentMethod *PaymentMethod `json:"paymentMethod"`
}

// NewInvoice builds the invoice lines and totals. taxRate is a percentage.
func NewInvoice(id, number string, in InvoiceInput, taxRate float64, createdBy string, now time.Time) Invoice {
	inv := Invoice{
		ID:            id,
		PatientID:     in.PatientID,
		AppointmentID: in.AppointmentID,
		Number:        number,
		Date:          in.Date,
		Status:        in.Status,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
		CreatedAt:     now,
		CreatedBy:     createdBy,
	}
	if inv.Date == "" {
		inv.Date = FormatDate(now)
	}
	if inv.Status == "" {
		inv.Status = InvoicePending
	}
	for _, item := range in.Items {
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		lineTotal := RoundAmount(float64(qty) * item.UnitPrice)
		inv.Subtotal += lineTotal
		inv.Items = append(inv.Items, InvoiceItem{
			Description: item.Description,
			Quantity:    qty,
			UnitPrice:   item.UnitPrice,
			Total:       lineTotal,
		})
	}
	inv.Subtotal = RoundAmount(inv.Subtotal)
	inv.Tax = RoundAmount(inv.Subtotal * taxRate / 100)
	inv.Total = RoundAmount(inv.Subtotal + inv.Tax)
	if inv.Status == InvoicePaid {
		paidAt := now
		inv.PaidAt = &paidAt
	}
	return inv
}

func (u InvoiceUpdate) Apply(inv *Invoice) {
	setString(&inv.Date, u.Date)
	setString(&inv.Notes, u.Notes)
	if u.PaymentMethod != nil {
		inv.PaymentMethod = *u.PaymentMethod
	}
}

// Clone returns a copy that shares no memory with inv.
func (inv Invoice) Clone() Invoice {
	inv.Items = append([]InvoiceItem(nil), inv.Items...)
	if inv.PaidAt != nil {
		t := *inv.PaidAt
		inv.PaidAt = &t
	}
	return inv
}

// RoundAmount rounds to cents.
func RoundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}
