package services

import (
	"sort"

	"cabinet-backend/models"
)

// PaymentFilter selects billable appointments by payment state.
type PaymentFilter string

const (
	PaymentsAll     PaymentFilter = "all"
	PaymentsPending PaymentFilter = "pending"
	PaymentsPaid    PaymentFilter = "paid"
)

type PaymentSummary struct {
	PendingCount  int     `json:"pendingCount"`
	PendingAmount float64 `json:"pendingAmount"`
	PaidCount     int     `json:"paidCount"`
	PaidAmount    float64 `json:"paidAmount"`
	TotalAmount   float64 `json:"totalAmount"`
}

func billable(a models.Appointment) bool {
	return a.Status == models.StatusCompleted || a.Status == models.StatusPresent
}

// BillableAppointments lists attended appointments, most recent first.
func (s *Store) BillableAppointments(filter PaymentFilter) []models.Appointment {
	out := s.filterAppointments(func(a models.Appointment) bool {
		if !billable(a) {
			return false
		}
		switch filter {
		case PaymentsPending:
			return !a.Paid
		case PaymentsPaid:
			return a.Paid
		}
		return true
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Time > out[j].Time
	})
	return out
}

// SummarizePayments totals fees of attended appointments by payment state.
func SummarizePayments(appointments []models.Appointment) PaymentSummary {
	var sum PaymentSummary
	for _, a := range appointments {
		if !billable(a) {
			continue
		}
		if a.Paid {
			sum.PaidCount++
			sum.PaidAmount += a.Fee
		} else {
			sum.PendingCount++
			sum.PendingAmount += a.Fee
		}
		sum.TotalAmount += a.Fee
	}
	sum.PaidAmount = models.RoundAmount(sum.PaidAmount)
	sum.PendingAmount = models.RoundAmount(sum.PendingAmount)
	sum.TotalAmount = models.RoundAmount(sum.TotalAmount)
	return sum
}

func (s *Store) PaymentSummary() PaymentSummary {
	return SummarizePayments(s.Appointments())
}
