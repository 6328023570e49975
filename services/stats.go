package services

import (
	"strings"
	"time"

	"cabinet-backend/models"
	"cabinet-backend/utils"
)

// StatsInput is an immutable snapshot of the collections the dashboard
// figures are derived from.
type StatsInput struct {
	Patients     []models.Patient
	Appointments []models.Appointment
	Invoices     []models.Invoice
}

type Stats struct {
	TotalPatients        int     `json:"totalPatients"`
	TodayAppointments    int     `json:"todayAppointments"`
	UpcomingAppointments int     `json:"upcomingAppointments"`
	TotalRevenue         float64 `json:"totalRevenue"`
	MonthlyRevenue       float64 `json:"monthlyRevenue"`
	PendingPayments      float64 `json:"pendingPayments"`
	TotalInvoices        int     `json:"totalInvoices"`
	PaidInvoices         int     `json:"paidInvoices"`
	AbsenceRate          float64 `json:"absenceRate"`
	RemindersSent        int     `json:"remindersSent"`
}

// ComputeStats derives the dashboard figures from in. "Today" and "this
// month" are taken from now in its own location.
func ComputeStats(in StatsInput, now time.Time) Stats {
	today := models.FormatDate(now)
	month := today[:7]

	st := Stats{
		TotalPatients: len(in.Patients),
		TotalInvoices: len(in.Invoices),
	}

	var attended, absent int
	for _, a := range in.Appointments {
		if a.Date == today {
			st.TodayAppointments++
		}
		if a.Date >= today && !a.Status.Terminal() {
			st.UpcomingAppointments++
		}
		switch a.Status {
		case models.StatusCompleted:
			attended++
			if !a.Paid {
				st.PendingPayments += a.Fee
			}
		case models.StatusPresent:
			attended++
		case models.StatusAbsent:
			absent++
		}
		if a.ReminderSent {
			st.RemindersSent++
		}
	}

	for _, inv := range in.Invoices {
		if inv.Status != models.InvoicePaid {
			continue
		}
		st.PaidInvoices++
		st.TotalRevenue += inv.Total
		if strings.HasPrefix(inv.Date, month) {
			st.MonthlyRevenue += inv.Total
		}
	}

	st.TotalRevenue = models.RoundAmount(st.TotalRevenue)
	st.MonthlyRevenue = models.RoundAmount(st.MonthlyRevenue)
	st.PendingPayments = models.RoundAmount(st.PendingPayments)
	st.AbsenceRate = utils.Percent(absent, attended+absent)
	return st
}

// Stats computes the dashboard figures from the current collections.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	in := StatsInput{
		Patients:     append([]models.Patient(nil), s.patients...),
		Appointments: cloneAppointments(s.appointments),
		Invoices:     append([]models.Invoice(nil), s.invoices...),
	}
	s.mu.RUnlock()
	return ComputeStats(in, s.now())
}
