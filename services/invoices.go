package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cabinet-backend/models"
	"cabinet-backend/persistence"
)

// AddInvoice creates an invoice numbered with the cabinet prefix and taxed
// at the cabinet rate.
func (s *Store) AddInvoice(ctx context.Context, in models.InvoiceInput) (models.Invoice, error) {
	if err := validateInvoiceInput(in); err != nil {
		return models.Invoice{}, err
	}

	s.mu.Lock()
	if s.patientIndex(in.PatientID) < 0 {
		s.mu.Unlock()
		return models.Invoice{}, notFound("patient", in.PatientID)
	}
	if in.AppointmentID != "" && s.appointmentIndex(in.AppointmentID) < 0 {
		s.mu.Unlock()
		return models.Invoice{}, notFound("appointment", in.AppointmentID)
	}
	inv, err := s.buildInvoiceLocked(ctx, in, s.cabinet.InvoiceSettings.TaxRate)
	if err != nil {
		s.mu.Unlock()
		return models.Invoice{}, err
	}
	if err := s.put(ctx, persistence.CollectionInvoices, inv.ID, inv); err != nil {
		s.mu.Unlock()
		return models.Invoice{}, err
	}
	s.invoices = append(s.invoices, inv)
	s.mu.Unlock()

	s.notify("Facture créée", models.NotifySuccess)
	return inv.Clone(), nil
}

func validateInvoiceInput(in models.InvoiceInput) error {
	if len(in.Items) == 0 {
		return invalid("an invoice needs at least one item")
	}
	for i, item := range in.Items {
		if strings.TrimSpace(item.Description) == "" {
			return invalid("item %d has no description", i+1)
		}
		if item.UnitPrice <= 0 {
			return invalid("item %d has no valid price", i+1)
		}
	}
	if in.Status != "" && !in.Status.Valid() {
		return invalid("unknown invoice status %q", in.Status)
	}
	if in.PaymentMethod != "" && !in.PaymentMethod.Valid() {
		return invalid("unknown payment method %q", in.PaymentMethod)
	}
	return nil
}

func (s *Store) buildInvoiceLocked(ctx context.Context, in models.InvoiceInput, taxRate float64) (models.Invoice, error) {
	number, err := s.nextInvoiceNumberLocked(ctx, s.cabinet.InvoicePrefix())
	if err != nil {
		return models.Invoice{}, err
	}
	for i := range in.Items {
		in.Items[i].Description = strings.TrimSpace(in.Items[i].Description)
	}
	return models.NewInvoice(s.newID(), number, in, taxRate, s.actor(ctx), s.now()), nil
}

func (s *Store) UpdateInvoice(ctx context.Context, id string, u models.InvoiceUpdate) error {
	if u.PaymentMethod != nil && !u.PaymentMethod.Valid() {
		return invalid("unknown payment method %q", *u.PaymentMethod)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.invoiceIndex(id)
	if i < 0 {
		return notFound("invoice", id)
	}
	inv := s.invoices[i].Clone()
	u.Apply(&inv)
	if err := s.put(ctx, persistence.CollectionInvoices, id, inv); err != nil {
		return err
	}
	s.invoices[i] = inv
	return nil
}

// MarkInvoicePaid moves a pending invoice to paid. Paying an invoice twice
// changes nothing: the first payment timestamp and method are kept and a
// warning is published.
func (s *Store) MarkInvoicePaid(ctx context.Context, id string, method models.PaymentMethod) error {
	if !method.Valid() {
		return invalid("unknown payment method %q", method)
	}

	s.mu.Lock()
	i := s.invoiceIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return notFound("invoice", id)
	}
	inv := s.invoices[i].Clone()
	if inv.Status == models.InvoicePaid {
		s.mu.Unlock()
		s.logger.Warn().Str("invoice", inv.Number).Msg("invoice already paid")
		s.notify("Facture déjà payée", models.NotifyWarning)
		return nil
	}
	now := s.now()
	inv.Status = models.InvoicePaid
	inv.PaymentMethod = method
	inv.PaidAt = &now
	if err := s.put(ctx, persistence.CollectionInvoices, id, inv); err != nil {
		s.mu.Unlock()
		return err
	}
	s.invoices[i] = inv
	s.mu.Unlock()

	s.notify("Facture payée", models.NotifySuccess)
	return nil
}

// RecordAppointmentPayment marks the appointment paid and issues the
// matching paid invoice, untaxed, with one line for the visit.
func (s *Store) RecordAppointmentPayment(ctx context.Context, appointmentID string, method models.PaymentMethod) (models.Invoice, error) {
	if !method.Valid() {
		return models.Invoice{}, invalid("unknown payment method %q", method)
	}

	s.mu.Lock()
	i := s.appointmentIndex(appointmentID)
	if i < 0 {
		s.mu.Unlock()
		return models.Invoice{}, notFound("appointment", appointmentID)
	}
	prev := s.appointments[i]
	if prev.Paid {
		s.mu.Unlock()
		return models.Invoice{}, invalid("appointment already paid")
	}
	if prev.Fee <= 0 {
		s.mu.Unlock()
		return models.Invoice{}, invalid("appointment has no fee")
	}

	now := s.now()
	a := prev
	a.Paid = true
	a.PaymentMethod = method
	a.PaidAt = &now

	inv, err := s.buildInvoiceLocked(ctx, models.InvoiceInput{
		PatientID:     a.PatientID,
		AppointmentID: a.ID,
		Date:          models.FormatDate(now),
		Items: []models.InvoiceItemInput{{
			Description: a.Type.Label(),
			Quantity:    1,
			UnitPrice:   a.Fee,
		}},
		Status:        models.InvoicePaid,
		PaymentMethod: method,
	}, 0)
	if err != nil {
		s.mu.Unlock()
		return models.Invoice{}, err
	}

	if err := s.writePaymentLocked(ctx, prev, a, inv); err != nil {
		s.mu.Unlock()
		return models.Invoice{}, err
	}
	s.appointments[i] = a
	s.invoices = append(s.invoices, inv)
	s.mu.Unlock()

	s.notify("Paiement enregistré et facture créée", models.NotifySuccess)
	return inv.Clone(), nil
}

// writePaymentLocked stores the paid appointment and its invoice together
// when the backend supports batches. Otherwise the appointment goes first
// and is restored if the invoice write fails.
func (s *Store) writePaymentLocked(ctx context.Context, prev, a models.Appointment, inv models.Invoice) error {
	apptData, err := json.Marshal(a)
	if err != nil {
		return err
	}
	invData, err := json.Marshal(inv)
	if err != nil {
		return err
	}
	if batcher, ok := s.backend.(persistence.Batcher); ok {
		err := batcher.Apply(ctx, []persistence.Op{
			{Kind: persistence.OpWrite, Collection: persistence.CollectionAppointments, ID: a.ID, Data: apptData},
			{Kind: persistence.OpWrite, Collection: persistence.CollectionInvoices, ID: inv.ID, Data: invData},
		})
		if !errors.Is(err, persistence.ErrBatchUnsupported) {
			return err
		}
	}
	if err := s.backend.Write(ctx, persistence.CollectionAppointments, a.ID, apptData); err != nil {
		return err
	}
	if err := s.backend.Write(ctx, persistence.CollectionInvoices, inv.ID, invData); err != nil {
		if rerr := s.put(ctx, persistence.CollectionAppointments, prev.ID, prev); rerr != nil {
			s.logger.Error().Err(rerr).Str("appointment", prev.ID).Msg("failed to restore appointment after payment failure")
		}
		return fmt.Errorf("store payment invoice: %w", err)
	}
	return nil
}

func (s *Store) InvoiceByID(id string) (models.Invoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.invoiceIndex(id); i >= 0 {
		return s.invoices[i].Clone(), true
	}
	return models.Invoice{}, false
}

func (s *Store) Invoices() []models.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, inv.Clone())
	}
	return out
}

func (s *Store) InvoicesByPatient(patientID string) []models.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Invoice
	for _, inv := range s.invoices {
		if inv.PatientID == patientID {
			out = append(out, inv.Clone())
		}
	}
	return out
}

func (s *Store) invoiceIndex(id string) int {
	for i := range s.invoices {
		if s.invoices[i].ID == id {
			return i
		}
	}
	return -1
}
