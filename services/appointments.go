package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cabinet-backend/models"
	"cabinet-backend/persistence"
)

func (s *Store) AddAppointment(ctx context.Context, in models.AppointmentInput) (models.Appointment, error) {
	if err := validateAppointmentInput(in); err != nil {
		return models.Appointment{}, err
	}

	s.mu.Lock()
	if s.patientIndex(in.PatientID) < 0 {
		s.mu.Unlock()
		return models.Appointment{}, notFound("patient", in.PatientID)
	}
	a := models.NewAppointment(s.newID(), in, s.actor(ctx), s.now())
	if a.PractitionerID == "" {
		a.PractitionerID = a.CreatedBy
	}
	if err := s.put(ctx, persistence.CollectionAppointments, a.ID, a); err != nil {
		s.mu.Unlock()
		return models.Appointment{}, err
	}
	s.appointments = append(s.appointments, a)
	sortAppointments(s.appointments)
	s.mu.Unlock()

	s.notify("RDV créé", models.NotifySuccess)
	return a, nil
}

func validateAppointmentInput(in models.AppointmentInput) error {
	if _, err := time.Parse(models.DateLayout, in.Date); err != nil {
		return invalid("date must be YYYY-MM-DD")
	}
	if _, err := time.Parse("15:04", in.Time); err != nil {
		return invalid("time must be HH:MM")
	}
	if in.Type != "" && !in.Type.Valid() {
		return invalid("unknown appointment type %q", in.Type)
	}
	if in.Status != "" && !in.Status.Valid() {
		return invalid("unknown appointment status %q", in.Status)
	}
	if in.ReminderType != "" && !in.ReminderType.Valid() {
		return invalid("unknown reminder type %q", in.ReminderType)
	}
	if in.Fee < 0 {
		return invalid("fee must not be negative")
	}
	return nil
}

// UpdateAppointment merges the given fields. It publishes no notification:
// agenda edits such as drag and resize call it in bursts.
func (s *Store) UpdateAppointment(ctx context.Context, id string, u models.AppointmentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.appointmentIndex(id)
	if i < 0 {
		return notFound("appointment", id)
	}
	a := s.appointments[i]
	if u.Status != nil && !a.Status.CanTransition(*u.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, *u.Status)
	}
	if u.Type != nil && !u.Type.Valid() {
		return invalid("unknown appointment type %q", *u.Type)
	}
	if u.Date != nil {
		if _, err := time.Parse(models.DateLayout, *u.Date); err != nil {
			return invalid("date must be YYYY-MM-DD")
		}
	}
	if u.PaymentMethod != nil && !u.PaymentMethod.Valid() {
		return invalid("unknown payment method %q", *u.PaymentMethod)
	}
	u.Apply(&a)
	if u.Paid != nil {
		if *u.Paid && a.PaidAt == nil {
			now := s.now()
			a.PaidAt = &now
		} else if !*u.Paid {
			a.PaidAt = nil
		}
	}
	if err := s.put(ctx, persistence.CollectionAppointments, id, a); err != nil {
		return err
	}
	s.appointments[i] = a
	if u.Date != nil || u.Time != nil {
		sortAppointments(s.appointments)
	}
	return nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.appointmentIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return notFound("appointment", id)
	}
	if err := s.remove(ctx, persistence.CollectionAppointments, id); err != nil {
		s.mu.Unlock()
		return err
	}
	s.appointments = append(s.appointments[:i], s.appointments[i+1:]...)
	s.mu.Unlock()

	s.notify("RDV supprimé", models.NotifySuccess)
	return nil
}

func (s *Store) AppointmentByID(id string) (models.Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.appointmentIndex(id); i >= 0 {
		return s.appointments[i].Clone(), true
	}
	return models.Appointment{}, false
}

func (s *Store) Appointments() []models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAppointments(s.appointments)
}

func (s *Store) AppointmentsByPatient(patientID string) []models.Appointment {
	return s.filterAppointments(func(a models.Appointment) bool { return a.PatientID == patientID })
}

func (s *Store) AppointmentsByDate(date string) []models.Appointment {
	return s.filterAppointments(func(a models.Appointment) bool { return a.Date == date })
}

func (s *Store) AppointmentsByPractitioner(practitionerID string) []models.Appointment {
	return s.filterAppointments(func(a models.Appointment) bool { return a.PractitionerID == practitionerID })
}

func (s *Store) filterAppointments(keep func(models.Appointment) bool) []models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Appointment
	for _, a := range s.appointments {
		if keep(a) {
			out = append(out, a.Clone())
		}
	}
	return out
}

// SendReminder dispatches a reminder for the appointment and records it.
// Nothing is recorded when the dispatch fails.
func (s *Store) SendReminder(ctx context.Context, appointmentID string, channel models.ReminderType) (models.ReminderOutcome, error) {
	if !channel.Valid() {
		return models.ReminderOutcome{}, invalid("unknown reminder type %q", channel)
	}

	s.mu.RLock()
	i := s.appointmentIndex(appointmentID)
	if i < 0 {
		s.mu.RUnlock()
		return models.ReminderOutcome{}, notFound("appointment", appointmentID)
	}
	a := s.appointments[i]
	var patient models.Patient
	if pi := s.patientIndex(a.PatientID); pi >= 0 {
		patient = s.patients[pi]
	}
	cabinet := s.cabinet
	s.mu.RUnlock()

	to := patient.Phone
	if channel == models.ReminderEmail {
		to = patient.Email
	}
	if to == "" {
		return models.ReminderOutcome{}, invalid("patient has no %s contact", channel)
	}
	message := models.RenderReminder(cabinet.ReminderSettings.Message, patient, a, cabinet.Name)

	// dispatch runs without the lock; the provider call can be slow
	providerID, err := s.sender.Send(ctx, channel, to, message)
	if err != nil {
		s.notify(fmt.Sprintf("Échec du rappel %s", strings.ToUpper(string(channel))), models.NotifyError)
		return models.ReminderOutcome{}, fmt.Errorf("send reminder: %w", err)
	}

	s.mu.Lock()
	i = s.appointmentIndex(appointmentID)
	if i < 0 {
		s.mu.Unlock()
		return models.ReminderOutcome{}, notFound("appointment", appointmentID)
	}
	a = s.appointments[i]
	a.ReminderSent = true
	a.ReminderType = channel
	if err := s.put(ctx, persistence.CollectionAppointments, a.ID, a); err != nil {
		s.mu.Unlock()
		return models.ReminderOutcome{}, err
	}
	s.appointments[i] = a
	s.mu.Unlock()

	s.notify(fmt.Sprintf("Rappel %s envoyé", strings.ToUpper(string(channel))), models.NotifySuccess)
	return models.ReminderOutcome{
		AppointmentID: a.ID,
		Channel:       channel,
		To:            to,
		Message:       message,
		ProviderID:    providerID,
		SentAt:        s.now(),
	}, nil
}

// DueReminders lists appointments starting within the configured window
// that are still open and have not been reminded.
func (s *Store) DueReminders(now time.Time) []models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	settings := s.cabinet.ReminderSettings
	if !settings.Enabled {
		return nil
	}
	window := time.Duration(settings.HoursBefore) * time.Hour
	var due []models.Appointment
	for _, a := range s.appointments {
		if a.ReminderSent || a.Status.Terminal() {
			continue
		}
		start, err := time.ParseInLocation(models.DateLayout+" 15:04", a.Date+" "+a.Time, now.Location())
		if err != nil {
			continue
		}
		if until := start.Sub(now); until > 0 && until <= window {
			due = append(due, a.Clone())
		}
	}
	return due
}

func (s *Store) appointmentIndex(id string) int {
	for i := range s.appointments {
		if s.appointments[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAppointments(in []models.Appointment) []models.Appointment {
	out := make([]models.Appointment, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
