package services

import (
	"context"
	"fmt"

	"cabinet-backend/models"
	"cabinet-backend/persistence"
	"cabinet-backend/utils"
)

// Demo accounts seeded into empty storage.
const (
	DemoAdminEmail           = "admin@cabinet.ma"
	DemoAdminPassword        = "admin1234"
	DemoPractitionerEmail    = "docteur@cabinet.ma"
	DemoPractitionerPassword = "docteur123"
	DemoSecretaryEmail       = "secretariat@cabinet.ma"
	DemoSecretaryPassword    = "secretaire123"
)

var demoUsers = []models.UserInput{
	{FirstName: "Karim", LastName: "Benali", Email: DemoAdminEmail, Password: DemoAdminPassword, Phone: "+212661000001", Specialty: "Médecine générale", Role: models.RoleAdmin},
	{FirstName: "Salma", LastName: "Idrissi", Email: DemoPractitionerEmail, Password: DemoPractitionerPassword, Phone: "+212661000002", Specialty: "Pédiatrie", Role: models.RolePractitioner},
	{FirstName: "Nadia", LastName: "Alaoui", Email: DemoSecretaryEmail, Password: DemoSecretaryPassword, Phone: "+212661000003", Role: models.RoleSecretary},
}

var demoPatients = []models.PatientInput{
	{FirstName: "Youssef", LastName: "El Amrani", Phone: "+212612345678", Email: "youssef.elamrani@example.ma", BirthDate: "1985-03-12", Gender: "M", BloodType: "A+", Allergies: "Pénicilline", Address: "Maarif, Casablanca"},
	{FirstName: "Fatima", LastName: "Zahra Bennani", Phone: "+212623456789", Email: "fz.bennani@example.ma", BirthDate: "1992-07-25", Gender: "F", BloodType: "O+", Address: "Agdal, Rabat"},
	{FirstName: "Mehdi", LastName: "Tazi", Phone: "+212634567890", BirthDate: "2015-11-02", Gender: "M", BloodType: "B-", Notes: "Suivi asthme"},
	{FirstName: "Amina", LastName: "Chraibi", Phone: "+212645678901", Email: "amina.chraibi@example.ma", BirthDate: "1968-01-30", Gender: "F", BloodType: "AB+", Allergies: "Aspirine", Notes: "Hypertension"},
}

// seedLocked fills empty collections with the demo dataset, dated relative
// to the store clock. Callers hold the write lock.
func (s *Store) seedLocked(ctx context.Context) error {
	now := s.now()
	day := func(offset int) string { return models.FormatDate(now.AddDate(0, 0, offset)) }

	users := make([]models.User, 0, len(demoUsers))
	for _, in := range demoUsers {
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return err
		}
		users = append(users, models.NewUser(s.newID(), in, hash, now))
	}
	admin, doctor := users[0], users[1]

	patients := make([]models.Patient, 0, len(demoPatients))
	for _, in := range demoPatients {
		patients = append(patients, models.NewPatient(s.newID(), in, now.AddDate(0, -2, 0)))
	}

	appt := func(p models.Patient, practitioner models.User, date, at string, typ models.AppointmentType, status models.AppointmentStatus, fee float64) models.Appointment {
		return models.NewAppointment(s.newID(), models.AppointmentInput{
			PatientID:      p.ID,
			PractitionerID: practitioner.ID,
			Date:           date,
			Time:           at,
			Type:           typ,
			Status:         status,
			Fee:            fee,
		}, admin.ID, now)
	}
	appointments := []models.Appointment{
		appt(patients[0], admin, day(-7), "09:00", models.TypeConsultation, models.StatusCompleted, 300),
		appt(patients[1], doctor, day(-3), "10:30", models.TypeFollowUp, models.StatusCompleted, 250),
		appt(patients[3], admin, day(-2), "15:00", models.TypeFollowUpCheck, models.StatusAbsent, 200),
		appt(patients[2], doctor, day(0), "09:30", models.TypeConsultation, models.StatusConfirmed, 250),
		appt(patients[0], admin, day(0), "11:00", models.TypeFollowUpCheck, models.StatusPlanned, 200),
		appt(patients[3], admin, day(1), "14:00", models.TypeFollowUp, models.StatusPlanned, 250),
		appt(patients[1], doctor, day(3), "16:30", models.TypeTeleconsultation, models.StatusPlanned, 200),
	}
	paidAt := now.AddDate(0, 0, -7)
	appointments[0].Paid = true
	appointments[0].PaymentMethod = models.PaymentCash
	appointments[0].PaidAt = &paidAt
	appointments[0].ReminderSent = true

	records := []models.MedicalRecord{
		models.NewMedicalRecord(s.newID(), models.MedicalRecordInput{
			PatientID: patients[0].ID,
			Type:      models.RecordConsultation,
			Title:     "Consultation générale",
			Content:   "Tension 12/8. Examen clinique normal.",
		}, admin.ID, now.AddDate(0, 0, -7)),
		models.NewMedicalRecord(s.newID(), models.MedicalRecordInput{
			PatientID: patients[0].ID,
			Type:      models.RecordPrescription,
			Title:     "Ordonnance",
			Content:   "Paracétamol 1g, 3 fois par jour pendant 5 jours.",
		}, admin.ID, now.AddDate(0, 0, -7)),
		models.NewMedicalRecord(s.newID(), models.MedicalRecordInput{
			PatientID: patients[1].ID,
			Type:      models.RecordLabResult,
			Title:     "Bilan sanguin",
			Content:   "NFS, glycémie à jeun, bilan lipidique.",
		}, doctor.ID, now.AddDate(0, 0, -3)),
		models.NewMedicalRecord(s.newID(), models.MedicalRecordInput{
			PatientID: patients[2].ID,
			Type:      models.RecordNote,
			Title:     "Suivi asthme",
			Content:   "Crises espacées depuis le dernier traitement.",
		}, doctor.ID, now.AddDate(0, -1, 0)),
	}

	var invoices []models.Invoice
	for _, seed := range []struct {
		appt   models.Appointment
		status models.InvoiceStatus
	}{
		{appointments[0], models.InvoicePaid},
		{appointments[1], models.InvoicePending},
	} {
		number, err := s.nextInvoiceNumberLocked(ctx, s.cabinet.InvoicePrefix())
		if err != nil {
			return err
		}
		in := models.InvoiceInput{
			PatientID:     seed.appt.PatientID,
			AppointmentID: seed.appt.ID,
			Date:          seed.appt.Date,
			Items:         []models.InvoiceItemInput{{Description: seed.appt.Type.Label(), Quantity: 1, UnitPrice: seed.appt.Fee}},
			Status:        seed.status,
		}
		if seed.status == models.InvoicePaid {
			in.PaymentMethod = models.PaymentCash
		}
		inv := models.NewInvoice(s.newID(), number, in, s.cabinet.InvoiceSettings.TaxRate, admin.ID, now)
		invoices = append(invoices, inv)
	}

	for _, u := range users {
		if err := s.put(ctx, persistence.CollectionUsers, u.ID, u); err != nil {
			return err
		}
	}
	for _, p := range patients {
		if err := s.put(ctx, persistence.CollectionPatients, p.ID, p); err != nil {
			return err
		}
	}
	for _, a := range appointments {
		if err := s.put(ctx, persistence.CollectionAppointments, a.ID, a); err != nil {
			return err
		}
	}
	for _, r := range records {
		if err := s.put(ctx, persistence.CollectionMedicalRecords, r.ID, r); err != nil {
			return err
		}
	}
	for _, inv := range invoices {
		if err := s.put(ctx, persistence.CollectionInvoices, inv.ID, inv); err != nil {
			return err
		}
	}
	if err := s.put(ctx, persistence.CollectionCabinet, cabinetDocumentID, s.cabinet); err != nil {
		return err
	}

	s.users = users
	s.patients = patients
	s.appointments = appointments
	s.medicalRecords = records
	s.invoices = invoices
	return nil
}

// ResetToDemo wipes every collection, restores the default cabinet
// configuration and seeds the demo dataset. The session is closed since
// the accounts it referred to are gone.
func (s *Store) ResetToDemo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var plan DeletePlan
	for _, a := range s.appointments {
		plan = append(plan, DeleteStep{Collection: persistence.CollectionAppointments, ID: a.ID})
	}
	for _, r := range s.medicalRecords {
		plan = append(plan, DeleteStep{Collection: persistence.CollectionMedicalRecords, ID: r.ID})
	}
	for _, inv := range s.invoices {
		plan = append(plan, DeleteStep{Collection: persistence.CollectionInvoices, ID: inv.ID})
	}
	for _, p := range s.patients {
		plan = append(plan, DeleteStep{Collection: persistence.CollectionPatients, ID: p.ID})
	}
	for _, u := range s.users {
		plan = append(plan, DeleteStep{Collection: persistence.CollectionUsers, ID: u.ID})
	}
	for key := range s.counters {
		plan = append(plan, DeleteStep{Collection: persistence.CollectionCounters, ID: key})
	}
	if err := s.executePlan(ctx, plan); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.counters = make(map[string]int)
	s.cabinet = models.DefaultCabinetConfig()

	if s.sessions != nil {
		if err := s.sessions.Clear(ctx); err != nil {
			return fmt.Errorf("reset: clear session: %w", err)
		}
	}
	s.session = nil

	if err := s.seedLocked(ctx); err != nil {
		return fmt.Errorf("reset: seed: %w", err)
	}
	sortAppointments(s.appointments)
	s.hub.Publish("Données réinitialisées", models.NotifyInfo)
	return nil
}
