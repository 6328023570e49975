package services

import (
	"context"
	"strings"

	"cabinet-backend/models"
	"cabinet-backend/persistence"
	"cabinet-backend/utils"
)

func (s *Store) AddPatient(ctx context.Context, in models.PatientInput) (models.Patient, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.FirstName == "" || in.LastName == "" {
		return models.Patient{}, invalid("patient name is required")
	}
	if in.Phone != "" && !utils.ValidatePhone(in.Phone) {
		return models.Patient{}, invalid("invalid phone number format")
	}

	s.mu.Lock()
	p := models.NewPatient(s.newID(), in, s.now())
	if err := s.put(ctx, persistence.CollectionPatients, p.ID, p); err != nil {
		s.mu.Unlock()
		return models.Patient{}, err
	}
	s.patients = append(s.patients, p)
	s.mu.Unlock()

	s.notify("Patient ajouté", models.NotifySuccess)
	return p, nil
}

func (s *Store) UpdatePatient(ctx context.Context, id string, u models.PatientUpdate) error {
	if u.Phone != nil && *u.Phone != "" && !utils.ValidatePhone(*u.Phone) {
		return invalid("invalid phone number format")
	}

	s.mu.Lock()
	i := s.patientIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return notFound("patient", id)
	}
	p := s.patients[i]
	u.Apply(&p)
	if err := s.put(ctx, persistence.CollectionPatients, id, p); err != nil {
		s.mu.Unlock()
		return err
	}
	s.patients[i] = p
	s.mu.Unlock()

	s.notify("Patient mis à jour", models.NotifySuccess)
	return nil
}

// DeletePatient removes the patient with its appointments and medical
// records. Dependents go first, so a failure part way never orphans them.
func (s *Store) DeletePatient(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.patientIndex(id) < 0 {
		s.mu.Unlock()
		return notFound("patient", id)
	}
	plan := s.patientDeletePlan(id)
	err := s.executePlan(ctx, plan)
	s.mu.Unlock()
	if err != nil {
		s.notify("Suppression du patient incomplète", models.NotifyError)
		return err
	}

	s.notify("Patient supprimé", models.NotifySuccess)
	return nil
}

func (s *Store) patientDeletePlan(id string) DeletePlan {
	var plan DeletePlan
	for _, a := range s.appointments {
		if a.PatientID == id {
			plan = append(plan, DeleteStep{Collection: persistence.CollectionAppointments, ID: a.ID})
		}
	}
	for _, r := range s.medicalRecords {
		if r.PatientID == id {
			plan = append(plan, DeleteStep{Collection: persistence.CollectionMedicalRecords, ID: r.ID})
		}
	}
	return append(plan, DeleteStep{Collection: persistence.CollectionPatients, ID: id})
}

func (s *Store) PatientByID(id string) (models.Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.patientIndex(id); i >= 0 {
		return s.patients[i], true
	}
	return models.Patient{}, false
}

func (s *Store) Patients() []models.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Patient(nil), s.patients...)
}

// SearchPatients matches the query against name, phone and email.
func (s *Store) SearchPatients(query string) []models.Patient {
	q := strings.ToLower(strings.TrimSpace(query))
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Patient
	for _, p := range s.patients {
		if q == "" ||
			strings.Contains(strings.ToLower(p.FullName()), q) ||
			strings.Contains(p.Phone, q) ||
			strings.Contains(strings.ToLower(p.Email), q) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) patientIndex(id string) int {
	for i := range s.patients {
		if s.patients[i].ID == id {
			return i
		}
	}
	return -1
}
