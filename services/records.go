package services

import (
	"context"
	"sort"

	"cabinet-backend/models"
	"cabinet-backend/persistence"
)

func (s *Store) AddMedicalRecord(ctx context.Context, in models.MedicalRecordInput) (models.MedicalRecord, error) {
	if !in.Type.Valid() {
		return models.MedicalRecord{}, invalid("unknown record type %q", in.Type)
	}
	if in.Title == "" {
		return models.MedicalRecord{}, invalid("record title is required")
	}

	s.mu.Lock()
	if s.patientIndex(in.PatientID) < 0 {
		s.mu.Unlock()
		return models.MedicalRecord{}, notFound("patient", in.PatientID)
	}
	r := models.NewMedicalRecord(s.newID(), in, s.actor(ctx), s.now())
	if err := s.put(ctx, persistence.CollectionMedicalRecords, r.ID, r); err != nil {
		s.mu.Unlock()
		return models.MedicalRecord{}, err
	}
	s.medicalRecords = append(s.medicalRecords, r)
	s.mu.Unlock()

	s.notify("Dossier ajouté", models.NotifySuccess)
	return r.Clone(), nil
}

func (s *Store) UpdateMedicalRecord(ctx context.Context, id string, u models.MedicalRecordUpdate) error {
	if u.Type != nil && !u.Type.Valid() {
		return invalid("unknown record type %q", *u.Type)
	}

	s.mu.Lock()
	i := s.recordIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return notFound("medical record", id)
	}
	r := s.medicalRecords[i].Clone()
	u.Apply(&r)
	if err := s.put(ctx, persistence.CollectionMedicalRecords, id, r); err != nil {
		s.mu.Unlock()
		return err
	}
	s.medicalRecords[i] = r
	s.mu.Unlock()

	s.notify("Dossier mis à jour", models.NotifySuccess)
	return nil
}

func (s *Store) DeleteMedicalRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.recordIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return notFound("medical record", id)
	}
	if err := s.remove(ctx, persistence.CollectionMedicalRecords, id); err != nil {
		s.mu.Unlock()
		return err
	}
	s.medicalRecords = append(s.medicalRecords[:i], s.medicalRecords[i+1:]...)
	s.mu.Unlock()

	s.notify("Dossier supprimé", models.NotifySuccess)
	return nil
}

func (s *Store) MedicalRecordByID(id string) (models.MedicalRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.recordIndex(id); i >= 0 {
		return s.medicalRecords[i].Clone(), true
	}
	return models.MedicalRecord{}, false
}

func (s *Store) MedicalRecords() []models.MedicalRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MedicalRecord, 0, len(s.medicalRecords))
	for _, r := range s.medicalRecords {
		out = append(out, r.Clone())
	}
	return out
}

// MedicalRecordsByPatient returns the patient's records, newest first.
func (s *Store) MedicalRecordsByPatient(patientID string) []models.MedicalRecord {
	s.mu.RLock()
	var out []models.MedicalRecord
	for _, r := range s.medicalRecords {
		if r.PatientID == patientID {
			out = append(out, r.Clone())
		}
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

func (s *Store) recordIndex(id string) int {
	for i := range s.medicalRecords {
		if s.medicalRecords[i].ID == id {
			return i
		}
	}
	return -1
}
