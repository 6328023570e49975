package services

import (
	"context"
	"errors"

	"cabinet-backend/persistence"
)

// DeleteStep removes one document.
type DeleteStep struct {
	Collection string
	ID         string
}

func (s DeleteStep) String() string { return s.Collection + "/" + s.ID }

// DeletePlan is an ordered list of deletions, dependents before parents.
type DeletePlan []DeleteStep

func (p DeletePlan) ops() []persistence.Op {
	ops := make([]persistence.Op, len(p))
	for i, step := range p {
		ops[i] = persistence.Op{Kind: persistence.OpDelete, Collection: step.Collection, ID: step.ID}
	}
	return ops
}

// executePlan runs the plan as one batch when the backend supports it.
// Otherwise steps run in order and stop at the first failure; the steps
// already applied are dropped from memory and the rest are reported in a
// CascadeError. Callers hold the write lock.
func (s *Store) executePlan(ctx context.Context, plan DeletePlan) error {
	if len(plan) == 0 {
		return nil
	}
	if batcher, ok := s.backend.(persistence.Batcher); ok {
		err := batcher.Apply(ctx, plan.ops())
		switch {
		case err == nil:
			for _, step := range plan {
				s.removeFromMemory(step)
			}
			return nil
		case !errors.Is(err, persistence.ErrBatchUnsupported):
			return &CascadeError{Pending: plan, Err: err}
		}
	}

	for i, step := range plan {
		if err := s.remove(ctx, step.Collection, step.ID); err != nil {
			s.logger.Error().Err(err).Str("step", step.String()).Int("completed", i).Msg("cascade delete interrupted")
			return &CascadeError{Completed: plan[:i], Pending: plan[i:], Err: err}
		}
		s.removeFromMemory(step)
	}
	return nil
}

func (s *Store) removeFromMemory(step DeleteStep) {
	switch step.Collection {
	case persistence.CollectionPatients:
		if i := s.patientIndex(step.ID); i >= 0 {
			s.patients = append(s.patients[:i], s.patients[i+1:]...)
		}
	case persistence.CollectionAppointments:
		if i := s.appointmentIndex(step.ID); i >= 0 {
			s.appointments = append(s.appointments[:i], s.appointments[i+1:]...)
		}
	case persistence.CollectionMedicalRecords:
		if i := s.recordIndex(step.ID); i >= 0 {
			s.medicalRecords = append(s.medicalRecords[:i], s.medicalRecords[i+1:]...)
		}
	case persistence.CollectionInvoices:
		if i := s.invoiceIndex(step.ID); i >= 0 {
			s.invoices = append(s.invoices[:i], s.invoices[i+1:]...)
		}
	case persistence.CollectionUsers:
		if i := s.userIndex(step.ID); i >= 0 {
			s.users = append(s.users[:i], s.users[i+1:]...)
		}
	}
}

// orphanPlanLocked lists appointments and medical records whose patient no
// longer exists. Invoices are kept: they are accounting documents.
func (s *Store) orphanPlanLocked() DeletePlan {
	known := make(map[string]struct{}, len(s.patients))
	for _, p := range s.patients {
		known[p.ID] = struct{}{}
	}
	var plan DeletePlan
	for _, a := range s.appointments {
		if _, ok := known[a.PatientID]; !ok {
			plan = append(plan, DeleteStep{Collection: persistence.CollectionAppointments, ID: a.ID})
		}
	}
	for _, r := range s.medicalRecords {
		if _, ok := known[r.PatientID]; !ok {
			plan = append(plan, DeleteStep{Collection: persistence.CollectionMedicalRecords, ID: r.ID})
		}
	}
	return plan
}

// Reconcile deletes orphaned appointments and medical records left behind
// by an interrupted cascade and returns how many were removed.
func (s *Store) Reconcile(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan := s.orphanPlanLocked()
	if len(plan) == 0 {
		return 0, nil
	}
	if err := s.executePlan(ctx, plan); err != nil {
		var cerr *CascadeError
		if errors.As(err, &cerr) {
			return len(cerr.Completed), err
		}
		return 0, err
	}
	return len(plan), nil
}
