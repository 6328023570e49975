package services

import (
	"context"

	"cabinet-backend/models"
	"cabinet-backend/persistence"
)

func (s *Store) CabinetConfig() models.CabinetConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cabinet
}

// UpdateCabinetConfig merges the given fields into the singleton
// configuration and stores it in place.
func (s *Store) UpdateCabinetConfig(ctx context.Context, u models.CabinetConfigUpdate) (models.CabinetConfig, error) {
	if u.InvoiceSettings != nil && u.InvoiceSettings.TaxRate < 0 {
		return models.CabinetConfig{}, invalid("tax rate must not be negative")
	}
	if u.ReminderSettings != nil {
		rs := u.ReminderSettings
		if rs.Channel != "" && !rs.Channel.Valid() {
			return models.CabinetConfig{}, invalid("unknown reminder channel %q", rs.Channel)
		}
		if rs.HoursBefore < 0 {
			return models.CabinetConfig{}, invalid("hoursBefore must not be negative")
		}
	}

	s.mu.Lock()
	c := s.cabinet
	u.Apply(&c)
	if err := s.put(ctx, persistence.CollectionCabinet, cabinetDocumentID, c); err != nil {
		s.mu.Unlock()
		return models.CabinetConfig{}, err
	}
	s.cabinet = c
	s.mu.Unlock()

	s.notify("Configuration enregistrée", models.NotifySuccess)
	return c, nil
}
