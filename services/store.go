package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"cabinet-backend/models"
	"cabinet-backend/persistence"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const cabinetDocumentID = "config"

// Store owns the clinic collections. Every mutation holds the write lock
// until its storage write has returned, so stored state never falls behind
// memory and a failed write leaves memory untouched. Concurrent editors get
// last-write-wins semantics.
type Store struct {
	mu sync.RWMutex

	backend  persistence.Backend
	sessions persistence.SessionStore
	hub      *NotificationHub
	sender   ReminderSender
	logger   zerolog.Logger
	now      func() time.Time
	newID    func() string

	patients       []models.Patient
	appointments   []models.Appointment
	medicalRecords []models.MedicalRecord
	invoices       []models.Invoice
	users          []models.User
	cabinet        models.CabinetConfig
	counters       map[string]int

	session  *models.SessionUser
	seedDemo bool
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func WithReminderSender(sender ReminderSender) Option {
	return func(s *Store) { s.sender = sender }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithoutDemoData keeps empty storage empty at Load.
func WithoutDemoData() Option {
	return func(s *Store) { s.seedDemo = false }
}

// NewStore wires a store; call Load before serving requests.
func NewStore(backend persistence.Backend, sessions persistence.SessionStore, hub *NotificationHub, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		sessions: sessions,
		hub:      hub,
		logger:   log.Logger,
		now:      time.Now,
		newID:    uuid.NewString,
		cabinet:  models.DefaultCabinetConfig(),
		counters: make(map[string]int),
		seedDemo: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sender == nil {
		s.sender = NewLogSender(s.logger)
	}
	if s.hub == nil {
		s.hub = NewNotificationHub(0)
	}
	return s
}

func (s *Store) Notifications() *NotificationHub { return s.hub }

// Load reads every collection from storage, seeds the demo dataset when
// storage is empty, restores the persisted session and repairs orphans.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	seeded, err := s.loadLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if seeded {
		s.logger.Info().Msg("storage empty, demo dataset seeded")
	}
	removed, err := s.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	if removed > 0 {
		s.logger.Warn().Int("removed", removed).Msg("orphaned records removed at startup")
	}
	return nil
}

func (s *Store) loadLocked(ctx context.Context) (bool, error) {
	var err error
	if s.patients, err = readCollection[models.Patient](ctx, s.backend, persistence.CollectionPatients); err != nil {
		return false, err
	}
	if s.appointments, err = readCollection[models.Appointment](ctx, s.backend, persistence.CollectionAppointments); err != nil {
		return false, err
	}
	if s.medicalRecords, err = readCollection[models.MedicalRecord](ctx, s.backend, persistence.CollectionMedicalRecords); err != nil {
		return false, err
	}
	if s.invoices, err = readCollection[models.Invoice](ctx, s.backend, persistence.CollectionInvoices); err != nil {
		return false, err
	}
	if s.users, err = readCollection[models.User](ctx, s.backend, persistence.CollectionUsers); err != nil {
		return false, err
	}
	configs, err := readCollection[models.CabinetConfig](ctx, s.backend, persistence.CollectionCabinet)
	if err != nil {
		return false, err
	}
	s.cabinet = models.DefaultCabinetConfig()
	if len(configs) > 0 {
		s.cabinet = configs[0]
	}
	if err := s.loadCounters(ctx); err != nil {
		return false, err
	}

	seeded := false
	if s.seedDemo && s.emptyLocked() {
		if err := s.seedLocked(ctx); err != nil {
			return false, fmt.Errorf("seed demo data: %w", err)
		}
		seeded = true
	}

	sortAppointments(s.appointments)
	sort.SliceStable(s.invoices, func(i, j int) bool {
		a, b := s.invoices[i], s.invoices[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Number < b.Number
	})
	s.syncCountersLocked()

	if s.sessions != nil {
		data, ok, err := s.sessions.Load(ctx)
		if err != nil {
			return false, fmt.Errorf("restore session: %w", err)
		}
		if ok {
			var u models.SessionUser
			if err := json.Unmarshal(data, &u); err != nil {
				s.logger.Warn().Err(err).Msg("discarding unreadable session")
			} else if i := s.userIndex(u.ID); i < 0 || !s.users[i].IsActive {
				s.logger.Info().Str("user", u.ID).Msg("discarding session of missing or inactive user")
				s.dropSessionLocked(ctx)
			} else {
				pub := s.users[i].Public()
				s.session = &pub
			}
		}
	}
	return seeded, nil
}

func (s *Store) emptyLocked() bool {
	return len(s.patients) == 0 && len(s.appointments) == 0 && len(s.medicalRecords) == 0 &&
		len(s.invoices) == 0 && len(s.users) == 0
}

func readCollection[T any](ctx context.Context, b persistence.Backend, collection string) ([]T, error) {
	docs, err := b.ReadAll(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := json.Unmarshal(d.Data, &v); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, d.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) put(ctx context.Context, collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	return s.backend.Write(ctx, collection, id, data)
}

func (s *Store) remove(ctx context.Context, collection, id string) error {
	return s.backend.Delete(ctx, collection, id)
}

func (s *Store) notify(message string, typ models.NotificationType) {
	s.hub.Publish(message, typ)
}

type actorKey struct{}

// WithActor tags the context with the user performing an operation.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// actor returns the acting user: the context value first, then the session
// user. Callers hold s.mu.
func (s *Store) actor(ctx context.Context) string {
	if id, ok := ctx.Value(actorKey{}).(string); ok && id != "" {
		return id
	}
	if s.session != nil {
		return s.session.ID
	}
	return ""
}

func sortAppointments(list []models.Appointment) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		return list[i].Time < list[j].Time
	})
}
