package services

import (
	"context"
	"strings"

	"cabinet-backend/models"
	"cabinet-backend/persistence"
	"cabinet-backend/utils"
)

func (s *Store) AddUser(ctx context.Context, in models.UserInput) (models.SessionUser, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return models.SessionUser{}, invalid("name and email are required")
	}
	if !in.Role.Valid() {
		return models.SessionUser{}, invalid("unknown role %q", in.Role)
	}
	if len(in.Password) < 8 {
		return models.SessionUser{}, invalid("password must be at least 8 characters")
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return models.SessionUser{}, err
	}

	s.mu.Lock()
	if s.userByEmailLocked(in.Email) >= 0 {
		s.mu.Unlock()
		return models.SessionUser{}, invalid("email %s already in use", in.Email)
	}
	u := models.NewUser(s.newID(), in, hash, s.now())
	if err := s.put(ctx, persistence.CollectionUsers, u.ID, u); err != nil {
		s.mu.Unlock()
		return models.SessionUser{}, err
	}
	s.users = append(s.users, u)
	s.mu.Unlock()

	s.notify("Utilisateur ajouté", models.NotifySuccess)
	return u.Public(), nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) error {
	if upd.Role != nil && !upd.Role.Valid() {
		return invalid("unknown role %q", *upd.Role)
	}
	if upd.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*upd.Email))
		upd.Email = &e
	}
	var hash string
	if upd.Password != nil {
		if len(*upd.Password) < 8 {
			return invalid("password must be at least 8 characters")
		}
		h, err := utils.HashPassword(*upd.Password)
		if err != nil {
			return err
		}
		hash = h
	}

	s.mu.Lock()
	i := s.userIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return notFound("user", id)
	}
	if upd.Email != nil {
		if j := s.userByEmailLocked(*upd.Email); j >= 0 && j != i {
			s.mu.Unlock()
			return invalid("email %s already in use", *upd.Email)
		}
	}
	u := s.users[i]
	upd.Apply(&u)
	if hash != "" {
		u.PasswordHash = hash
	}
	if err := s.put(ctx, persistence.CollectionUsers, id, u); err != nil {
		s.mu.Unlock()
		return err
	}
	s.users[i] = u
	if s.session != nil && s.session.ID == id {
		if u.IsActive {
			pub := u.Public()
			s.session = &pub
		} else {
			s.dropSessionLocked(ctx)
		}
	}
	s.mu.Unlock()

	s.notify("Utilisateur mis à jour", models.NotifySuccess)
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.userIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return notFound("user", id)
	}
	if err := s.remove(ctx, persistence.CollectionUsers, id); err != nil {
		s.mu.Unlock()
		return err
	}
	s.users = append(s.users[:i], s.users[i+1:]...)
	if s.session != nil && s.session.ID == id {
		s.dropSessionLocked(ctx)
	}
	s.mu.Unlock()

	s.notify("Utilisateur supprimé", models.NotifySuccess)
	return nil
}

func (s *Store) UserByID(id string) (models.SessionUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.userIndex(id); i >= 0 {
		return s.users[i].Public(), true
	}
	return models.SessionUser{}, false
}

// Users lists every account without credentials.
func (s *Store) Users() []models.SessionUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SessionUser, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Public())
	}
	return out
}

// Practitioners lists the active users who can hold appointments.
func (s *Store) Practitioners() []models.SessionUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.SessionUser
	for _, u := range s.users {
		if u.IsActive && u.IsPractitioner() {
			out = append(out, u.Public())
		}
	}
	return out
}

func (s *Store) userIndex(id string) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) userByEmailLocked(email string) int {
	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, email) {
			return i
		}
	}
	return -1
}
