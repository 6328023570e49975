package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"cabinet-backend/models"
	"cabinet-backend/utils"
)

// LoginFailedMessage is the only failure text a login attempt reveals.
const LoginFailedMessage = "Email ou mot de passe incorrect"

type LoginResult struct {
	Success bool                `json:"success"`
	User    *models.SessionUser `json:"user,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// Login authenticates an active user. A wrong email or password is not an
// error: the result carries LoginFailedMessage. The error return reports a
// session that could not be stored.
func (s *Store) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.RLock()
	var (
		hash  string
		found bool
		user  models.SessionUser
	)
	for _, u := range s.users {
		if u.IsActive && strings.EqualFold(u.Email, email) {
			hash, found, user = u.PasswordHash, true, u.Public()
			break
		}
	}
	s.mu.RUnlock()

	if !found {
		// Same bcrypt cost as a real account so response time does not
		// reveal which emails exist.
		hash = dummyPasswordHash()
	}
	if !utils.CheckPasswordHash(password, hash) || !found {
		s.logger.Info().Str("email", email).Msg("login rejected")
		return LoginResult{Error: LoginFailedMessage}, nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return LoginResult{}, err
	}
	s.mu.Lock()
	if s.sessions != nil {
		if err := s.sessions.Save(ctx, data); err != nil {
			s.mu.Unlock()
			return LoginResult{}, fmt.Errorf("save session: %w", err)
		}
	}
	s.session = &user
	s.mu.Unlock()

	s.logger.Info().Str("user", user.ID).Msg("user logged in")
	return LoginResult{Success: true, User: &user}, nil
}

// Logout ends the store session. The store holds a single session, as the
// desktop client does; HTTP clients authenticate with their own tokens and
// do not share it.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions != nil {
		if err := s.sessions.Clear(ctx); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	s.session = nil
	return nil
}

func (s *Store) CurrentUser() (models.SessionUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return models.SessionUser{}, false
	}
	return *s.session, true
}

// dropSessionLocked forgets the current session after its user was removed
// or deactivated. The caller holds s.mu.
func (s *Store) dropSessionLocked(ctx context.Context) {
	s.session = nil
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Clear(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("clear stale session")
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

func dummyPasswordHash() string {
	dummyHashOnce.Do(func() {
		h, err := utils.HashPassword("cabinet-login-placeholder")
		if err == nil {
			dummyHash = h
		}
	})
	return dummyHash
}
