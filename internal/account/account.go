// Package account manages user records: signup with creation-time email
// uniqueness, credential verification, lookup and deletion.
package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lucaf1-15/lucai-backend/internal/models"
	"github.com/lucaf1-15/lucai-backend/internal/security"
	"github.com/lucaf1-15/lucai-backend/internal/store"
)

var (
	// ErrEmailTaken indicates signup with an email that already has an account.
	ErrEmailTaken = errors.New("account: email already registered")
	// ErrInvalidCredentials indicates a failed login. It is returned for both
	// unknown emails and wrong passwords so the two are indistinguishable.
	ErrInvalidCredentials = errors.New("account: invalid email or password")
	// ErrNotFound indicates an operation on an unknown user ID.
	ErrNotFound = errors.New("account: user not found")
)

// Service provides user account operations over the users collection.
type Service struct {
	users *store.Collection[models.User]
	nowFn func() time.Time
}

// NewService constructs a Service. A nil clock falls back to time.Now.
func NewService(users *store.Collection[models.User], nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{users: users, nowFn: nowFn}
}

// Signup creates a new standard user. Email uniqueness is checked against
// the current collection before the insert; it is not re-validated later.
func (s *Service) Signup(email, password string) (models.User, error) {
	if _, errFind := s.users.FindOne(func(u models.User) bool { return u.Email == email }); errFind == nil {
		return models.User{}, ErrEmailTaken
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return models.User{}, errHash
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Password:     hash,
		Role:         models.RoleStandard,
		Verified:     true,
		RequestCount: 0,
		CreatedAt:    s.nowFn().UTC(),
	}
	if errInsert := s.users.Insert(user); errInsert != nil {
		return models.User{}, errInsert
	}
	return user, nil
}

// Authenticate verifies the email/password pair and returns the user.
func (s *Service) Authenticate(email, password string) (models.User, error) {
	user, errFind := s.users.FindOne(func(u models.User) bool { return u.Email == email })
	if errFind != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if !security.VerifyPassword(password, user.Password) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// ByID returns the user with the given ID.
func (s *Service) ByID(id string) (models.User, error) {
	user, errFind := s.users.FindByID(id)
	if errFind != nil {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

// All returns every user record in stored order.
func (s *Service) All() []models.User {
	return s.users.All()
}

// Delete removes the user with the given ID. Chats are weak references and
// are left in place.
func (s *Service) Delete(id string) error {
	if _, errFind := s.users.FindByID(id); errFind != nil {
		return ErrNotFound
	}
	return s.users.Delete(id)
}
