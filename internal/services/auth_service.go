package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"artyra/internal/domain"
)

// ErrBadCreds is returned for unknown users, wrong passwords and non-admin accounts alike.
var ErrBadCreds = errors.New("auth: invalid admin credentials")

// ErrNoSession means the sid cookie is empty or not bound to an account.
var ErrNoSession = errors.New("auth: no admin session")

// AdminStore is satisfied by *repos.UserRepo.
type AdminStore interface {
	ByUsername(username string) (*domain.User, error)
	BindSession(sid, userID string) error
	SessionUser(sid string) (*domain.User, error)
	UnbindSession(sid string) error
}

// AuthService signs shop admins in and out. The session id is the same sid cookie that keys the cart.
type AuthService struct {
	Users AdminStore
}

func NewAuthService(users AdminStore) *AuthService { return &AuthService{Users: users} }

func (s *AuthService) Login(sid, username, password string) (*domain.User, error) {
	u, err := s.Users.ByUsername(strings.TrimSpace(username))
	if err != nil || !u.IsAdmin() {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, &PersistenceError{Op: "session.bind", Err: err}
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	if sid == "" {
		return nil
	}
	return s.Users.UnbindSession(sid)
}

// CurrentUser resolves the admin bound to sid, or ErrNoSession.
func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	if sid == "" {
		return nil, ErrNoSession
	}
	u, err := s.Users.SessionUser(sid)
	if err != nil || u == nil {
		return nil, ErrNoSession
	}
	return u, nil
}
