// Package auth holds the authenticated session value and where it is kept
// between HTTP requests.
package auth

import (
	"time"

	"github.com/google/uuid"
)

// Session is the authenticated actor passed explicitly into every
// operation. Credential is the password hash seen at login; a mismatch on
// revalidation means the credentials changed underneath the session.
type Session struct {
	ID         uuid.UUID `json:"id"`
	Login      string    `json:"login"`
	Role       Role      `json:"role"`
	Credential string    `json:"-"`
	StartedAt  time.Time `json:"started_at"`
}

func NewSession(login string, role Role, credential string) Session {
	return Session{
		ID:         uuid.New(),
		Login:      login,
		Role:       role,
		Credential: credential,
		StartedAt:  time.Now().UTC(),
	}
}

func (s Session) IsManager() bool { return s.Role == Manager }

// IsStaff is true for employees and managers.
func (s Session) IsStaff() bool { return s.Role == Employee || s.Role == Manager }

func (s Session) Owns(login string) bool { return s.Login == login }
