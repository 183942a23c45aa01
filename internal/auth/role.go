package auth

import (
	"strings"

	"github.com/MikeMC777/cafe/internal/apperr"
)

type Role string

const (
	Customer Role = "Customer"
	Employee Role = "Employee"
	Manager  Role = "Manager"
)

var Roles = []Role{Customer, Employee, Manager}

// ParseRole accepts any casing of the three role names.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for _, r := range Roles {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", apperr.Validationf("role must be one of Customer, Employee or Manager, got %q", s)
}

func (r Role) Valid() bool {
	switch r {
	case Customer, Employee, Manager:
		return true
	}
	return false
}
