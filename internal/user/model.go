package user

import (
	"strings"

	"github.com/MikeMC777/cafe/internal/auth"
)

const favoritesSep = ", "

type User struct {
	Login        string    `json:"login"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	Role         auth.Role `json:"role"`
	Favorites    []string  `json:"favorites,omitempty"`
}

// Fields is a partial update of a user row. Nil fields are untouched.
type Fields struct {
	Login        *string
	PasswordHash *string
	Phone        *string
	Role         *auth.Role
}

// ProfileUpdate is what a caller asks to change. Password is plain text.
type ProfileUpdate struct {
	Login    *string    `json:"login,omitempty"`
	Password *string    `json:"password,omitempty"`
	Phone    *string    `json:"phone,omitempty"`
	Role     *auth.Role `json:"role,omitempty" swaggertype:"string" enums:"Customer,Employee,Manager"`
}

func (u ProfileUpdate) Empty() bool {
	return u.Login == nil && u.Password == nil && u.Phone == nil && u.Role == nil
}

func JoinFavorites(items []string) string { return strings.Join(items, favoritesSep) }

func SplitFavorites(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SignUpRequest payload of account creation.
// swagger:model SignUpRequest
type SignUpRequest struct {
	Login    string `json:"login"    example:"alice"`
	Password string `json:"password" example:"pw1"`
	Phone    string `json:"phone"    example:"5551234567"`
}

// LoginRequest payload of authentication.
// swagger:model LoginRequest
type LoginRequest struct {
	Login    string `json:"login"    example:"alice"`
	Password string `json:"password" example:"pw1"`
}

// FavoritesRequest replaces the favorites list. An empty list clears it.
// swagger:model FavoritesRequest
type FavoritesRequest struct {
	Items []string `json:"items" example:"Latte,Bagel"`
}
