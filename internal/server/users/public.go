package users

import (
	"slices"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// PublicUser is the view of a User that may leave the service. It has no
// credential fields, and NewPublicUser is the only way the Service builds one.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewPublicUser(u *models.User) PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsActive:  u.IsActive,
		Roles:     slices.Clone(u.Roles),
		CreatedAt: u.CreatedAt,
	}
}

func NewPublicUsers(list []*models.User) []PublicUser {
	out := make([]PublicUser, 0, len(list))
	for _, u := range list {
		out = append(out, NewPublicUser(u))
	}
	return out
}
