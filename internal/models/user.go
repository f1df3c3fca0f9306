package models

import (
	"time"

	"github.com/gocql/gocql"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID        gocql.UUID `json:"id"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email"`
	Password  string     `json:"-"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole indique si role fait partie des rôles connus.
func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleAdmin
}
