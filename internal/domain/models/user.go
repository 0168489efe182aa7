package models

import (
	"time"
)

const (
	RoleCustomer = "Customer"
	RoleAdmin    = "Admin"
	RoleStaff    = "Staff"
)

type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName,omitempty"`
	FirstName  string    `json:"firstName,omitempty"`
	LastName   string    `json:"lastName,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Avatar     string    `json:"avatar,omitempty"`
	IsVerified bool      `json:"isVerified"`
	RoleName   string    `json:"roleName"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

func (u User) IsAdmin() bool {
	return u.RoleName == RoleAdmin
}
