package models

import "time"

// Roles understood by the API. Staff and employees can record
// movements and sales; only admins manage employees, alerts and issues.
const (
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
	RoleEmployee = "employee"
)

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
