package models

import (
	"time"
)

// AdminAccount is a row of the admins table.
type AdminAccount struct {
	ID           int
	Username     string
	Email        string
	PasswordHash string
	Role         string
	LastLogin    *time.Time
	IsActive     bool
}

// Admin is the identity attached to an authenticated dashboard request.
type Admin struct {
	ID       string
	Username string
	Role     string
}

type ProjectsPageData struct {
	Title  string
	Active string
	Admin  Admin
	Panel  PanelView
}
