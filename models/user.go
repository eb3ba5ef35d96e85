package models

import (
	"strings"
	"time"
)

// MinPasswordLength is the shortest password accepted for new accounts.
const MinPasswordLength = 6

// User is an application account. The password hash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsAdmin      bool      `json:"is_admin"`
	Deleted      bool      `json:"deleted"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserSummary is the owner projection nested in invoices.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// UserInput is used for creating users.
type UserInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"is_admin"`
}

func (u *UserInput) Validate() string {
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return "username is required"
	}
	if len(u.Password) < MinPasswordLength {
		return "password must be at least 6 characters"
	}
	if u.Role == "" {
		u.Role = "user"
	}
	return ""
}

// LoginInput carries the credentials posted to the login endpoint.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (l *LoginInput) Validate() string {
	if strings.TrimSpace(l.Username) == "" || l.Password == "" {
		return "username and password are required"
	}
	return ""
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token    string `json:"token"`
	UserID   int64  `json:"userid"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}
