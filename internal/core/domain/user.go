package domain

import "strings"

// Role is the coarse profile carried by an authenticated principal.
type Role string

const (
	RoleClient   Role = "CLIENT"
	RoleBoutique Role = "BOUTIQUE"
	RoleAdmin    Role = "ADMIN"
)

// Principal models the authenticated actor as returned by the login endpoint.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Name  string `json:"name,omitempty"`
}

// DisplayLabel is the label shown in the page header.
func (p *Principal) DisplayLabel() string {
	if p == nil {
		return "User"
	}
	if strings.TrimSpace(p.Name) != "" {
		return p.Name
	}
	if p.Email != "" {
		return p.Email
	}
	return "User"
}

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Session pairs the principal with the bearer token issued for it.
type Session struct {
	Token     string     `json:"token"`
	Principal *Principal `json:"user"`
}
