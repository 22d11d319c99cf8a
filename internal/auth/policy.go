package auth

import "strings"

// NormalizeEmail lowercases and trims an address. Every store and comparison
// in the system uses this form; raw user input never reaches a query.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Policy decides whether an email holds admin capability. Sessions snapshot
// the answer at creation time; the policy is consulted again only when a new
// session is created.
type Policy interface {
	IsAdmin(email string) bool
}

// AdminEmailPolicy grants admin to the single configured address,
// case-insensitively. An empty configured address grants admin to no one.
type AdminEmailPolicy struct {
	admin string
}

func NewAdminEmailPolicy(adminEmail string) *AdminEmailPolicy {
	return &AdminEmailPolicy{admin: NormalizeEmail(adminEmail)}
}

func (p *AdminEmailPolicy) IsAdmin(email string) bool {
	if p.admin == "" {
		return false
	}
	return NormalizeEmail(email) == p.admin
}
