package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Session is the client's authentication state.
//
// IsAuthenticated implies AuthToken is set. UserID may be empty while
// authenticated when the session was restored from a persisted token and
// the identity has not been resolved.
type Session struct {
	UserID          string
	AuthToken       string
	IsAuthenticated bool
}

// HasIdentity reports whether the session carries a resolved user id.
func (s Session) HasIdentity() bool {
	return s.IsAuthenticated && s.UserID != ""
}

// User identifies the account a login was performed for.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// NormalizeID returns the canonical form of an identifier. Every identifier
// crossing into the core goes through here exactly once. Integral numbers
// in any spelling ("07", "7.0", "7e0") become their plain decimal form;
// anything else is only trimmed.
func NormalizeID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" {
		return ""
	}
	if d, err := decimal.NewFromString(id); err == nil && d.IsInteger() {
		return d.Truncate(0).String()
	}
	return id
}
