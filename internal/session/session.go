package session

import (
	"time"

	commonerrors "github.com/vector-portal/backend/internal/common/errors"
)

// Principal is the capability a request context carries: whether it is
// authenticated and, if so, which user it is bound to. An anonymous context
// and an established session both satisfy it.
type Principal interface {
	IsAuthenticated() bool
	Identity() string
}

// Session is one authenticated client-server binding, keyed by an opaque
// token. The UserID is a weak reference; authorization checks resolve it
// through the user repository, not from the session itself.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) IsAuthenticated() bool { return true }

func (s Session) Identity() string { return s.UserID }

// Anonymous is the state every client context starts in and returns to
// after logout or expiry.
type Anonymous struct{}

func (Anonymous) IsAuthenticated() bool { return false }

func (Anonymous) Identity() string { return "" }

var ErrNotAuthenticated = commonerrors.NewDomainError(
	"NOT_AUTHENTICATED",
	commonerrors.CategoryUnauthorized,
	401,
	"authentication required",
)
