package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/tokens"
)

const (
	SessionCookie = "session"
	FlashCookie   = "flash"

	contextKey = "session"
	flashTTL   = 5 * time.Minute
)

// Session is the per-request view of who is calling.
type Session struct {
	UserID    uint
	Email     string
	IsAdmin   bool
	CartCount int64
	Flashes   []string

	expiresAt time.Time
}

func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != 0
}

func From(c echo.Context) *Session {
	if s, ok := c.Get(contextKey).(*Session); ok && s != nil {
		return s
	}
	s := &Session{}
	c.Set(contextKey, s)
	return s
}

func Set(c echo.Context, s *Session) {
	c.Set(contextKey, s)
}

type Manager struct {
	Secret []byte
	TTL    time.Duration
	Secure bool
}

func (m *Manager) CreateCookie(name, value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) DeleteCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Load reads the session and pending flashes from the request cookies and
// stores the result on the context. A bad session cookie yields an anonymous
// session and is cleared.
func (m *Manager) Load(c echo.Context) (*Session, error) {
	s := &Session{}
	Set(c, s)

	if ck, err := c.Cookie(FlashCookie); err == nil && ck.Value != "" {
		if fc, err := tokens.FlashClaimsFromToken(ck.Value, m.Secret); err == nil {
			s.Flashes = fc.Messages
		} else {
			c.SetCookie(m.DeleteCookie(FlashCookie))
		}
	}

	ck, err := c.Cookie(SessionCookie)
	if err != nil || ck.Value == "" {
		return s, nil
	}

	claims, err := tokens.SessionClaimsFromToken(ck.Value, m.Secret)
	if err != nil {
		c.SetCookie(m.DeleteCookie(SessionCookie))
		return s, err
	}

	s.UserID, _ = claims.UserID()
	s.Email = claims.Email
	s.IsAdmin = claims.Admin
	if claims.ExpiresAt != nil {
		s.expiresAt = claims.ExpiresAt.Time
	}

	if time.Until(s.expiresAt) < m.TTL/2 {
		if err := m.issue(c, s); err != nil {
			return s, err
		}
	}
	return s, nil
}

func (m *Manager) Login(c echo.Context, userID uint, email string, admin bool) error {
	s := From(c)
	s.UserID = userID
	s.Email = email
	s.IsAdmin = admin
	s.CartCount = 0
	return m.issue(c, s)
}

func (m *Manager) Logout(c echo.Context) {
	s := From(c)
	s.UserID = 0
	s.Email = ""
	s.IsAdmin = false
	s.CartCount = 0
	c.SetCookie(m.DeleteCookie(SessionCookie))
}

func (m *Manager) issue(c echo.Context, s *Session) error {
	exp := time.Now().Add(m.TTL)
	tok, err := tokens.SignSession(m.Secret, s.UserID, s.Email, s.IsAdmin, exp)
	if err != nil {
		return err
	}
	s.expiresAt = exp
	c.SetCookie(m.CreateCookie(SessionCookie, tok, exp))
	return nil
}

// AddFlash queues a message for the next rendered page.
func (m *Manager) AddFlash(c echo.Context, msg string) {
	s := From(c)
	s.Flashes = append(s.Flashes, msg)

	exp := time.Now().Add(flashTTL)
	tok, err := tokens.SignFlash(m.Secret, s.Flashes, exp)
	if err != nil {
		return
	}
	c.SetCookie(m.CreateCookie(FlashCookie, tok, exp))
}

// TakeFlashes returns the pending messages and clears them.
func (m *Manager) TakeFlashes(c echo.Context) []string {
	s := From(c)
	msgs := s.Flashes
	if len(msgs) > 0 {
		s.Flashes = nil
		c.SetCookie(m.DeleteCookie(FlashCookie))
	}
	return msgs
}
