package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	CookieName    = "token"
	DefaultMaxAge = 7 * 24 * time.Hour
)

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	// HashKey, when set, signs the cookie value. Unsigned values are used verbatim.
	HashKey []byte
	MaxAge  time.Duration
	Secure  bool
}

// Cookies creates per-request cookie stores.
type Cookies struct {
	maxAge time.Duration
	secure bool
	codec  *securecookie.SecureCookie
}

func NewCookies(cfg CookieConfig) *Cookies {
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	c := &Cookies{maxAge: maxAge, secure: cfg.Secure}
	if len(cfg.HashKey) > 0 {
		c.codec = securecookie.New(cfg.HashKey, nil).MaxAge(int(maxAge.Seconds()))
	}
	return c
}

// For binds a Store to one request/response pair.
func (c *Cookies) For(w http.ResponseWriter, r *http.Request) Store {
	cs := &CookieStore{cookies: c, w: w}
	if r != nil {
		if ck, err := r.Cookie(CookieName); err == nil {
			cs.token = c.decode(ck.Value)
		}
	}
	return cs
}

// Read returns the token carried by r, if any.
func (c *Cookies) Read(r *http.Request) (string, bool) {
	return c.For(nil, r).Token()
}

func (c *Cookies) decode(value string) string {
	if value == "" {
		return ""
	}
	if c.codec == nil {
		return value
	}
	var token string
	if err := c.codec.Decode(CookieName, value, &token); err != nil {
		return ""
	}
	return token
}

func (c *Cookies) encode(token string) (string, error) {
	if c.codec == nil {
		return token, nil
	}
	return c.codec.Encode(CookieName, token)
}

func (c *Cookies) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// CookieStore is a Store bound to a single HTTP exchange.
type CookieStore struct {
	cookies *Cookies
	w       http.ResponseWriter
	token   string
}

func (s *CookieStore) Token() (string, bool) {
	return s.token, s.token != ""
}

func (s *CookieStore) Save(token string) error {
	if s.w == nil {
		return fmt.Errorf("session cookie store is read-only")
	}
	value, err := s.cookies.encode(token)
	if err != nil {
		return fmt.Errorf("failed to encode session cookie: %w", err)
	}
	http.SetCookie(s.w, s.cookies.cookie(value, int(s.cookies.maxAge.Seconds())))
	s.token = token
	return nil
}

func (s *CookieStore) Clear() error {
	if s.w == nil {
		return fmt.Errorf("session cookie store is read-only")
	}
	http.SetCookie(s.w, s.cookies.cookie("", -1))
	s.token = ""
	return nil
}
