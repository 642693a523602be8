package storage

import (
	"net/http"
	"sync"
	"time"

	"agency/config"
	"agency/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// CookieOptions are the attributes written on every cookie.
type CookieOptions struct {
	Domain   string
	Secure   bool
	MaxAge   time.Duration
	HTTPOnly map[string]bool // per-key HttpOnly flag
}

// CookieOptionsFromConfig builds options from config. The auth token cookie is
// HttpOnly; the theme cookie stays readable by page scripts.
func CookieOptionsFromConfig(cfg config.CookieConfig) CookieOptions {
	return CookieOptions{
		Domain: cfg.Domain,
		Secure: cfg.Secure,
		MaxAge: cfg.MaxAge,
		HTTPOnly: map[string]bool{
			cfg.AuthToken: true,
		},
	}
}

// Cookie is a Storage over the cookie jar of a single request. Writes are
// emitted as Set-Cookie headers and are visible to later reads of the same
// request.
type Cookie struct {
	c    echo.Context
	opts CookieOptions

	mu      sync.Mutex
	pending map[string]*string // nil value marks a removal
}

var _ service.Storage = (*Cookie)(nil)

// NewCookie binds a cookie storage to the request in c.
func NewCookie(c echo.Context, opts CookieOptions) *Cookie {
	return &Cookie{c: c, opts: opts, pending: make(map[string]*string)}
}

func (s *Cookie) Get(key string) (string, bool) {
	s.mu.Lock()
	if v, ok := s.pending[key]; ok {
		s.mu.Unlock()
		if v == nil {
			return "", false
		}

		return *v, true
	}
	s.mu.Unlock()

	cookie, err := s.c.Cookie(key)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	return cookie.Value, true
}

func (s *Cookie) Set(key, value string) error {
	cookie := s.newCookie(key, value)
	if s.opts.MaxAge > 0 {
		cookie.MaxAge = int(s.opts.MaxAge.Seconds())
		cookie.Expires = time.Now().Add(s.opts.MaxAge)
	}
	s.c.SetCookie(cookie)

	s.mu.Lock()
	s.pending[key] = &value
	s.mu.Unlock()

	return nil
}

func (s *Cookie) Remove(key string) error {
	cookie := s.newCookie(key, "")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	s.c.SetCookie(cookie)

	s.mu.Lock()
	s.pending[key] = nil
	s.mu.Unlock()

	return nil
}

func (s *Cookie) newCookie(key, value string) *http.Cookie {
	return &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		Domain:   s.opts.Domain,
		Secure:   s.opts.Secure,
		HttpOnly: s.opts.HTTPOnly[key],
		SameSite: http.SameSiteLaxMode,
	}
}
