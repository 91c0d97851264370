package browser

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Cookie is one authentication cookie captured from the browser after a
// successful login.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
	Expires  time.Time
}

// Session holds the cookies of an authenticated portal session. It is
// immutable once created, so it can back any number of HTTP clients.
type Session struct {
	cookies []Cookie
}

// NewSession creates a Session from captured cookies.
func NewSession(cookies []Cookie) *Session {
	return &Session{cookies: cookies}
}

// Cookies returns a copy of the session's cookies.
func (s *Session) Cookies() []Cookie {
	out := make([]Cookie, len(s.cookies))
	copy(out, s.cookies)
	return out
}

// Jar builds an http.CookieJar preloaded with the session's cookies, ready
// to plug into an http.Client.
func (s *Session) Jar() (http.CookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	// Group cookies by domain so each SetCookies call scopes correctly.
	byDomain := make(map[string][]*http.Cookie)
	for _, c := range s.cookies {
		byDomain[c.Domain] = append(byDomain[c.Domain], &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
			Expires:  c.Expires,
		})
	}

	for domain, cookies := range byDomain {
		// Chrome reports host-wide cookies with a leading dot.
		u := &url.URL{Scheme: "https", Host: strings.TrimPrefix(domain, "."), Path: "/"}
		jar.SetCookies(u, cookies)
	}

	return jar, nil
}
