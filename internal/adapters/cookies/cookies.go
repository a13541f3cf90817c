// Package cookies builds the credential cookies written by identity adapters.
package cookies

import (
	"net/http"
	"time"

	"github.com/mpo-id/portal/internal/ports"
)

// Options are the attributes shared by every credential cookie.
type Options struct {
	Secure bool
	Domain string
}

// Set writes an HttpOnly, SameSite=Lax cookie valid for maxAge.
func (o Options) Set(jar ports.CookieJar, name, value string, maxAge time.Duration) {
	jar.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   o.Domain,
		MaxAge:   int(maxAge / time.Second),
		Expires:  time.Now().Add(maxAge),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the named cookies.
func (o Options) Clear(jar ports.CookieJar, names ...string) {
	for _, name := range names {
		jar.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   o.Domain,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Secure:   o.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// MapJar is an in-memory CookieJar. Adapters and tests use it where no HTTP exchange exists.
type MapJar struct {
	values  map[string]string
	Written []*http.Cookie
}

// NewMapJar returns a jar seeded with name/value pairs.
func NewMapJar(seed map[string]string) *MapJar {
	j := &MapJar{values: make(map[string]string, len(seed))}
	for k, v := range seed {
		j.values[k] = v
	}
	return j
}

// Cookie returns the current value of name.
func (j *MapJar) Cookie(name string) (string, bool) {
	v, ok := j.values[name]
	return v, ok
}

// SetCookie records c and applies it to the current values.
func (j *MapJar) SetCookie(c *http.Cookie) {
	j.Written = append(j.Written, c)
	if c.MaxAge < 0 {
		delete(j.values, c.Name)
		return
	}
	j.values[c.Name] = c.Value
}

// Last returns the most recent cookie written under name, or nil.
func (j *MapJar) Last(name string) *http.Cookie {
	for i := len(j.Written) - 1; i >= 0; i-- {
		if j.Written[i].Name == name {
			return j.Written[i]
		}
	}
	return nil
}
