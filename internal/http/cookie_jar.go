package httpx

import (
	"net/http"

	"github.com/mpo-id/portal/internal/ports"
)

var _ ports.CookieJar = (*requestJar)(nil)

// requestJar is the cookie surface of one request/response pair. Reads see the
// inbound cookies overlaid with anything set during the request; writes are
// buffered until Flush.
type requestJar struct {
	r       *http.Request
	set     map[string]string
	deleted map[string]struct{}
	pending []*http.Cookie
}

func newRequestJar(r *http.Request) *requestJar {
	return &requestJar{r: r, set: map[string]string{}, deleted: map[string]struct{}{}}
}

// Cookie returns the current value of name.
func (j *requestJar) Cookie(name string) (string, bool) {
	if _, gone := j.deleted[name]; gone {
		return "", false
	}
	if v, ok := j.set[name]; ok {
		return v, true
	}
	c, err := j.r.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

// SetCookie queues c for the response.
func (j *requestJar) SetCookie(c *http.Cookie) {
	if c == nil {
		return
	}
	j.pending = append(j.pending, c)
	if c.MaxAge < 0 {
		j.deleted[c.Name] = struct{}{}
		delete(j.set, c.Name)
		return
	}
	delete(j.deleted, c.Name)
	j.set[c.Name] = c.Value
}

// Flush writes queued cookies as Set-Cookie headers. It must run before the
// response status is written.
func (j *requestJar) Flush(w http.ResponseWriter) {
	for _, c := range j.pending {
		http.SetCookie(w, c)
	}
	j.pending = nil
}

// Apply returns r with its Cookie header rewritten to the jar's view so that
// downstream handlers see refreshed or cleared credentials. r is returned
// unchanged when nothing was mutated.
func (j *requestJar) Apply(r *http.Request) *http.Request {
	if len(j.set) == 0 && len(j.deleted) == 0 {
		return r
	}
	out := r.Clone(r.Context())
	out.Header.Del("Cookie")
	for _, c := range r.Cookies() {
		if _, gone := j.deleted[c.Name]; gone {
			continue
		}
		if _, replaced := j.set[c.Name]; replaced {
			continue
		}
		out.AddCookie(c)
	}
	for name, value := range j.set {
		out.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return out
}
