package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestJar_ReadsOverlayInbound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "access", Value: "old"})
	req.AddCookie(&http.Cookie{Name: "refresh", Value: "r1"})
	jar := newRequestJar(req)

	v, ok := jar.Cookie("access")
	require.True(t, ok)
	assert.Equal(t, "old", v)

	jar.SetCookie(&http.Cookie{Name: "access", Value: "new", Path: "/"})
	v, _ = jar.Cookie("access")
	assert.Equal(t, "new", v)

	jar.SetCookie(&http.Cookie{Name: "refresh", Path: "/", MaxAge: -1})
	_, ok = jar.Cookie("refresh")
	assert.False(t, ok)

	_, ok = jar.Cookie("missing")
	assert.False(t, ok)
}

func TestRequestJar_FlushWritesPendingOnce(t *testing.T) {
	jar := newRequestJar(httptest.NewRequest(http.MethodGet, "/", nil))
	jar.SetCookie(&http.Cookie{Name: "a", Value: "1", Path: "/"})
	jar.SetCookie(&http.Cookie{Name: "b", Path: "/", MaxAge: -1})
	jar.SetCookie(nil)

	rec := httptest.NewRecorder()
	jar.Flush(rec)
	assert.Len(t, rec.Result().Cookies(), 2)

	rec2 := httptest.NewRecorder()
	jar.Flush(rec2)
	assert.Empty(t, rec2.Result().Cookies())
}

func TestRequestJar_ApplyMirrorsMutations(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "access", Value: "old"})
	req.AddCookie(&http.Cookie{Name: "refresh", Value: "r1"})
	req.AddCookie(&http.Cookie{Name: "lang", Value: "id"})

	jar := newRequestJar(req)
	assert.Same(t, req, jar.Apply(req), "untouched jar returns the request as is")

	jar.SetCookie(&http.Cookie{Name: "access", Value: "new"})
	jar.SetCookie(&http.Cookie{Name: "refresh", MaxAge: -1})
	out := jar.Apply(req)
	require.NotSame(t, req, out)

	c, err := out.Cookie("access")
	require.NoError(t, err)
	assert.Equal(t, "new", c.Value)
	_, err = out.Cookie("refresh")
	assert.ErrorIs(t, err, http.ErrNoCookie)
	c, err = out.Cookie("lang")
	require.NoError(t, err)
	assert.Equal(t, "id", c.Value)

	old, err := req.Cookie("access")
	require.NoError(t, err)
	assert.Equal(t, "old", old.Value, "original request is not modified")
}
