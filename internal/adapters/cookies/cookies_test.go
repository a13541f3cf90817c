package cookies

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_SetAndClear(t *testing.T) {
	jar := NewMapJar(map[string]string{"sb-refresh-token": "r1"})
	opts := Options{Secure: true, Domain: "mpo.example.org"}

	opts.Set(jar, "sb-access-token", "a1", time.Hour)
	c := jar.Last("sb-access-token")
	require.NotNil(t, c)
	assert.Equal(t, "a1", c.Value)
	assert.Equal(t, 3600, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, "mpo.example.org", c.Domain)

	opts.Clear(jar, "sb-access-token", "sb-refresh-token")
	_, ok := jar.Cookie("sb-access-token")
	assert.False(t, ok)
	_, ok = jar.Cookie("sb-refresh-token")
	assert.False(t, ok)
	assert.Equal(t, -1, jar.Last("sb-refresh-token").MaxAge)
	assert.Len(t, jar.Written, 3)
}
