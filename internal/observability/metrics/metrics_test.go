package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatus() int { return int(e) }

func TestRecorder_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.AuthzDecision("admin_protected", "redirect_login")
	r.AuthzDecision("admin_protected", "redirect_login")
	r.Login(LoginNoAccess)
	r.FailClosed(StageRole)

	assert.InDelta(t, 2, testutil.ToFloat64(r.authzDecisions.WithLabelValues("admin_protected", "redirect_login")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.logins.WithLabelValues(LoginNoAccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.failClosed.WithLabelValues(StageRole)), 0)
}

func TestRecorder_IdentityCallAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)
	r.IdentityCall("get_user", 20*time.Millisecond, nil)
	r.IdentityCall("get_user", time.Second, context.DeadlineExceeded)
	r.HTTPRequest(http.MethodGet, "", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `portal_identity_call_duration_seconds_count{error_class="timeout",op="get_user",result="error"} 1`)
	assert.Contains(t, body, `route="unmatched"`)
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.AuthzDecision("public", "allow")
	r.Login(LoginSuccess)
	r.FailClosed(StageSession)
	r.IdentityCall("x", time.Second, nil)
	r.HTTPRequest("GET", "/", 200, time.Second)
}

func TestClassify(t *testing.T) {
	assert.Empty(t, Classify(nil))
	assert.Equal(t, "timeout", Classify(fmt.Errorf("wrap: %w", context.DeadlineExceeded)))
	assert.Equal(t, "canceled", Classify(context.Canceled))
	assert.Equal(t, "upstream_5xx", Classify(fmt.Errorf("call: %w", statusErr(503))))
	assert.Equal(t, "upstream_4xx", Classify(statusErr(401)))
	assert.Equal(t, "other", Classify(errors.New("boom")))
}
