package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSignup_CountsPartyMembers(t *testing.T) {
	before := testutil.ToFloat64(guestsAdmitted)
	rejected := testutil.ToFloat64(signups.WithLabelValues("full"))

	Signup("admitted", 3)
	Signup("full", 2)

	assert.Equal(t, before+3, testutil.ToFloat64(guestsAdmitted))
	assert.Equal(t, rejected+1, testutil.ToFloat64(signups.WithLabelValues("full")))
}

func TestExportAndLoginLabels(t *testing.T) {
	full := testutil.ToFloat64(exports.WithLabelValues("full"))
	fresh := testutil.ToFloat64(exports.WithLabelValues("new"))
	failed := testutil.ToFloat64(logins.WithLabelValues("failure"))

	Export(false)
	Export(true)
	Login(false)

	assert.Equal(t, full+1, testutil.ToFloat64(exports.WithLabelValues("full")))
	assert.Equal(t, fresh+1, testutil.ToFloat64(exports.WithLabelValues("new")))
	assert.Equal(t, failed+1, testutil.ToFloat64(logins.WithLabelValues("failure")))
}

func TestHandler_ExposesCounters(t *testing.T) {
	GigsCreated("batch", 2)
	ObserveRequest("GET", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `guestlist_gigs_created_total{source="batch"}`)
	assert.Contains(t, rec.Body.String(), "guestlist_http_request_duration_seconds")
}
