package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.SimulationComputed(true, false)
	m.SimulationComputed(true, false)
	m.StepChanged(2, 3)
	m.ValidationFailed(1, 4)
	m.SubmissionFinished(true)
	m.SubmissionFinished(false)
	m.DraftSaved()
	m.ObserveRequest("/api/wizard/next", http.MethodPost, http.StatusUnprocessableEntity, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.simulations.WithLabelValues("true", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stepTransitions.WithLabelValues("2", "3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validationFailure.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.draftSaves))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/wizard/next", "POST", "422")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.DraftSaved()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "credit_wizard_wizard_draft_saves_total 1"))
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.DraftSaved()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.draftSaves))
}
