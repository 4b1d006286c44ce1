package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"corridor_dispatch/internal/auth"
	"corridor_dispatch/internal/models"
	"corridor_dispatch/internal/sim"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type zeroSource struct{}

func (zeroSource) Intn(int) int { return 0 }

func newTestServer(t *testing.T, secret string) (*sim.Engine, http.Handler) {
	t.Helper()
	n := 0
	engine := sim.NewEngine(sim.Options{
		Rand: zeroSource{},
		Now:  func() time.Time { return time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
	t.Cleanup(engine.StopSimulation)
	return engine, New(engine, auth.New(secret))
}

func request(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t, "")
	rr := request(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestStateSnapshot(t *testing.T) {
	_, h := newTestServer(t, "")
	rr := request(t, h, http.MethodGet, "/state", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	st := decode[models.SimState](t, rr)
	assert.Len(t, st.Trains, 12)
	assert.Equal(t, models.ModePaused, st.Mode)
	assert.Equal(t, 0, st.Tick)
	assert.NotEmpty(t, st.Recommendations)
	assert.Equal(t, models.DefaultPriorityWeights(), st.Weights)
	for _, tv := range st.Trains {
		assert.NotEmpty(t, tv.Station, tv.Number)
	}
}

func TestGetTrain(t *testing.T) {
	_, h := newTestServer(t, "")

	rr := request(t, h, http.MethodGet, "/trains/12928", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	tv := decode[models.TrainView](t, rr)
	assert.Equal(t, "12928", tv.Number)

	rr = request(t, h, http.MethodGet, "/trains/00000", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReadOnlyListings(t *testing.T) {
	_, h := newTestServer(t, "")
	for _, path := range []string{"/trains", "/recommendations", "/events", "/metrics", "/weights", "/scenarios"} {
		rr := request(t, h, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"), path)
	}
}

func TestTickAdvances(t *testing.T) {
	_, h := newTestServer(t, "")
	rr := request(t, h, http.MethodPost, "/tick", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decode[models.SimState](t, rr).Tick)
}

func TestSimControls(t *testing.T) {
	_, h := newTestServer(t, "")

	rr := request(t, h, http.MethodPost, "/sim/start", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.ModeRunning, decode[models.SimState](t, rr).Mode)

	rr = request(t, h, http.MethodPost, "/sim/toggle", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.ModePaused, decode[models.SimState](t, rr).Mode)

	request(t, h, http.MethodPost, "/tick", "", nil)
	rr = request(t, h, http.MethodPost, "/sim/reset", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	st := decode[models.SimState](t, rr)
	assert.Equal(t, 0, st.Tick)
	assert.Equal(t, models.ModePaused, st.Mode)

	rr = request(t, h, http.MethodPost, "/sim/pause", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAcceptRecommendation(t *testing.T) {
	engine, h := newTestServer(t, "")
	rec := engine.Recommendations()[0]

	rr := request(t, h, http.MethodPost, "/recommendations/"+rec.ID+"/accept", "", map[string]string{"X-Operator": "desk-2"})
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[decisionResponse](t, rr)
	assert.Equal(t, rec.ID, resp.Recommendation.ID)
	for _, r := range resp.State.Recommendations {
		assert.NotEqual(t, rec.ID, r.ID)
	}

	tv, ok := engine.TrainByNumber(rec.TrainNumber)
	require.True(t, ok)
	assert.Equal(t, models.StatusHalted, tv.Status)
	assert.Contains(t, engine.EventLog()[0].Message, "accepted by desk-2")
}

func TestAcceptUnknownRecommendation(t *testing.T) {
	engine, h := newTestServer(t, "")
	before := engine.State()

	rr := request(t, h, http.MethodPost, "/recommendations/nope/accept", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "recommendation not found")
	assert.Equal(t, before.Trains, engine.State().Trains)
}

func TestOverrideRecommendation(t *testing.T) {
	engine, h := newTestServer(t, "")
	rec := engine.Recommendations()[0]
	before := engine.Trains()

	rr := request(t, h, http.MethodPost, "/recommendations/"+rec.ID+"/override", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, before, engine.Trains())

	rr = request(t, h, http.MethodPost, "/recommendations/"+rec.ID+"/override", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSetWeights(t *testing.T) {
	engine, h := newTestServer(t, "")

	rr := request(t, h, http.MethodPut, "/weights", `{"delay_sensitivity": 1.0}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	w := decode[models.PriorityWeights](t, rr)
	assert.Equal(t, 1.0, w.DelaySensitivity)
	assert.Equal(t, 3.0, w.Express)
	assert.Equal(t, w, engine.Weights())
}

func TestSetWeightsRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"non-numeric": `{"express": "fast"}`,
		"negative":    `{"freight": -1}`,
		"unknown":     `{"turbo": 2}`,
		"malformed":   `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			engine, h := newTestServer(t, "")
			rr := request(t, h, http.MethodPut, "/weights", body, nil)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, models.DefaultPriorityWeights(), engine.Weights())
		})
	}
}

func TestApplyScenario(t *testing.T) {
	engine, h := newTestServer(t, "")

	rr := request(t, h, http.MethodPost, "/scenarios/heavy-fog", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, engine.EventLog()[0].Message, "heavy fog")

	rr = request(t, h, http.MethodPost, "/scenarios/volcano", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMutatingRoutesRequireTokenWhenEnabled(t *testing.T) {
	const secret = "corridor-secret"
	engine, h := newTestServer(t, secret)

	rr := request(t, h, http.MethodGet, "/state", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = request(t, h, http.MethodPost, "/tick", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, 0, engine.State().Tick)

	viewer, err := auth.Issue(secret, "viewer-1", []string{"viewer"}, time.Hour)
	require.NoError(t, err)
	rr = request(t, h, http.MethodPost, "/tick", "", map[string]string{"Authorization": "Bearer " + viewer})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	token, err := auth.Issue(secret, "controller-7", []string{auth.DispatcherRole}, time.Hour)
	require.NoError(t, err)
	rec := engine.Recommendations()[0]
	rr = request(t, h, http.MethodPost, "/recommendations/"+rec.ID+"/accept", "", map[string]string{
		"Authorization": "Bearer " + token,
		"X-Operator":    "spoofed",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, engine.EventLog()[0].Message, "accepted by controller-7")
}

func TestCORSPreflight(t *testing.T) {
	_, h := newTestServer(t, "secret")
	rr := request(t, h, http.MethodOptions, "/tick", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
