package dashboard

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/odhe_tea_go/internal/msp"
)

func setupRouter(t *testing.T, plant msp.Plant) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r, err := NewRouter(Options{
		Plant:        plant,
		Sliders:      msp.ReferenceSliders(),
		SweepPoints:  msp.DefaultSweepPoints,
		AllowOrigins: []string{"http://localhost:8501"},
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Registry:     prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	r := setupRouter(t, msp.ReferencePlant())
	w := get(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestIndexPage(t *testing.T) {
	w := get(setupRouter(t, msp.ReferencePlant()), "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Minimum Selling Price")
	assert.Contains(t, w.Body.String(), `" per ton ethylene"`)
	assert.Contains(t, w.Body.String(), "maximumFractionDigits: 2")
}

func TestSlidersEndpoint(t *testing.T) {
	w := get(setupRouter(t, msp.ReferencePlant()), "/api/sliders")
	require.Equal(t, http.StatusOK, w.Code)

	var got []msp.Slider
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, msp.ReferenceSliders().List(), got)
}

func TestMSPEndpoint(t *testing.T) {
	r := setupRouter(t, msp.ReferencePlant())

	tests := []struct {
		name  string
		query string
		want  msp.Prices
	}{
		{"defaults", "", msp.Prices{Ethane: 1000, Electricity: 0.07, Steam: 15, Refrigeration: 0.05}},
		{"explicit", "?ethane=1200&electricity=0.09&steam=20&refrigeration=0.03", msp.Prices{Ethane: 1200, Electricity: 0.09, Steam: 20, Refrigeration: 0.03}},
		{"snapped and clamped", "?ethane=1040&electricity=0.5", msp.Prices{Ethane: 1050, Electricity: 0.1, Steam: 15, Refrigeration: 0.05}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/api/msp"+tt.query)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var res msp.Result
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			assert.Equal(t, tt.want, res.Prices)

			want, err := msp.Compute(msp.ReferencePlant(), tt.want)
			require.NoError(t, err)
			assert.InDelta(t, want.MSP, res.MSP, 1e-9)
		})
	}
}

func TestMSPEndpoint_ReferenceValue(t *testing.T) {
	w := get(setupRouter(t, msp.ReferencePlant()), "/api/msp")
	var res msp.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.InDelta(t, 2273.254800013592, res.MSP, 1e-9)
}

func TestMSPEndpoint_Errors(t *testing.T) {
	w := get(setupRouter(t, msp.ReferencePlant()), "/api/msp?ethane=cheap")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ethane")

	plant := msp.ReferencePlant()
	plant.ProductionRate = 0
	r := setupRouter(t, plant)
	for _, path := range []string{"/api/msp", "/api/msp/sweep", "/api/msp/sweep.png", "/api/msp/report.pdf"} {
		w := get(r, path)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, path)
		assert.Contains(t, w.Body.String(), "production", path)
	}
}

func TestSweepEndpoints(t *testing.T) {
	r := setupRouter(t, msp.ReferencePlant())

	w := get(r, "/api/msp/sweep")
	require.Equal(t, http.StatusOK, w.Code)
	var points []msp.SweepPoint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &points))
	require.Len(t, points, msp.DefaultSweepPoints)
	assert.Equal(t, 800.0, points[0].EthanePrice)
	assert.Equal(t, 1300.0, points[5].EthanePrice)

	w = get(r, "/api/msp/sweep.png?steam=20")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = get(r, "/api/msp/report.pdf")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestMetricsEndpoint(t *testing.T) {
	r := setupRouter(t, msp.ReferencePlant())
	get(r, "/api/msp")
	get(r, "/api/msp/sweep")

	w := get(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "odhe_msp_computations_total 7")
	assert.Contains(t, body, `odhe_dashboard_requests_total{code="200",route="/api/msp"} 1`)
	assert.True(t, strings.Contains(body, "odhe_msp_last_usd_per_tonne"))
}

func TestCORS(t *testing.T) {
	r := setupRouter(t, msp.ReferencePlant())
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/sliders", nil)
	req.Header.Set("Origin", "http://localhost:8501")
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:8501", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewRouter_RejectsInvalidSliders(t *testing.T) {
	sliders := msp.ReferenceSliders()
	sliders.Steam.Step = 0
	_, err := NewRouter(Options{Plant: msp.ReferencePlant(), Sliders: sliders})
	assert.ErrorIs(t, err, msp.ErrInvalidSlider)
}
