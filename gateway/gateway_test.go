package gateway

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/jptax-sim/taxcalc"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	NewRouter().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCalculate(t *testing.T) {
	w := do(t, http.MethodGet, "/api/v1/calculate?income=5000000&dependents=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got taxcalc.CalculationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	want, err := taxcalc.Calculate(5000000, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Contains(t, w.Body.String(), `"taxableIncome":4240000`)
}

func TestCalculateZeroIncome(t *testing.T) {
	w := do(t, http.MethodGet, "/api/v1/calculate?income=0", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got taxcalc.CalculationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 0.0, got.TotalDeductions)
	assert.Equal(t, 0.0, got.NetIncome)
}

func TestCalculateBadQuery(t *testing.T) {
	for _, target := range []string{
		"/api/v1/calculate",
		"/api/v1/calculate?income=abc",
		"/api/v1/calculate?income=100&dependents=1.5",
	} {
		w := do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestCalculateBatch(t *testing.T) {
	body := []byte(`{"inputs":[{"income":1800000},{"income":5000000,"deductions":1000000}]}`)
	w := do(t, http.MethodPost, "/api/v1/calculate/batch", body)
	require.Equal(t, http.StatusOK, w.Code)

	var got batchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Results, 2)
	assert.Equal(t, 90000.0, got.Results[0].NationalTax)
	assert.Equal(t, 4000000.0, got.Results[1].TaxableIncome)
	assert.Equal(t, 2, got.Summary.Count)
	assert.Equal(t, 6800000.0, got.Summary.Income)

	w = do(t, http.MethodPost, "/api/v1/calculate/batch", []byte(`{"inputs":`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalculateNonFiniteQuery(t *testing.T) {
	for _, target := range []string{
		"/api/v1/calculate?income=Inf",
		"/api/v1/calculate?income=-Inf",
		"/api/v1/calculate?income=NaN",
		"/api/v1/calculate?income=1000000&deductions=-Inf",
	} {
		w := do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Contains(t, w.Body.String(), `"error"`, target)
	}
}

func TestCalculateOverflow(t *testing.T) {
	w := do(t, http.MethodGet, "/api/v1/calculate?income=1e308&deductions=-1e308", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"result is not finite"}`, w.Body.String())

	body := []byte(`{"inputs":[{"income":1800000},{"income":1e308,"deductions":-1e308}]}`)
	w = do(t, http.MethodPost, "/api/v1/calculate/batch", body)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"input 1: result is not finite"}`, w.Body.String())

	// 单条结果有限，汇总相加后溢出
	body = []byte(`{"inputs":[{"income":1e308},{"income":1e308}]}`)
	w = do(t, http.MethodPost, "/api/v1/calculate/batch", body)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"summary: result is not finite"}`, w.Body.String())
}
