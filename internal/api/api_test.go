package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/fbaplan/backend-go/internal/planning"
	"github.com/andresuchdata/fbaplan/backend-go/internal/service"
)

const (
	salesCSV     = "Sku,Quantity,Shipment Date,Ship To State,Fulfillment Channel\nA,10,2024-01-01,KARNATAKA,AFN\nA,20,2024-01-15,GOA,AFN\n"
	inventoryCSV = "Sku,Date,Ending Warehouse Balance\nA,2024-01-15,10\n"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, err := service.NewPlanningService(service.Options{})
	require.NoError(t, err)

	return NewRouter(&Services{
		PlanningService: svc,
		Defaults:        planning.DefaultParams(),
	}, RouterOptions{AllowedOrigins: []string{"http://example.com, http://localhost:5173"}})
}

func multipartBody(t *testing.T, files map[string]string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, content := range files {
		name := field + ".csv"
		part, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func postForm(t *testing.T, router *gin.Engine, path string, files, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, files, fields)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServiceLevels(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/plans/service-levels", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ServiceLevels []service.ServiceLevel `json:"service_levels"`
		Default       int                    `json:"default"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.ServiceLevels, 3)
	assert.Equal(t, 95, resp.Default)
	assert.Equal(t, 1.65, resp.ServiceLevels[1].ZValue)
}

func TestCreatePlan(t *testing.T) {
	router := newTestRouter(t)

	rec := postForm(t, router, "/api/v1/plans",
		map[string]string{"sales": salesCSV, "inventory": inventoryCSV},
		map[string]string{"horizon_days": "60", "service_level": "98%"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report struct {
		Plan []struct {
			SKU                 string  `json:"sku"`
			AvgDailySale        float64 `json:"avg_daily_sale"`
			PlanningHorizonDays int     `json:"planning_horizon_days"`
		} `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Plan, 1)
	assert.Equal(t, "A", report.Plan[0].SKU)
	assert.Equal(t, 2.0, report.Plan[0].AvgDailySale)
	assert.Equal(t, 60, report.Plan[0].PlanningHorizonDays)
}

func TestCreatePlanErrors(t *testing.T) {
	router := newTestRouter(t)

	t.Run("missing mandatory column", func(t *testing.T) {
		rec := postForm(t, router, "/api/v1/plans",
			map[string]string{"sales": "Sku,Shipment Date\nA,2024-01-01\n", "inventory": inventoryCSV}, nil)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "sales", resp["table"])
		assert.Equal(t, "quantity", resp["field"])
	})

	t.Run("unsupported service level", func(t *testing.T) {
		rec := postForm(t, router, "/api/v1/plans",
			map[string]string{"sales": salesCSV, "inventory": inventoryCSV},
			map[string]string{"service_level": "99"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non numeric horizon", func(t *testing.T) {
		rec := postForm(t, router, "/api/v1/plans",
			map[string]string{"sales": salesCSV, "inventory": inventoryCSV},
			map[string]string{"horizon_days": "soon"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no files", func(t *testing.T) {
		rec := postForm(t, router, "/api/v1/plans", nil, map[string]string{"horizon_days": "30"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExportPlan(t *testing.T) {
	router := newTestRouter(t)

	rec := postForm(t, router, "/api/v1/plans/export",
		map[string]string{"sales": salesCSV, "inventory": inventoryCSV}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "_inventory_plan_")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = postForm(t, router, "/api/v1/plans/export?publish=true",
		map[string]string{"sales": salesCSV, "inventory": inventoryCSV}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestImportLookups(t *testing.T) {
	router := newTestRouter(t)

	body := `{"clusters":{"KARNATAKA":"South"},"fulfillment_centers":[{"code":"BLR7","name":"Bengaluru","region":"KARNATAKA"}]}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/lookups", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodPut, "/api/v1/lookups", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, allowAll := normalizeAllowedOrigins([]string{" http://a.com , ,http://b.com", "*"})
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, origins)
	assert.True(t, allowAll)
}
