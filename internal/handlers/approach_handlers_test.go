package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"neo-platform/internal/models"
	"neo-platform/internal/repository"
	"neo-platform/pkg/logging"
	"neo-platform/pkg/metrics"
)

func ptr[T any](v T) *T { return &v }

// fakeReader serves a fixed two-object catalog and records the last filter
type fakeReader struct {
	catalog    *models.Catalog
	lastFilter repository.ApproachFilter
	err        error
	healthErr  error
}

func newFakeReader(t *testing.T) *fakeReader {
	t.Helper()
	eros, _ := models.RestoreNearEarthObject("433", ptr("Eros"), ptr(16.84), false)
	unnamed, _ := models.RestoreNearEarthObject("2020 AB", nil, nil, true)
	a1, _ := models.RestoreCloseApproach("433", time.Date(1900, 12, 27, 1, 30, 0, 0, time.UTC), ptr(0.15), ptr(7.5))
	a2, _ := models.RestoreCloseApproach("2020 AB", time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC), ptr(0.05), nil)

	catalog, err := models.NewCatalog([]*models.NearEarthObject{eros, unnamed}, []*models.CloseApproach{a1, a2})
	if err != nil {
		t.Fatal(err)
	}
	return &fakeReader{catalog: catalog}
}

func (f *fakeReader) ListApproaches(_ context.Context, filter repository.ApproachFilter) (*repository.ApproachPage, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	approaches := f.catalog.Approaches()
	return &repository.ApproachPage{Catalog: f.catalog, Approaches: approaches, Total: len(approaches)}, nil
}

func (f *fakeReader) GetNEO(_ context.Context, designation string) (*repository.NEOView, error) {
	if f.err != nil {
		return nil, f.err
	}
	neo, ok := f.catalog.NEOByDesignation(designation)
	if !ok {
		return nil, &repository.NotFoundError{Resource: "neo", ID: designation}
	}
	return &repository.NEOView{Catalog: f.catalog, NEO: neo, Approaches: f.catalog.ApproachesOf(neo)}, nil
}

func (f *fakeReader) HealthCheck(context.Context) error { return f.healthErr }

func newTestRouter(reader ApproachReader) *mux.Router {
	collector := metrics.NewCollector("neo_test", prometheus.NewRegistry())
	h := NewApproachHandler(reader, logging.NewNopLogger(), collector, 0, 0)
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	return router
}

func serve(router http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGetApproaches(t *testing.T) {
	reader := newFakeReader(t)
	rec := serve(newTestRouter(reader), "/api/approaches?hazardous=true&distance_max=0.1&page=2&limit=10")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	f := reader.lastFilter
	if f.Hazardous == nil || !*f.Hazardous || f.DistanceMax == nil || *f.DistanceMax != 0.1 {
		t.Errorf("criteria not forwarded: %+v", f.Criteria)
	}
	if f.Limit != 10 || f.Offset != 10 {
		t.Errorf("pagination = limit %d offset %d, want 10/10", f.Limit, f.Offset)
	}

	var body struct {
		Data  []map[string]interface{} `json:"data"`
		Total int                      `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Total != 2 || len(body.Data) != 2 {
		t.Fatalf("body = %+v", body)
	}
	if body.Data[0]["datetime_utc"] != "1900-12-27 01:30" {
		t.Errorf("first approach = %v", body.Data[0])
	}
	if body.Data[1]["velocity_km_s"] != nil {
		t.Errorf("unknown velocity = %v, want null", body.Data[1]["velocity_km_s"])
	}
}

func TestGetApproaches_DefaultLimit(t *testing.T) {
	reader := newFakeReader(t)
	serve(newTestRouter(reader), "/api/approaches?limit=100000")

	if reader.lastFilter.Limit != 100 || reader.lastFilter.Offset != 0 {
		t.Errorf("filter = %+v, want default limit 100", reader.lastFilter)
	}
}

func TestGetApproaches_LargePage(t *testing.T) {
	reader := newFakeReader(t)
	rec := serve(newTestRouter(reader), "/api/approaches?page=1000000&limit=10")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if reader.lastFilter.Offset != 9999990 {
		t.Errorf("offset = %d, want 9999990", reader.lastFilter.Offset)
	}
}

func TestErrorMetrics_UseRouteTemplate(t *testing.T) {
	collector := metrics.NewCollector("neo_test", prometheus.NewRegistry())
	h := NewApproachHandler(newFakeReader(t), logging.NewNopLogger(), collector, 0, 0)
	router := NewRouter(h, RouterOptions{AllowedOrigins: []string{"*"}})

	for i := 0; i < 50; i++ {
		if rec := serve(router, fmt.Sprintf("/api/neos/missing-%d", i)); rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	}

	if n := testutil.CollectAndCount(collector.APIRequestsTotal); n != 1 {
		t.Errorf("api_requests_total has %d series, want 1", n)
	}
	if got := testutil.ToFloat64(collector.APIRequestsTotal.WithLabelValues(endpointNEO, "GET", "404")); got != 50 {
		t.Errorf("404 count for %s = %v, want 50", endpointNEO, got)
	}
}

func TestGetApproaches_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		want   int
	}{
		{"bad date", "/api/approaches?date=yesterday", nil, http.StatusBadRequest},
		{"bad hazard", "/api/approaches?hazardous=sometimes", nil, http.StatusBadRequest},
		{"page overflows offset", "/api/approaches?page=9223372036854775807&limit=10", nil, http.StatusBadRequest},
		{"store failure", "/api/approaches", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := newFakeReader(t)
			reader.err = tt.err
			rec := serve(newTestRouter(reader), tt.target)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Code != tt.want {
				t.Errorf("error body = %s", rec.Body.String())
			}
		})
	}
}

func TestGetNEO(t *testing.T) {
	router := newTestRouter(newFakeReader(t))

	rec := serve(router, "/api/neos/433")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp NEOResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Fullname != "433 (Eros)" || len(resp.Approaches) != 1 || resp.Approaches[0].NEO.Name != "Eros" {
		t.Errorf("response = %+v", resp)
	}

	// designations may contain spaces
	rec = serve(router, "/api/neos/2020%20AB")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"diameter_km":null`) {
		t.Errorf("unnamed object: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = serve(router, "/api/neos/1036")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing object status = %d, want 404", rec.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	reader := newFakeReader(t)
	router := newTestRouter(reader)

	if rec := serve(router, "/health"); rec.Code != http.StatusOK {
		t.Errorf("healthy status = %d", rec.Code)
	}

	reader.healthErr = errors.New("database down")
	if rec := serve(router, "/health"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d, want 503", rec.Code)
	}
}

func TestOpenAPISpec(t *testing.T) {
	rec := serve(newTestRouter(newFakeReader(t)), "/api/docs/openapi.json")

	var doc map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	paths := doc["paths"].(map[string]interface{})
	for _, p := range []string{"/api/approaches", "/api/neos/{designation}", "/health"} {
		if _, ok := paths[p]; !ok {
			t.Errorf("document missing path %s", p)
		}
	}
}
