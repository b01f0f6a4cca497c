package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/mrops-br/product-catalog-api/internal/app/dto"
	"github.com/mrops-br/product-catalog-api/internal/app/service"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/config"
	apihttp "github.com/mrops-br/product-catalog-api/internal/infrastructure/http"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/telemetry"
)

func setupServer(c *qt.C) http.Handler {
	telem, err := telemetry.NewNoOpTelemetry(&config.OTLPConfig{ServiceName: "test", LogLevel: slog.LevelError})
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { _ = telem.Shutdown(context.Background()) })

	tracer := telem.TracerProvider.Tracer("test")
	repo := memory.NewProductRepository(tracer, telem.Logger)
	svc := service.NewProductService(repo, tracer, telem.MeterProvider.Meter("test"), telem.Logger)
	h := handler.NewProductHandler(svc, telem.Logger)

	srv := apihttp.NewServer(&config.ServerConfig{Host: "127.0.0.1", Port: "0", DurationMsMetric: true}, h, telem)
	return srv.Handler()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](c *qt.C, rr *httptest.ResponseRecorder) T {
	var v T
	c.Assert(json.Unmarshal(rr.Body.Bytes(), &v), qt.IsNil, qt.Commentf("body: %s", rr.Body.String()))
	return v
}

func TestProductLifecycle(t *testing.T) {
	c := qt.New(t)
	h := setupServer(c)

	rr := do(h, http.MethodPost, "/api/v1/products/", `{"id":"ignored","name":"Name1","code":"Code1","description":"Desc1","price":100}`)
	c.Assert(rr.Code, qt.Equals, http.StatusCreated)
	created := decode[dto.ProductResponse](c, rr)
	c.Assert(created.ID, qt.Not(qt.Equals), "")
	c.Assert(created.ID, qt.Not(qt.Equals), "ignored")
	c.Assert(created.Name, qt.Equals, "Name1")

	rr = do(h, http.MethodGet, "/api/v1/products/"+created.ID, "")
	c.Assert(rr.Code, qt.Equals, http.StatusOK)
	c.Assert(decode[dto.ProductResponse](c, rr), qt.DeepEquals, created)

	rr = do(h, http.MethodPut, "/api/v1/products/"+created.ID, `{"name":"Renamed","price":5}`)
	c.Assert(rr.Code, qt.Equals, http.StatusOK)
	c.Assert(decode[dto.ProductResponse](c, rr), qt.DeepEquals, dto.ProductResponse{ID: created.ID, Name: "Renamed", Price: 5})

	rr = do(h, http.MethodPatch, "/api/v1/products/"+created.ID, `{"code":"Code9"}`)
	c.Assert(rr.Code, qt.Equals, http.StatusOK)
	c.Assert(decode[dto.ProductResponse](c, rr), qt.DeepEquals, dto.ProductResponse{ID: created.ID, Name: "Renamed", Code: "Code9", Price: 5})

	rr = do(h, http.MethodDelete, "/api/v1/products/"+created.ID, "")
	c.Assert(rr.Code, qt.Equals, http.StatusNoContent)
	c.Assert(rr.Body.Len(), qt.Equals, 0)

	rr = do(h, http.MethodDelete, "/api/v1/products/"+created.ID, "")
	c.Assert(rr.Code, qt.Equals, http.StatusNoContent)

	rr = do(h, http.MethodGet, "/api/v1/products/"+created.ID, "")
	c.Assert(rr.Code, qt.Equals, http.StatusNotFound)
}

func TestListProducts(t *testing.T) {
	c := qt.New(t)
	h := setupServer(c)

	rr := do(h, http.MethodGet, "/api/v1/products/", "")
	c.Assert(rr.Code, qt.Equals, http.StatusOK)
	c.Assert(strings.TrimSpace(rr.Body.String()), qt.Equals, "[]")

	for _, body := range []string{
		`{"name":"Name1","code":"Code1","description":"Desc1","price":100}`,
		`{"name":"Name2","code":"Code2","description":"Desc2","price":200}`,
		`{"name":"Name3","code":"Code3","description":"Desc3","price":300}`,
	} {
		c.Assert(do(h, http.MethodPost, "/api/v1/products/", body).Code, qt.Equals, http.StatusCreated)
	}

	rr = do(h, http.MethodGet, "/api/v1/products/", "")
	c.Assert(rr.Code, qt.Equals, http.StatusOK)
	list := decode[[]dto.ProductResponse](c, rr)
	c.Assert(list, qt.HasLen, 3)
	c.Assert(list[0].Name, qt.Equals, "Name1")
}

func TestMissingProduct(t *testing.T) {
	tests := []struct {
		method string
		body   string
	}{
		{http.MethodGet, ""},
		{http.MethodPut, `{"name":"X"}`},
		{http.MethodPatch, `{"name":"X"}`},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			c := qt.New(t)
			h := setupServer(c)

			rr := do(h, tt.method, "/api/v1/products/missing", tt.body)
			c.Assert(rr.Code, qt.Equals, http.StatusNotFound)
			c.Assert(decode[map[string]string](c, rr), qt.DeepEquals, map[string]string{
				"error":   "not_found",
				"message": "product not found",
			})
		})
	}
}

func TestMalformedBody(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/products/"},
		{http.MethodPut, "/api/v1/products/any"},
		{http.MethodPatch, "/api/v1/products/any"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			c := qt.New(t)
			h := setupServer(c)

			rr := do(h, tt.method, tt.path, `{"name":`)
			c.Assert(rr.Code, qt.Equals, http.StatusBadRequest)
			c.Assert(decode[map[string]string](c, rr)["error"], qt.Equals, "bad_request")
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	c := qt.New(t)
	h := setupServer(c)

	rr := do(h, http.MethodGet, "/health", "")
	c.Assert(rr.Code, qt.Equals, http.StatusOK)
	c.Assert(rr.Body.String(), qt.Equals, "OK")

	c.Assert(do(h, http.MethodGet, "/api/v1/products/", "").Code, qt.Equals, http.StatusOK)

	rr = do(h, http.MethodGet, "/metrics", "")
	c.Assert(rr.Code, qt.Equals, http.StatusOK)
	c.Assert(rr.Body.String(), qt.Contains, "products_operations")
}

func TestUnknownRoute(t *testing.T) {
	c := qt.New(t)
	h := setupServer(c)

	rr := do(h, http.MethodGet, "/api/v2/products/", "")
	c.Assert(rr.Code, qt.Equals, http.StatusNotFound)
}

func TestMetricsUseRoutePatterns(t *testing.T) {
	c := qt.New(t)
	h := setupServer(c)

	for _, id := range []string{"id-aaa", "id-bbb"} {
		c.Assert(do(h, http.MethodGet, "/api/v1/products/"+id, "").Code, qt.Equals, http.StatusNotFound)
	}

	rr := do(h, http.MethodGet, "/metrics", "")
	c.Assert(rr.Code, qt.Equals, http.StatusOK)

	body := rr.Body.String()
	c.Assert(body, qt.Contains, `http_route="/api/v1/products/{id}"`)
	c.Assert(body, qt.Not(qt.Contains), "id-aaa")
	c.Assert(body, qt.Not(qt.Contains), "id-bbb")
	c.Assert(body, qt.Contains, "http_server_active_requests")
}
