package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/salesimport/internal/config"
	"github.com/JonMunkholm/salesimport/internal/core"
	"github.com/JonMunkholm/salesimport/internal/history"
	"github.com/JonMunkholm/salesimport/internal/observability"
)

const laptopCSV = "CodigoProducto,Producto,Precio,Stock,Categoria,Email,Nombre,Cantidad\n" +
	"LAP-001,Laptop Dell,899.99,10,Tecnología,juan@example.com,Juan,2\n"

type testEnv struct {
	server  *Server
	store   *core.MemoryStore
	history *history.MemoryStore
	limiter *core.ImportLimiter
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: time.Minute},
		Import: config.ImportConfig{
			TaxRate:       decimal.RequireFromString("0.16"),
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   50 * time.Millisecond,
			Timeout:       time.Minute,
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func newTestEnv(t *testing.T, mutate func(*config.Config, *Deps)) *testEnv {
	t.Helper()
	cfg := testConfig()
	store := core.NewMemoryStore()
	hist := history.NewMemoryStore(time.Hour)
	limiter := core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)
	recorder := observability.NewRecorder(limiter.ActiveCount)

	deps := Deps{
		Config: cfg,
		Service: core.NewService(store, core.Options{
			Engine:   core.EngineOptions{TaxRate: cfg.Import.TaxRate},
			Observer: recorder,
			Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		}),
		History: hist,
		Limiter: limiter,
		Metrics: recorder.Handler(),
	}
	if mutate != nil {
		mutate(cfg, &deps)
	}
	return &testEnv{server: NewServer(deps), store: store, history: hist, limiter: limiter}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, target, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestImport_StoresResult(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(uploadRequest(t, "/api/import", "ventas.csv", []byte(laptopCSV)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res core.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.TotalRows)
	assert.Equal(t, 1, res.ProductsCreated)
	assert.Equal(t, 1, res.CustomersCreated)
	assert.Equal(t, 1, res.SalesCreated)
	assert.Equal(t, "ventas.csv", res.FileName)
	require.NotEmpty(t, res.ImportID)
	assert.Equal(t, "/api/imports/"+res.ImportID, rec.Header().Get("Location"))

	require.Len(t, env.store.Sales(), 1)
	assert.Equal(t, "2087.9768", env.store.Sales()[0].Total.String())

	// JSON history
	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/imports/"+res.ImportID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var stored core.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, res.ImportID, stored.ImportID)
	assert.Equal(t, 1, stored.SalesCreated)

	// HTML summary
	rec = env.do(httptest.NewRequest(http.MethodGet, "/imports/"+res.ImportID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "ventas.csv")
	assert.Contains(t, rec.Body.String(), "Sales created")
}

func TestImport_RowErrorsStillSucceed(t *testing.T) {
	env := newTestEnv(t, nil)
	csv := laptopCSV + "MOU-001,Mouse,0,5,Tecnología,ana@example.com,Ana,1\n"

	rec := env.do(uploadRequest(t, "/api/import", "ventas.csv", []byte(csv)))
	require.Equal(t, http.StatusOK, rec.Code)

	var res core.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.ErrorRows)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, 3, res.Errors[0].Row)
	assert.Equal(t, core.EntityProduct, res.Errors[0].Entity)
}

func TestImport_HTMLEscapesUserContent(t *testing.T) {
	env := newTestEnv(t, nil)
	res := &core.ImportResult{
		ImportID: "x1",
		FileName: "<script>alert(1)</script>.csv",
		Errors:   []core.ErrorRecord{{Row: 2, Value: "<b>", Message: "bad"}},
	}
	require.NoError(t, env.history.Save(context.Background(), res))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/imports/x1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
	assert.NotContains(t, rec.Body.String(), "<b>")
}

func TestImport_BatchFailure(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(uploadRequest(t, "/api/import", "vacio.csv", []byte("Foo,Bar\n1,2\n")))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var res core.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 0, res.Errors[0].Row)
	assert.Equal(t, core.ClassSystem, res.Errors[0].Class)
	assert.ElementsMatch(t, []string{"Foo", "Bar"}, res.UnmappedHeaders)

	// Failed batches are kept in history too.
	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/imports/"+res.ImportID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestImport_RequestErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name     string
		req      func() *http.Request
		status   int
		wantCode string
	}{
		{
			name:     "unknown kind",
			req:      func() *http.Request { return uploadRequest(t, "/api/import?kind=invoices", "a.csv", []byte(laptopCSV)) },
			status:   http.StatusBadRequest,
			wantCode: "IMP005",
		},
		{
			name: "no file",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader("x=1"))
			},
			status:   http.StatusBadRequest,
			wantCode: "FILE004",
		},
		{
			name: "too large",
			req: func() *http.Request {
				return uploadRequest(t, "/api/import", "big.csv", bytes.Repeat([]byte("a"), 2<<20))
			},
			status:   http.StatusRequestEntityTooLarge,
			wantCode: "FILE001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.req())
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestImport_TooManyImports(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config, d *Deps) {
		d.Limiter = core.NewImportLimiter(1, 20*time.Millisecond)
	})
	require.True(t, env.server.limiter.TryAcquire())
	defer env.server.limiter.Release()

	rec := env.do(uploadRequest(t, "/api/import", "ventas.csv", []byte(laptopCSV)))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "IMP001", decodeError(t, rec).Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Empty(t, env.store.Sales())
}

func TestImportResult_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/imports/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "IMP002", decodeError(t, rec).Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/imports/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "IMP002")
}

func TestPreview(t *testing.T) {
	env := newTestEnv(t, nil)
	csv := "Producto,Precio,Color\nLaptop,10,rojo\nMouse,5,azul\n"

	rec := env.do(uploadRequest(t, "/api/preview?kind=productos", "p.csv", []byte(csv)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var preview core.PreviewResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.Equal(t, core.KindProducts, preview.Kind)
	assert.Equal(t, 2, preview.TotalRows)
	assert.Equal(t, 2, preview.ProductRows)
	assert.Equal(t, []string{"Color"}, preview.UnmappedHeaders)
	assert.Len(t, preview.Columns, 2)

	// Preview never writes.
	products, err := env.store.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)

	rec = env.do(uploadRequest(t, "/api/preview", "bad.xlsx", []byte("PK\x03\x04garbage")))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "FILE002", decodeError(t, rec).Code)
}

func TestTemplateDownload(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/template/ventas?format=csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "plantilla_importacion_sales.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "NumeroFactura,"), rec.Body.String())

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/template/full", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/template/invoices", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "IMP003", decodeError(t, rec).Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/template/full?format=pdf", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "IMP004", decodeError(t, rec).Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config, d *Deps) {
		d.Ping = func(ctx context.Context) error { return nil }
	})
	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Database)
	assert.Equal(t, "0.16", resp.TaxRate)
	assert.Equal(t, 2, resp.Imports.Available)

	down := newTestEnv(t, func(cfg *config.Config, d *Deps) {
		d.Ping = func(ctx context.Context) error { return errors.New("connection refused") }
	})
	rec = down.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(uploadRequest(t, "/api/import", "ventas.csv", []byte(laptopCSV)))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `salesimport_imports_total{outcome="success"} 1`)
	assert.Contains(t, rec.Body.String(), `salesimport_entities_total{action="created",entity="sale"} 1`)
}

func TestAPIKeyRequired(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config, d *Deps) {
		cfg.Security = config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"secret"}}
	})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/template/full", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/template/full", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = env.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health stays open for probes.
	rec = env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("1.1.1.1"))
	assert.True(t, rl.allow("1.1.1.1"))
	assert.False(t, rl.allow("1.1.1.1"))
	assert.True(t, rl.allow("2.2.2.2"))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.allow("1.1.1.1"))

	// A new visitor sweeps entries idle for two windows.
	now = now.Add(3 * time.Minute)
	assert.True(t, rl.allow("3.3.3.3"))
	assert.Len(t, rl.visitors, 1)
}

func TestRateLimitMiddleware(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config, d *Deps) {
		cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1}
	})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE001", decodeError(t, rec).Code)
}

type brokenHistory struct{ err error }

func (h brokenHistory) Save(context.Context, *core.ImportResult) error { return h.err }

func (h brokenHistory) Get(context.Context, string) (*core.ImportResult, error) { return nil, h.err }

func TestRespondError_UnexpectedErrorIsGeneric(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	env := newTestEnv(t, func(cfg *config.Config, d *Deps) {
		d.History = brokenHistory{err: errors.New("xyz: corrupted entry")}
	})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/imports/abc", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "ERR000", resp.Code)
	assert.NotContains(t, resp.Message, "corrupted")
	assert.Contains(t, logs.String(), "level=ERROR")
	assert.Contains(t, logs.String(), "unexpected request error")
}

func TestRespondError_MappedErrorIsWarning(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	env := newTestEnv(t, nil)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/imports/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.NotContains(t, logs.String(), "unexpected request error")
}
