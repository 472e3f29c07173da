package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"katalog/internal/database"
	"katalog/internal/handlers"
	"katalog/internal/metrics"
	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

// MockPublisher is a mock implementation of handlers.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishProductSaved(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

type testEnv struct {
	app       *fiber.App
	repo      repositories.ProductRepository
	metrics   *metrics.Metrics
	publisher *MockPublisher
}

// setupApp sets up a Fiber app for testing with in-memory SQLite behind the product routes.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.Open(database.DriverSQLite, dsn, logger.Silent)
	require.NoError(t, err, "failed to open in-memory database")

	repo := repositories.NewGORMProductRepository(db)
	productService := services.NewProductService(repo)
	m := metrics.New(prometheus.NewRegistry())
	publisher := new(MockPublisher)
	log := zerolog.New(io.Discard)

	app := fiber.New()
	productHandler := handlers.NewProductHandler(productService, publisher, m, &log)
	productHandler.RegisterRoutes(app.Group("/api/v1"))

	return &testEnv{app: app, repo: repo, metrics: m, publisher: publisher}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			jsonBody, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(jsonBody)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func validPayload() map[string]any {
	return map[string]any{
		"title":           "NES",
		"price":           1.00,
		"status":          "IN_STOCK",
		"quantityInStock": 0,
		"dateAdded":       time.Now().UTC().Format(time.RFC3339),
	}
}

func TestCreateProduct(t *testing.T) {
	env := setupApp(t)
	env.publisher.On("PublishProductSaved", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	payload := validPayload()
	payload["id"] = 500 // ignored: ids come from the store
	payload["keywords"] = "retro,console"
	resp, body := env.do(t, http.MethodPost, "/api/v1/products", payload)

	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created models.Product
	require.NoError(t, json.Unmarshal(body, &created))
	assert.NotZero(t, created.ID)
	assert.NotEqual(t, int64(500), created.ID)
	assert.Equal(t, "NES", *created.Title)
	assert.Equal(t, "retro,console", *created.Keywords)
	assert.Equal(t, "1", created.Price.String())

	stored, err := env.repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, created.Equal(*stored))

	env.publisher.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ProductsSaved))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Validations.WithLabelValues("valid")))
}

func TestCreateProduct_ValidationFailed(t *testing.T) {
	env := setupApp(t)

	payload := validPayload()
	payload["title"] = "AB"
	payload["keywords"] = strings.Repeat("K", 201)
	payload["price"] = "0.99"
	delete(payload, "status")

	resp, body := env.do(t, http.MethodPost, "/api/v1/products", payload)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "Validation failed", errResp.Message)
	assert.Len(t, errResp.Errors, 4)
	assert.Contains(t, errResp.Errors, "title")
	assert.Contains(t, errResp.Errors, "keywords")
	assert.Contains(t, errResp.Errors, "price")
	assert.Equal(t, "must not be null", errResp.Errors["status"])

	all, err := env.repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all, "invalid products must not be stored")
	env.publisher.AssertNotCalled(t, "PublishProductSaved", mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Violations.WithLabelValues("keywords")))
}

func TestCreateProduct_MalformedBody(t *testing.T) {
	env := setupApp(t)

	payload := validPayload()
	payload["dateAdded"] = "not-a-date"
	resp, body := env.do(t, http.MethodPost, "/api/v1/products", payload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "Invalid request body")

	resp, _ = env.do(t, http.MethodPost, "/api/v1/products", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateProduct_PublishFailureDoesNotFailRequest(t *testing.T) {
	env := setupApp(t)
	env.publisher.On("PublishProductSaved", mock.Anything).Return(errors.New("broker down")).Once()

	resp, _ := env.do(t, http.MethodPost, "/api/v1/products", validPayload())
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	env.publisher.AssertExpectations(t)
}

func TestProductLifecycle(t *testing.T) {
	env := setupApp(t)
	env.publisher.On("PublishProductSaved", mock.Anything).Return(nil)

	resp, body := env.do(t, http.MethodPost, "/api/v1/products", validPayload())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	require.NoError(t, json.Unmarshal(body, &created))
	productPath := fmt.Sprintf("/api/v1/products/%d", created.ID)

	// --- GET /products ---
	resp, body = env.do(t, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var products []models.Product
	require.NoError(t, json.Unmarshal(body, &products))
	assert.Len(t, products, 1)

	// --- GET /products/:id ---
	resp, body = env.do(t, http.MethodGet, productPath, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Product
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, created.ID, fetched.ID)

	// --- PUT /products/:id ---
	update := validPayload()
	update["title"] = "NES Classic"
	update["status"] = "DISCONTINUED"
	update["rating"] = 9
	resp, body = env.do(t, http.MethodPut, productPath, update)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var updated models.Product
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "NES Classic", *updated.Title)
	assert.Equal(t, models.StatusDiscontinued, updated.Status)

	// --- PUT with invalid body ---
	update["rating"] = 11
	resp, _ = env.do(t, http.MethodPut, productPath, update)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// --- DELETE /products/:id ---
	resp, body = env.do(t, http.MethodDelete, productPath, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "deleted successfully")

	// Verify deletion
	resp, _ = env.do(t, http.MethodGet, productPath, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductNotFound(t *testing.T) {
	env := setupApp(t)

	resp, _ := env.do(t, http.MethodGet, "/api/v1/products/404", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPut, "/api/v1/products/404", validPayload())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/v1/products/404", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestValidateProducts(t *testing.T) {
	env := setupApp(t)

	invalid := validPayload()
	invalid["dimensions"] = strings.Repeat("D", 51)
	invalid["weight"] = -0.01

	resp, body := env.do(t, http.MethodPost, "/api/v1/products/validate", []any{validPayload(), invalid})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var report struct {
		Valid   bool                        `json:"valid"`
		Results []handlers.ValidationResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(body, &report))
	assert.False(t, report.Valid)
	require.Len(t, report.Results, 2)
	assert.True(t, report.Results[0].Valid)
	assert.Empty(t, report.Results[0].Errors)
	assert.False(t, report.Results[1].Valid)
	assert.Contains(t, report.Results[1].Errors, "dimensions")
	assert.Contains(t, report.Results[1].Errors, "weight")

	all, err := env.repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all, "validation endpoint must not store anything")
}
