package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stockmanager/backend/internal/auth"
	api "github.com/stockmanager/backend/internal/http"
	"github.com/stockmanager/backend/internal/http/handlers"
	rl "github.com/stockmanager/backend/internal/http/rate_limiter"
	"github.com/stockmanager/backend/internal/ledger"
	"github.com/stockmanager/backend/internal/models"
	"github.com/stockmanager/backend/internal/pdf"
	"github.com/stockmanager/backend/internal/repo"
)

type testEnv struct {
	router http.Handler

	products  *repo.InMemoryProductRepository
	suppliers *repo.InMemorySupplierRepository
	movements *repo.InMemoryMovementRepository
	sales     *repo.InMemorySaleRepository
	users     *repo.InMemoryUserRepository
	issues    *repo.InMemoryIssueRepository
	invoices  *repo.InMemoryInvoiceRepository

	admin         models.User
	employee      models.User
	adminToken    string
	employeeToken string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	auth.Configure("test-secret", time.Hour)

	env := &testEnv{
		products:  repo.NewInMemoryProductRepository(),
		suppliers: repo.NewInMemorySupplierRepository(),
		movements: repo.NewInMemoryMovementRepository(),
		sales:     repo.NewInMemorySaleRepository(),
		users:     repo.NewInMemoryUserRepository(),
		issues:    repo.NewInMemoryIssueRepository(),
		invoices:  repo.NewInMemoryInvoiceRepository(),
	}

	handlers.SetProductRepo(env.products)
	handlers.SetSupplierRepo(env.suppliers)
	handlers.SetMovementRepo(env.movements)
	handlers.SetSaleRepo(env.sales)
	handlers.SetUserRepo(env.users)
	handlers.SetIssueRepo(env.issues)
	handlers.SetInvoiceRepo(env.invoices)
	handlers.SetCategoryRepo(repo.NewInMemoryCategoryRepository())
	handlers.SetMetricsRepo(repo.NewInMemoryMetricsRepository(env.products, env.movements, env.sales))
	handlers.SetRefreshStore(auth.NewMemoryRefreshStore())
	handlers.SetInvoiceGenerator(pdf.NewInvoiceGenerator("Test Shop"))
	handlers.SetAlertService(nil)

	store := repo.NewInMemoryLedgerStore(env.products, env.movements, env.sales)
	handlers.SetLedgerService(ledger.NewService(store, env.products, env.suppliers))

	env.admin = env.addUser(t, "Alice Admin", "admin@example.com", "secret123", models.RoleAdmin)
	env.employee = env.addUser(t, "Bob Seller", "bob@example.com", "secret123", models.RoleEmployee)
	env.adminToken = tokenFor(t, env.admin)
	env.employeeToken = tokenFor(t, env.employee)

	env.router = api.NewRouter("http://localhost:3000")
	return env
}

func (env *testEnv) addUser(t *testing.T, name, email, password, role string) models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := env.users.CreateUser(models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
	})
	require.NoError(t, err)
	return user
}

func (env *testEnv) addProduct(t *testing.T, name string, quantity int, price string, supplierID *int) models.Product {
	t.Helper()
	p, err := env.products.Create(models.Product{
		Name:       name,
		Quantity:   quantity,
		Price:      decimal.RequireFromString(price),
		Threshold:  2,
		SupplierID: supplierID,
	})
	require.NoError(t, err)
	return p
}

func (env *testEnv) addSupplier(t *testing.T, name string) models.Supplier {
	t.Helper()
	s, err := env.suppliers.Create(models.Supplier{Name: name})
	require.NoError(t, err)
	return s
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := auth.GenerateToken(user)
	require.NoError(t, err)
	return token
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

func TestLoginFlow(t *testing.T) {
	rl.CleanupAllVisitors()
	env := newTestEnv(t)

	t.Run("valid credentials", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/auth/login", "",
			map[string]string{"email": "admin@example.com", "password": "secret123"})
		require.Equal(t, http.StatusOK, w.Code)

		result := decodeJSON[map[string]any](t, w)
		assert.NotEmpty(t, result["token"])
		assert.NotEmpty(t, result["refreshToken"])
	})

	t.Run("wrong password", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/auth/login", "",
			map[string]string{"email": "admin@example.com", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("refresh and logout", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/auth/login", "",
			map[string]string{"email": "bob@example.com", "password": "secret123"})
		require.Equal(t, http.StatusOK, w.Code)
		login := decodeJSON[map[string]any](t, w)
		refreshToken := login["refreshToken"].(string)

		w = env.do(t, http.MethodPost, "/api/auth/refresh", "",
			map[string]string{"refreshToken": refreshToken})
		assert.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodPost, "/api/auth/logout", "",
			map[string]string{"refreshToken": refreshToken})
		assert.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodPost, "/api/auth/refresh", "",
			map[string]string{"refreshToken": refreshToken})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Dana", "email": "dana@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeJSON[models.User](t, w)
	assert.Equal(t, models.RoleStaff, created.Role)

	t.Run("requested role is ignored", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name": "Eve", "email": "eve@example.com", "password": "secret123", "role": models.RoleAdmin,
		})
		require.Equal(t, http.StatusCreated, w.Code)
		user := decodeJSON[models.User](t, w)
		assert.Equal(t, models.RoleStaff, user.Role)
	})

	t.Run("duplicate email", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name": "Dana Again", "email": "dana@example.com", "password": "secret123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("new account can log in", func(t *testing.T) {
		rl.CleanupAllVisitors()
		w := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "dana@example.com", "password": "secret123",
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/products", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProductCRUD(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/products", env.adminToken, map[string]any{
		"name": "Laptop", "price": "1500.00", "quantity": 3, "low_stock_alert": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeJSON[models.Product](t, w)
	assert.Equal(t, "Laptop", created.Name)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d", created.ID), env.employeeToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/products/%d", created.ID), env.adminToken, map[string]any{
		"name": "Laptop Pro", "price": "1800.00",
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeJSON[models.Product](t, w)
	assert.Equal(t, "Laptop Pro", updated.Name)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/products/%d", created.ID), env.adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d", created.ID), env.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductWriteIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/products", env.employeeToken, map[string]any{
		"name": "Phone", "price": "100.00",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRecordMovementEndpoint(t *testing.T) {
	env := newTestEnv(t)
	supplier := env.addSupplier(t, "Acme")
	product := env.addProduct(t, "Widget", 10, "2.50", nil)

	t.Run("incoming with supplier", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/movements", env.employeeToken, map[string]any{
			"product_id": product.ID, "type": "IN", "quantity": 5, "supplier_id": supplier.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		result := decodeJSON[ledger.MovementResult](t, w)
		assert.Equal(t, 5, result.Movement.Delta)
		assert.Equal(t, 15, result.NewQuantity)
	})

	t.Run("french quantity alias", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/movements", env.employeeToken, map[string]any{
			"product_id": product.ID, "type": "OUT", "quantite": 3,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		result := decodeJSON[ledger.MovementResult](t, w)
		assert.Equal(t, -3, result.Movement.Delta)
	})

	t.Run("sale type decrements", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/movements", env.employeeToken, map[string]any{
			"product_id": product.ID, "type": "SALE", "quantity": 2,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		result := decodeJSON[ledger.MovementResult](t, w)
		assert.Equal(t, -2, result.Movement.Delta)
	})

	t.Run("lowercase type and negative quantity normalized", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/movements", env.employeeToken, map[string]any{
			"product_id": product.ID, "type": "out", "quantity": -1,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		result := decodeJSON[ledger.MovementResult](t, w)
		assert.Equal(t, models.MovementTypeOut, result.Movement.Type)
		assert.Equal(t, -1, result.Movement.Delta)
	})

	t.Run("insufficient stock", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/movements", env.employeeToken, map[string]any{
			"product_id": product.ID, "type": "OUT", "quantity": 9999,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "insufficient stock")
	})

	t.Run("missing quantity", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/movements", env.employeeToken, map[string]any{
			"product_id": product.ID, "type": "OUT",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown movement type", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/movements", env.employeeToken, map[string]any{
			"product_id": product.ID, "type": "TRANSFER", "quantity": 1,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/movements", env.employeeToken, map[string]any{
			"product_id": 999, "type": "OUT", "quantity": 1,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("incoming without supplier", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/movements", env.employeeToken, map[string]any{
			"product_id": product.ID, "type": "IN", "quantity": 1,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "supplier")
	})
}

func TestRecordSaleEndpoint(t *testing.T) {
	env := newTestEnv(t)
	product := env.addProduct(t, "Widget", 10, "2.50", nil)

	t.Run("valid sale", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/sales", env.employeeToken, map[string]any{
			"product_id": product.ID, "quantity": 4,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		result := decodeJSON[ledger.SaleResult](t, w)
		assert.Equal(t, "10", result.Sale.TotalPrice.String())
		assert.Equal(t, models.MovementTypeSale, result.Movement.Type)
		assert.Equal(t, -4, result.Movement.Delta)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/sales", env.employeeToken, map[string]any{
			"quantity": 2,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "missing required fields")
	})

	t.Run("oversell rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/sales", env.employeeToken, map[string]any{
			"product_id": product.ID, "quantity": 9999,
		})
		assert.Equal(t, http.StatusConflict, w.Code)

		// No partial writes behind the rejection.
		sales, err := env.sales.GetAll()
		require.NoError(t, err)
		assert.Len(t, sales, 1)
	})
}

func TestMovementListAndExport(t *testing.T) {
	env := newTestEnv(t)
	supplier := env.addSupplier(t, "Acme")
	product := env.addProduct(t, "Widget", 10, "2.50", nil)

	for i := 0; i < 3; i++ {
		w := env.do(t, http.MethodPost, "/api/movements", env.employeeToken, map[string]any{
			"product_id": product.ID, "type": "IN", "quantity": 1, "supplier_id": supplier.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("list with meta", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/movements?limit=2", env.employeeToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		result := decodeJSON[handlers.MovementsSearchResult](t, w)
		assert.Len(t, result.Data, 2)
		assert.Equal(t, 3, result.Meta.TotalCount)
	})

	t.Run("per product listing", func(t *testing.T) {
		w := env.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d/movements", product.ID), env.employeeToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		result := decodeJSON[handlers.MovementsSearchResult](t, w)
		assert.Equal(t, 3, result.Meta.TotalCount)
	})

	t.Run("csv export", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/movements/export?format=csv", env.employeeToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(w.Body.String(), "id,product_id"))
	})

	t.Run("bad format", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/movements/export?format=xml", env.employeeToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestIssueFlow(t *testing.T) {
	env := newTestEnv(t)
	product := env.addProduct(t, "Widget", 10, "2.50", nil)

	w := env.do(t, http.MethodPost, "/api/issues", env.employeeToken, map[string]any{
		"type": "damage", "description": "two boxes crushed", "product_id": product.ID, "damaged_pieces": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	issue := decodeJSON[models.Issue](t, w)
	assert.Equal(t, models.IssueStatusPending, issue.Status)
	assert.Equal(t, "Bob Seller", issue.ReportedBy)

	t.Run("employee sees own issues", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/issues", env.employeeToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		issues := decodeJSON[[]models.Issue](t, w)
		assert.Len(t, issues, 1)
	})

	t.Run("admin resolves", func(t *testing.T) {
		w := env.do(t, http.MethodPatch, fmt.Sprintf("/api/issues/%d/status", issue.ID), env.adminToken,
			map[string]string{"status": models.IssueStatusResolved})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("employee cannot resolve", func(t *testing.T) {
		w := env.do(t, http.MethodPatch, fmt.Sprintf("/api/issues/%d/status", issue.ID), env.employeeToken,
			map[string]string{"status": models.IssueStatusResolved})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestInvoiceFlow(t *testing.T) {
	env := newTestEnv(t)
	product := env.addProduct(t, "Widget", 10, "2.50", nil)

	w := env.do(t, http.MethodPost, "/api/sales", env.employeeToken, map[string]any{
		"product_id": product.ID, "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	sale := decodeJSON[ledger.SaleResult](t, w)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/invoices/sales/%d", sale.Sale.ID), env.employeeToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	invoice := decodeJSON[models.Invoice](t, w)
	assert.Equal(t, "application/pdf", invoice.Mime)
	assert.Positive(t, invoice.Size)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/invoices/%d/download", invoice.ID), env.employeeToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, invoice.Size, w.Body.Len())

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/invoices/sales/%d", sale.Sale.ID), env.employeeToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/invoices/sales/999", env.employeeToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboardMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.addProduct(t, "Scarce", 1, "2.50", nil) // threshold 2, already low

	t.Run("admin only", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/metrics/dashboard", env.employeeToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("values", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/metrics/dashboard", env.adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		metrics := decodeJSON[repo.Metrics](t, w)
		assert.Equal(t, 1, metrics.TotalProducts)
		assert.Equal(t, 1, metrics.LowStockCount)
	})
}

func TestAlertsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.addProduct(t, "Scarce", 1, "2.50", nil)
	env.addProduct(t, "Plenty", 50, "2.50", nil)

	w := env.do(t, http.MethodGet, "/api/alerts", env.employeeToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	result := decodeJSON[handlers.AlertsResult](t, w)
	require.Len(t, result.LowStock, 1)
	assert.Equal(t, "Scarce", result.LowStock[0].Name)
}

func TestEmployeeManagement(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/employees", env.adminToken, map[string]string{
		"name": "Carol", "email": "carol@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	carol := decodeJSON[models.User](t, w)
	assert.Equal(t, models.RoleEmployee, carol.Role)

	t.Run("duplicate email", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/auth/employees", env.adminToken, map[string]string{
			"name": "Carol Again", "email": "carol@example.com", "password": "secret123",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/auth/employees", env.adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		employees := decodeJSON[[]models.User](t, w)
		assert.Len(t, employees, 2) // Bob and Carol
	})

	t.Run("employee forbidden", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/auth/employees", env.employeeToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("update and delete", func(t *testing.T) {
		w := env.do(t, http.MethodPut, fmt.Sprintf("/api/auth/employees/%d", carol.ID), env.adminToken,
			map[string]string{"name": "Caroline"})
		assert.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/auth/employees/%d", carol.ID), env.adminToken, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
