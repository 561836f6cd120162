package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lokaclean/lokaclean-api/config"
	"github.com/lokaclean/lokaclean-api/models"
	"github.com/lokaclean/lokaclean-api/services"
)

func setupControllerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Package{},
		&models.Order{},
		&models.Payment{},
		&models.Tip{},
		&models.Rating{},
		&models.OrderPhoto{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing.
// It sets up the context exactly as the real EnsureValidToken middleware
// does.
func mockAuthMiddleware(auth0ID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Next()
	}
}

// ctrlFixture wires a test database, seed records and all service mocks.
type ctrlFixture struct {
	t        *testing.T
	db       *gorm.DB
	customer models.User
	other    models.User
	staff    models.User
	pkg      models.Package
	storage  *services.MockPhotoStorage
	gateway  *services.MockPaymentGateway
	notifier *services.MockNotifier
}

func newCtrlFixture(t *testing.T) *ctrlFixture {
	db := setupControllerTestDB(t)
	config.SetDB(db)

	f := &ctrlFixture{
		t:        t,
		db:       db,
		storage:  services.NewMockPhotoStorage(),
		gateway:  services.NewMockPaymentGateway(),
		notifier: services.NewMockNotifier(),
	}
	f.storage.SetAsMockForTesting()
	f.gateway.SetAsMockForTesting()
	f.notifier.SetAsMockForTesting()
	services.NewMockGeocoder("Jl. Kemang Raya No. 8, Jakarta Selatan").SetAsMockForTesting()

	f.customer = models.User{
		Auth0ID: "auth0|ayu",
		Name:    "Ayu Lestari",
		Email:   "ayu@example.com",
		Phone:   "+6281234567890",
		Role:    "customer",
	}
	db.Create(&f.customer)

	f.other = models.User{
		Auth0ID: "auth0|budi",
		Name:    "Budi Santoso",
		Email:   "budi@example.com",
		Role:    "customer",
	}
	db.Create(&f.other)

	f.staff = models.User{
		Auth0ID: "auth0|staff",
		Name:    "Ops Staff",
		Email:   "ops@lokaclean.example",
		Role:    "staff",
	}
	db.Create(&f.staff)

	f.pkg = models.Package{
		Name:        "Studio Deep Clean",
		Description: "Full deep clean for studio apartments",
		Price:       150000,
		DurationMin: 120,
		Active:      true,
	}
	db.Create(&f.pkg)

	return f
}

// orders builds an OrderService on the fixture database for state setup.
func (f *ctrlFixture) orders() *services.OrderService {
	return services.NewOrderService(f.db)
}

// createOrder seeds an order directly through the service layer so HTTP
// tests start from a known state. The scheduled date sits two hours in
// the past, which leaves the fulfilment grace period already elapsed.
func (f *ctrlFixture) createOrder(method models.PaymentMethod) *models.Order {
	f.t.Helper()
	order, err := services.NewOrderService(f.db).Create(services.CreateOrderInput{
		CustomerID:      f.customer.ID,
		PackageID:       f.pkg.ID,
		ScheduledDate:   time.Now().Add(-2 * time.Hour),
		Address:         "Jl. Kemang Raya No. 8",
		Latitude:        -6.26,
		Longitude:       106.81,
		Method:          method,
		BeforePhotoKeys: []string{"bookings/seed/before_0.jpg"},
	})
	if err != nil {
		f.t.Fatalf("failed to seed order: %v", err)
	}
	return order
}

// advanceToInProgress walks the order to IN_PROGRESS, settling a gateway
// payment first so the fulfilment gate is open.
func (f *ctrlFixture) advanceToInProgress(order *models.Order) *models.Order {
	f.t.Helper()
	svc := services.NewOrderService(f.db)
	if order.Payment.Method == models.PaymentMethodGateway {
		if _, err := svc.MarkPaid(order.ID); err != nil {
			f.t.Fatalf("failed to settle payment: %v", err)
		}
	}
	if _, err := svc.Transition(order.ID, models.StatusPending, models.StatusProcessing); err != nil {
		f.t.Fatalf("failed to confirm order: %v", err)
	}
	order, err := svc.Transition(order.ID, models.StatusProcessing, models.StatusInProgress)
	if err != nil {
		f.t.Fatalf("failed to dispatch order: %v", err)
	}
	return order
}

// lapsePaymentWindow rewinds created_at so the payment window plus
// tolerance has passed.
func (f *ctrlFixture) lapsePaymentWindow(orderID uint) {
	f.t.Helper()
	lapsed := time.Now().Add(-(models.PaymentWindow + models.VoidTolerance + time.Minute))
	err := f.db.Model(&models.Order{}).Where("id = ?", orderID).
		Update("created_at", lapsed).Error
	if err != nil {
		f.t.Fatalf("failed to rewind created_at: %v", err)
	}
}

// performJSON runs one JSON request through the router.
func performJSON(router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewBuffer(b)
	}
	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// multipartBody builds a multipart form with the given text fields and
// one small fake jpg per photo filename under the given file field.
func multipartBody(t *testing.T, fields map[string]string, fileField string, photos ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}
	for _, name := range photos {
		part, err := writer.CreateFormFile(fileField, name)
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		if _, err := part.Write([]byte("fake image bytes")); err != nil {
			t.Fatalf("failed to write file part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

// performMultipart runs one multipart request through the router.
func performMultipart(router *gin.Engine, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	return response
}

// assertErrorCode asserts the standard error envelope.
func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, w.Code)
	response := parseResponse(t, w)
	assert.False(t, response["success"].(bool))
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, code, errorData["code"])
}

// orderData unwraps data.order from a successful response.
func orderData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	response := parseResponse(t, w)
	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	return data["order"].(map[string]interface{})
}

// permittedActions unwraps data.permitted_actions as strings.
func permittedActions(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	response := parseResponse(t, w)
	data := response["data"].(map[string]interface{})
	raw, ok := data["permitted_actions"].([]interface{})
	if !ok {
		return nil
	}
	actions := make([]string, 0, len(raw))
	for _, a := range raw {
		actions = append(actions, a.(string))
	}
	return actions
}
