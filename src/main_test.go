package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hbs/src/controllers"
	"hbs/src/db"
	"hbs/src/lib"
	"hbs/src/types"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB   *gorm.DB
	Mock sqlmock.Sqlmock
}

const whsecret = "whsec_test"

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

func (s *TestSuite) SetupSuite() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookingdate", bookingDateValidatorFunc)
		v.RegisterValidation("gtdate", gtfield)
	}
	os.Setenv("STRIPE_WEBHOOK_SECRET", whsecret)

	d, mock := NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = mock
}

func stubAuth(id uint, role string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set("id", id)
		ctx.Set("email", "someone@example.com")
		ctx.Set("role", role)
	}
}

func (s *TestSuite) newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return setupRouter()
}

func (s *TestSuite) TestPingRoute() {
	router := s.newRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestCreateBookingRejectsReversedDates() {
	router := s.newRouter()
	bookingHandlers(router.Group("/api/bookings", stubAuth(1, types.ROLE_GUEST)))

	body := map[string]any{
		"roomId":       1,
		"checkInDate":  "2026-06-05",
		"checkOutDate": "2026-06-01",
	}
	sbody, _ := json.Marshal(&body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/bookings", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestCreateBookingRejectsMalformedDates() {
	router := s.newRouter()
	bookingHandlers(router.Group("/api/bookings", stubAuth(1, types.ROLE_GUEST)))

	body := map[string]any{
		"roomId":       1,
		"checkInDate":  "05/06/2026",
		"checkOutDate": "2026-06-07",
	}
	sbody, _ := json.Marshal(&body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/bookings", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestCreateBookingRejectsEqualDates() {
	router := s.newRouter()
	bookingHandlers(router.Group("/api/bookings", stubAuth(1, types.ROLE_GUEST)))

	body := map[string]any{
		"roomId":       1,
		"checkInDate":  "2026-06-05",
		"checkOutDate": "2026-06-05",
	}
	sbody, _ := json.Marshal(&body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/bookings", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestAuthMiddlewareRejectsBareBearerHeader() {
	router := s.newRouter()
	guestAuthRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer")
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 401, w.Code)
}

func (s *TestSuite) TestAuthMeServedFromCache() {
	rd, rdmock := redismock.NewClientMock()
	lib.NewRedisClient(rd)

	cached, _ := json.Marshal(map[string]any{
		"id":    7,
		"name":  "Cached User",
		"email": "someone@example.com",
	})
	rdmock.ExpectGet("7:user").SetVal(string(cached))

	router := s.newRouter()
	router.GET("/api/auth/me", stubAuth(7, types.ROLE_GUEST), func(ctx *gin.Context) {
		user, status, err := controllers.AuthMe(ctx)
		if err != nil {
			ctx.JSON(status, gin.H{"message": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": user})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/auth/me", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	assert.Equal(s.T(), "someone@example.com", gjson.GetBytes(w.Body.Bytes(), "data.email").String())
	assert.NoError(s.T(), rdmock.ExpectationsWereMet())
}

func (s *TestSuite) TestWebhookUsesCachedSessionMapping() {
	rd, rdmock := redismock.NewClientMock()
	lib.NewRedisClient(rd)
	rdmock.ExpectGet("checkout:cs_test_9").SetVal("999")

	router := s.newRouter()
	stripeWebhookRoute(router)

	payload := []byte(fmt.Sprintf(`{
		"id": "evt_test_2",
		"api_version": %q,
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_9",
				"metadata": {}
			}
		}
	}`, stripe.APIVersion))

	s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, signedWebhookRequest(payload))

	assert.Equal(s.T(), 200, w.Code)
	assert.True(s.T(), gjson.GetBytes(w.Body.Bytes(), "received").Bool())
	assert.NoError(s.T(), rdmock.ExpectationsWereMet())
}

func (s *TestSuite) TestManualPaymentAlreadyConfirmed() {
	router := s.newRouter()
	bookingHandlers(router.Group("/api/bookings", stubAuth(1, types.ROLE_ADMIN)))

	s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "payment_id"}).
			AddRow(5, "booked", 9))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "amount", "payment_method", "status"}).
			AddRow(9, 5, 200.0, "online", "completed"))

	body := map[string]any{"amount": 200}
	sbody, _ := json.Marshal(&body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/bookings/manual-payment/5", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
	assert.Equal(s.T(), "Payment already confirmed", gjson.GetBytes(w.Body.Bytes(), "message").String())
}

func (s *TestSuite) TestUpdateBookingStatusWithoutPayment() {
	router := s.newRouter()
	bookingHandlers(router.Group("/api/bookings", stubAuth(1, types.ROLE_ADMIN)))

	for _, status := range []string{"checked-in", "checked-out"} {
		s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "status", "payment_id"}).
				AddRow(5, "booked", nil))

		body := map[string]any{"status": status}
		sbody, _ := json.Marshal(&body)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/api/bookings/5/status", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 404, w.Code)
		assert.Equal(s.T(), "Payment was not completed.", gjson.GetBytes(w.Body.Bytes(), "message").String())
	}
}

func (s *TestSuite) TestUpdateBookingStatusRejectsUnknownStatus() {
	router := s.newRouter()
	bookingHandlers(router.Group("/api/bookings", stubAuth(1, types.ROLE_ADMIN)))

	body := map[string]any{"status": "teleported"}
	sbody, _ := json.Marshal(&body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/api/bookings/5/status", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
	assert.Equal(s.T(), "Invalid status.", gjson.GetBytes(w.Body.Bytes(), "message").String())
}

func signedWebhookRequest(payload []byte) *http.Request {
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, whsecret)
	header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
	req, _ := http.NewRequest("POST", "/api/bookings/confirm-payment", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", header)
	return req
}

func (s *TestSuite) TestWebhookRejectsInvalidSignature() {
	router := s.newRouter()
	stripeWebhookRoute(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/bookings/confirm-payment", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestWebhookIgnoresUnknownBooking() {
	router := s.newRouter()
	stripeWebhookRoute(router)

	payload := []byte(fmt.Sprintf(`{
		"id": "evt_test_1",
		"api_version": %q,
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_1",
				"metadata": {"bookingId": "999"}
			}
		}
	}`, stripe.APIVersion))

	s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, signedWebhookRequest(payload))

	assert.Equal(s.T(), 200, w.Code)
	assert.True(s.T(), gjson.GetBytes(w.Body.Bytes(), "received").Bool())
}

func (s *TestSuite) TestListRooms() {
	router := s.newRouter()
	publicRoutes(router)

	s.Mock.ExpectQuery(`SELECT count(.+) FROM "rooms"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "rooms"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "room_number", "type", "price", "availability"}).
			AddRow(1, "Sea View", "101", "double", 180.0, true).
			AddRow(2, "Garden", "102", "single", 90.0, true).
			AddRow(3, "Penthouse", "501", "triple", 420.0, false))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/rooms?page=1&limit=10", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	rbody := w.Body.Bytes()
	assert.Equal(s.T(), int64(1), gjson.GetBytes(rbody, "data.total").Int())
	assert.Len(s.T(), gjson.GetBytes(rbody, "data.rooms").Array(), 3)
}

func (s *TestSuite) TestRegisterExistingUser() {
	router := s.newRouter()
	guestAuthRoutes(router)

	s.Mock.ExpectQuery(`SELECT count(.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	body := map[string]any{
		"name":     "Test User",
		"email":    "someone@example.com",
		"password": "secret123",
	}
	sbody, _ := json.Marshal(&body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/auth/register", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
	assert.Equal(s.T(), "User already exists", gjson.GetBytes(w.Body.Bytes(), "message").String())
}

func (s *TestSuite) TestUpdateUserRejectsUnknownPreference() {
	router := s.newRouter()
	userHandlers(router.Group("/api/users", stubAuth(7, types.ROLE_GUEST)))

	body := map[string]any{
		"preferences": map[string]string{"favoriteColor": "blue"},
	}
	sbody, _ := json.Marshal(&body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/users/7", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
	assert.Contains(s.T(), gjson.GetBytes(w.Body.Bytes(), "message").String(), "unknown preference key")
}

func (s *TestSuite) TestUpdateOtherUserForbidden() {
	router := s.newRouter()
	userHandlers(router.Group("/api/users", stubAuth(7, types.ROLE_GUEST)))

	body := map[string]any{"name": "New Name"}
	sbody, _ := json.Marshal(&body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/users/8", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 403, w.Code)
	assert.Equal(s.T(), "Access denied", gjson.GetBytes(w.Body.Bytes(), "message").String())
}

func (s *TestSuite) TestCancelBookingMarksCashPaymentRefunded() {
	router := s.newRouter()
	bookingHandlers(router.Group("/api/bookings", stubAuth(1, types.ROLE_ADMIN)))

	s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "payment_id"}).
			AddRow(5, "booked", 9))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "amount", "payment_method", "payment_intent_id", "status"}).
			AddRow(9, 5, 200.0, "cash", "-1", "completed"))
	s.Mock.ExpectBegin()
	s.Mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.ExpectCommit()
	s.Mock.ExpectBegin()
	s.Mock.ExpectExec(`UPDATE "payments"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.ExpectCommit()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/bookings/cancel/5", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	assert.Equal(s.T(), "Booking cancelled. Please refund cash manually.", gjson.GetBytes(w.Body.Bytes(), "message").String())
}

func (s *TestSuite) TestCancelBookingRefundsOnlinePaymentOnce() {
	refundCalls := 0
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/refunds") {
			refundCalls++
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "re_test_1", "status": "succeeded"}`))
	}))
	defer gateway.Close()

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL: stripe.String(gateway.URL),
	})
	lib.NewStripeClient(stripe.NewClient("sk_test_123", stripe.WithBackends(&stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})))

	router := s.newRouter()
	bookingHandlers(router.Group("/api/bookings", stubAuth(1, types.ROLE_ADMIN)))

	s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "payment_id"}).
			AddRow(5, "booked", 9))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "amount", "payment_method", "payment_intent_id", "status"}).
			AddRow(9, 5, 200.0, "online", "pi_test_1", "completed"))
	s.Mock.ExpectBegin()
	s.Mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.ExpectCommit()
	s.Mock.ExpectBegin()
	s.Mock.ExpectExec(`UPDATE "payments"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.ExpectCommit()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/bookings/cancel/5", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	assert.Equal(s.T(), "Booking cancelled and payment refunded.", gjson.GetBytes(w.Body.Bytes(), "message").String())
	assert.Equal(s.T(), 1, refundCalls)
}

func (s *TestSuite) TestAddFeedbackRequiresCompletedPayment() {
	router := s.newRouter()
	bookingHandlers(router.Group("/api/bookings", stubAuth(1, types.ROLE_GUEST)))

	s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "payment_id"}).
			AddRow(5, "booked", nil))

	body := map[string]any{"rating": 5, "comment": "great stay"}
	sbody, _ := json.Marshal(&body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/bookings/feedback/5", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
	assert.Equal(s.T(), "Payment not completed", gjson.GetBytes(w.Body.Bytes(), "message").String())
}

func (s *TestSuite) TestAdminRoutesDenyGuests() {
	router := s.newRouter()
	bookingHandlers(router.Group("/api/bookings", stubAuth(1, types.ROLE_GUEST)))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/bookings/all", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 403, w.Code)
	assert.Equal(s.T(), "Access denied", gjson.GetBytes(w.Body.Bytes(), "message").String())
}

func TestSuiteRun(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
