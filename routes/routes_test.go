package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cabinet-backend/controllers"
	"cabinet-backend/models"
	"cabinet-backend/persistence"
	"cabinet-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testServer struct {
	router *gin.Engine
	store  *services.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := persistence.NewMemoryBackend()
	hub := services.NewNotificationHub(time.Minute)
	t.Cleanup(hub.Close)
	store := services.NewStore(backend, persistence.NewBackendSessionStore(backend), hub,
		services.WithLogger(zerolog.Nop()))
	require.NoError(t, store.Load(context.Background()))

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "cabinet_test_total", Help: "test"}))
	h := controllers.NewHandler(store, controllers.Options{JWTSecret: testSecret, Logger: zerolog.Nop()})
	r := SetupRouter(h, RouterConfig{JWTSecret: testSecret, Gatherer: reg, Logger: zerolog.Nop()})
	return &testServer{router: r, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/auth/login", "", controllers.LoginInput{Email: email, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string             `json:"token"`
		User  models.SessionUser `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, email, resp.User.Email)
	return resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cabinet_test_total")
}

func TestAPIRequiresToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/patients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/patients", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginFailure(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/auth/login", "", controllers.LoginInput{
		Email: services.DemoAdminEmail, Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, services.LoginFailedMessage, body["error"])

	w = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatientEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, services.DemoAdminEmail, services.DemoAdminPassword)

	w := s.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/patients", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Patient](t, w), 4)

	w = s.do(t, http.MethodGet, "/api/patients?q=tazi", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Patient](t, w), 1)

	w = s.do(t, http.MethodGet, "/api/patients/ghost", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodPut, "/api/patients/ghost", token, map[string]string{"notes": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/patients", token, models.PatientInput{FirstName: "Omar", LastName: "Fassi", Phone: "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/patients", token, models.PatientInput{FirstName: "Omar", LastName: "Fassi", Phone: "+212600112233"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.Patient](t, w)

	w = s.do(t, http.MethodGet, "/api/patients/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[struct {
		Patient      models.Patient       `json:"patient"`
		Appointments []models.Appointment `json:"appointments"`
	}](t, w)
	assert.Equal(t, created, detail.Patient)
	assert.NotNil(t, detail.Appointments)
	assert.Empty(t, detail.Appointments)

	w = s.do(t, http.MethodDelete, "/api/patients/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	_, ok := s.store.PatientByID(created.ID)
	assert.False(t, ok)
}

func TestAppointmentPaymentFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, services.DemoAdminEmail, services.DemoAdminPassword)
	patient := s.store.Patients()[0]

	w := s.do(t, http.MethodPost, "/api/appointments", token, models.AppointmentInput{
		PatientID: patient.ID,
		Date:      models.FormatDate(time.Now()),
		Time:      "18:30",
		Fee:       400,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	appt := decode[models.Appointment](t, w)
	assert.NotEmpty(t, appt.CreatedBy)

	completed := models.StatusCompleted
	w = s.do(t, http.MethodPut, "/api/appointments/"+appt.ID, token, models.AppointmentUpdate{Status: &completed})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	planned := models.StatusPlanned
	w = s.do(t, http.MethodPut, "/api/appointments/"+appt.ID, token, models.AppointmentUpdate{Status: &planned})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	pendingBefore := s.store.Stats().PendingPayments

	w = s.do(t, http.MethodPost, "/api/appointments/"+appt.ID+"/payment", token, controllers.PaymentInput{PaymentMethod: models.PaymentCash})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	invoice := decode[models.Invoice](t, w)
	assert.Equal(t, models.InvoicePaid, invoice.Status)
	assert.Equal(t, 400.0, invoice.Total)
	assert.Equal(t, pendingBefore-400, s.store.Stats().PendingPayments)

	w = s.do(t, http.MethodPost, "/api/appointments/"+appt.ID+"/payment", token, controllers.PaymentInput{PaymentMethod: models.PaymentCash})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/payments?status=paid", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	payments := decode[struct {
		Appointments []models.Appointment    `json:"appointments"`
		Summary      services.PaymentSummary `json:"summary"`
	}](t, w)
	assert.Len(t, payments.Appointments, 2)
	assert.Equal(t, 2, payments.Summary.PaidCount)
}

func TestInvoiceEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, services.DemoAdminEmail, services.DemoAdminPassword)
	patient := s.store.Patients()[0]

	w := s.do(t, http.MethodPost, "/api/invoices", token, models.InvoiceInput{
		PatientID: patient.ID,
		Items:     []models.InvoiceItemInput{{Description: "Certificat médical", Quantity: 1, UnitPrice: 150}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := decode[models.Invoice](t, w)
	assert.Contains(t, inv.Number, "-0003")

	w = s.do(t, http.MethodPost, "/api/invoices/"+inv.ID+"/pay", token, controllers.PaymentInput{PaymentMethod: models.PaymentTransfer})
	require.Equal(t, http.StatusOK, w.Code)
	paid := decode[models.Invoice](t, w)
	assert.Equal(t, models.InvoicePaid, paid.Status)

	w = s.do(t, http.MethodPost, "/api/invoices/"+inv.ID+"/pay", token, controllers.PaymentInput{PaymentMethod: models.PaymentCash})
	require.Equal(t, http.StatusOK, w.Code)
	again := decode[models.Invoice](t, w)
	assert.Equal(t, models.PaymentTransfer, again.PaymentMethod)

	w = s.do(t, http.MethodPost, "/api/invoices/ghost/pay", token, controllers.PaymentInput{PaymentMethod: models.PaymentCash})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoleGuards(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, services.DemoSecretaryEmail, services.DemoSecretaryPassword)
	patient := s.store.Patients()[0]

	w := s.do(t, http.MethodGet, "/api/medical-records", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, "/api/patients/"+patient.ID, token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/users", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/admin/reset-demo", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/appointments", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	doctor := s.login(t, services.DemoPractitionerEmail, services.DemoPractitionerPassword)
	w = s.do(t, http.MethodGet, "/api/medical-records", doctor, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, services.DemoAdminEmail, services.DemoAdminPassword)

	w := s.do(t, http.MethodPost, "/api/admin/reconcile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[map[string]int](t, w)["removed"])

	w = s.do(t, http.MethodPost, "/api/admin/reminders/run", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(t, http.MethodPost, "/api/admin/reset-demo", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, s.store.Patients(), 4)
}

func TestNotificationEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, services.DemoAdminEmail, services.DemoAdminPassword)
	n := s.store.Notifications().Publish("Bienvenue", models.NotifyInfo)

	w := s.do(t, http.MethodGet, "/api/notifications", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Notification](t, w), 1)

	w = s.do(t, http.MethodDelete, "/api/notifications/"+n.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodDelete, "/api/notifications/"+n.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (s *testServer) userID(t *testing.T, email string) string {
	t.Helper()
	for _, u := range s.store.Users() {
		if u.Email == email {
			return u.ID
		}
	}
	t.Fatalf("no user %s", email)
	return ""
}

func TestDeactivatedUserLosesAccess(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, services.DemoAdminEmail, services.DemoAdminPassword)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/users", token, nil).Code)

	inactive := false
	id := s.userID(t, services.DemoAdminEmail)
	require.NoError(t, s.store.UpdateUser(context.Background(), id, models.UserUpdate{IsActive: &inactive}))

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/users", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/admin/reset-demo", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/auth/me", token, nil).Code)
}

func TestDeletedUserLosesAccess(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, services.DemoPractitionerEmail, services.DemoPractitionerPassword)

	require.NoError(t, s.store.DeleteUser(context.Background(), s.userID(t, services.DemoPractitionerEmail)))

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/patients", token, nil).Code)
}

func TestRoleComesFromStoredUser(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, services.DemoAdminEmail, services.DemoAdminPassword)

	secretary := models.RoleSecretary
	id := s.userID(t, services.DemoAdminEmail)
	require.NoError(t, s.store.UpdateUser(context.Background(), id, models.UserUpdate{Role: &secretary}))

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/users", token, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/appointments", token, nil).Code)
}

func TestLogoutKeepsOtherUsersSession(t *testing.T) {
	s := newTestServer(t)
	secretary := s.login(t, services.DemoSecretaryEmail, services.DemoSecretaryPassword)
	admin := s.login(t, services.DemoAdminEmail, services.DemoAdminPassword)

	// the store session now belongs to the admin, who logged in last
	w := s.do(t, http.MethodPost, "/auth/logout", secretary, nil)
	require.Equal(t, http.StatusOK, w.Code)
	current, ok := s.store.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, services.DemoAdminEmail, current.Email)

	w = s.do(t, http.MethodPost, "/auth/logout", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, ok = s.store.CurrentUser()
	assert.False(t, ok)
}
