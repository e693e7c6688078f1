package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/safebadge/internal/api/models"
	"github.com/jon4hz/safebadge/internal/config"
	"github.com/jon4hz/safebadge/internal/database"
	"github.com/jon4hz/safebadge/internal/database/memory"
	"github.com/jon4hz/safebadge/internal/engine"
	"github.com/jon4hz/safebadge/internal/metrics"
	"github.com/stretchr/testify/suite"
)

func testConfig() *config.Config {
	return &config.Config{
		Listen: "127.0.0.1:0",
		Database: &config.DatabaseConfig{
			Type: config.DatabaseTypeMemory,
		},
		Demo: &config.DemoConfig{
			Username:     "demo",
			Password:     "password",
			FullName:     "Demo User",
			Phone:        "+1234567890",
			Email:        "demo@example.com",
			BatteryLevel: 85,
			Latitude:     40.7128,
			Longitude:    -74.0060,
			Address:      "New York, NY, USA",
		},
		Hold: &config.HoldConfig{
			Threshold:      3 * time.Second,
			SampleInterval: 100 * time.Millisecond,
		},
		Simulation: &config.SimulationConfig{Enabled: false},
		Cache:      &config.CacheConfig{Type: config.CacheTypeMemory},
		Gravatar:   &config.GravatarConfig{Enabled: true, DefaultImage: "mp", Rating: "g", Size: 80},
	}
}

type APITestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	engine  *engine.Engine
	metrics *metrics.Metrics
	server  *Server
	demo    *database.User
	other   *database.User
}

func (suite *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.ctx = context.Background()
	suite.store = memory.New()
	suite.metrics = metrics.New()

	cfg := testConfig()
	eng, err := engine.New(cfg, suite.store, engine.WithMetrics(suite.metrics))
	suite.Require().NoError(err)
	suite.engine = eng

	suite.demo, err = eng.EnsureDemoUser(suite.ctx)
	suite.Require().NoError(err)

	suite.other = &database.User{Username: "other", Password: "secret", FullName: "Other User"}
	suite.Require().NoError(suite.store.CreateUser(suite.ctx, suite.other))
	suite.Require().NoError(suite.store.CreateDeviceSettings(suite.ctx, &database.DeviceSettings{
		UserID:       suite.other.ID,
		IsActive:     true,
		BatteryLevel: 50,
	}))

	suite.server, err = New(cfg, eng, suite.metrics, true)
	suite.Require().NoError(err)
}

func (suite *APITestSuite) TearDownTest() {
	suite.NoError(suite.engine.Close())
}

func (suite *APITestSuite) request(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	suite.server.Handler().ServeHTTP(w, req)
	return w
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (suite *APITestSuite) decode(w *httptest.ResponseRecorder, v any) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (suite *APITestSuite) assertError(w *httptest.ResponseRecorder, status int, message string) {
	suite.Equal(status, w.Code, w.Body.String())
	var resp models.ErrorResponse
	suite.decode(w, &resp)
	suite.Equal(message, resp.Message)
}

func (suite *APITestSuite) TestNew_RequiresConfigAndEngine() {
	_, err := New(nil, suite.engine, nil, true)
	suite.Error(err)

	_, err = New(testConfig(), nil, nil, true)
	suite.Error(err)
}

func (suite *APITestSuite) TestHealthz() {
	w := suite.request(http.MethodGet, "/healthz", "")
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"status":"ok"}`, w.Body.String())
}

func (suite *APITestSuite) TestRequestID() {
	w := suite.request(http.MethodGet, "/healthz", "")
	suite.NotEmpty(w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	suite.server.Handler().ServeHTTP(w, req)
	suite.Equal("abc-123", w.Header().Get("X-Request-ID"))
}

func (suite *APITestSuite) TestMetrics() {
	suite.request(http.MethodGet, "/api/user", "")

	w := suite.request(http.MethodGet, "/metrics", "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `safebadge_http_requests_total{method="GET",route="/api/user",status="200"} 1`)
}

func (suite *APITestSuite) TestGetUser() {
	w := suite.request(http.MethodGet, "/api/user", "")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.NotContains(w.Body.String(), "password")

	var user models.User
	suite.decode(w, &user)
	suite.Equal(suite.demo.ID, user.ID)
	suite.Equal("demo", user.Username)
	suite.Equal("Demo User", user.FullName)
	suite.Contains(user.AvatarURL, "https://www.gravatar.com/avatar/")
}

func (suite *APITestSuite) TestUnknownDemoUser() {
	cfg := testConfig()
	cfg.Demo.Username = "ghost"
	server, err := New(cfg, suite.engine, nil, true)
	suite.Require().NoError(err)

	req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	suite.assertError(w, http.StatusNotFound, "User not found")
}

func (suite *APITestSuite) TestContacts_Lifecycle() {
	w := suite.request(http.MethodPost, "/api/contacts", `{"name":"Jane Doe","phone":"+15550100","email":"jane@example.com"}`)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created models.Contact
	suite.decode(w, &created)
	suite.NotZero(created.ID)
	suite.Equal(suite.demo.ID, created.UserID)
	suite.Equal("Jane Doe", created.Name)

	w = suite.request(http.MethodGet, "/api/contacts", "")
	suite.Require().Equal(http.StatusOK, w.Code)
	var contacts []models.Contact
	suite.decode(w, &contacts)
	suite.Require().Len(contacts, 1)
	suite.Equal(created.ID, contacts[0].ID)

	w = suite.request(http.MethodPut, "/api/contacts/"+itoa(created.ID), `{"phone":"+15550199"}`)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated models.Contact
	suite.decode(w, &updated)
	suite.Equal("Jane Doe", updated.Name)
	suite.Equal("+15550199", updated.Phone)

	w = suite.request(http.MethodDelete, "/api/contacts/"+itoa(created.ID), "")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"success":true}`, w.Body.String())

	w = suite.request(http.MethodGet, "/api/contacts", "")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.JSONEq(`[]`, w.Body.String())
}

func (suite *APITestSuite) TestCreateContact_Validation() {
	w := suite.request(http.MethodPost, "/api/contacts", `{"name":"Jane Doe"}`)
	suite.assertError(w, http.StatusBadRequest, "Name and phone are required")

	w = suite.request(http.MethodPost, "/api/contacts", `{"name":`)
	suite.assertError(w, http.StatusBadRequest, "Invalid request body")
}

func (suite *APITestSuite) TestContact_ForeignAndMissing() {
	foreign := &database.EmergencyContact{UserID: suite.other.ID, Name: "Bob", Phone: "+15550111"}
	suite.Require().NoError(suite.store.CreateContact(suite.ctx, foreign))

	w := suite.request(http.MethodPut, "/api/contacts/"+itoa(foreign.ID), `{"name":"Mallory"}`)
	suite.assertError(w, http.StatusForbidden, "Not authorized to update this contact")

	stored, err := suite.store.GetContact(suite.ctx, foreign.ID)
	suite.Require().NoError(err)
	suite.Equal("Bob", stored.Name)

	w = suite.request(http.MethodDelete, "/api/contacts/"+itoa(foreign.ID), "")
	suite.assertError(w, http.StatusForbidden, "Not authorized to delete this contact")

	w = suite.request(http.MethodDelete, "/api/contacts/999", "")
	suite.assertError(w, http.StatusNotFound, "Contact not found")

	w = suite.request(http.MethodPut, "/api/contacts/abc", `{}`)
	suite.assertError(w, http.StatusBadRequest, "Invalid contact ID")
}

func (suite *APITestSuite) TestDeviceSettings_PartialUpdate() {
	w := suite.request(http.MethodPut, "/api/device-settings", `{"soundAlarm":false}`)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var settings models.DeviceSettings
	suite.decode(w, &settings)
	suite.False(settings.SoundAlarm)
	suite.True(settings.IsActive)
	suite.True(settings.LocationSharing)
	suite.True(settings.SMSAlerts)
	suite.True(settings.EmergencyServices)
	suite.Equal(85, settings.BatteryLevel)
}

func (suite *APITestSuite) TestBattery_Scenario() {
	w := suite.request(http.MethodPut, "/api/device-settings/battery", `{"batteryLevel":-5}`)
	suite.assertError(w, http.StatusBadRequest, "Invalid battery level")

	w = suite.request(http.MethodGet, "/api/device-settings", "")
	var settings models.DeviceSettings
	suite.decode(w, &settings)
	suite.Equal(85, settings.BatteryLevel)

	w = suite.request(http.MethodPut, "/api/device-settings/battery", `{"batteryLevel":10}`)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &settings)
	suite.Equal(10, settings.BatteryLevel)

	w = suite.request(http.MethodPut, "/api/device-settings/battery", `{}`)
	suite.assertError(w, http.StatusBadRequest, "Invalid battery level")

	w = suite.request(http.MethodPut, "/api/device-settings/battery", `{"batteryLevel":"full"}`)
	suite.assertError(w, http.StatusBadRequest, "Invalid battery level")
}

func (suite *APITestSuite) TestLocation() {
	w := suite.request(http.MethodPut, "/api/device-settings/location", `{"latitude":48.8584}`)
	suite.assertError(w, http.StatusBadRequest, "Invalid location data")

	w = suite.request(http.MethodPut, "/api/device-settings/location", `{"latitude":91,"longitude":2.2945}`)
	suite.assertError(w, http.StatusBadRequest, "Invalid location data")

	w = suite.request(http.MethodPut, "/api/device-settings/location", `{"latitude":48.8584,"longitude":2.2945,"address":"Eiffel Tower"}`)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var settings models.DeviceSettings
	suite.decode(w, &settings)
	suite.Require().NotNil(settings.LastLocation)
	suite.Equal(models.Location{Latitude: 48.8584, Longitude: 2.2945, Address: "Eiffel Tower"}, *settings.LastLocation)

	w = suite.request(http.MethodPut, "/api/device-settings/location", `{"latitude":0,"longitude":0}`)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.decode(w, &settings)
	suite.Equal("0, 0", settings.LastLocation.Address)
}

func (suite *APITestSuite) TestAlerts_Lifecycle() {
	w := suite.request(http.MethodPost, "/api/alerts", `{}`)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var alert models.Alert
	suite.decode(w, &alert)
	suite.True(alert.IsActive)
	suite.Equal(suite.demo.ID, alert.UserID)
	suite.Equal("New York, NY, USA", alert.Location.Address)

	w = suite.request(http.MethodGet, "/api/alerts/"+itoa(alert.ID), "")
	suite.Require().Equal(http.StatusOK, w.Code)

	for range 2 {
		w = suite.request(http.MethodPut, "/api/alerts/"+itoa(alert.ID)+"/deactivate", "")
		suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
		var deactivated models.Alert
		suite.decode(w, &deactivated)
		suite.False(deactivated.IsActive)
	}

	w = suite.request(http.MethodGet, "/api/alerts", "")
	suite.Require().Equal(http.StatusOK, w.Code)
	var alerts []models.Alert
	suite.decode(w, &alerts)
	suite.Require().Len(alerts, 1)
	suite.False(alerts[0].IsActive)

	w = suite.request(http.MethodGet, "/api/history", "")
	suite.Require().Equal(http.StatusOK, w.Code)
	var events []models.HistoryEvent
	suite.decode(w, &events)
	suite.Require().Len(events, 2)
	suite.Equal(string(database.HistoryEventAlertDeactivated), events[0].EventType)
	suite.Equal(string(database.HistoryEventAlertCreated), events[1].EventType)
}

func (suite *APITestSuite) TestCreateAlert_DeviceInactive() {
	w := suite.request(http.MethodPut, "/api/device-settings", `{"isActive":false}`)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodPost, "/api/alerts", `{}`)
	suite.assertError(w, http.StatusBadRequest, "Device is not active")

	alerts, err := suite.store.GetAlertsByUserID(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)
	suite.Empty(alerts)
}

func (suite *APITestSuite) TestAlert_ForeignAndMissing() {
	foreign := &database.EmergencyAlert{UserID: suite.other.ID, Timestamp: time.Now(), Location: database.UnknownLocation, IsActive: true}
	suite.Require().NoError(suite.store.CreateAlert(suite.ctx, foreign))

	w := suite.request(http.MethodPut, "/api/alerts/"+itoa(foreign.ID)+"/deactivate", "")
	suite.assertError(w, http.StatusForbidden, "Not authorized to update this alert")

	w = suite.request(http.MethodGet, "/api/alerts/"+itoa(foreign.ID), "")
	suite.assertError(w, http.StatusForbidden, "Not authorized to view this alert")

	w = suite.request(http.MethodPut, "/api/alerts/999/deactivate", "")
	suite.assertError(w, http.StatusNotFound, "Alert not found")

	w = suite.request(http.MethodPut, "/api/alerts/-1/deactivate", "")
	suite.assertError(w, http.StatusBadRequest, "Invalid alert ID")
}

func (suite *APITestSuite) TestHistory_InvalidLimit() {
	w := suite.request(http.MethodGet, "/api/history?limit=abc", "")
	suite.assertError(w, http.StatusBadRequest, "Invalid limit")
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
