package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/haulguard/internal/detector"
	"github.com/langchou/haulguard/internal/engine"
	"github.com/langchou/haulguard/internal/models"
	"github.com/langchou/haulguard/pkg/ws"
)

type stubStore struct{}

func (s *stubStore) LoadTrips(ctx context.Context) ([]*models.TripConfig, error) { return nil, nil }
func (s *stubStore) LoadLatestTelemetry(ctx context.Context, truckID string) (*models.Telemetry, error) {
	return nil, nil
}
func (s *stubStore) LoadDrivers(ctx context.Context) ([]*models.Driver, error) { return nil, nil }
func (s *stubStore) LoadAlerts(ctx context.Context) ([]*models.Alert, error)   { return nil, nil }
func (s *stubStore) SaveTrip(ctx context.Context, trip *models.TripConfig) error { return nil }
func (s *stubStore) SaveTelemetry(ctx context.Context, t *models.Telemetry) error { return nil }
func (s *stubStore) SaveAlert(ctx context.Context, alert *models.Alert) error   { return nil }
func (s *stubStore) SaveDriver(ctx context.Context, driver *models.Driver) error { return nil }
func (s *stubStore) SaveCustodyEvent(ctx context.Context, event *models.CustodyEvent) error {
	return nil
}
func (s *stubStore) UpdateAlertStatus(ctx context.Context, alertID string, status models.AlertStatus) error {
	return nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	eng, err := engine.New(context.Background(), logger, &stubStore{}, nil, detector.DefaultThresholds())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	handler := NewHandler(logger, eng, ws.NewHub(logger))
	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerTestTrip(t *testing.T, router *gin.Engine, truckID string) {
	t.Helper()
	trip := models.TripConfig{
		TripID:              "TRIP-1001",
		TruckID:             truckID,
		StartLocation:       models.GeoPoint{Latitude: 22.8046, Longitude: 86.2029},
		DestinationLocation: models.GeoPoint{Latitude: 22.5726, Longitude: 88.3639},
		TotalExpectedWeight: 25000,
		WeightToleranceKg:   10,
	}
	w := doJSON(t, router, http.MethodPost, "/api/v1/trips", trip)
	if w.Code != http.StatusOK {
		t.Fatalf("register trip status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestRegisterTripValidation(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/trips", models.TripConfig{TripID: "TRIP-1"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing truck_id: status = %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/trips", map[string]string{"trip_id": "{"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad payload: status = %d, want 400", w.Code)
	}
}

func TestIngestTelemetryReturnsAlerts(t *testing.T) {
	router := newTestRouter(t)
	registerTestTrip(t, router, "TRK-1")

	// 远离安全区的大幅掉重，应触发告警
	sample := models.Telemetry{
		TruckID:    "TRK-1",
		Timestamp:  time.Now(),
		Location:   models.GeoPoint{Latitude: 22.7000, Longitude: 87.0000},
		WeightKg:   20000,
		SpeedKmh:   45,
		IgnitionOn: true,
	}
	w := doJSON(t, router, http.MethodPost, "/api/v1/telemetry", sample)
	if w.Code != http.StatusOK {
		t.Fatalf("telemetry status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		NewAlerts []models.Alert `json:"new_alerts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.NewAlerts) == 0 {
		t.Fatal("expected at least one alert for a major weight drop")
	}
	if resp.NewAlerts[0].Type != models.AlertTypeWeightMismatch {
		t.Errorf("alert type = %s, want WEIGHT_MISMATCH", resp.NewAlerts[0].Type)
	}
}

func TestIngestTelemetryUnknownTruck(t *testing.T) {
	router := newTestRouter(t)

	sample := models.Telemetry{
		TruckID:   "GHOST",
		Timestamp: time.Now(),
		WeightKg:  1000,
	}
	w := doJSON(t, router, http.MethodPost, "/api/v1/telemetry", sample)
	if w.Code != http.StatusOK {
		t.Fatalf("telemetry status = %d", w.Code)
	}

	var resp struct {
		NewAlerts []models.Alert `json:"new_alerts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.NewAlerts) != 0 {
		t.Errorf("unknown truck produced %d alerts, want 0", len(resp.NewAlerts))
	}
}

func TestListAlertsFilter(t *testing.T) {
	router := newTestRouter(t)
	registerTestTrip(t, router, "TRK-1")

	sample := models.Telemetry{
		TruckID:   "TRK-1",
		Timestamp: time.Now(),
		Location:  models.GeoPoint{Latitude: 22.7000, Longitude: 87.0000},
		WeightKg:  20000,
		SpeedKmh:  45,
	}
	doJSON(t, router, http.MethodPost, "/api/v1/telemetry", sample)

	w := doJSON(t, router, http.MethodGet, "/api/v1/alerts?truck_id=TRK-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("alerts status = %d", w.Code)
	}
	var resp struct {
		Data []models.Alert `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Data) == 0 {
		t.Fatal("expected alerts for TRK-1")
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/alerts?truck_id=OTHER", nil)
	var other struct {
		Data []models.Alert `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &other); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(other.Data) != 0 {
		t.Errorf("filter leaked %d alerts from another truck", len(other.Data))
	}
}

func TestResolveAlertNotFound(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/alerts/resolve", map[string]string{"alert_id": "missing"})
	if w.Code != http.StatusNotFound {
		t.Errorf("resolve missing alert: status = %d, want 404", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/alerts/resolve", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("resolve without alert_id: status = %d, want 400", w.Code)
	}
}

func TestResolveAlertRoundTrip(t *testing.T) {
	router := newTestRouter(t)
	registerTestTrip(t, router, "TRK-1")

	sample := models.Telemetry{
		TruckID:   "TRK-1",
		Timestamp: time.Now(),
		Location:  models.GeoPoint{Latitude: 22.7000, Longitude: 87.0000},
		WeightKg:  20000,
		SpeedKmh:  45,
	}
	w := doJSON(t, router, http.MethodPost, "/api/v1/telemetry", sample)

	var resp struct {
		NewAlerts []models.Alert `json:"new_alerts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.NewAlerts) == 0 {
		t.Fatal("expected an alert to resolve")
	}
	alertID := resp.NewAlerts[0].AlertID

	w = doJSON(t, router, http.MethodPost, "/api/v1/alerts/resolve", map[string]string{"alert_id": alertID})
	if w.Code != http.StatusOK {
		t.Fatalf("resolve status = %d, body %s", w.Code, w.Body.String())
	}
	var resolved struct {
		Data models.Alert `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resolved); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resolved.Data.Status != models.AlertStatusResolved {
		t.Errorf("status after resolve = %s, want RESOLVED", resolved.Data.Status)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/alerts/unresolve", map[string]string{"alert_id": alertID})
	if w.Code != http.StatusOK {
		t.Fatalf("unresolve status = %d", w.Code)
	}
}

func TestGetTruckStatus(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/status/TRK-404", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown truck status = %d, want 404", w.Code)
	}

	registerTestTrip(t, router, "TRK-1")
	w = doJSON(t, router, http.MethodGet, "/api/v1/status/TRK-1", nil)
	if w.Code != http.StatusOK {
		t.Errorf("registered truck status = %d, want 200", w.Code)
	}
}

func TestGetDriverFallback(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/driver/TRK-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("driver status = %d", w.Code)
	}
	var resp struct {
		Data models.Driver `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.DriverName != "Unknown" {
		t.Errorf("fallback driver name = %q, want Unknown", resp.Data.DriverName)
	}

	driver := models.Driver{TruckID: "TRK-1", DriverName: "Ramesh Kumar", Phone: "+91-98000", Company: "Tata Steel Logistics"}
	w = doJSON(t, router, http.MethodPost, "/api/v1/driver", driver)
	if w.Code != http.StatusOK {
		t.Fatalf("set driver status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/driver/TRK-1", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.DriverName != "Ramesh Kumar" {
		t.Errorf("driver name = %q, want Ramesh Kumar", resp.Data.DriverName)
	}
}

func TestEdgeModeEndpoints(t *testing.T) {
	router := newTestRouter(t)

	offline := map[string]bool{"offline": true}
	w := doJSON(t, router, http.MethodPost, "/api/v1/edge/TRK-404", offline)
	if w.Code != http.StatusNotFound {
		t.Errorf("edge mode on unknown truck: status = %d, want 404", w.Code)
	}

	registerTestTrip(t, router, "TRK-1")
	w = doJSON(t, router, http.MethodPost, "/api/v1/edge/TRK-1", offline)
	if w.Code != http.StatusOK {
		t.Fatalf("edge mode status = %d", w.Code)
	}

	// 离线期间的遥测只进缓冲，不产生告警
	for i := 0; i < 3; i++ {
		sample := models.Telemetry{
			TruckID:   "TRK-1",
			Timestamp: time.Now().Add(time.Duration(i) * time.Minute),
			Location:  models.GeoPoint{Latitude: 22.7000, Longitude: 87.0000},
			WeightKg:  20000,
			SpeedKmh:  45,
		}
		resp := doJSON(t, router, http.MethodPost, "/api/v1/telemetry", sample)
		var body struct {
			NewAlerts []models.Alert `json:"new_alerts"`
		}
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal response: %v", err)
		}
		if len(body.NewAlerts) != 0 {
			t.Fatalf("buffered sample %d produced alerts", i)
		}
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/edge/TRK-1/sync", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("sync status = %d, body %s", w.Code, w.Body.String())
	}
	var sync struct {
		Replayed int `json:"replayed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sync); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if sync.Replayed != 3 {
		t.Errorf("replayed = %d, want 3", sync.Replayed)
	}
}

func TestCustodyEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/custody", map[string]string{"truck_id": "TRK-1"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("custody without stop_name: status = %d, want 400", w.Code)
	}

	payload := map[string]string{
		"truck_id":  "TRK-1",
		"stop_name": "Kolaghat Rest Point",
		"signature": "sig-data",
	}
	w = doJSON(t, router, http.MethodPost, "/api/v1/custody", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("custody status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/custody/TRK-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list custody status = %d", w.Code)
	}
	var resp struct {
		Data []models.CustodyEvent `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("custody events = %d, want 1", len(resp.Data))
	}
	if resp.Data[0].StopName != "Kolaghat Rest Point" {
		t.Errorf("stop name = %q", resp.Data[0].StopName)
	}
}

func TestFleetSummaryAndTrucks(t *testing.T) {
	router := newTestRouter(t)
	registerTestTrip(t, router, "TRK-1")
	registerTestTrip(t, router, "TRK-2")

	w := doJSON(t, router, http.MethodGet, "/api/v1/trucks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("trucks status = %d", w.Code)
	}
	var trucks struct {
		Data []string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &trucks); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(trucks.Data) != 2 {
		t.Errorf("trucks = %d, want 2", len(trucks.Data))
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/fleet/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("summary status = %d", w.Code)
	}
	var summary struct {
		Data engine.FleetSummary `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if summary.Data.ActiveVehicles != 2 {
		t.Errorf("active vehicles = %d, want 2", summary.Data.ActiveVehicles)
	}
}

func TestPredictRiskEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/risk/TRK-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("risk status = %d", w.Code)
	}
	var resp struct {
		Data models.RiskAssessment `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.TruckID != "TRK-1" {
		t.Errorf("risk truck_id = %q", resp.Data.TruckID)
	}
	if resp.Data.RiskScore <= 0 {
		t.Errorf("risk score = %v, want > 0", resp.Data.RiskScore)
	}
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("health status field = %v", resp["status"])
	}
}
