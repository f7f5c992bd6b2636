package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/langchou/haulguard/internal/models"
)

// truckSimulator 单辆车的场景回放器
// 遥测时间戳按虚拟时钟每条推进一分钟，墙钟只隔一秒发送
type truckSimulator struct {
	logger   *zap.Logger
	baseURL  string
	client   *http.Client
	truckID  string
	tripID   string
	lat      float64
	lon      float64
	destLat  float64
	destLon  float64
	weightKg float64
	scenario string
	clock    time.Time
	interval time.Duration
}

func newTruckSimulator(logger *zap.Logger, baseURL, truckID, scenario string, startLat, startLon, destLat, destLon, weight float64, interval time.Duration) *truckSimulator {
	return &truckSimulator{
		logger:   logger.With(zap.String("truck_id", truckID), zap.String("scenario", scenario)),
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		truckID:  truckID,
		tripID:   fmt.Sprintf("TRIP-%04d", rand.Intn(9000)+1000),
		lat:      startLat,
		lon:      startLon,
		destLat:  destLat,
		destLon:  destLon,
		weightKg: weight,
		scenario: scenario,
		clock:    time.Now(),
		interval: interval,
	}
}

func (s *truckSimulator) post(path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := s.client.Post(s.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

func (s *truckSimulator) register() {
	trip := models.TripConfig{
		TripID:              s.tripID,
		TruckID:             s.truckID,
		StartLocation:       models.GeoPoint{Latitude: s.lat, Longitude: s.lon},
		DestinationLocation: models.GeoPoint{Latitude: s.destLat, Longitude: s.destLon},
		AuthorizedStops: models.AuthorizedStops{
			{
				Location:           models.GeoPoint{Latitude: 22.4327, Longitude: 87.8672},
				RadiusMeters:       200,
				MaxDurationMinutes: 30,
				Name:               "Kolaghat Rest Point",
			},
		},
		TotalExpectedWeight: s.weightKg,
		WeightToleranceKg:   50.0,
	}

	if err := s.post("/api/v1/trips", trip); err != nil {
		s.logger.Warn("Failed to register trip", zap.Error(err))
		return
	}
	s.logger.Info("Trip registered", zap.String("trip_id", s.tripID))
}

func (s *truckSimulator) sendTelemetry(speed float64, ignition bool, desc string) {
	// 载重传感器噪声
	noise := rand.Float64()*4.0 - 2.0

	sample := models.Telemetry{
		TruckID:    s.truckID,
		Timestamp:  s.clock,
		Location:   models.GeoPoint{Latitude: s.lat, Longitude: s.lon},
		WeightKg:   s.weightKg + noise,
		SpeedKmh:   speed,
		IgnitionOn: ignition,
	}

	if err := s.post("/api/v1/telemetry", sample); err != nil {
		s.logger.Warn("Failed to send telemetry", zap.Error(err))
	} else {
		s.logger.Info(desc, zap.Float64("weight_kg", sample.WeightKg), zap.Float64("speed_kmh", speed))
	}

	s.clock = s.clock.Add(time.Minute)
	time.Sleep(s.interval)
}

func (s *truckSimulator) run() {
	s.register()
	time.Sleep(time.Second)

	if s.scenario == "theft" {
		s.runTheft()
	} else {
		s.runNormal()
	}
}

func (s *truckSimulator) runNormal() {
	// 正常行驶，向东南靠近加尔各答
	for i := 0; i < 60; i++ {
		s.lon += 0.004
		s.lat -= 0.001
		s.sendTelemetry(45.0, true, "Driving")
	}

	// 授权停靠休息
	s.logger.Info("Arrived at authorized stop")
	oldLat, oldLon := s.lat, s.lon
	s.lat, s.lon = 22.6000, 87.0000

	for i := 0; i < 15; i++ {
		s.sendTelemetry(0.0, false, "Resting at dhaba")
	}

	// 恢复行驶
	s.lat, s.lon = oldLat-0.01, oldLon+0.04
	s.sendTelemetry(40.0, true, "Resuming trip")

	for i := 0; i < 80; i++ {
		s.lon += 0.004
		s.lat -= 0.001
		s.sendTelemetry(50.0, true, "Cruising to Kolkata")
	}
}

func (s *truckSimulator) runTheft() {
	// 起初正常行驶
	for i := 0; i < 40; i++ {
		s.lon += 0.004
		s.lat -= 0.001
		s.sendTelemetry(45.0, true, "Driving normal")
	}

	// 偏离路线向北
	s.logger.Warn("Deviating from route")
	for i := 0; i < 30; i++ {
		s.lat += 0.002
		s.sendTelemetry(40.0, true, "Route deviation")
	}

	// 非授权停车
	s.logger.Warn("Suspicious stop")
	for i := 0; i < 20; i++ {
		s.sendTelemetry(0.0, true, "Unauthorized stop")
	}

	// 盗窃事件：载重骤降 500kg
	s.logger.Warn("Theft event: weight drop")
	s.weightKg -= 500.0
	s.sendTelemetry(0.0, false, "Weight drop detected")
	time.Sleep(2 * time.Second)

	// 返回主路
	s.logger.Info("Returning to route")
	for i := 0; i < 30; i++ {
		s.lat -= 0.002
		s.sendTelemetry(50.0, true, "Returning to route")
	}
}

func main() {
	baseURL := flag.String("base-url", "http://localhost:4000", "decision engine base URL")
	interval := flag.Duration("interval", time.Second, "wall-clock delay between telemetry samples")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// 贾姆谢德布尔 -> 加尔各答走廊，三辆车并行回放
	sims := []*truckSimulator{
		newTruckSimulator(logger, *baseURL, "KA-01-AB-1234", "normal", 22.8046, 86.2029, 22.5726, 88.3639, 25000.0, *interval),
		newTruckSimulator(logger, *baseURL, "KA-02-XY-5678", "theft", 22.8046, 86.2029, 22.5726, 88.3639, 22000.0, *interval),
		newTruckSimulator(logger, *baseURL, "KA-03-GH-9012", "normal", 22.8046, 86.2029, 22.5726, 88.3639, 21000.0, *interval),
	}

	var wg sync.WaitGroup
	for _, sim := range sims {
		wg.Add(1)
		go func(s *truckSimulator) {
			defer wg.Done()
			s.run()
		}(sim)
	}
	wg.Wait()

	logger.Info("All simulations complete")
}
