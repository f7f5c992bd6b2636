package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB 数据库连接池封装
type DB struct {
	Pool *pgxpool.Pool
}

// New 创建数据库连接
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	// 连接池配置
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// 测试连接
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close 关闭连接池
func (db *DB) Close() {
	db.Pool.Close()
}

// Migrate 执行数据库迁移
func (db *DB) Migrate(ctx context.Context) error {
	migrations := []string{
		migrationCreateTrips,
		migrationCreateTelemetry,
		migrationCreateAlerts,
		migrationCreateDrivers,
		migrationCreateCustodyEvents,
	}

	for _, m := range migrations {
		if _, err := db.Pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}

	return nil
}

// 数据库迁移 SQL
const migrationCreateTrips = `
CREATE TABLE IF NOT EXISTS trips (
    truck_id VARCHAR(64) PRIMARY KEY,
    trip_id VARCHAR(64) NOT NULL,
    start_lat DOUBLE PRECISION NOT NULL,
    start_lng DOUBLE PRECISION NOT NULL,
    dest_lat DOUBLE PRECISION NOT NULL,
    dest_lng DOUBLE PRECISION NOT NULL,
    authorized_stops JSONB NOT NULL DEFAULT '[]',
    total_expected_weight_kg DOUBLE PRECISION NOT NULL,
    weight_tolerance_kg DOUBLE PRECISION NOT NULL DEFAULT 10,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_trips_trip_id ON trips(trip_id);
`

const migrationCreateTelemetry = `
CREATE TABLE IF NOT EXISTS telemetry (
    id BIGSERIAL PRIMARY KEY,
    truck_id VARCHAR(64) NOT NULL,
    timestamp TIMESTAMP WITH TIME ZONE NOT NULL,
    latitude DOUBLE PRECISION NOT NULL,
    longitude DOUBLE PRECISION NOT NULL,
    weight_kg DOUBLE PRECISION NOT NULL,
    speed_kmh DOUBLE PRECISION NOT NULL,
    ignition_on BOOLEAN NOT NULL,
    status VARCHAR(20)
);
CREATE INDEX IF NOT EXISTS idx_telemetry_truck_id ON telemetry(truck_id);
CREATE INDEX IF NOT EXISTS idx_telemetry_timestamp ON telemetry(timestamp);
`

const migrationCreateAlerts = `
CREATE TABLE IF NOT EXISTS alerts (
    alert_id VARCHAR(64) PRIMARY KEY,
    trip_id VARCHAR(64) NOT NULL,
    truck_id VARCHAR(64) NOT NULL,
    timestamp TIMESTAMP WITH TIME ZONE NOT NULL,
    type VARCHAR(32) NOT NULL,
    severity VARCHAR(16) NOT NULL,
    description TEXT NOT NULL,
    latitude DOUBLE PRECISION NOT NULL,
    longitude DOUBLE PRECISION NOT NULL,
    agent_name VARCHAR(64) NOT NULL DEFAULT '',
    why_flagged TEXT NOT NULL DEFAULT '',
    sop_rule VARCHAR(64),
    action_taken TEXT,
    status VARCHAR(16) NOT NULL DEFAULT 'OPEN'
);
CREATE INDEX IF NOT EXISTS idx_alerts_truck_id ON alerts(truck_id);
CREATE INDEX IF NOT EXISTS idx_alerts_timestamp ON alerts(timestamp);
`

const migrationCreateDrivers = `
CREATE TABLE IF NOT EXISTS drivers (
    truck_id VARCHAR(64) PRIMARY KEY,
    driver_name VARCHAR(255) NOT NULL,
    phone VARCHAR(32) NOT NULL,
    company VARCHAR(255) NOT NULL
);
`

const migrationCreateCustodyEvents = `
CREATE TABLE IF NOT EXISTS custody_events (
    event_id VARCHAR(64) PRIMARY KEY,
    truck_id VARCHAR(64) NOT NULL,
    stop_name VARCHAR(255) NOT NULL,
    photo_url TEXT,
    signature TEXT,
    notes TEXT,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_custody_events_truck_id ON custody_events(truck_id);
`
