package localstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresStore backs the local store with a shared database, for kiosk and
// gateway deployments where the process has no durable filesystem. Rows are
// scoped by a device ID so many anonymous sessions can share one table.
type PostgresStore struct {
	db       *sql.DB
	deviceID string
}

// NewPostgresStore binds a store to a device ID. Pass an empty deviceID to
// mint a fresh one; the caller is expected to persist it across restarts if
// the session should survive them.
func NewPostgresStore(db *sql.DB, deviceID string) (*PostgresStore, error) {
	if deviceID == "" {
		deviceID = uuid.New().String()
	}

	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS local_kv (
		device_id  TEXT        NOT NULL,
		key        TEXT        NOT NULL,
		value      BYTEA       NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (device_id, key)
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create local_kv table: %w", err)
	}

	return &PostgresStore{db: db, deviceID: deviceID}, nil
}

// DeviceID returns the ID scoping this store's rows.
func (ps *PostgresStore) DeviceID() string {
	return ps.deviceID
}

func (ps *PostgresStore) Read(key string) ([]byte, error) {
	var value []byte
	err := ps.db.QueryRow(
		"SELECT value FROM local_kv WHERE device_id = $1 AND key = $2",
		ps.deviceID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (ps *PostgresStore) Write(key string, data []byte) error {
	_, err := ps.db.Exec(
		`INSERT INTO local_kv (device_id, key, value, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (device_id, key) DO UPDATE SET value = $3, updated_at = $4`,
		ps.deviceID, key, data, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// ConnectPostgres establishes a pooled connection for PostgresStore use.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}
