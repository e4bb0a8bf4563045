package storage

import (
	"context"
	"errors"
	"log/slog"

	"gatepass-client/internal/config"
)

// A put or delete against a single collection is atomic and durable before
// it returns. There are no cross-collection transactions; callers must not
// assume all-or-nothing behaviour when one logical event touches more than
// one collection.
type Provider interface {
	Close() error
	GetSchemaVersion(ctx context.Context) (int, error)

	// User cache
	PutUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsersByRole(ctx context.Context, role string) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
	ClearUsers(ctx context.Context) error

	// Asset cache
	PutAsset(ctx context.Context, asset Asset) error
	GetAsset(ctx context.Context, id string) (*Asset, error)
	GetAssetByQRCode(ctx context.Context, qrCode string) (*Asset, error)
	ListAssetsByUser(ctx context.Context, userID string) ([]Asset, error)
	DeleteAsset(ctx context.Context, id string) error
	ClearAssets(ctx context.Context) error

	// Vehicle cache
	PutVehicle(ctx context.Context, vehicle Vehicle) error
	GetVehicle(ctx context.Context, id string) (*Vehicle, error)
	GetVehicleByPlate(ctx context.Context, plate string) (*Vehicle, error)
	ListVehiclesByUser(ctx context.Context, userID string) ([]Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error
	ClearVehicles(ctx context.Context) error

	// Gate log journal, append-only
	AppendGateLog(ctx context.Context, log GateLog) error
	ListGateLogs(ctx context.Context, limit int) ([]GateLog, error)
	ListGateLogsByGuard(ctx context.Context, guardID string) ([]GateLog, error)
	ListGateLogsByType(ctx context.Context, logType string) ([]GateLog, error)
	ClearGateLogs(ctx context.Context) error

	// Pending action queue, FIFO by id
	AppendPendingAction(ctx context.Context, action PendingAction) error
	ListPendingActions(ctx context.Context) ([]PendingAction, error)
	DeletePendingAction(ctx context.Context, id string) error
	ClearPendingActions(ctx context.Context) error

	// Persisted credential, single row
	PutCredential(ctx context.Context, cred Credential) error
	GetCredential(ctx context.Context) (*Credential, error)
	DeleteCredential(ctx context.Context) error

	// Stolen plate watchlist
	PutWatchlistEntry(ctx context.Context, entry WatchlistEntry) error
	GetWatchlistEntry(ctx context.Context, plate string) (*WatchlistEntry, error)
	ClearWatchlist(ctx context.Context) error
}

var (
	// ErrDuplicateQRCode is returned when a put would give two assets the
	// same QR code identifier.
	ErrDuplicateQRCode = errors.New("duplicate qr code")
)

func NewProvider(config *config.Storage) Provider {
	switch {
	case config.SQLite != nil:
		provider := NewSQLiteProvider(config)
		if provider == nil {
			slog.Error("Failed to open sqlite storage")
			return nil
		}
		if err := provider.runMigrations("sqlite3"); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			return nil
		}
		return provider

	default:
		slog.Error("Unsupported storage configuration", "config", config)
	}

	return nil
}
