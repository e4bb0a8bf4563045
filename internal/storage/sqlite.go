package storage

import (
	"gatepass-client/internal/config"
)

type SQLiteProvider struct {
	SQLProvider
}

func NewSQLiteProvider(config *config.Storage) (provider *SQLiteProvider) {
	dsn := config.SQLite.Path + "?_busy_timeout=5000&_fk=1"
	sp := NewSQLProvider("sqlite3", dsn)
	if sp == nil {
		return nil
	}
	// A single writer keeps "database is locked" races out of the queue.
	sp.db.SetMaxOpenConns(1)
	return &SQLiteProvider{
		SQLProvider: *sp,
	}
}
