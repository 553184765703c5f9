package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/healthlog/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/healthlog/internal/client/repositories/records"
	"github.com/dmitrijs2005/healthlog/internal/client/repositories/users"

	_ "modernc.org/sqlite"
)

// Repositories bundles the local stores that share one database handle.
type Repositories struct {
	DB       *sql.DB
	Records  *records.SQLiteRepository
	Metadata *metadata.SQLiteRepository
	Users    *users.SQLiteRepository
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

// InitDatabase opens the SQLite database at dsn and applies the schema.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer keeps SQLite from reporting SQLITE_BUSY under interleaved CRUD and sync
	db.SetMaxOpenConns(1)

	recs := records.NewSQLiteRepository(db)
	if err := recs.Init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		DB:       db,
		Records:  recs,
		Metadata: metadata.NewSQLiteRepository(db),
		Users:    users.NewSQLiteRepository(db),
	}, nil
}
