package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/healthlog/internal/dbx"
	"github.com/dmitrijs2005/healthlog/internal/server/repositories/healthlogs"
	"github.com/dmitrijs2005/healthlog/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/healthlog/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// the same repository against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	HealthLogs(db dbx.DBTX) healthlogs.Repository
	Revocations(db dbx.DBTX) revocations.Repository
}
