package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/boardingpass/internal/dbx"
	"github.com/dmitrijs2005/boardingpass/internal/server/repositories/members"
)

// RepositoryManager vends repositories bound to a DBTX, so services can
// run them on the pool or inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Members(db dbx.DBTX) members.Repository
}
