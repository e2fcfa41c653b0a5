package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/dailydiet/internal/dbx"
	"github.com/dmitrijs2005/dailydiet/internal/server/repositories/meals"
	"github.com/dmitrijs2005/dailydiet/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/dailydiet/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a handle obtained from a
// dbx.Store: its DB() for single statements or the tx passed to WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Meals(db dbx.DBTX) meals.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
