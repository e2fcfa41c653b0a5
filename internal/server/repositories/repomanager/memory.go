package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/dailydiet/internal/dbx"
	"github.com/dmitrijs2005/dailydiet/internal/server/repositories/meals"
	"github.com/dmitrijs2005/dailydiet/internal/server/repositories/memory"
	"github.com/dmitrijs2005/dailydiet/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/dailydiet/internal/server/repositories/users"
)

// MemoryRepositoryManager vends repositories over a single memory.Store.
// The store doubles as the dbx.Store handed to services.
type MemoryRepositoryManager struct {
	store *memory.Store
}

func NewMemoryRepositoryManager(store *memory.Store) *MemoryRepositoryManager {
	return &MemoryRepositoryManager{store: store}
}

// RunMigrations is a no-op; the memory store has no schema.
func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *MemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return m.store.Users(db)
}

func (m *MemoryRepositoryManager) Meals(db dbx.DBTX) meals.Repository {
	return m.store.Meals(db)
}

func (m *MemoryRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return m.store.RefreshTokens(db)
}
