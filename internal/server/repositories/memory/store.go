// Package memory keeps users, meals and refresh tokens in process memory.
// It backs the server when no database DSN is configured and the handler
// and lifecycle tests.
//
// Every repository call takes the store mutex. Store.WithTx holds the same
// mutex for the whole unit of work, so transactions are fully serialized,
// and restores a snapshot when the unit of work fails.
package memory

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/dbx"
	"github.com/dmitrijs2005/dailydiet/internal/server/models"
)

var errNotSQL = errors.New("memory: not a SQL handle")

type mealRow struct {
	meal models.Meal
	seq  uint64
}

type state struct {
	users  map[string]models.User
	meals  map[string]mealRow
	tokens map[string]models.RefreshToken
	// byHash indexes tokens by digest.
	byHash map[string]string
}

func newState() state {
	return state{
		users:  make(map[string]models.User),
		meals:  make(map[string]mealRow),
		tokens: make(map[string]models.RefreshToken),
		byHash: make(map[string]string),
	}
}

func (st state) clone() state {
	c := newState()
	for k, v := range st.users {
		v.PasswordHash = append([]byte(nil), v.PasswordHash...)
		c.users[k] = v
	}
	for k, v := range st.meals {
		c.meals[k] = v
	}
	for k, v := range st.tokens {
		c.tokens[k] = v
	}
	for k, v := range st.byHash {
		c.byHash[k] = v
	}
	return c
}

type Store struct {
	mu  sync.Mutex
	st  state
	seq uint64
	now func() time.Time
}

func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

// DB returns nil: memory repositories ignore the handle outside WithTx.
func (s *Store) DB() dbx.DBTX {
	return nil
}

// WithTx runs fn while holding the store lock. If fn returns an error or
// panics, every change it made is discarded.
func (s *Store) WithTx(ctx context.Context, fn dbx.TxFunc) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.st.clone()
	defer func() {
		if p := recover(); p != nil {
			s.st = snapshot
			panic(p)
		}
		if err != nil {
			s.st = snapshot
		}
	}()

	return fn(ctx, &tx{store: s})
}

// lock acquires the store mutex unless db is this store's own transaction
// handle, which already holds it.
func (s *Store) lock(db dbx.DBTX) func() {
	if t, ok := db.(*tx); ok && t.store == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// tx marks repository calls made inside WithTx. It satisfies dbx.DBTX only
// so it can travel through the repository manager and is understood by the
// memory repositories alone. SQL sent through it fails with errNotSQL,
// including QueryRowContext, whose row reports the error on Scan.
type tx struct {
	store *Store
}

func (*tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return notSQL.ExecContext(ctx, query, args...)
}

func (*tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return notSQL.QueryContext(ctx, query, args...)
}

func (*tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return notSQL.QueryRowContext(ctx, query, args...)
}

// notSQL is a database handle whose every connection attempt fails.
var notSQL = sql.OpenDB(refusingConnector{})

type refusingConnector struct{}

func (refusingConnector) Connect(context.Context) (driver.Conn, error) { return nil, errNotSQL }
func (c refusingConnector) Driver() driver.Driver                      { return c }
func (refusingConnector) Open(string) (driver.Conn, error)             { return nil, errNotSQL }
