// Package storetest provides a no-op *sql.DB for exercising
// store.Store.WithTx in unit tests without a live Postgres instance. Every
// write in this module goes through a fake store.*Repository backed by an
// in-memory map rather than the connection WithTx hands it, so the
// transaction itself only needs to Begin and Commit without ever touching
// real SQL.
package storetest

import (
	"database/sql"
	"database/sql/driver"
	"sync"
)

type fakeDriver struct{}

func (fakeDriver) Open(name string) (driver.Conn, error) { return fakeConn{}, nil }

type fakeConn struct{}

func (fakeConn) Prepare(query string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (fakeConn) Close() error                              { return nil }
func (fakeConn) Begin() (driver.Tx, error)                 { return fakeTx{}, nil }

type fakeTx struct{}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }

var registerOnce sync.Once

// NewDB opens a *sql.DB against a registered no-op driver: BeginTx, Commit,
// and Rollback all succeed trivially and no statement ever reaches a real
// connection.
func NewDB() *sql.DB {
	registerOnce.Do(func() {
		sql.Register("fantasyprojections_fake", fakeDriver{})
	})
	db, err := sql.Open("fantasyprojections_fake", "")
	if err != nil {
		panic(err)
	}
	return db
}
