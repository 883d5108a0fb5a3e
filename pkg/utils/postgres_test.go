package utils

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"
)

// txLog counts transaction lifecycle events across the fake driver.
type txLog struct {
	begins    int
	commits   int
	rollbacks int
}

type fakeTx struct{ log *txLog }

func (t *fakeTx) Commit() error   { t.log.commits++; return nil }
func (t *fakeTx) Rollback() error { t.log.rollbacks++; return nil }

type fakeConn struct{ log *txLog }

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (c *fakeConn) Close() error { return nil }
func (c *fakeConn) Begin() (driver.Tx, error) {
	c.log.begins++
	return &fakeTx{log: c.log}, nil
}

type fakeConnector struct{ log *txLog }

func (f *fakeConnector) Connect(ctx context.Context) (driver.Conn, error) {
	return &fakeConn{log: f.log}, nil
}
func (f *fakeConnector) Driver() driver.Driver { return fakeDriver{} }

type fakeDriver struct{ log *txLog }

func (d fakeDriver) Open(name string) (driver.Conn, error) {
	return &fakeConn{log: d.log}, nil
}

func txTestDB(t *testing.T) (*sql.DB, *txLog) {
	t.Helper()
	log := &txLog{}
	db := sql.OpenDB(&fakeConnector{log: log})
	t.Cleanup(func() { _ = db.Close() })
	return db, log
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db, log := txTestDB(t)

	ran := false
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx *sql.Tx) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if !ran {
		t.Fatal("fn did not run")
	}
	if log.begins != 1 || log.commits != 1 || log.rollbacks != 0 {
		t.Fatalf("begins=%d commits=%d rollbacks=%d, want 1/1/0", log.begins, log.commits, log.rollbacks)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db, log := txTestDB(t)

	boom := errors.New("write rejected")
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx *sql.Tx) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the fn error", err)
	}
	if log.commits != 0 || log.rollbacks != 1 {
		t.Fatalf("commits=%d rollbacks=%d, want 0/1", log.commits, log.rollbacks)
	}
}

func TestWithTx_RollsBackAndRepanics(t *testing.T) {
	db, log := txTestDB(t)

	defer func() {
		p := recover()
		if p == nil {
			t.Fatal("panic was swallowed")
		}
		if p != "mid-write failure" {
			t.Fatalf("recovered %v", p)
		}
		if log.commits != 0 || log.rollbacks != 1 {
			t.Fatalf("commits=%d rollbacks=%d, want 0/1", log.commits, log.rollbacks)
		}
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx *sql.Tx) error {
		panic("mid-write failure")
	})
}

func TestPostgresPoolConfig_Defaults(t *testing.T) {
	got := PostgresPoolConfig{}.withDefaults()
	if got.MaxOpenConns != 16 || got.MaxIdleConns != 8 {
		t.Errorf("conns = %d/%d, want 16/8", got.MaxOpenConns, got.MaxIdleConns)
	}
	if got.PingTimeout != 3*time.Second {
		t.Errorf("PingTimeout = %v", got.PingTimeout)
	}

	// Explicit values are kept.
	kept := PostgresPoolConfig{MaxOpenConns: 4, PingTimeout: time.Second}.withDefaults()
	if kept.MaxOpenConns != 4 || kept.PingTimeout != time.Second {
		t.Errorf("explicit values overwritten: %+v", kept)
	}
}

func TestOpenPostgres(t *testing.T) {
	sql.Register("fakepg", fakeDriver{log: &txLog{}})

	if _, err := OpenPostgres(context.Background(), "", "dsn", PostgresPoolConfig{}); err == nil {
		t.Error("empty driver name must be rejected")
	}
	if _, err := OpenPostgres(context.Background(), "fakepg", "", PostgresPoolConfig{}); err == nil {
		t.Error("empty dsn must be rejected")
	}

	db, err := OpenPostgres(context.Background(), "fakepg", "host=test", PostgresPoolConfig{})
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	defer db.Close()
	if got := db.Stats().MaxOpenConnections; got != 16 {
		t.Errorf("MaxOpenConnections = %d, want pool default 16", got)
	}
}
