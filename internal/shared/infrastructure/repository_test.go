package infrastructure

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"reflect"
	"sync"
	"testing"
)

// recordingDriver driver SQL en mémoire qui trace requêtes, commits et rollbacks
type recordingDriver struct {
	mu        sync.Mutex
	queries   []string
	commits   int
	rollbacks int
}

func (d *recordingDriver) Connect(context.Context) (driver.Conn, error) { return &recordingConn{d: d}, nil }
func (d *recordingDriver) Driver() driver.Driver                        { return d }
func (d *recordingDriver) Open(string) (driver.Conn, error)             { return &recordingConn{d: d}, nil }

type recordingConn struct{ d *recordingDriver }

func (c *recordingConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (c *recordingConn) Close() error              { return nil }
func (c *recordingConn) Begin() (driver.Tx, error) { return &recordingTx{d: c.d}, nil }

func (c *recordingConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.d.queries = append(c.d.queries, query)
	return driver.RowsAffected(0), nil
}

type recordingTx struct{ d *recordingDriver }

func (t *recordingTx) Commit() error {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	t.d.commits++
	return nil
}

func (t *recordingTx) Rollback() error {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	t.d.rollbacks++
	return nil
}

func openRecording(t *testing.T) (*sql.DB, *recordingDriver) {
	t.Helper()
	d := &recordingDriver{}
	db := sql.OpenDB(d)
	t.Cleanup(func() { db.Close() })
	return db, d
}

func TestUnitOfWorkCommitsThroughRepository(t *testing.T) {
	db, d := openRecording(t)
	repo := NewBaseRepository(db)

	err := NewUnitOfWork(db).ExecuteContext(context.Background(), func(tx *sql.Tx) error {
		txRepo := repo.WithTx(tx)
		if _, err := txRepo.Exec(`DROP TABLE IF EXISTS "products"`); err != nil {
			return err
		}
		_, err := txRepo.Exec(`CREATE TABLE "products" ("product_id" BIGINT)`)
		return err
	})
	if err != nil {
		t.Fatalf("ExecuteContext failed: %v", err)
	}

	want := []string{`DROP TABLE IF EXISTS "products"`, `CREATE TABLE "products" ("product_id" BIGINT)`}
	if !reflect.DeepEqual(d.queries, want) {
		t.Errorf("queries = %v, want %v", d.queries, want)
	}
	if d.commits != 1 || d.rollbacks != 0 {
		t.Errorf("Expected 1 commit and no rollback, got %d/%d", d.commits, d.rollbacks)
	}
}

func TestUnitOfWorkRollsBackOnError(t *testing.T) {
	db, d := openRecording(t)
	errCopy := errors.New("copy row 3: bad value")

	err := NewUnitOfWork(db).ExecuteContext(context.Background(), func(*sql.Tx) error {
		return errCopy
	})

	if !errors.Is(err, errCopy) {
		t.Errorf("Expected fn error, got %v", err)
	}
	if d.commits != 0 || d.rollbacks != 1 {
		t.Errorf("Expected a rollback only, got %d commits / %d rollbacks", d.commits, d.rollbacks)
	}
}

func TestUnitOfWorkRollsBackOnPanic(t *testing.T) {
	db, d := openRecording(t)

	defer func() {
		if recover() == nil {
			t.Error("Expected the panic to be propagated")
		}
		if d.rollbacks != 1 {
			t.Errorf("Expected 1 rollback, got %d", d.rollbacks)
		}
	}()

	_ = NewUnitOfWork(db).ExecuteContext(context.Background(), func(*sql.Tx) error {
		panic("boom")
	})
}

func TestBaseRepositoryWithoutTx(t *testing.T) {
	db, d := openRecording(t)

	if _, err := NewBaseRepository(db).WithContext(context.Background()).Exec("SELECT 1"); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if len(d.queries) != 1 || d.commits != 0 {
		t.Errorf("Expected a direct exec outside any transaction, got %v (%d commits)", d.queries, d.commits)
	}
}
