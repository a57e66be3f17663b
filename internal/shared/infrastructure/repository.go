package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Executor opérations communes à *sql.DB et *sql.Tx
type Executor interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// UnitOfWork exécute un remplacement de table dans une seule transaction
type UnitOfWork interface {
	ExecuteContext(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// DBUnitOfWork implémentation de UnitOfWork avec sql.DB
type DBUnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork crée une nouvelle instance de UnitOfWork
func NewUnitOfWork(db *sql.DB) UnitOfWork {
	return &DBUnitOfWork{db: db}
}

// ExecuteContext ouvre une transaction, exécute fn puis commit.
// Toute erreur (ou panic) de fn annule la transaction.
func (uow *DBUnitOfWork) ExecuteContext(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := uow.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// BaseRepository accès SQL lié à un contexte, hors ou dans une transaction
type BaseRepository struct {
	db  *sql.DB
	tx  *sql.Tx
	ctx context.Context
}

// NewBaseRepository crée un nouveau repository de base
func NewBaseRepository(db *sql.DB) BaseRepository {
	return BaseRepository{
		db:  db,
		ctx: context.Background(),
	}
}

// WithContext retourne une copie liée au contexte (annulation/timeout)
func (r BaseRepository) WithContext(ctx context.Context) BaseRepository {
	r.ctx = ctx
	return r
}

// WithTx retourne une copie qui exécute dans la transaction
func (r BaseRepository) WithTx(tx *sql.Tx) BaseRepository {
	r.tx = tx
	return r
}

// Executor retourne la transaction courante, sinon la connexion
func (r BaseRepository) Executor() Executor {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Query exécute une requête de lecture
func (r BaseRepository) Query(query string, args ...any) (*sql.Rows, error) {
	return r.Executor().QueryContext(r.ctx, query, args...)
}

// Exec exécute une requête d'écriture
func (r BaseRepository) Exec(query string, args ...any) (sql.Result, error) {
	return r.Executor().ExecContext(r.ctx, query, args...)
}

// Prepare prépare une instruction (ex: COPY FROM STDIN)
func (r BaseRepository) Prepare(query string) (*sql.Stmt, error) {
	return r.Executor().PrepareContext(r.ctx, query)
}
