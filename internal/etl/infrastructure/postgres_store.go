package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"quickshop/internal/etl/domain"
	sharedinfra "quickshop/internal/shared/infrastructure"
)

// sqlTypes correspondance type logique → type PostgreSQL
var sqlTypes = map[domain.LogicalType]string{
	domain.TypeInteger: "BIGINT",
	domain.TypeDecimal: "DOUBLE PRECISION",
	domain.TypeDate:    "DATE",
	domain.TypeText:    "TEXT",
}

// PostgresStore table-store PostgreSQL.
// Le remplacement d'une table (DROP + CREATE + COPY) se fait dans une seule
// transaction: les lecteurs voient l'ancienne version jusqu'au commit.
type PostgresStore struct {
	sharedinfra.BaseRepository
	uow      sharedinfra.UnitOfWork
	location string
}

// NewPostgresStore crée le store au-dessus d'une connexion existante
func NewPostgresStore(db *sql.DB, location string) *PostgresStore {
	return &PostgresStore{
		BaseRepository: sharedinfra.NewBaseRepository(db),
		uow:            sharedinfra.NewUnitOfWork(db),
		location:       location,
	}
}

// Location identifiant de la base cible
func (s *PostgresStore) Location() string { return s.location }

// ReplaceTable remplace intégralement la table
func (s *PostgresStore) ReplaceTable(ctx context.Context, t *domain.Table) error {
	if err := ValidateTableName(t.Name); err != nil {
		return &domain.WriteError{Target: s.location, Err: err}
	}

	err := s.uow.ExecuteContext(ctx, func(tx *sql.Tx) error {
		repo := s.BaseRepository.WithContext(ctx).WithTx(tx)
		table := pq.QuoteIdentifier(t.Name)

		if _, err := repo.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("drop: %w", err)
		}
		if _, err := repo.Exec(createTableSQL(t)); err != nil {
			return fmt.Errorf("create: %w", err)
		}
		if t.Len() == 0 {
			return nil
		}

		stmt, err := repo.Prepare(pq.CopyIn(t.Name, t.ColumnNames()...))
		if err != nil {
			return fmt.Errorf("prepare copy: %w", err)
		}
		for i, row := range t.Rows {
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				stmt.Close()
				return fmt.Errorf("copy row %d: %w", i+1, err)
			}
		}
		// Exec sans argument: flush du COPY
		if _, err := stmt.ExecContext(ctx); err != nil {
			stmt.Close()
			return fmt.Errorf("flush copy: %w", err)
		}
		return stmt.Close()
	})
	if err != nil {
		return &domain.WriteError{Target: t.Name, Err: err}
	}
	return nil
}

func createTableSQL(t *domain.Table) string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		typ, ok := sqlTypes[c.Type]
		if !ok {
			typ = "TEXT"
		}
		defs[i] = pq.QuoteIdentifier(c.Name) + " " + typ
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", pq.QuoteIdentifier(t.Name), strings.Join(defs, ", "))
}

// ReadTable relit une table; le type logique des colonnes est déduit du catalogue
func (s *PostgresStore) ReadTable(ctx context.Context, name string) (*domain.Table, error) {
	if err := ValidateTableName(name); err != nil {
		return nil, err
	}
	repo := s.WithContext(ctx)

	columns, err := repo.columns(name)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrTableNotFound, name)
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pq.QuoteIdentifier(c.Name)
	}
	rows, err := repo.Query(fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(quoted, ", "), pq.QuoteIdentifier(name)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t := domain.NewTable(name, columns)
	for rows.Next() {
		dest := make([]any, len(columns))
		for i, c := range columns {
			dest[i] = scanTarget(c.Type)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make([]any, len(columns))
		for i := range dest {
			row[i] = nullValue(dest[i])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, rows.Err()
}

// WithContext retourne une copie du store liée au contexte
func (s *PostgresStore) WithContext(ctx context.Context) *PostgresStore {
	cp := *s
	cp.BaseRepository = s.BaseRepository.WithContext(ctx)
	return &cp
}

func (s *PostgresStore) columns(table string) ([]domain.Column, error) {
	rows, err := s.Query(`
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []domain.Column
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, err
		}
		columns = append(columns, domain.Column{Name: name, Type: logicalType(dataType)})
	}
	return columns, rows.Err()
}

func logicalType(dataType string) domain.LogicalType {
	switch strings.ToLower(dataType) {
	case "bigint", "integer", "smallint":
		return domain.TypeInteger
	case "double precision", "real", "numeric":
		return domain.TypeDecimal
	case "date":
		return domain.TypeDate
	default:
		return domain.TypeText
	}
}

func scanTarget(typ domain.LogicalType) any {
	switch typ {
	case domain.TypeInteger:
		return new(sql.NullInt64)
	case domain.TypeDecimal:
		return new(sql.NullFloat64)
	case domain.TypeDate:
		return new(sql.NullTime)
	default:
		return new(sql.NullString)
	}
}

func nullValue(v any) any {
	switch n := v.(type) {
	case *sql.NullInt64:
		if n.Valid {
			return n.Int64
		}
	case *sql.NullFloat64:
		if n.Valid {
			return n.Float64
		}
	case *sql.NullTime:
		if n.Valid {
			return time.Date(n.Time.Year(), n.Time.Month(), n.Time.Day(), 0, 0, 0, 0, time.UTC)
		}
	case *sql.NullString:
		if n.Valid {
			return n.String
		}
	}
	return nil
}
