package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/pebble"

	"quickshop/internal/etl/domain"
)

// PebbleStore table-store embarqué (fichier local) basé sur PebbleDB.
//
// Disposition des clés:
//
//	t/<table>/meta          colonnes et types (JSON)
//	t/<table>/r/<%020d>     une ligne (tableau JSON), dans l'ordre d'insertion
type PebbleStore struct {
	db  *pebble.DB
	dir string
}

// NewPebbleStore ouvre (ou crée) le store dans dir
func NewPebbleStore(dir string) (*PebbleStore, error) {
	d, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStore{db: d, dir: dir}, nil
}

// Close ferme la base
func (p *PebbleStore) Close() error { return p.db.Close() }

// Location chemin du store sur disque
func (p *PebbleStore) Location() string { return p.dir }

func tablePrefix(name string) []byte { return []byte("t/" + name + "/") }

// tableUpperBound première clé après toutes celles de la table ('0' suit '/')
func tableUpperBound(name string) []byte { return []byte("t/" + name + "0") }

func metaKey(name string) []byte { return []byte("t/" + name + "/meta") }

func rowKey(name string, i int) []byte { return []byte(fmt.Sprintf("t/%s/r/%020d", name, i)) }

// ReplaceTable remplace intégralement la table (create-or-replace).
// Suppression et insertions sont dans un seul batch: un lecteur voit
// l'ancienne table ou la nouvelle, jamais un mélange.
func (p *PebbleStore) ReplaceTable(ctx context.Context, t *domain.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateTableName(t.Name); err != nil {
		return &domain.WriteError{Target: p.dir, Err: err}
	}

	meta, err := json.Marshal(newTableMeta(t))
	if err != nil {
		return &domain.WriteError{Target: t.Name, Err: err}
	}

	b := p.db.NewBatch()
	defer b.Close()

	if err := b.DeleteRange(tablePrefix(t.Name), tableUpperBound(t.Name), nil); err != nil {
		return &domain.WriteError{Target: t.Name, Err: fmt.Errorf("delete range: %w", err)}
	}
	if err := b.Set(metaKey(t.Name), meta, nil); err != nil {
		return &domain.WriteError{Target: t.Name, Err: err}
	}
	for i, row := range t.Rows {
		data, err := encodeRow(t.Columns, row)
		if err != nil {
			return &domain.WriteError{Target: t.Name, Err: fmt.Errorf("encode row %d: %w", i, err)}
		}
		if err := b.Set(rowKey(t.Name, i), data, nil); err != nil {
			return &domain.WriteError{Target: t.Name, Err: err}
		}
	}

	if err := b.Commit(pebble.Sync); err != nil {
		return &domain.WriteError{Target: t.Name, Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

// ReadTable relit une table complète
func (p *PebbleStore) ReadTable(ctx context.Context, name string) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateTableName(name); err != nil {
		return nil, err
	}

	raw, closer, err := p.db.Get(metaKey(name))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTableNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	var meta tableMeta
	err = json.Unmarshal(raw, &meta)
	_ = closer.Close()
	if err != nil {
		return nil, fmt.Errorf("decode meta of %s: %w", name, err)
	}

	t := domain.NewTable(name, meta.columns())
	t.Rows = make([][]any, 0, meta.Rows)

	lower := []byte("t/" + name + "/r/")
	it, err := p.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: tableUpperBound(name)})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	for it.First(); it.Valid(); it.Next() {
		row, err := decodeRow(t.Columns, it.Value())
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", it.Key(), err)
		}
		t.Rows = append(t.Rows, row)
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return t, nil
}

// Tables liste les tables présentes dans le store
func (p *PebbleStore) Tables(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	it, err := p.db.NewIter(&pebble.IterOptions{LowerBound: []byte("t/"), UpperBound: []byte("t0")})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var names []string
	for it.First(); it.Valid(); it.Next() {
		key := string(it.Key())
		if strings.HasSuffix(key, "/meta") {
			names = append(names, strings.TrimSuffix(strings.TrimPrefix(key, "t/"), "/meta"))
		}
	}
	return names, it.Error()
}
