package infrastructure

import (
	"context"
	"fmt"
	"path/filepath"

	catalogdomain "quickshop/internal/catalog/domain"
	etlapp "quickshop/internal/etl/application"
	etldomain "quickshop/internal/etl/domain"
	etlinfra "quickshop/internal/etl/infrastructure"
	ordersdomain "quickshop/internal/orders/domain"
)

// TableReader lecture d'une table du table-store
type TableReader interface {
	ReadTable(ctx context.Context, name string) (*etldomain.Table, error)
}

// StoreSource relit la table de faits et les tables de référence du table-store
type StoreSource struct {
	store TableReader
}

// NewStoreSource crée une source au-dessus du store
func NewStoreSource(store TableReader) *StoreSource {
	return &StoreSource{store: store}
}

// Orders lit la table de faits de l'exécution
func (s *StoreSource) Orders(ctx context.Context, result etldomain.RunResult) ([]ordersdomain.EnrichedOrder, error) {
	t, err := s.store.ReadTable(ctx, result.Artifact.Table)
	if err != nil {
		return nil, err
	}
	return ordersdomain.EnrichedFromTable(t), nil
}

// Reference lit les tables products et inventory remplacées par l'exécution
func (s *StoreSource) Reference(ctx context.Context, _ etldomain.RunResult) ([]catalogdomain.Product, []catalogdomain.InventoryEntry, error) {
	products, err := s.store.ReadTable(ctx, etldomain.ProductsTable)
	if err != nil {
		return nil, nil, err
	}
	inventory, err := s.store.ReadTable(ctx, etldomain.InventoryTable)
	if err != nil {
		return nil, nil, err
	}
	return catalogdomain.ProductsFromTable(products), catalogdomain.InventoryFromTable(inventory), nil
}

// FileSource relit le snapshot Parquet et les CSV de référence du répertoire d'entrée
type FileSource struct {
	inputDir string
	parquet  *etlinfra.ParquetReader
	csv      *etlinfra.CSVReader
}

// NewFileSource crée une source fichiers
func NewFileSource(inputDir string) *FileSource {
	return &FileSource{
		inputDir: inputDir,
		parquet:  etlinfra.NewParquetReader(),
		csv:      etlinfra.NewCSVReader(),
	}
}

// Orders lit le fichier Parquet de l'exécution
func (s *FileSource) Orders(_ context.Context, result etldomain.RunResult) ([]ordersdomain.EnrichedOrder, error) {
	return s.parquet.ReadOrders(result.Artifact.Location)
}

// Reference relit et revalide products.csv et inventory.csv
func (s *FileSource) Reference(_ context.Context, _ etldomain.RunResult) ([]catalogdomain.Product, []catalogdomain.InventoryEntry, error) {
	rawProducts, err := s.csv.ReadCSV(filepath.Join(s.inputDir, etldomain.ProductsFile))
	if err != nil {
		return nil, nil, fmt.Errorf("read products: %w", err)
	}
	products, err := etlapp.ValidateProducts(rawProducts)
	if err != nil {
		return nil, nil, err
	}

	rawInventory, err := s.csv.ReadCSV(filepath.Join(s.inputDir, etldomain.InventoryFile))
	if err != nil {
		return nil, nil, fmt.Errorf("read inventory: %w", err)
	}
	inventory, err := etlapp.ValidateInventory(rawInventory)
	if err != nil {
		return nil, nil, err
	}

	return catalogdomain.ProductsFromTable(products), catalogdomain.InventoryFromTable(inventory), nil
}
