package application

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	catalogdomain "quickshop/internal/catalog/domain"
	"quickshop/internal/etl/domain"
	"quickshop/internal/etl/infrastructure"
	ordersdomain "quickshop/internal/orders/domain"
	shareddomain "quickshop/internal/shared/domain"
	sharedinfra "quickshop/internal/shared/infrastructure"
)

// CSVSource lit un fichier CSV en table brute
type CSVSource interface {
	ReadCSV(path string) (domain.RawTable, error)
}

// OrderFileFinder découvre les extractions de commandes
type OrderFileFinder interface {
	Discover(dir, pattern string, dateRange shareddomain.DateRange) ([]string, error)
}

// ColumnarWriter écrit la table de faits en snapshot colonnaire
type ColumnarWriter interface {
	WriteOrders(path string, orders []ordersdomain.EnrichedOrder) error
}

// TableStore stockage tabulaire en create-or-replace
type TableStore interface {
	ReplaceTable(ctx context.Context, t *domain.Table) error
	ReadTable(ctx context.Context, name string) (*domain.Table, error)
	Location() string
}

// RunMetrics observations Prometheus du pipeline
type RunMetrics interface {
	ObserveStage(stage string, d time.Duration)
	RecordRun(status string, files, rows int, succeeded bool, at time.Time)
}

// Dependencies collaborateurs injectés dans le pipeline
type Dependencies struct {
	Reader     CSVSource
	Discoverer OrderFileFinder
	Columnar   ColumnarWriter
	Store      TableStore // requis seulement en sortie "store"
	Metrics    RunMetrics
	Logger     *sharedinfra.Logger
	Now        func() time.Time
}

// Pipeline orchestre une exécution complète de l'ETL.
// Exécution strictement séquentielle; le contexte est vérifié entre les étapes.
type Pipeline struct {
	reader     CSVSource
	discoverer OrderFileFinder
	columnar   ColumnarWriter
	store      TableStore
	metrics    RunMetrics
	logger     *sharedinfra.Logger
	now        func() time.Time
}

// NewPipeline crée un pipeline; les dépendances absentes reçoivent leur
// implémentation par défaut (CSV local, glob, Parquet, horloge système).
func NewPipeline(deps Dependencies) *Pipeline {
	p := &Pipeline{
		reader:     deps.Reader,
		discoverer: deps.Discoverer,
		columnar:   deps.Columnar,
		store:      deps.Store,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if p.reader == nil {
		p.reader = infrastructure.NewCSVReader()
	}
	if p.discoverer == nil {
		p.discoverer = infrastructure.NewFileDiscoverer(deps.Logger)
	}
	if p.columnar == nil {
		p.columnar = infrastructure.NewParquetWriter()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// runState données passées d'une étape à l'autre
type runState struct {
	cfg       domain.RunConfig
	rawProds  domain.RawTable
	rawInv    domain.RawTable
	files     []string
	rawOrders domain.RawTable
	products  *domain.Table
	inventory *domain.Table
	orders    []ordersdomain.Order
	extra     []string // colonnes passthrough des extractions
	enriched  []ordersdomain.EnrichedOrder
	empty     bool
}

// Run exécute: START → LOAD_REFERENCE → DISCOVER_ORDER_FILES →
// LOAD_AND_CONCAT_ORDERS → VALIDATE_ALL → FILTER_BY_DATE → ENRICH →
// WRITE_OUTPUT → DONE. Toute erreur mène à FAILED (aucun retry interne).
func (p *Pipeline) Run(ctx context.Context, cfg domain.RunConfig) (domain.RunResult, error) {
	result := domain.RunResult{
		RunID:       uuid.NewString(),
		Mode:        cfg.Mode,
		Stage:       domain.StageStart,
		LogicalDate: logicalDate(cfg),
	}
	p.logger.Infof("run %s started (mode=%s, range=%s, output=%s)",
		result.RunID, cfg.Mode, cfg.DateRange, cfg.OutputFormat)

	if err := cfg.Validate(); err != nil {
		return p.fail(result, err)
	}
	if cfg.OutputFormat == domain.OutputFormatStore && p.store == nil {
		return p.fail(result, fmt.Errorf("%w: store output requires a table store", domain.ErrInvalidRunConfig))
	}

	st := &runState{cfg: cfg}
	steps := []struct {
		stage domain.Stage
		fn    func(context.Context, *runState, *domain.RunResult) error
	}{
		{domain.StageLoadReference, p.loadReference},
		{domain.StageDiscoverOrders, p.discoverOrders},
		{domain.StageLoadOrders, p.loadOrders},
		{domain.StageValidate, p.validateAll},
		{domain.StageFilterByDate, p.filterByDate},
		{domain.StageEnrich, p.enrich},
		{domain.StageWriteOutput, p.writeOutput},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return p.fail(result, err)
		}
		p.transition(&result, step.stage)

		start := time.Now()
		err := step.fn(ctx, st, &result)
		if p.metrics != nil {
			p.metrics.ObserveStage(string(step.stage), time.Since(start))
		}
		if err != nil {
			return p.fail(result, err)
		}
		if st.empty {
			break
		}
	}

	p.transition(&result, domain.StageDone)
	result.HasOrders = result.RowCount > 0
	if result.RowCount == 0 {
		result.Status = domain.StatusEmpty
	} else {
		result.Status = domain.StatusSucceeded
	}
	if p.metrics != nil {
		p.metrics.RecordRun(string(result.Status), result.FilesDiscovered, result.RowCount, true, p.now())
	}
	p.logger.Infof("run %s finished: status=%s rows=%d artifact=%s",
		result.RunID, result.Status, result.RowCount, result.Artifact.Location)
	return result, nil
}

func (p *Pipeline) transition(result *domain.RunResult, next domain.Stage) {
	p.logger.Infof("run %s: %s -> %s", result.RunID, result.Stage, next)
	result.Stage = next
}

func (p *Pipeline) fail(result domain.RunResult, err error) (domain.RunResult, error) {
	failedAt := result.Stage
	p.transition(&result, domain.StageFailed)
	result.Status = domain.StatusFailed
	if p.metrics != nil {
		p.metrics.RecordRun(string(result.Status), result.FilesDiscovered, 0, false, p.now())
	}
	p.logger.Errorf("run %s failed during %s: %v", result.RunID, failedAt, err)
	return result, err
}

func logicalDate(cfg domain.RunConfig) time.Time {
	if cfg.Mode == domain.ModeDaily {
		return cfg.LogicalDate
	}
	if cfg.DateRange.IsSingleDay() {
		start, _ := cfg.DateRange.Start()
		return start
	}
	return time.Time{}
}

// loadReference les deux fichiers de référence doivent exister avant toute lecture
func (p *Pipeline) loadReference(_ context.Context, st *runState, _ *domain.RunResult) error {
	productsPath := filepath.Join(st.cfg.InputDir, domain.ProductsFile)
	inventoryPath := filepath.Join(st.cfg.InputDir, domain.InventoryFile)
	for _, path := range []string{productsPath, inventoryPath} {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return &domain.MissingInputError{Path: path}
			}
			return fmt.Errorf("stat %s: %w", path, err)
		}
	}

	var err error
	if st.rawProds, err = p.reader.ReadCSV(productsPath); err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	if st.rawInv, err = p.reader.ReadCSV(inventoryPath); err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}
	p.logger.Infof("loaded products=%d rows, inventory=%d rows", st.rawProds.Len(), st.rawInv.Len())
	return nil
}

func (p *Pipeline) discoverOrders(_ context.Context, st *runState, result *domain.RunResult) error {
	files, err := p.discoverer.Discover(st.cfg.InputDir, st.cfg.Pattern(), st.cfg.DateRange)
	if err != nil {
		return err
	}
	st.files = files
	result.FilesDiscovered = len(files)

	if len(files) > 0 {
		p.logger.Infof("discovered %d order files", len(files))
		return nil
	}
	if st.cfg.Mode == domain.ModeDaily {
		// Journée sans extraction: succès vide, rien n'est écrit
		p.logger.Warnf("no order files for %s; recording an empty day", result.ReportDate())
		st.empty = true
		return nil
	}
	return &domain.NoMatchingFilesError{
		Dir:     st.cfg.InputDir,
		Pattern: st.cfg.Pattern(),
		Range:   st.cfg.DateRange.String(),
	}
}

func (p *Pipeline) loadOrders(_ context.Context, st *runState, _ *domain.RunResult) error {
	tables := make([]domain.RawTable, 0, len(st.files))
	for _, path := range st.files {
		raw, err := p.reader.ReadCSV(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		tables = append(tables, infrastructure.WithSource(raw, filepath.Base(path)))
	}
	st.rawOrders = infrastructure.Concat(tables...)
	p.logger.Infof("concatenated %d order rows from %d files", st.rawOrders.Len(), len(st.files))
	return nil
}

func (p *Pipeline) validateAll(_ context.Context, st *runState, _ *domain.RunResult) error {
	var err error
	if st.products, err = ValidateProducts(st.rawProds); err != nil {
		return err
	}
	if st.inventory, err = ValidateInventory(st.rawInv); err != nil {
		return err
	}
	orders, err := ValidateOrders(st.rawOrders)
	if err != nil {
		return err
	}
	st.orders = ordersdomain.OrdersFromTable(orders)
	st.extra = ordersdomain.PassthroughColumns(orders)
	return nil
}

func (p *Pipeline) filterByDate(_ context.Context, st *runState, _ *domain.RunResult) error {
	before := len(st.orders)
	st.orders = FilterByDate(st.orders, st.cfg.DateRange)
	if dropped := before - len(st.orders); dropped > 0 {
		p.logger.Debugf("date filter %s dropped %d rows", st.cfg.DateRange, dropped)
	}
	return nil
}

func (p *Pipeline) enrich(_ context.Context, st *runState, result *domain.RunResult) error {
	enriched, err := Enrich(
		st.orders,
		catalogdomain.ProductsFromTable(st.products),
		catalogdomain.InventoryFromTable(st.inventory),
	)
	if err != nil {
		return err
	}
	st.enriched = enriched
	result.RowCount = len(enriched)
	p.logger.Infof("enriched %d completed orders", len(enriched))

	// Journée sans commande retenue: même traitement que sans fichier
	if st.cfg.Mode == domain.ModeDaily && len(enriched) == 0 {
		p.logger.Warnf("no completed orders for %s; recording an empty day", result.ReportDate())
		st.empty = true
	}
	return nil
}

func (p *Pipeline) writeOutput(ctx context.Context, st *runState, result *domain.RunResult) error {
	switch st.cfg.OutputFormat {
	case domain.OutputFormatParquet:
		path := filepath.Join(st.cfg.OutputDir, st.cfg.ParquetFileName(p.now()))
		if err := p.columnar.WriteOrders(path, st.enriched); err != nil {
			return err
		}
		result.Artifact = domain.Artifact{Format: domain.OutputFormatParquet, Location: path}

	case domain.OutputFormatStore:
		fact := st.cfg.FactTableName()
		tables := []*domain.Table{
			st.products.WithName(domain.ProductsTable),
			st.inventory.WithName(domain.InventoryTable),
			ordersdomain.EnrichedToTable(fact, st.enriched, st.extra...),
		}
		for _, t := range tables {
			if err := p.store.ReplaceTable(ctx, t); err != nil {
				return err
			}
			p.logger.Debugf("replaced table %s (%d rows)", t.Name, t.Len())
		}
		result.Artifact = domain.Artifact{Format: domain.OutputFormatStore, Location: p.store.Location(), Table: fact}
	}
	p.logger.Infof("wrote %d rows to %s", result.RowCount, result.Artifact.Location)
	return nil
}

// FilterByDate garde les commandes dont order_date est dans la période (bornes incluses).
// Sans borne tout est gardé; avec une borne, une date NULL est écartée.
func FilterByDate(orders []ordersdomain.Order, dateRange shareddomain.DateRange) []ordersdomain.Order {
	if !dateRange.IsBounded() {
		return orders
	}
	kept := make([]ordersdomain.Order, 0, len(orders))
	for _, o := range orders {
		if o.OrderDate != nil && dateRange.Contains(*o.OrderDate) {
			kept = append(kept, o)
		}
	}
	return kept
}
