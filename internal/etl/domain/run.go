package domain

import (
	"fmt"
	"time"

	"quickshop/internal/shared/domain"
)

// OutputFormat représente la représentation cible des tables produites
type OutputFormat string

const (
	OutputFormatParquet OutputFormat = "parquet"
	OutputFormatStore   OutputFormat = "store"
)

// Mode représente le mode d'exécution du pipeline
type Mode string

const (
	// ModeBatch: batch/backfill, aucune extraction trouvée = erreur fatale
	ModeBatch Mode = "batch"
	// ModeDaily: déclenchement quotidien, aucune extraction = journée vide (succès)
	ModeDaily Mode = "daily"
)

// Noms des tables de référence (remplacées à chaque exécution)
const (
	ProductsTable  = "products"
	InventoryTable = "inventory"
	OrdersTable    = "orders"
)

// Fichiers de référence obligatoires
const (
	ProductsFile  = "products.csv"
	InventoryFile = "inventory.csv"
)

// DefaultOrdersPattern motif glob par défaut des extractions de commandes
const DefaultOrdersPattern = "orders*.csv"

// RunConfig configuration immuable d'une exécution, passée au pipeline à l'appel
type RunConfig struct {
	InputDir      string
	OutputDir     string
	OutputFormat  OutputFormat
	StoreName     string
	OrdersPattern string
	DateRange     domain.DateRange
	Mode          Mode
	LogicalDate   time.Time // obligatoire en ModeDaily
}

// NewDailyRunConfig construit la configuration d'une exécution quotidienne
func NewDailyRunConfig(base RunConfig, logicalDate time.Time) RunConfig {
	cfg := base
	cfg.Mode = ModeDaily
	cfg.LogicalDate = domain.NormalizeDate(logicalDate)
	cfg.DateRange = domain.SingleDay(logicalDate)
	return cfg
}

// Validate vérifie la cohérence de la configuration
func (c RunConfig) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("%w: input dir is required", ErrInvalidRunConfig)
	}
	if c.OutputFormat != OutputFormatParquet && c.OutputFormat != OutputFormatStore {
		return fmt.Errorf("%w: unsupported output format %q", ErrInvalidRunConfig, c.OutputFormat)
	}
	if c.OutputFormat == OutputFormatParquet && c.OutputDir == "" {
		return fmt.Errorf("%w: output dir is required for parquet output", ErrInvalidRunConfig)
	}
	if c.Mode != ModeBatch && c.Mode != ModeDaily {
		return fmt.Errorf("%w: unsupported mode %q", ErrInvalidRunConfig, c.Mode)
	}
	if c.Mode == ModeDaily && c.LogicalDate.IsZero() {
		return fmt.Errorf("%w: daily mode requires a logical date", ErrInvalidRunConfig)
	}
	return nil
}

// Pattern retourne le motif glob effectif
func (c RunConfig) Pattern() string {
	if c.OrdersPattern == "" {
		return DefaultOrdersPattern
	}
	return c.OrdersPattern
}

// FactTableName nom de la table de faits en mode table-store.
// Paramétré par la date logique pour rendre l'écriture idempotente.
func (c RunConfig) FactTableName() string {
	start, hasStart := c.DateRange.Start()
	end, hasEnd := c.DateRange.End()
	switch {
	case hasStart && hasEnd && start.Equal(end):
		return OrdersTable + "_" + start.Format(domain.DateTokenLayout)
	case hasStart && hasEnd:
		return fmt.Sprintf("%s_%s_to_%s", OrdersTable,
			start.Format(domain.DateTokenLayout), end.Format(domain.DateTokenLayout))
	default:
		return OrdersTable
	}
}

// ParquetFileName nom du fichier Parquet. Déterministe si une période fermée
// est fournie, horodaté sinon (exécutions ad hoc).
func (c RunConfig) ParquetFileName(now time.Time) string {
	start, hasStart := c.DateRange.Start()
	end, hasEnd := c.DateRange.End()
	switch {
	case hasStart && hasEnd && start.Equal(end):
		return fmt.Sprintf("orders_%s.parquet", start.Format(domain.DateLayout))
	case hasStart && hasEnd:
		return fmt.Sprintf("orders_%s_to_%s.parquet",
			start.Format(domain.DateTokenLayout), end.Format(domain.DateTokenLayout))
	default:
		return fmt.Sprintf("orders_%s.parquet", now.Format("20060102_150405"))
	}
}

// Stage étape de la machine à états du pipeline
type Stage string

const (
	StageStart          Stage = "START"
	StageLoadReference  Stage = "LOAD_REFERENCE"
	StageDiscoverOrders Stage = "DISCOVER_ORDER_FILES"
	StageLoadOrders     Stage = "LOAD_AND_CONCAT_ORDERS"
	StageValidate       Stage = "VALIDATE_ALL"
	StageFilterByDate   Stage = "FILTER_BY_DATE"
	StageEnrich         Stage = "ENRICH"
	StageWriteOutput    Stage = "WRITE_OUTPUT"
	StageDone           Stage = "DONE"
	StageFailed         Stage = "FAILED"
)

// RunStatus résultat tri-état d'une exécution
type RunStatus string

const (
	StatusSucceeded RunStatus = "succeeded"
	StatusEmpty     RunStatus = "succeeded_empty"
	StatusFailed    RunStatus = "failed"
)

// Artifact localisation de l'artefact de faits produit
type Artifact struct {
	Format   OutputFormat `json:"format"`
	Location string       `json:"location"`
	Table    string       `json:"table,omitempty"`
}

// IsZero vrai si aucun artefact n'a été écrit
func (a Artifact) IsZero() bool {
	return a.Location == ""
}

// RunResult seule information exposée aux consommateurs aval (rapports, alertes)
type RunResult struct {
	RunID           string    `json:"run_id"`
	Mode            Mode      `json:"mode"`
	Status          RunStatus `json:"status"`
	Stage           Stage     `json:"stage"`
	LogicalDate     time.Time `json:"logical_date,omitempty"`
	Artifact        Artifact  `json:"artifact"`
	RowCount        int       `json:"row_count"`
	HasOrders       bool      `json:"has_orders"`
	FilesDiscovered int       `json:"files_discovered"`
}

// ReportDate date utilisée pour nommer les rapports aval
func (r RunResult) ReportDate() string {
	if r.LogicalDate.IsZero() {
		return ""
	}
	return r.LogicalDate.Format(domain.DateLayout)
}
