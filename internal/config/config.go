package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	etldomain "quickshop/internal/etl/domain"
	exportdomain "quickshop/internal/export/domain"
	shareddomain "quickshop/internal/shared/domain"
)

// Backends de table-store
const (
	BackendPebble   = "pebble"
	BackendPostgres = "postgres"
)

// Config configuration d'un processus (CLI ou serveur HTTP).
// Construite une fois au démarrage puis passée explicitement.
type Config struct {
	InputDir      string
	OutputDir     string
	OutputFormat  etldomain.OutputFormat
	StoreBackend  string
	StoreName     string
	DatabaseDSN   string
	OrdersPattern string
	StartDate     string
	EndDate       string

	ReportsDir   string
	AlertsFormat exportdomain.AlertsFormat

	KafkaBootstrap string
	KafkaTopic     string

	MetricsTextfile string
	HTTPAddr        string
	CacheTTL        time.Duration
	Verbose         bool
}

// Load charge .env (s'il existe) puis les variables d'environnement
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Attention: fichier .env non trouvé, utilisation des valeurs par défaut")
	}
	return FromEnv()
}

// FromEnv lit la configuration depuis l'environnement uniquement
func FromEnv() Config {
	return Config{
		InputDir:      getEnv("QS_INPUT_DIR", "data"),
		OutputDir:     getEnv("QS_OUTPUT_DIR", "output"),
		OutputFormat:  etldomain.OutputFormat(getEnv("QS_OUTPUT_FORMAT", string(etldomain.OutputFormatParquet))),
		StoreBackend:  getEnv("QS_STORE_BACKEND", BackendPebble),
		StoreName:     getEnv("QS_STORE_NAME", "quickshop_etl.db"),
		DatabaseDSN:   databaseDSN(),
		OrdersPattern: getEnv("QS_ORDERS_PATTERN", etldomain.DefaultOrdersPattern),
		StartDate:     getEnv("QS_START_DATE", ""),
		EndDate:       getEnv("QS_END_DATE", ""),

		ReportsDir:   getEnv("QS_REPORTS_DIR", "reports"),
		AlertsFormat: exportdomain.AlertsFormat(getEnv("QS_ALERTS_FORMAT", string(exportdomain.AlertsFormatCSV))),

		KafkaBootstrap: getEnv("QS_KAFKA_BOOTSTRAP", ""),
		KafkaTopic:     getEnv("QS_KAFKA_TOPIC", "quickshop.etl.runs"),

		MetricsTextfile: getEnv("QS_METRICS_TEXTFILE", ""),
		HTTPAddr:        getEnv("QS_HTTP_ADDR", ":8080"),
		CacheTTL:        getEnvDuration("QS_CACHE_TTL", 5*time.Minute),
		Verbose:         getEnvBool("QS_VERBOSE", false),
	}
}

// RegisterFlags expose les champs en flags; les valeurs courantes servent de défaut
// (la ligne de commande l'emporte sur l'environnement).
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.InputDir, "input-dir", c.InputDir, "directory holding products.csv, inventory.csv and order extracts")
	fs.StringVar(&c.OutputDir, "output-dir", c.OutputDir, "directory for parquet snapshots")
	fs.Func("output-format", "parquet or store (default "+string(c.OutputFormat)+")", func(s string) error {
		c.OutputFormat = etldomain.OutputFormat(s)
		return nil
	})
	fs.StringVar(&c.StoreBackend, "store-backend", c.StoreBackend, "table-store backend: pebble or postgres")
	fs.StringVar(&c.StoreName, "store-name", c.StoreName, "pebble store directory (resolved under output-dir)")
	fs.StringVar(&c.OrdersPattern, "orders-pattern", c.OrdersPattern, "glob of order extracts")
	fs.StringVar(&c.StartDate, "start-date", c.StartDate, "first order date to keep (YYYY-MM-DD)")
	fs.StringVar(&c.EndDate, "end-date", c.EndDate, "last order date to keep (YYYY-MM-DD)")
	fs.StringVar(&c.ReportsDir, "reports-dir", c.ReportsDir, "directory for summary and alert reports")
	fs.Func("alerts-format", "csv or xlsx (default "+string(c.AlertsFormat)+")", func(s string) error {
		f, err := exportdomain.ParseAlertsFormat(s)
		if err != nil {
			return err
		}
		c.AlertsFormat = f
		return nil
	})
	fs.StringVar(&c.KafkaBootstrap, "kafka-bootstrap", c.KafkaBootstrap, "comma-separated brokers for run notifications (empty disables Kafka)")
	fs.StringVar(&c.KafkaTopic, "kafka-topic", c.KafkaTopic, "topic for run notifications")
	fs.StringVar(&c.MetricsTextfile, "metrics-textfile", c.MetricsTextfile, "write Prometheus metrics to this file after the run")
	fs.BoolVar(&c.Verbose, "verbose", c.Verbose, "enable debug logs")
}

// DateRange période de filtrage issue de StartDate/EndDate
func (c Config) DateRange() (shareddomain.DateRange, error) {
	start, err := optionalDate(c.StartDate)
	if err != nil {
		return shareddomain.DateRange{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := optionalDate(c.EndDate)
	if err != nil {
		return shareddomain.DateRange{}, fmt.Errorf("invalid end date: %w", err)
	}
	return shareddomain.NewDateRange(start, end)
}

// RunConfig construit la configuration immuable d'une exécution batch
func (c Config) RunConfig() (etldomain.RunConfig, error) {
	dr, err := c.DateRange()
	if err != nil {
		return etldomain.RunConfig{}, err
	}
	cfg := etldomain.RunConfig{
		InputDir:      c.InputDir,
		OutputDir:     c.OutputDir,
		OutputFormat:  c.OutputFormat,
		StoreName:     c.StoreName,
		OrdersPattern: c.OrdersPattern,
		DateRange:     dr,
		Mode:          etldomain.ModeBatch,
	}
	if err := cfg.Validate(); err != nil {
		return etldomain.RunConfig{}, err
	}
	return cfg, nil
}

// Validate vérifie les champs hors RunConfig
func (c Config) Validate() error {
	if c.StoreBackend != BackendPebble && c.StoreBackend != BackendPostgres {
		return fmt.Errorf("unsupported store backend %q", c.StoreBackend)
	}
	if _, err := exportdomain.ParseAlertsFormat(string(c.AlertsFormat)); err != nil {
		return err
	}
	return nil
}

// StorePath répertoire Pebble: StoreName relatif à OutputDir, sauf chemin absolu
func (c Config) StorePath() string {
	if filepath.IsAbs(c.StoreName) {
		return c.StoreName
	}
	return filepath.Join(c.OutputDir, c.StoreName)
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := shareddomain.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// databaseDSN assemble la chaîne de connexion PostgreSQL (DATABASE_URL prioritaire)
func databaseDSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "quickshop"),
		getEnv("DB_PASSWORD", "quickshop"),
		getEnv("DB_NAME", "quickshop"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
