package testhelpers

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Fixtures CSV du scénario de référence (un t-shirt, une commande complétée,
// une commande annulée)
const (
	ProductsCSV = `product_id,product_name,category,price
1001,Classic Tee,Apparel,19.99
`
	InventoryCSV = `product_id,warehouse_id,stock_on_hand,last_restock_date
1001,W1,120,2025-10-18
`
	OrdersCSV = `order_id,order_date,user_id,product_id,qty,unit_price,order_status
60001,2025-10-23,9047,1001,2,19.99,completed
60002,2025-10-23,9042,1001,1,19.99,cancelled
`
)

// WriteFile écrit un fichier de test dans dir et retourne son chemin
func WriteFile(tb testing.TB, dir, name, content string) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("Failed to create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tb.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// WriteReferenceFiles écrit products.csv et inventory.csv du scénario de référence
func WriteReferenceFiles(tb testing.TB, dir string) {
	tb.Helper()
	WriteFile(tb, dir, "products.csv", ProductsCSV)
	WriteFile(tb, dir, "inventory.csv", InventoryCSV)
}

// SetupInputDir crée un répertoire d'entrée complet: références + fichiers de commandes.
// orders associe un nom de fichier à son contenu CSV.
func SetupInputDir(tb testing.TB, orders map[string]string) string {
	tb.Helper()

	dir := tb.TempDir()
	WriteReferenceFiles(tb, dir)
	for name, content := range orders {
		WriteFile(tb, dir, name, content)
	}
	return dir
}

// CSV construit un contenu CSV à partir d'un en-tête et de lignes
func CSV(header string, rows ...string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(r)
		b.WriteString("\n")
	}
	return b.String()
}

// SetupTestDB initialise une connexion à la base de données de test
func SetupTestDB(tb testing.TB) *sql.DB {
	tb.Helper()

	// Charger les variables d'environnement
	_ = godotenv.Load("../../../.env")

	connStr := testConnString()
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		tb.Fatalf("Failed to open database: %v", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		tb.Fatalf("Failed to ping database: %v\nConnection string: %s", err, hidePassword(connStr))
	}

	tb.Cleanup(func() { db.Close() })
	return db
}

// SkipIfNoDatabase skip le test/benchmark si la DB n'est pas disponible
func SkipIfNoDatabase(tb testing.TB) {
	tb.Helper()

	_ = godotenv.Load("../../../.env")

	db, err := sql.Open("postgres", testConnString())
	if err != nil {
		tb.Skip("Database not available:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		tb.Skip("Database not available:", err)
	}
}

func testConnString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "quickshop"),
		getEnv("DB_PASSWORD", "quickshop"),
		getEnv("DB_NAME", "quickshop_test"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

// getEnv récupère une variable d'environnement avec fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// hidePassword masque le mot de passe dans la connection string pour les logs
func hidePassword(connStr string) string {
	return "host=... (password hidden)"
}
