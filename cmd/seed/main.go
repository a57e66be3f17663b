package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"quickshop/internal/sample"
	shareddomain "quickshop/internal/shared/domain"
	sharedinfra "quickshop/internal/shared/infrastructure"
)

// seed: génère un jeu de CSV d'exemple (références + une extraction par jour)
func main() {
	// Charge .env
	if err := godotenv.Load(); err != nil {
		log.Println("Attention: fichier .env non trouvé, utilisation des valeurs par défaut")
	}

	dir := flag.String("dir", getEnv("QS_INPUT_DIR", "data"), "output directory for the CSV files")
	start := flag.String("start", getEnv("SEED_START", time.Now().UTC().AddDate(0, 0, -7).Format(shareddomain.DateLayout)), "first order day (YYYY-MM-DD)")
	days := flag.Int("days", getEnvInt("SEED_DAYS", 7), "number of daily order files")
	products := flag.Int("products", getEnvInt("SEED_PRODUCTS", 100), "number of products")
	warehouses := flag.Int("warehouses", getEnvInt("SEED_WAREHOUSES", 3), "warehouses per product")
	orders := flag.Int("orders-per-day", getEnvInt("SEED_ORDERS_PER_DAY", 100), "maximum orders per day")
	seed := flag.Int64("seed", int64(getEnvInt("SEED", 1)), "random seed")
	flag.Parse()

	startDate, err := shareddomain.ParseDate(*start)
	if err != nil {
		log.Fatalf("❌ Date de début invalide %q: %v", *start, err)
	}

	fmt.Println("🌱 Génération des fichiers d'exemple...")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	begin := time.Now()
	stats, err := sample.Generate(context.Background(), *dir, sample.Options{
		Products:     *products,
		Warehouses:   *warehouses,
		Start:        startDate,
		Days:         *days,
		OrdersPerDay: *orders,
		Seed:         *seed,
		Workers:      4,
	}, sharedinfra.NewLogger(os.Stderr, false))
	if err != nil {
		log.Fatal("❌ Erreur lors du seed:", err)
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("✅ %d produits, %d lignes de stock, %d commandes dans %d fichiers (%v)\n",
		stats.Products, stats.Inventory, stats.Orders, stats.Files, time.Since(begin))
	fmt.Println()
	fmt.Println("Vous pouvez maintenant lancer l'ETL avec:")
	fmt.Printf("  go run ./cmd/etl -input-dir %s\n", *dir)
	fmt.Printf("  go run ./cmd/daily -input-dir %s -date %s\n", *dir, startDate.Format(shareddomain.DateLayout))
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
