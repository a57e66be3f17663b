package sample

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"path/filepath"
	"strconv"
	"time"

	exportinfra "quickshop/internal/export/infrastructure"
	shareddomain "quickshop/internal/shared/domain"
	sharedinfra "quickshop/internal/shared/infrastructure"
)

var productPrefixes = []string{
	"Smartphone", "Laptop", "Tablet", "Camera",
	"T-shirt", "Jeans", "Sneakers", "Jacket",
	"Coffee", "Tea", "Juice",
	"Sofa", "Chair", "Lamp", "Rug",
	"Ball", "Racket", "Bike", "Yoga Mat",
}

var categoryByPrefix = map[string]string{
	"Smartphone": "Electronics", "Laptop": "Electronics", "Tablet": "Electronics", "Camera": "Electronics",
	"T-shirt": "Apparel", "Jeans": "Apparel", "Sneakers": "Apparel", "Jacket": "Apparel",
	"Coffee": "Grocery", "Tea": "Grocery", "Juice": "Grocery",
	"Sofa": "Home", "Chair": "Home", "Lamp": "Home", "Rug": "Home",
	"Ball": "Sports", "Racket": "Sports", "Bike": "Sports", "Yoga Mat": "Sports",
}

// statuts tirés au sort, casse variable comme dans les extractions réelles
var orderStatuses = []string{"completed", "completed", "completed", "Completed", "cancelled", "pending"}

// Options paramètres de génération
type Options struct {
	Products     int
	Warehouses   int
	Start        time.Time
	Days         int
	OrdersPerDay int // maximum; au moins la moitié est générée chaque jour
	Seed         int64
	Workers      int
}

// Stats volumes générés
type Stats struct {
	Products  int
	Inventory int
	Files     int
	Orders    int
}

type product struct {
	id       int64
	name     string
	category string
	price    float64
}

// Generate écrit products.csv, inventory.csv et un orders_YYYYMMDD.csv par jour dans dir.
// Même Seed → mêmes fichiers.
func Generate(ctx context.Context, dir string, opts Options, logger *sharedinfra.Logger) (Stats, error) {
	rng := rand.New(rand.NewSource(opts.Seed))
	products := generateProducts(rng, opts.Products)

	if err := writeCSV(dir, "products.csv", productRows(products)); err != nil {
		return Stats{}, err
	}
	inventory := inventoryRows(rng, products, opts.Warehouses)
	if err := writeCSV(dir, "inventory.csv", inventory); err != nil {
		return Stats{}, err
	}
	logger.Infof("generated %d products and %d inventory rows", len(products), len(inventory)-1)

	// une graine par jour: le résultat ne dépend pas de l'ordre d'exécution des workers
	seeds := make([]int64, opts.Days)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	counts := make([]int, opts.Days)
	pool := sharedinfra.NewWorkerPool(ctx, opts.Workers)
	for i := 0; i < opts.Days; i++ {
		pool.Submit(func(context.Context) error {
			day := shareddomain.NormalizeDate(opts.Start).AddDate(0, 0, i)
			rows := orderRows(rand.New(rand.NewSource(seeds[i])), day, int64(i+1)*100000, opts.OrdersPerDay, products)
			counts[i] = len(rows) - 1
			name := fmt.Sprintf("orders_%s.csv", day.Format(shareddomain.DateTokenLayout))
			return writeCSV(dir, name, rows)
		})
	}
	if err := pool.Wait(); err != nil {
		return Stats{}, err
	}

	stats := Stats{Products: len(products), Inventory: len(inventory) - 1, Files: opts.Days}
	for _, c := range counts {
		stats.Orders += c
	}
	logger.Infof("generated %d order files with %d orders", stats.Files, stats.Orders)
	return stats, nil
}

func generateProducts(rng *rand.Rand, count int) []product {
	products := make([]product, 0, count)
	for i := 0; i < count; i++ {
		prefix := productPrefixes[rng.Intn(len(productPrefixes))]
		products = append(products, product{
			id:       int64(1001 + i),
			name:     fmt.Sprintf("%s %d", prefix, i+1),
			category: categoryByPrefix[prefix],
			price:    roundCents(5.0 + rng.Float64()*495.0),
		})
	}
	return products
}

func productRows(products []product) [][]string {
	rows := [][]string{{"product_id", "product_name", "category", "price"}}
	for _, p := range products {
		rows = append(rows, []string{
			strconv.FormatInt(p.id, 10), p.name, p.category, strconv.FormatFloat(p.price, 'f', 2, 64),
		})
	}
	return rows
}

// inventoryRows une ligne par produit et par entrepôt; ~20% des stocks sous le seuil d'alerte
func inventoryRows(rng *rand.Rand, products []product, warehouses int) [][]string {
	rows := [][]string{{"product_id", "warehouse_id", "stock_on_hand", "last_restock_date"}}
	restockBase := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	for _, p := range products {
		for w := 1; w <= warehouses; w++ {
			stock := 101 + rng.Intn(900)
			if rng.Float32() < 0.2 {
				stock = rng.Intn(101)
			}
			rows = append(rows, []string{
				strconv.FormatInt(p.id, 10),
				fmt.Sprintf("W%d", w),
				strconv.Itoa(stock),
				restockBase.AddDate(0, 0, rng.Intn(30)).Format(shareddomain.DateLayout),
			})
		}
	}
	return rows
}

func orderRows(rng *rand.Rand, day time.Time, firstID int64, maxOrders int, products []product) [][]string {
	rows := [][]string{{"order_id", "order_date", "user_id", "product_id", "qty", "unit_price", "order_status"}}
	if maxOrders <= 0 || len(products) == 0 {
		return rows
	}
	n := maxOrders/2 + rng.Intn(maxOrders/2+1)
	for i := 0; i < n; i++ {
		p := products[rng.Intn(len(products))]
		// Petite variation de prix (+/- 10%)
		price := roundCents(p.price * (0.9 + rng.Float64()*0.2))
		rows = append(rows, []string{
			strconv.FormatInt(firstID+int64(i), 10),
			day.Format(shareddomain.DateLayout),
			strconv.Itoa(9000 + rng.Intn(1000)),
			strconv.FormatInt(p.id, 10),
			strconv.Itoa(1 + rng.Intn(5)),
			strconv.FormatFloat(price, 'f', 2, 64),
			orderStatuses[rng.Intn(len(orderStatuses))],
		})
	}
	return rows
}

func writeCSV(dir, name string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := exportinfra.WriteFileAtomic(filepath.Join(dir, name), buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func roundCents(v float64) float64 {
	return shareddomain.LineTotal(1, v).Amount()
}
