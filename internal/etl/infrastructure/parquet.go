package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"quickshop/internal/etl/domain"
	ordersdomain "quickshop/internal/orders/domain"
)

// parquetParallelism 1 seul goroutine d'encodage: fichier identique octet pour octet
// d'une exécution à l'autre pour les mêmes entrées.
const parquetParallelism = 1

// EnrichedOrderRecord schéma Parquet de la table de faits (même ordre que
// ordersdomain.EnrichedColumns). Les dates sont des INT32 DATE (jours depuis epoch).
// Le schéma est fixe: les colonnes passthrough (Order.Extra) ne sont reportées
// que dans la table du table-store.
type EnrichedOrderRecord struct {
	OrderID     *int64   `parquet:"name=order_id, type=INT64, repetitiontype=OPTIONAL"`
	OrderDate   *int32   `parquet:"name=order_date, type=INT32, convertedtype=DATE, repetitiontype=OPTIONAL"`
	UserID      *int64   `parquet:"name=user_id, type=INT64, repetitiontype=OPTIONAL"`
	OrderStatus *string  `parquet:"name=order_status, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProductID   *int64   `parquet:"name=product_id, type=INT64, repetitiontype=OPTIONAL"`
	ProductName *string  `parquet:"name=product_name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Category    *string  `parquet:"name=category, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Qty         *int64   `parquet:"name=qty, type=INT64, repetitiontype=OPTIONAL"`
	UnitPrice   *float64 `parquet:"name=unit_price, type=DOUBLE, repetitiontype=OPTIONAL"`
	OrderTotal  *float64 `parquet:"name=order_total, type=DOUBLE, repetitiontype=OPTIONAL"`
	StockOnHand *int64   `parquet:"name=stock_on_hand, type=INT64, repetitiontype=OPTIONAL"`
	Source      *string  `parquet:"name=_source, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

// ToParquetRecord convertit une commande enrichie
func ToParquetRecord(o ordersdomain.EnrichedOrder) EnrichedOrderRecord {
	status, source := o.OrderStatus, o.Source
	return EnrichedOrderRecord{
		OrderID:     o.OrderID,
		OrderDate:   toEpochDays(o.OrderDate),
		UserID:      o.UserID,
		OrderStatus: &status,
		ProductID:   o.ProductID,
		ProductName: o.ProductName,
		Category:    o.Category,
		Qty:         o.Qty,
		UnitPrice:   o.UnitPrice,
		OrderTotal:  o.OrderTotal,
		StockOnHand: o.StockOnHand,
		Source:      &source,
	}
}

// FromParquetRecord reconstruit une commande enrichie
func FromParquetRecord(r EnrichedOrderRecord) ordersdomain.EnrichedOrder {
	o := ordersdomain.EnrichedOrder{
		Order: ordersdomain.Order{
			OrderID:   r.OrderID,
			OrderDate: fromEpochDays(r.OrderDate),
			UserID:    r.UserID,
			ProductID: r.ProductID,
			Qty:       r.Qty,
			UnitPrice: r.UnitPrice,
		},
		OrderTotal:  r.OrderTotal,
		ProductName: r.ProductName,
		Category:    r.Category,
		StockOnHand: r.StockOnHand,
	}
	if r.OrderStatus != nil {
		o.OrderStatus = *r.OrderStatus
	}
	if r.Source != nil {
		o.Source = *r.Source
	}
	return o
}

func toEpochDays(t *time.Time) *int32 {
	if t == nil {
		return nil
	}
	days := int32(t.UTC().Unix() / 86400)
	return &days
}

func fromEpochDays(days *int32) *time.Time {
	if days == nil {
		return nil
	}
	t := time.Unix(int64(*days)*86400, 0).UTC()
	return &t
}

// ParquetWriter écrit la table de faits en snapshot Parquet immuable
type ParquetWriter struct {
	compression parquet.CompressionCodec
}

// NewParquetWriter crée un writer Parquet (compression Snappy)
func NewParquetWriter() *ParquetWriter {
	return &ParquetWriter{compression: parquet.CompressionCodec_SNAPPY}
}

// WriteOrders écrit les commandes dans path de façon atomique:
// fichier temporaire dans le même répertoire puis os.Rename.
// En cas d'échec aucun fichier partiel n'est visible.
func (w *ParquetWriter) WriteOrders(path string, orders []ordersdomain.EnrichedOrder) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.WriteError{Target: path, Err: fmt.Errorf("mkdir: %w", err)}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &domain.WriteError{Target: path, Err: fmt.Errorf("create temp: %w", err)}
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := w.encode(tmpPath, orders); err != nil {
		return &domain.WriteError{Target: path, Err: err}
	}
	if err := syncFile(tmpPath); err != nil {
		return &domain.WriteError{Target: path, Err: err}
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return &domain.WriteError{Target: path, Err: fmt.Errorf("chmod: %w", err)}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &domain.WriteError{Target: path, Err: fmt.Errorf("rename: %w", err)}
	}
	return nil
}

// syncFile force l'écriture sur disque avant le rename
func syncFile(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("reopen: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync: %w", err)
	}
	return f.Close()
}

func (w *ParquetWriter) encode(path string, orders []ordersdomain.EnrichedOrder) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	pw, err := writer.NewParquetWriter(fw, new(EnrichedOrderRecord), parquetParallelism)
	if err != nil {
		fw.Close()
		return fmt.Errorf("parquet writer: %w", err)
	}
	pw.CompressionType = w.compression

	for _, o := range orders {
		if err := pw.Write(ToParquetRecord(o)); err != nil {
			fw.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("write footer: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// ParquetReader relit un snapshot de la table de faits (rapports, tests)
type ParquetReader struct{}

// NewParquetReader crée un lecteur Parquet
func NewParquetReader() *ParquetReader {
	return &ParquetReader{}
}

// ReadOrders lit toutes les lignes du fichier
func (r *ParquetReader) ReadOrders(path string) ([]ordersdomain.EnrichedOrder, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(EnrichedOrderRecord), parquetParallelism)
	if err != nil {
		return nil, fmt.Errorf("parquet reader %s: %w", path, err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	out := make([]ordersdomain.EnrichedOrder, 0, n)
	if n == 0 {
		return out, nil
	}

	records := make([]EnrichedOrderRecord, n)
	if err := pr.Read(&records); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	for _, rec := range records {
		out = append(out, FromParquetRecord(rec))
	}
	return out, nil
}
