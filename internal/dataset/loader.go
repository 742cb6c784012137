// Package dataset reads the six e-commerce CSV sources into typed in-memory
// tables. Loading is strictly mechanical: one CSV row becomes one record,
// column names map to struct fields, and no business filtering happens here.
// A missing file or a schema violation aborts the load; nothing downstream
// ever sees a partially loaded table set.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"

	"salesmetrics/internal/domain"
	"salesmetrics/internal/textutil"
)

// Source file names, fixed by the dataset contract.
const (
	OrdersFile    = "orders_dataset.csv"
	ItemsFile     = "order_items_dataset.csv"
	ProductsFile  = "products_dataset.csv"
	CustomersFile = "customers_dataset.csv"
	ReviewsFile   = "order_reviews_dataset.csv"
	PaymentsFile  = "order_payments_dataset.csv"
)

// Tables holds all six loaded tables. Once returned, Tables is read-only
// source of truth for the rest of the pipeline; no stage mutates it.
type Tables struct {
	Orders    []domain.Order
	Items     []domain.OrderItem
	Products  []domain.Product
	Customers []domain.Customer
	Reviews   []domain.Review
	Payments  []domain.Payment

	// Fingerprints maps file name to an xxh3 hash of its raw bytes. Two
	// loads of identical files produce identical fingerprints, which makes
	// run idempotence directly checkable.
	Fingerprints map[string]uint64
}

// Loader reads the dataset from a directory.
type Loader struct {
	dir string
}

// NewLoader returns a Loader bound to the given directory.
func NewLoader(dir string) *Loader { return &Loader{dir: dir} }

// Load reads all six sources. It fails with *SourceNotFoundError when a file
// is absent and with *SchemaError when a required column is missing or a
// value does not parse; both abort the load with no partial result.
func (l *Loader) Load(ctx context.Context) (*Tables, error) {
	t := &Tables{Fingerprints: make(map[string]uint64, 6)}

	steps := []struct {
		file string
		load func(context.Context) (uint64, error)
	}{
		{OrdersFile, func(ctx context.Context) (uint64, error) { return l.loadOrders(ctx, t) }},
		{ItemsFile, func(ctx context.Context) (uint64, error) { return l.loadItems(ctx, t) }},
		{ProductsFile, func(ctx context.Context) (uint64, error) { return l.loadProducts(ctx, t) }},
		{CustomersFile, func(ctx context.Context) (uint64, error) { return l.loadCustomers(ctx, t) }},
		{ReviewsFile, func(ctx context.Context) (uint64, error) { return l.loadReviews(ctx, t) }},
		{PaymentsFile, func(ctx context.Context) (uint64, error) { return l.loadPayments(ctx, t) }},
	}
	for _, s := range steps {
		sum, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		t.Fingerprints[s.file] = sum
	}
	return t, nil
}

func (l *Loader) loadOrders(ctx context.Context, t *Tables) (uint64, error) {
	required := []string{"order_id", "customer_id", "order_status", "order_purchase_timestamp"}
	return l.readTable(ctx, OrdersFile, required, func(r row) error {
		purchased, err := r.time("order_purchase_timestamp")
		if err != nil {
			return err
		}
		delivered, err := r.optTime("order_delivered_customer_date")
		if err != nil {
			return err
		}
		estimated, err := r.optTime("order_estimated_delivery_date")
		if err != nil {
			return err
		}
		t.Orders = append(t.Orders, domain.Order{
			OrderID:     r.str("order_id"),
			CustomerID:  r.str("customer_id"),
			Status:      domain.OrderStatus(r.str("order_status")),
			PurchasedAt: purchased,
			DeliveredAt: delivered,
			EstimatedAt: estimated,
		})
		return nil
	})
}

func (l *Loader) loadItems(ctx context.Context, t *Tables) (uint64, error) {
	required := []string{"order_id", "order_item_id", "product_id", "price", "freight_value"}
	return l.readTable(ctx, ItemsFile, required, func(r row) error {
		seq, err := r.int("order_item_id")
		if err != nil {
			return err
		}
		price, err := r.float("price")
		if err != nil {
			return err
		}
		freight, err := r.float("freight_value")
		if err != nil {
			return err
		}
		t.Items = append(t.Items, domain.OrderItem{
			OrderID:      r.str("order_id"),
			ItemSeq:      seq,
			ProductID:    r.str("product_id"),
			Price:        price,
			FreightValue: freight,
		})
		return nil
	})
}

func (l *Loader) loadProducts(ctx context.Context, t *Tables) (uint64, error) {
	required := []string{"product_id"}
	return l.readTable(ctx, ProductsFile, required, func(r row) error {
		weight, err := r.optFloat("product_weight_g")
		if err != nil {
			return err
		}
		length, err := r.optFloat("product_length_cm")
		if err != nil {
			return err
		}
		height, err := r.optFloat("product_height_cm")
		if err != nil {
			return err
		}
		width, err := r.optFloat("product_width_cm")
		if err != nil {
			return err
		}
		t.Products = append(t.Products, domain.Product{
			ProductID: r.str("product_id"),
			Category:  r.optStr("product_category_name"),
			WeightG:   weight,
			LengthCm:  length,
			HeightCm:  height,
			WidthCm:   width,
		})
		return nil
	})
}

func (l *Loader) loadCustomers(ctx context.Context, t *Tables) (uint64, error) {
	required := []string{"customer_id", "customer_city", "customer_state"}
	return l.readTable(ctx, CustomersFile, required, func(r row) error {
		t.Customers = append(t.Customers, domain.Customer{
			CustomerID: r.str("customer_id"),
			ZipPrefix:  r.str("customer_zip_code_prefix"),
			City:       r.str("customer_city"),
			State:      r.str("customer_state"),
		})
		return nil
	})
}

func (l *Loader) loadReviews(ctx context.Context, t *Tables) (uint64, error) {
	required := []string{"order_id", "review_score"}
	return l.readTable(ctx, ReviewsFile, required, func(r row) error {
		score, err := r.int("review_score")
		if err != nil {
			return err
		}
		created, err := r.optTime("review_creation_date")
		if err != nil {
			return err
		}
		t.Reviews = append(t.Reviews, domain.Review{
			ReviewID:  r.str("review_id"),
			OrderID:   r.str("order_id"),
			Score:     score,
			Comment:   r.optStr("review_comment_message"),
			CreatedAt: created,
		})
		return nil
	})
}

func (l *Loader) loadPayments(ctx context.Context, t *Tables) (uint64, error) {
	required := []string{"order_id", "payment_type", "payment_value"}
	return l.readTable(ctx, PaymentsFile, required, func(r row) error {
		seq, err := r.optIntDefault("payment_sequential", 1)
		if err != nil {
			return err
		}
		installments, err := r.optIntDefault("payment_installments", 1)
		if err != nil {
			return err
		}
		value, err := r.float("payment_value")
		if err != nil {
			return err
		}
		t.Payments = append(t.Payments, domain.Payment{
			OrderID:      r.str("order_id"),
			Sequential:   seq,
			Type:         r.str("payment_type"),
			Installments: installments,
			Value:        value,
		})
		return nil
	})
}

// readTable opens one CSV source, verifies the required columns, and feeds
// each data row to fn. The raw file bytes are hashed while being read; the
// xxh3 sum is returned on success.
func (l *Loader) readTable(ctx context.Context, name string, required []string, fn func(row) error) (uint64, error) {
	f, err := l.open(ctx, name)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxh3.New()
	tee := io.TeeReader(f, h)
	cr := csv.NewReader(tee)
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return 0, &SchemaError{File: name, Err: fmt.Errorf("read header: %w", err)}
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		if i == 0 {
			col = stripBOM(col)
		}
		idx[textutil.Fold(col)] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return 0, &SchemaError{File: name, Column: col, Err: errors.New("required column missing")}
		}
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, &SchemaError{File: name, Row: line, Err: err}
		}
		if err := fn(row{file: name, line: line, idx: idx, fields: rec}); err != nil {
			return 0, err
		}
	}

	// Drain anything csv buffered past the last record so the fingerprint
	// covers the whole file.
	if _, err := io.Copy(io.Discard, tee); err != nil {
		return 0, fmt.Errorf("drain %s: %w", name, err)
	}
	return h.Sum64(), nil
}

// open resolves name inside the loader directory and opens it for reading.
// A canceled context short-circuits without touching the filesystem.
func (l *Loader) open(ctx context.Context, name string) (*os.File, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(filepath.Join(l.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &SourceNotFoundError{File: name, Err: err}
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}
