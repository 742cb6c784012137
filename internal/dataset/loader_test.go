package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"salesmetrics/internal/domain"
)

func fixtureDir() string {
	return filepath.Join("..", "..", "testdata", "ecommerce")
}

// copyFixture clones the fixture dataset into a temp dir so individual files
// can be removed or rewritten per test case.
func copyFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	entries, err := os.ReadDir(fixtureDir())
	if err != nil {
		t.Fatalf("read fixture dir: %v", err)
	}
	for _, e := range entries {
		b, err := os.ReadFile(filepath.Join(fixtureDir(), e.Name()))
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		if err := os.WriteFile(filepath.Join(dir, e.Name()), b, 0o644); err != nil {
			t.Fatalf("write %s: %v", e.Name(), err)
		}
	}
	return dir
}

func TestLoadFixture(t *testing.T) {
	tbl, err := NewLoader(fixtureDir()).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got, want := len(tbl.Orders), 10; got != want {
		t.Fatalf("orders=%d want=%d", got, want)
	}
	if got, want := len(tbl.Items), 16; got != want {
		t.Fatalf("items=%d want=%d", got, want)
	}
	if got, want := len(tbl.Products), 4; got != want {
		t.Fatalf("products=%d want=%d", got, want)
	}
	if got, want := len(tbl.Customers), 5; got != want {
		t.Fatalf("customers=%d want=%d", got, want)
	}
	if got, want := len(tbl.Reviews), 8; got != want {
		t.Fatalf("reviews=%d want=%d", got, want)
	}
	if got, want := len(tbl.Payments), 10; got != want {
		t.Fatalf("payments=%d want=%d", got, want)
	}

	o := tbl.Orders[0]
	if o.OrderID != "O01" || o.Status != domain.StatusDelivered {
		t.Fatalf("first order = %+v", o)
	}
	if o.DeliveredAt == nil {
		t.Fatalf("delivered order missing delivery timestamp")
	}
	if canceled := tbl.Orders[8]; canceled.DeliveredAt != nil {
		t.Fatalf("canceled order has delivery timestamp")
	}

	it := tbl.Items[0]
	if it.OrderID != "O01" || it.ItemSeq != 1 || it.Price != 120.00 || it.FreightValue != 15.50 {
		t.Fatalf("first item = %+v", it)
	}

	if tbl.Products[1].Category == nil {
		t.Fatalf("product category missing")
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := copyFixture(t)
	if err := os.Remove(filepath.Join(dir, ReviewsFile)); err != nil {
		t.Fatalf("remove: %v", err)
	}

	_, err := NewLoader(dir).Load(context.Background())
	var nf *SourceNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err=%v want *SourceNotFoundError", err)
	}
	if nf.File != ReviewsFile {
		t.Fatalf("file=%s want=%s", nf.File, ReviewsFile)
	}
}

func TestLoadMissingColumn(t *testing.T) {
	dir := copyFixture(t)
	csv := "order_id,order_item_id,product_id,price\nO01,1,P01,120.00\n"
	if err := os.WriteFile(filepath.Join(dir, ItemsFile), []byte(csv), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := NewLoader(dir).Load(context.Background())
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err=%v want *SchemaError", err)
	}
	if se.File != ItemsFile || se.Column != "freight_value" {
		t.Fatalf("schema error names %s/%s, want %s/freight_value", se.File, se.Column, ItemsFile)
	}
}

func TestLoadBadValue(t *testing.T) {
	dir := copyFixture(t)
	csv := "order_id,order_item_id,product_id,price,freight_value\nO01,1,P01,not-a-price,2.00\n"
	if err := os.WriteFile(filepath.Join(dir, ItemsFile), []byte(csv), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := NewLoader(dir).Load(context.Background())
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err=%v want *SchemaError", err)
	}
	if se.Column != "price" || se.Row != 2 {
		t.Fatalf("schema error = %v, want column price row 2", se)
	}
}

func TestLoadHeaderBOMAndCase(t *testing.T) {
	dir := copyFixture(t)
	csv := "\ufeffOrder-ID,Order Item ID,Product ID,Price,Freight Value\nO01,1,P01,10.00,1.00\n"
	if err := os.WriteFile(filepath.Join(dir, ItemsFile), []byte(csv), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tbl, err := NewLoader(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tbl.Items) != 1 || tbl.Items[0].OrderID != "O01" {
		t.Fatalf("items=%+v", tbl.Items)
	}
}

func TestFingerprintsStableAcrossLoads(t *testing.T) {
	ctx := context.Background()
	a, err := NewLoader(fixtureDir()).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b, err := NewLoader(fixtureDir()).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(a.Fingerprints) != 6 {
		t.Fatalf("fingerprints=%d want=6", len(a.Fingerprints))
	}
	for name, sum := range a.Fingerprints {
		if b.Fingerprints[name] != sum {
			t.Fatalf("fingerprint for %s differs across loads", name)
		}
		if sum == 0 {
			t.Fatalf("fingerprint for %s is zero", name)
		}
	}
}

func TestLoadCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewLoader(fixtureDir()).Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
}
