package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/papayaah/invoicees/internal/common"
	"github.com/papayaah/invoicees/internal/entity"
	"github.com/papayaah/invoicees/internal/invoice"
	"github.com/papayaah/invoicees/internal/rawjson"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: ":memory:"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func newTestInvoiceRepo(t *testing.T) *invoiceRepository {
	t.Helper()
	return NewInvoiceRepository(openTestDB(t), slog.New(slog.NewTextHandler(io.Discard, nil))).(*invoiceRepository)
}

func fixedClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Second)
		return now
	}
}

func testInvoice(business string) entity.Invoice {
	inv := entity.NewInvoice(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	inv.BusinessName = business
	inv.ClientName = "Sunrise Bakery"
	inv.PaymentInstructions = "Venmo handle: @pixel"
	inv.Items = []entity.LineItem{
		{Description: "Logo design", UnitPrice: 250, Quantity: 1},
		{Description: "Cards", UnitPrice: 10, Quantity: 5},
	}
	return inv
}

func TestInvoiceSaveAndGet(t *testing.T) {
	repo := newTestInvoiceRepo(t)
	ctx := context.Background()
	inv := testInvoice("PixelArt Studios")

	saved, err := repo.Save(ctx, inv)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != inv.ID || got.BusinessName != inv.BusinessName || got.PaymentInstructions != inv.PaymentInstructions {
		t.Errorf("round trip = %+v", got.Invoice)
	}
	if len(got.Items) != 2 || got.Items[1] != inv.Items[1] {
		t.Errorf("items = %+v", got.Items)
	}
	if !got.CreatedAt.Equal(inv.CreatedAt) {
		t.Errorf("createdAt = %v, want %v", got.CreatedAt, inv.CreatedAt)
	}
	if got.SavedAt.UnixMilli() != saved.SavedAt.UnixMilli() {
		t.Errorf("savedAt = %v, want %v", got.SavedAt, saved.SavedAt)
	}
}

func TestInvoiceSaveUpserts(t *testing.T) {
	repo := newTestInvoiceRepo(t)
	ctx := context.Background()
	inv := testInvoice("Draft Name")
	if _, err := repo.Save(ctx, inv); err != nil {
		t.Fatalf("Save: %v", err)
	}
	inv.BusinessName = "Final Name"
	if _, err := repo.Save(ctx, inv); err != nil {
		t.Fatalf("Save again: %v", err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 || all[0].BusinessName != "Final Name" {
		t.Errorf("list = %+v", all)
	}
}

func TestInvoiceListNewestFirst(t *testing.T) {
	repo := newTestInvoiceRepo(t)
	repo.now = fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	first, second, third := testInvoice("one"), testInvoice("two"), testInvoice("three")
	for _, inv := range []entity.Invoice{first, second, third} {
		if _, err := repo.Save(ctx, inv); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	// saving again moves it to the front
	if _, err := repo.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, s := range all {
		names = append(names, s.BusinessName)
	}
	if len(names) != 3 || names[0] != "one" || names[1] != "three" || names[2] != "two" {
		t.Errorf("order = %v", names)
	}
}

func TestInvoiceDeleteAndReset(t *testing.T) {
	repo := newTestInvoiceRepo(t)
	ctx := context.Background()
	a, b := testInvoice("a"), testInvoice("b")
	for _, inv := range []entity.Invoice{a, b} {
		if _, err := repo.Save(ctx, inv); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, a.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Get after delete: %v", err)
	}
	if err := repo.Delete(ctx, uuid.New()); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Delete unknown: %v", err)
	}

	n, err := repo.Reset(ctx)
	if err != nil || n != 1 {
		t.Errorf("Reset = %d, %v", n, err)
	}
	if all, _ := repo.List(ctx); len(all) != 0 {
		t.Errorf("list after reset = %d", len(all))
	}
}

func TestInvoiceRemoveItem(t *testing.T) {
	repo := newTestInvoiceRepo(t)
	ctx := context.Background()
	inv := testInvoice("x")
	if _, err := repo.Save(ctx, inv); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.RemoveItem(ctx, inv.ID, 0)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Description != "Cards" {
		t.Errorf("items = %+v", got.Items)
	}
	if _, err := repo.RemoveItem(ctx, inv.ID, 5); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("out of range: %v", err)
	}
}

func TestInvoiceSaveValidates(t *testing.T) {
	repo := newTestInvoiceRepo(t)
	ctx := context.Background()

	inv := testInvoice("x")
	inv.Items[0].UnitPrice = -1
	if _, err := repo.Save(ctx, inv); !errors.Is(err, common.ErrValidation) {
		t.Errorf("negative price: %v", err)
	}

	inv = testInvoice("x")
	inv.Items[0].Quantity = math.Inf(1)
	if _, err := repo.Save(ctx, inv); !errors.Is(err, common.ErrValidation) {
		t.Errorf("infinite quantity: %v", err)
	}

	inv = testInvoice("x")
	inv.ID = uuid.Nil
	if _, err := repo.Save(ctx, inv); !errors.Is(err, common.ErrValidation) {
		t.Errorf("nil id: %v", err)
	}
}

func TestInvoiceSaveKeepsCreditLines(t *testing.T) {
	repo := newTestInvoiceRepo(t)
	ctx := context.Background()

	update, err := rawjson.Decode([]byte(`{"items":[{"description":"Retainer","unitPrice":100,"quantity":2},{"description":"Credit","unitPrice":100,"quantity":-1}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	merged := invoice.MergeInvoiceUpdate(entity.NewInvoice(time.Now()), update)

	if _, err := repo.Save(ctx, merged); err != nil {
		t.Fatalf("Save merged invoice with a credit line: %v", err)
	}
	got, err := repo.Get(ctx, merged.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Items) != 2 || got.Items[1].Quantity != -1 {
		t.Errorf("items = %+v", got.Items)
	}
	if total := invoice.CalculateTotal(got.Items); total != 100 {
		t.Errorf("total = %v, want 100", total)
	}
}

func TestDocumentationSeedAndSearch(t *testing.T) {
	repo := NewDocumentationRepository(openTestDB(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	n, err := repo.SeedDefaults(ctx)
	if err != nil || n != len(defaultDocumentation) {
		t.Fatalf("SeedDefaults = %d, %v", n, err)
	}
	if n, err := repo.SeedDefaults(ctx); err != nil || n != 0 {
		t.Errorf("second seed = %d, %v", n, err)
	}

	got, err := repo.Search(ctx, "SPREADSHEET please")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) == 0 || got[0].Topic != "Exporting Invoice" {
		t.Errorf("search = %+v", got)
	}

	got, _ = repo.Search(ctx, "layout")
	if len(got) < 2 || got[0].Topic != "Getting Started" {
		t.Errorf("results should keep insertion order, got %d", len(got))
	}

	// keywords are searched as well as content
	got, _ = repo.Search(ctx, "capabilities")
	if len(got) != 1 || got[0].Topic != "Supported Commands" || len(got[0].Keywords) == 0 {
		t.Errorf("keyword search = %+v", got)
	}

	if got, _ := repo.Search(ctx, "zzqx"); len(got) != 0 {
		t.Errorf("expected no hits, got %d", len(got))
	}
	if got, _ := repo.Search(ctx, "   "); len(got) != 0 {
		t.Errorf("blank query should match nothing")
	}
}

func TestDocumentationAddValidates(t *testing.T) {
	repo := NewDocumentationRepository(openTestDB(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := repo.Add(context.Background(), entity.Documentation{Topic: "", Content: "x"}); !errors.Is(err, common.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestRebind(t *testing.T) {
	pg := &DB{dialect: DriverPostgres}
	if got := pg.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Errorf("postgres rebind = %q", got)
	}
	lite := &DB{dialect: DriverSQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Errorf("sqlite rebind = %q", got)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: "oracle"}, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Errorf("expected error")
	}
}

func TestHealthCheck(t *testing.T) {
	if err := openTestDB(t).HealthCheck(context.Background(), time.Second); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}
}
