package export

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/papayaah/invoicees/internal/entity"
	"github.com/papayaah/invoicees/internal/repository"
)

func newTestService(t *testing.T) (*Service, repository.InvoiceRepository) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := repository.Open(context.Background(), repository.Config{Driver: repository.DriverSQLite, DSN: ":memory:"}, logger)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(db.Close)
	repo := repository.NewInvoiceRepository(db, logger)
	return NewService(repo, logger), repo
}

func sampleInvoice() entity.Invoice {
	inv := entity.NewInvoice(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	inv.BusinessName = "PixelArt Studios"
	inv.ClientName = "Sunrise Bakery"
	inv.PaymentInstructions = "Venmo handle: @pixel"
	inv.Items = []entity.LineItem{
		{Description: "Logo design", UnitPrice: 250, Quantity: 1},
		{Description: "Cards", UnitPrice: 10, Quantity: 5},
	}
	return inv
}

func readRows(t *testing.T, b []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	return rows
}

func cell(rows [][]string, r, c int) string {
	if r >= len(rows) || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}

func TestExportInvoiceXLSX(t *testing.T) {
	svc, _ := newTestService(t)
	b, err := svc.ExportInvoiceXLSX(sampleInvoice())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	rows := readRows(t, b, invoiceSheet)

	if cell(rows, 0, 0) != "From" || cell(rows, 0, 1) != "PixelArt Studios" {
		t.Errorf("first row = %v", rows[0])
	}
	if cell(rows, 1, 0) != "Bill To" || cell(rows, 1, 1) != "Sunrise Bakery" {
		t.Errorf("second row = %v", rows[1])
	}

	var header, total = -1, -1
	for i := range rows {
		if cell(rows, i, 0) == "Description" {
			header = i
		}
		if cell(rows, i, 2) == "Total" {
			total = i
		}
	}
	if header < 0 || total != header+3 {
		t.Fatalf("header row %d, total row %d: %v", header, total, rows)
	}
	if cell(rows, header+2, 0) != "Cards" || cell(rows, header+2, 3) != "50" {
		t.Errorf("item row = %v", rows[header+2])
	}
	if cell(rows, total, 3) != "300" {
		t.Errorf("total = %q, want 300", cell(rows, total, 3))
	}
}

func TestExportEmptyInvoice(t *testing.T) {
	svc, _ := newTestService(t)
	b, err := svc.ExportInvoiceXLSX(entity.NewInvoice(time.Now()))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	rows := readRows(t, b, invoiceSheet)
	if cell(rows, 0, 0) != "Description" || cell(rows, 1, 2) != "Total" || cell(rows, 1, 3) != "0" {
		t.Errorf("rows = %v", rows)
	}
}

func TestExportSavedAndCollection(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	inv := sampleInvoice()
	if _, err := repo.Save(ctx, inv); err != nil {
		t.Fatalf("save: %v", err)
	}

	b, err := svc.ExportSavedInvoiceXLSX(ctx, inv.ID)
	if err != nil {
		t.Fatalf("export saved: %v", err)
	}
	if rows := readRows(t, b, invoiceSheet); cell(rows, 0, 1) != "PixelArt Studios" {
		t.Errorf("saved export rows = %v", rows)
	}

	b, err = svc.ExportCollectionXLSX(ctx)
	if err != nil {
		t.Fatalf("export collection: %v", err)
	}
	rows := readRows(t, b, collectionSheet)
	if len(rows) != 2 {
		t.Fatalf("rows = %v", rows)
	}
	if cell(rows, 1, 0) != inv.ID.String() || cell(rows, 1, 4) != "2" || cell(rows, 1, 5) != "300" {
		t.Errorf("collection row = %v", rows[1])
	}
}
