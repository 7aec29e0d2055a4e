package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/papayaah/invoicees/internal/entity"
	"github.com/papayaah/invoicees/internal/invoice"
	"github.com/papayaah/invoicees/internal/repository"
)

const (
	invoiceSheet    = "Invoice"
	collectionSheet = "Invoices"
	// built-in "#,##0.00"
	numFmtMoney = 4
)

// Service is a tiny façade over the invoice repository that produces XLSX bytes.
type Service struct {
	invoices repository.InvoiceRepository
	logger   *slog.Logger
}

func NewService(invoices repository.InvoiceRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{invoices: invoices, logger: logger}
}

// ExportInvoiceXLSX renders one invoice: the party, bank and payment fields
// followed by the line items and their computed total.
func (s *Service) ExportInvoiceXLSX(inv entity.Invoice) ([]byte, error) {
	start := time.Now()
	f, err := newWorkbook(invoiceSheet)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()
	money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtMoney})
	if err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	row := 1
	write := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(invoiceSheet, cell, v)
	}
	label := func(name, value string) {
		if value == "" {
			return
		}
		write(1, name)
		write(2, value)
		row++
	}

	label("Invoice Number", inv.InvoiceNumber)
	label("Invoice Date", inv.InvoiceDate)
	label("Due Date", inv.DueDate)
	label("From", inv.BusinessName)
	label("From Email", inv.BusinessEmail)
	label("From Address", inv.BusinessAddress)
	label("From Phone", inv.BusinessPhone)
	label("Bill To", inv.ClientName)
	label("Client Email", inv.ClientEmail)
	label("Client Address", inv.ClientAddress)
	label("Client Phone", inv.ClientPhone)
	label("Bank", inv.BankName)
	label("Account Number", inv.BankAccountNumber)
	label("Account Type", inv.BankAccountType)
	label("Branch", inv.BankBranch)
	label("Payment Instructions", inv.PaymentInstructions)
	label("Notes", inv.Notes)
	if row > 1 {
		row++
	}

	headerRow := row
	for i, h := range []string{"Description", "Unit Price", "Quantity", "Amount"} {
		write(i+1, h)
	}
	_ = f.SetRowStyle(invoiceSheet, headerRow, headerRow, bold)
	row++

	firstItem := row
	for _, it := range inv.Items {
		write(1, it.Description)
		write(2, it.UnitPrice)
		write(3, it.Quantity)
		write(4, invoice.CalculateTotal([]entity.LineItem{it}))
		row++
	}

	write(3, "Total")
	write(4, invoice.CalculateTotal(inv.Items))
	totalCell, _ := excelize.CoordinatesToCellName(3, row)
	_ = f.SetCellStyle(invoiceSheet, totalCell, totalCell, bold)

	from, _ := excelize.CoordinatesToCellName(2, firstItem)
	to, _ := excelize.CoordinatesToCellName(2, row)
	_ = f.SetCellStyle(invoiceSheet, from, to, money)
	from, _ = excelize.CoordinatesToCellName(4, firstItem)
	to, _ = excelize.CoordinatesToCellName(4, row)
	_ = f.SetCellStyle(invoiceSheet, from, to, money)

	_ = f.SetColWidth(invoiceSheet, "A", "A", 36) // labels / descriptions
	_ = f.SetColWidth(invoiceSheet, "B", "B", 48) // values
	_ = f.SetColWidth(invoiceSheet, "C", "D", 14) // quantity, amount

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.invoice_ok",
		"invoice_id", inv.ID.String(),
		"items", len(inv.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ExportSavedInvoiceXLSX renders a saved invoice by ID.
func (s *Service) ExportSavedInvoiceXLSX(ctx context.Context, id uuid.UUID) ([]byte, error) {
	saved, err := s.invoices.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	return s.ExportInvoiceXLSX(saved.Invoice)
}

// ExportCollectionXLSX lists every saved invoice, newest first, one per row.
func (s *Service) ExportCollectionXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()
	all, err := s.invoices.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	f, err := newWorkbook(collectionSheet)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()

	headers := []string{"Invoice ID", "Saved At", "Business", "Client", "Items", "Total"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(collectionSheet, cell, h)
	}
	for i, inv := range all {
		row := i + 2
		values := []any{
			inv.ID.String(),
			inv.SavedAt.Format(time.RFC3339),
			inv.BusinessName,
			inv.ClientName,
			len(inv.Items),
			invoice.CalculateTotal(inv.Items),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(collectionSheet, cell, v)
		}
	}
	if money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtMoney}); err == nil {
		_ = f.SetColStyle(collectionSheet, "F", money)
	}

	_ = f.SetColWidth(collectionSheet, "A", "A", 38) // id
	_ = f.SetColWidth(collectionSheet, "B", "B", 22) // saved at
	_ = f.SetColWidth(collectionSheet, "C", "D", 28) // parties
	_ = f.SetColWidth(collectionSheet, "E", "F", 12) // counts

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.collection_ok",
		"rows", len(all),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// newWorkbook returns a file whose only sheet is named sheet.
func newWorkbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	f.SetActiveSheet(idx)
	return f, nil
}
