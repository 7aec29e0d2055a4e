package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/papayaah/invoicees/constants"
	"github.com/papayaah/invoicees/internal/common"
	"github.com/papayaah/invoicees/internal/core"
	"github.com/papayaah/invoicees/internal/entity"
	"github.com/papayaah/invoicees/internal/export"
	"github.com/papayaah/invoicees/internal/invoice"
	"github.com/papayaah/invoicees/internal/repository"
)

const helpText = `Describe your invoice in plain words, e.g.
  "Invoice Sunrise Bakery for a logo design, $250, from PixelArt Studios"

Commands:
  /list            saved invoices, newest first
  /show <id>       print a saved invoice
  /open <id>       keep editing a saved invoice
  /new             stop editing; the next request starts a new invoice
  /remove <n>      remove line item n (1-based) from the open invoice
  /export [id|all] write an .xlsx file (latest invoice by default)
  /delete <id>     delete a saved invoice
  /reset           delete every saved invoice
  /quit            exit`

type resetter interface {
	Reset()
}

type repl struct {
	processor *core.Processor
	invoices  repository.InvoiceRepository
	exporter  *export.Service
	session   resetter
	exportDir string
	in        io.Reader
	out       io.Writer
	logger    *slog.Logger

	// current is set only by /open; plain requests otherwise start a new invoice
	current *entity.Invoice
	last    *entity.Invoice
	layout  constants.Layout
}

func (r *repl) run(ctx context.Context) error {
	r.layout = constants.LayoutMinimalist
	fmt.Fprintln(r.out, "Invoicees. Type /help for commands.")
	sc := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(r.out)
			return sc.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := r.command(ctx, line); quit {
				return nil
			}
			continue
		}
		r.chat(ctx, line)
	}
}

func (r *repl) chat(ctx context.Context, line string) {
	var (
		res core.Result
		err error
	)
	if r.current != nil {
		res, err = r.processor.Apply(ctx, *r.current, line)
	} else {
		res, err = r.processor.HandleUtterance(ctx, line)
	}
	if err != nil && errors.Is(err, common.ErrAborted) && r.session != nil {
		r.session.Reset()
	}
	if res.Message != "" {
		fmt.Fprintln(r.out, res.Message)
	}
	if res.LayoutChanged {
		r.layout = res.Layout
		fmt.Fprintf(r.out, "Layout: %s\n", r.layout)
	}
	if res.Invoice != nil {
		if r.current != nil {
			r.current = res.Invoice
		}
		r.last = res.Invoice
		r.printInvoice(*res.Invoice)
	}
}

func (r *repl) command(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]
	switch name {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(r.out, helpText)
	case "/list":
		r.list(ctx)
	case "/show", "/open":
		saved, ok := r.load(ctx, args)
		if !ok {
			return false
		}
		if name == "/open" {
			inv := saved.Invoice
			r.current = &inv
			r.last = &inv
		}
		r.printInvoice(saved.Invoice)
	case "/new":
		r.current = nil
		fmt.Fprintln(r.out, "The next request starts a new invoice.")
	case "/remove":
		r.removeItem(ctx, args)
	case "/export":
		r.export(ctx, args)
	case "/delete":
		id, ok := r.parseID(args)
		if !ok {
			return false
		}
		if err := r.invoices.Delete(ctx, id); err != nil {
			r.fail(err)
			return false
		}
		if r.current != nil && r.current.ID == id {
			r.current = nil
		}
		if r.last != nil && r.last.ID == id {
			r.last = nil
		}
		fmt.Fprintln(r.out, "Deleted.")
	case "/reset":
		n, err := r.invoices.Reset(ctx)
		if err != nil {
			r.fail(err)
			return false
		}
		r.current, r.last = nil, nil
		fmt.Fprintf(r.out, "Deleted %d invoice(s).\n", n)
	default:
		fmt.Fprintf(r.out, "Unknown command %s. Type /help.\n", name)
	}
	return false
}

func (r *repl) list(ctx context.Context) {
	all, err := r.invoices.List(ctx)
	if err != nil {
		r.fail(err)
		return
	}
	if len(all) == 0 {
		fmt.Fprintln(r.out, "No saved invoices.")
		return
	}
	for _, inv := range all {
		fmt.Fprintf(r.out, "%s  %s  %-24s -> %-24s $%s\n",
			inv.ID, inv.SavedAt.Local().Format("2006-01-02 15:04"),
			orDash(inv.BusinessName), orDash(inv.ClientName),
			invoice.FormatCurrency(invoice.CalculateTotal(inv.Items)))
	}
}

func (r *repl) removeItem(ctx context.Context, args []string) {
	if r.current == nil {
		fmt.Fprintln(r.out, "No open invoice. Use /open <id> first.")
		return
	}
	if len(args) != 1 {
		fmt.Fprintln(r.out, "Usage: /remove <n>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(r.out, "Usage: /remove <n>")
		return
	}
	saved, err := r.invoices.RemoveItem(ctx, r.current.ID, n-1)
	if err != nil {
		r.fail(err)
		return
	}
	inv := saved.Invoice
	r.current, r.last = &inv, &inv
	r.printInvoice(inv)
}

func (r *repl) export(ctx context.Context, args []string) {
	var (
		data []byte
		name string
		err  error
	)
	switch {
	case len(args) == 1 && args[0] == "all":
		name = "invoices.xlsx"
		data, err = r.exporter.ExportCollectionXLSX(ctx)
	case len(args) == 1:
		id, ok := r.parseID(args)
		if !ok {
			return
		}
		name = "invoice-" + id.String() + ".xlsx"
		data, err = r.exporter.ExportSavedInvoiceXLSX(ctx, id)
	case r.last != nil:
		name = "invoice-" + r.last.ID.String() + ".xlsx"
		data, err = r.exporter.ExportInvoiceXLSX(*r.last)
	default:
		fmt.Fprintln(r.out, "Nothing to export yet. Create an invoice or pass an id.")
		return
	}
	if err != nil {
		r.fail(err)
		return
	}
	path := filepath.Join(r.exportDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintf(r.out, "Wrote %s\n", path)
}

func (r *repl) load(ctx context.Context, args []string) (entity.SavedInvoice, bool) {
	id, ok := r.parseID(args)
	if !ok {
		return entity.SavedInvoice{}, false
	}
	saved, err := r.invoices.Get(ctx, id)
	if err != nil {
		r.fail(err)
		return entity.SavedInvoice{}, false
	}
	return saved, true
}

func (r *repl) parseID(args []string) (uuid.UUID, bool) {
	if len(args) != 1 {
		fmt.Fprintln(r.out, "An invoice id is required. See /list.")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "%q is not an invoice id.\n", args[0])
		return uuid.Nil, false
	}
	return id, true
}

// fail prints a plain message for the user and keeps the details in the log.
func (r *repl) fail(err error) {
	r.logger.Debug("repl.command.error", "error", err)
	switch {
	case errors.Is(err, common.ErrNotFound):
		fmt.Fprintln(r.out, "No such invoice.")
	case errors.Is(err, common.ErrInvalidInput):
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			fmt.Fprintln(r.out, appErr.Message)
			return
		}
		fmt.Fprintln(r.out, "That request is not valid.")
	default:
		fmt.Fprintln(r.out, "Sorry, something went wrong. Please try again.")
	}
}

func (r *repl) printInvoice(inv entity.Invoice) {
	w := r.out
	fmt.Fprintf(w, "\nInvoice %s (%s)\n", inv.ID, r.layout)
	row := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			fmt.Fprintf(w, "  %-16s %s\n", label+":", value)
		}
	}
	row("Number", inv.InvoiceNumber)
	row("Date", inv.InvoiceDate)
	row("Due", inv.DueDate)
	row("From", inv.BusinessName)
	row("Email", inv.BusinessEmail)
	row("Address", inv.BusinessAddress)
	row("Phone", inv.BusinessPhone)
	row("Bill to", inv.ClientName)
	row("Client email", inv.ClientEmail)
	row("Client address", inv.ClientAddress)
	row("Client phone", inv.ClientPhone)
	for i, it := range inv.Items {
		fmt.Fprintf(w, "  %2d. %-32s %6s x $%s = $%s\n", i+1, it.Description,
			strconv.FormatFloat(it.Quantity, 'f', -1, 64),
			invoice.FormatCurrency(it.UnitPrice),
			invoice.FormatCurrency(invoice.CalculateTotal([]entity.LineItem{it})))
	}
	fmt.Fprintf(w, "  %-16s $%s\n", "Total:", invoice.FormatCurrency(invoice.CalculateTotal(inv.Items)))
	if inv.HasPaymentDetails() {
		fmt.Fprintln(w, "  Payment details")
		row("Bank", inv.BankName)
		row("Account", inv.BankAccountNumber)
		row("Account type", inv.BankAccountType)
		row("Branch", inv.BankBranch)
		for _, line := range strings.Split(inv.PaymentInstructions, "\n") {
			row("Instructions", line)
		}
	}
	row("Notes", inv.Notes)
	fmt.Fprintln(w)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
