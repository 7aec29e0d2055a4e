package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/papayaah/invoicees/constants"
	"github.com/papayaah/invoicees/internal/common"
	"github.com/papayaah/invoicees/internal/entity"
	"github.com/papayaah/invoicees/internal/invoice"
	"github.com/papayaah/invoicees/internal/repository"
)

type fakeSession struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeSession) Prompt(_ context.Context, text string) (string, error) {
	f.prompts = append(f.prompts, text)
	return f.reply, f.err
}

type fakeDocs struct {
	docs  []entity.Documentation
	err   error
	calls int
}

func (f *fakeDocs) Search(context.Context, string) ([]entity.Documentation, error) {
	f.calls++
	return f.docs, f.err
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func openInvoices(t *testing.T) repository.InvoiceRepository {
	t.Helper()
	db, err := repository.Open(context.Background(), repository.Config{Driver: repository.DriverSQLite, DSN: ":memory:"}, quietLogger())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(db.Close)
	return repository.NewInvoiceRepository(db, quietLogger())
}

func TestHandleUtteranceEndToEnd(t *testing.T) {
	session := &fakeSession{reply: "Sure! ```json\n" + `{
		"message": "Created your invoice.",
		"invoiceUpdate": {
			"business": "PixelArt Studios",
			"clientName": "Sunrise Bakery",
			"items": [{"description": "Logo design", "price": 250}],
			"venmoHandle": "@pixelart"
		}
	}` + "\n```"}
	invoices := openInvoices(t)
	p := NewProcessor(quietLogger(), session, nil, invoices)

	res, err := p.HandleUtterance(context.Background(), "Create an invoice for Sunrise Bakery, logo design $250")
	if err != nil {
		t.Fatalf("HandleUtterance: %v", err)
	}
	if !res.Relevant || res.Invoice == nil {
		t.Fatalf("expected a relevant result with an invoice, got %+v", res)
	}
	if res.Message != "Created your invoice." {
		t.Errorf("message = %q", res.Message)
	}
	inv := res.Invoice
	if inv.BusinessName != "PixelArt Studios" || inv.ClientName != "Sunrise Bakery" {
		t.Errorf("parties = %q / %q", inv.BusinessName, inv.ClientName)
	}
	if got := invoice.CalculateTotal(inv.Items); got != 250 {
		t.Errorf("total = %v, want 250", got)
	}
	if inv.PaymentInstructions != "Venmo handle: @pixelart" {
		t.Errorf("paymentInstructions = %q", inv.PaymentInstructions)
	}

	if len(session.prompts) != 1 {
		t.Fatalf("prompts = %d, want 1", len(session.prompts))
	}
	if !strings.Contains(session.prompts[0], "- Business: Not set") ||
		!strings.Contains(session.prompts[0], "User request: Create an invoice") {
		t.Errorf("prompt did not carry the fresh invoice summary:\n%s", session.prompts[0])
	}

	saved, err := invoices.Get(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("Get saved: %v", err)
	}
	if saved.BusinessName != "PixelArt Studios" || len(saved.Items) != 1 {
		t.Errorf("saved = %+v", saved)
	}
}

func TestHandleUtteranceBillingScenario(t *testing.T) {
	session := &fakeSession{reply: `{"message":"Added item","invoiceUpdate":{"businessName":"PixelArt Studios","clientName":"Sunrise Bakery","items":[{"description":"logo design","unitPrice":250,"quantity":1}]}}`}
	p := NewProcessor(quietLogger(), session, nil, nil)

	res, err := p.HandleUtterance(context.Background(), "Billing Sunrise Bakery $250 for logo design. My business is PixelArt Studios.")
	if err != nil {
		t.Fatalf("HandleUtterance: %v", err)
	}
	inv := res.Invoice
	if res.Message != "Added item" || inv.BusinessName != "PixelArt Studios" || inv.ClientName != "Sunrise Bakery" {
		t.Fatalf("result = %q %+v", res.Message, inv)
	}
	want := entity.LineItem{Description: "logo design", UnitPrice: 250, Quantity: 1}
	if len(inv.Items) != 1 || inv.Items[0] != want {
		t.Errorf("items = %+v", inv.Items)
	}
	if got := invoice.CalculateTotal(inv.Items); got != 250 {
		t.Errorf("total = %v, want 250", got)
	}
}

func TestHandleUtteranceFreshInvoicePerCall(t *testing.T) {
	session := &fakeSession{reply: `{"message":"ok","invoiceUpdate":{"items":[{"description":"Hour","rate":10}]}}`}
	p := NewProcessor(quietLogger(), session, nil, nil)

	first, err := p.HandleUtterance(context.Background(), "add an item")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := p.HandleUtterance(context.Background(), "add an item")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Invoice.ID == second.Invoice.ID {
		t.Errorf("both utterances share invoice %s", first.Invoice.ID)
	}
	if len(second.Invoice.Items) != 1 {
		t.Errorf("second invoice items = %d, want 1", len(second.Invoice.Items))
	}
}

func TestApplyAppendsToExisting(t *testing.T) {
	session := &fakeSession{reply: `{"message":"Added.","invoiceUpdate":{"items":[{"description":"Cards","price":10,"qty":5}]}}`}
	p := NewProcessor(quietLogger(), session, nil, nil)

	current := entity.NewInvoice(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	current.BusinessName = "PixelArt Studios"
	current.Items = []entity.LineItem{{Description: "Logo design", UnitPrice: 250, Quantity: 1}}

	res, err := p.Apply(context.Background(), current, "add 5 business cards at $10")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Invoice.ID != current.ID {
		t.Errorf("Apply changed the invoice identity")
	}
	if got := invoice.CalculateTotal(res.Invoice.Items); got != 300 {
		t.Errorf("total = %v, want 300", got)
	}
	if len(current.Items) != 1 {
		t.Errorf("input snapshot was mutated: %+v", current.Items)
	}
	if !strings.Contains(session.prompts[0], "- Items: 1 item(s)") || !strings.Contains(session.prompts[0], "- Total: $250.00") {
		t.Errorf("prompt summary:\n%s", session.prompts[0])
	}
}

func TestOffTopicUsesDocs(t *testing.T) {
	session := &fakeSession{}
	docs := &fakeDocs{docs: []entity.Documentation{{Topic: "commands", Content: "Type /help"}}}
	p := NewProcessor(quietLogger(), session, docs, nil)

	res, err := p.HandleUtterance(context.Background(), "tell me a joke")
	if err != nil {
		t.Fatalf("HandleUtterance: %v", err)
	}
	if res.Relevant || res.Invoice != nil {
		t.Errorf("off-topic result = %+v", res)
	}
	if res.Message != "Here's what I found in the documentation:\n\nType /help" {
		t.Errorf("message = %q", res.Message)
	}
	if len(session.prompts) != 0 {
		t.Errorf("model was called for an off-topic utterance")
	}
}

func TestOffTopicWithoutDocs(t *testing.T) {
	for name, docs := range map[string]*fakeDocs{
		"no results":   {},
		"lookup error": {err: errors.New("boom")},
	} {
		t.Run(name, func(t *testing.T) {
			p := NewProcessor(quietLogger(), &fakeSession{}, docs, nil)
			res, err := p.HandleUtterance(context.Background(), "tell me a joke")
			if err != nil {
				t.Fatalf("HandleUtterance: %v", err)
			}
			if res.Message != offTopicMessage {
				t.Errorf("message = %q", res.Message)
			}
			if docs.calls != 1 {
				t.Errorf("docs calls = %d", docs.calls)
			}
		})
	}
}

func TestModelFailures(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{"aborted", common.AbortedError("cancelled", context.Canceled), common.ErrAborted, sessionResetMessage},
		{"unavailable", common.ModelUnavailableError("down", errors.New("dial")), common.ErrModelUnavailable, unavailableMessage},
		{"unclassified", errors.New("weird"), common.ErrModelUnavailable, unavailableMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			invoices := openInvoices(t)
			p := NewProcessor(quietLogger(), &fakeSession{err: tc.err}, nil, invoices)
			res, err := p.HandleUtterance(context.Background(), "add an invoice item")
			if !errors.Is(err, tc.sentinel) {
				t.Fatalf("err = %v, want %v", err, tc.sentinel)
			}
			if tc.sentinel == common.ErrModelUnavailable && errors.Is(err, common.ErrAborted) {
				t.Errorf("unavailable classified as aborted")
			}
			if res.Message != tc.message || res.Invoice != nil {
				t.Errorf("result = %+v", res)
			}
			all, _ := invoices.List(context.Background())
			if len(all) != 0 {
				t.Errorf("failed request saved %d invoices", len(all))
			}
		})
	}
}

func TestUnparseableReplyKeepsInvoice(t *testing.T) {
	session := &fakeSession{reply: "I could not understand that."}
	p := NewProcessor(quietLogger(), session, nil, nil)
	current := entity.NewInvoice(time.Now())
	current.ClientName = "Sunrise Bakery"

	res, err := p.Apply(context.Background(), current, "update the client")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Message != "I could not understand that." {
		t.Errorf("message = %q", res.Message)
	}
	if res.Invoice.ClientName != "Sunrise Bakery" {
		t.Errorf("client lost: %+v", res.Invoice)
	}
}

func TestLayoutChange(t *testing.T) {
	session := &fakeSession{reply: `{"message":"Switched.","invoiceUpdate":{}}`}
	p := NewProcessor(quietLogger(), session, nil, nil)
	res, err := p.HandleUtterance(context.Background(), "use the compact grid layout")
	if err != nil {
		t.Fatalf("HandleUtterance: %v", err)
	}
	if !res.LayoutChanged || res.Layout != constants.LayoutCompactGrid {
		t.Errorf("layout = %q changed=%v", res.Layout, res.LayoutChanged)
	}
}
